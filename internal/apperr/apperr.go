// Package apperr defines the failure kinds surfaced by the service layer.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the category of a failure.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindPermissionDenied
	KindInsufficientStock
	KindTransient
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_FAILURE"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	case KindPermissionDenied:
		return "PERMISSION_DENIED"
	case KindInsufficientStock:
		return "INSUFFICIENT_STOCK"
	case KindTransient:
		return "TRANSIENT"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	default:
		return "INTERNAL"
	}
}

// Error is a classified failure. Message is safe to show to callers;
// Err carries the underlying cause and is never shown.
type Error struct {
	Kind    Kind
	Message string
	// Subject names the entity the failure is about, e.g. the product id
	// that was out of stock.
	Subject string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Validationf(format string, args ...interface{}) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// ProductNotFound reports a product missing from a store's inventory.
func ProductNotFound(productID string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("product %s not found in this store", productID),
		Subject: productID,
	}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func PermissionDenied(message string) *Error {
	return &Error{Kind: KindPermissionDenied, Message: message}
}

// InsufficientStock reports that a product cannot cover the requested quantity.
func InsufficientStock(productID, productName string) *Error {
	name := productName
	if name == "" {
		name = productID
	}
	return &Error{
		Kind:    KindInsufficientStock,
		Message: fmt.Sprintf("insufficient stock for product: %s", name),
		Subject: productID,
	}
}

// Transient wraps a failure of an external dependency that is safe to retry as a whole.
func Transient(err error) *Error {
	return &Error{Kind: KindTransient, Message: "service temporarily unavailable", Err: err}
}

// InvalidCredentials never says whether the email or the password was wrong.
func InvalidCredentials() *Error {
	return &Error{Kind: KindUnauthorized, Message: "invalid credentials"}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// KindOf returns the kind of err, or KindInternal when err is not classified.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
