// Package service implements the business operations of storehive on top of
// the transactional data store.
package service

import (
	"errors"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Austinpowers7/storehive-backend/internal/apperr"
	"github.com/Austinpowers7/storehive-backend/internal/repository"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// fail classifies err for the caller. Errors that are already classified pass
// through unchanged; unknown errors are logged and become internal errors.
func fail(err error, op string) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, repository.ErrUnavailable):
		logger.Error().Err(err).Msgf("Data store unavailable while %s", op)
		return apperr.Transient(err)
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("resource not found")
	case errors.Is(err, repository.ErrConflict):
		return apperr.Conflict("resource already exists")
	case errors.Is(err, repository.ErrInsufficientStock):
		return &apperr.Error{Kind: apperr.KindInsufficientStock, Message: "insufficient stock", Err: err}
	}

	logger.Error().Err(err).Msgf("Error %s", op)
	return apperr.Internal(err)
}

// missingFields returns a validation error naming the empty fields, or nil.
func missingFields(fields ...[2]string) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			missing = append(missing, f[0])
		}
	}
	if len(missing) > 0 {
		return apperr.Validationf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
