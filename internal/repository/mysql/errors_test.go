package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"

	"github.com/Austinpowers7/storehive-backend/internal/repository"
)

func TestMapError(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, repository.ErrNotFound},
		{"duplicate entry", &gomysql.MySQLError{Number: erDupEntry, Message: "Duplicate entry"}, repository.ErrConflict},
		{"missing parent row", &gomysql.MySQLError{Number: erNoReferencedRow}, repository.ErrNotFound},
		{"stock check", &gomysql.MySQLError{Number: erCheckConstraintFail}, repository.ErrInsufficientStock},
		{"lock wait", &gomysql.MySQLError{Number: erLockWaitTimeout}, repository.ErrUnavailable},
		{"deadlock", &gomysql.MySQLError{Number: erLockDeadlock}, repository.ErrUnavailable},
		{"bad conn", driver.ErrBadConn, repository.ErrUnavailable},
		{"invalid conn", gomysql.ErrInvalidConn, repository.ErrUnavailable},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), repository.ErrUnavailable},
		{"canceled", context.Canceled, repository.ErrUnavailable},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tc.err), tc.want)
		})
	}
}

func TestMapErrorPassesThroughUnknown(t *testing.T) {
	assert.NoError(t, mapError(nil))

	syntax := &gomysql.MySQLError{Number: 1064, Message: "syntax error"}
	assert.Same(t, syntax, mapError(syntax))

	other := errors.New("something else")
	assert.Equal(t, other, mapError(other))
}
