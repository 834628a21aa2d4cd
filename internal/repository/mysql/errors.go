package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/Austinpowers7/storehive-backend/internal/repository"
)

// MySQL server error numbers the store distinguishes.
const (
	erDupEntry            = 1062
	erNoReferencedRow     = 1452
	erLockWaitTimeout     = 1205
	erLockDeadlock        = 1213
	erCheckConstraintFail = 3819
)

// mapError translates driver errors into the repository sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}

	var myErr *gomysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case erDupEntry:
			return fmt.Errorf("%w: %s", repository.ErrConflict, myErr.Message)
		case erNoReferencedRow:
			return fmt.Errorf("%w: %s", repository.ErrNotFound, myErr.Message)
		case erCheckConstraintFail:
			// stock >= 0 is the only check constraint in the schema
			return fmt.Errorf("%w: %s", repository.ErrInsufficientStock, myErr.Message)
		case erLockWaitTimeout, erLockDeadlock:
			return fmt.Errorf("%w: %s", repository.ErrUnavailable, myErr.Message)
		}
		return err
	}

	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, gomysql.ErrInvalidConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}

	return err
}
