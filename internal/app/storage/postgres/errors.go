package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	pg "github.com/lib/pq"

	"bankledger/internal/app/apperr"
)

// mapError translates driver errors into apperr kinds so that raw pq detail
// never crosses the storage boundary. Serialization failures and deadlocks
// become the retryable apperr.ErrConflict: the transaction rolled back, the
// caller may re-issue the operation verbatim.
func mapError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}

	var pgErr *pg.Error
	if errors.As(err, &pgErr) {
		code := string(pgErr.Code)
		switch {
		case pgerrcode.IsTransactionRollback(code):
			return apperr.ErrConflict
		case code == pgerrcode.ForeignKeyViolation:
			return apperr.ErrNotFound
		case pgerrcode.IsIntegrityConstraintViolation(code):
			return apperr.ErrConflict
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pg.Error
	return errors.As(err, &pgErr) && string(pgErr.Code) == pgerrcode.UniqueViolation
}
