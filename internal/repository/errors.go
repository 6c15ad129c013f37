// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// auction engine and handlers to distinguish between different failure
// scenarios without depending on database driver errors. Entity-specific
// not-found sentinels live next to their repository.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrConflict is returned when an optimistic write loses the race
// against a concurrent writer, such as two bids advancing the same
// auction's current_bid. Callers may re-validate against fresh state
// and retry a bounded number of times.
var ErrConflict = errors.New("conflict")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into an HTTP 403
// response.
var ErrForbidden = errors.New("forbidden")

// mysqlDuplicateEntry is MySQL error 1062 (ER_DUP_ENTRY), raised when an
// insert violates a unique index.
const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is the driver's unique-constraint
// violation. Inserts pre-check for an existing row to give a clean
// error message, but the pre-check is not atomic with the insert, so
// the unique index stays the authority and its violation is mapped the
// same way.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
