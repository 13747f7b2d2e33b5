// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver errors. Every query in this package is scoped to an
// owner, so ErrNotFound also covers records that exist but belong to
// someone else.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when no record owned by the caller matches.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a unique
// index, e.g. a second folder with the same name for one owner.
var ErrDuplicate = errors.New("duplicate")

// ErrInvalidReference is returned when a note points at a folder or tag
// that does not exist for the same owner.
var ErrInvalidReference = errors.New("invalid reference")

// ReferenceError names the field holding the bad reference.  It unwraps to
// ErrInvalidReference.
type ReferenceError struct {
	Field string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("invalid reference in %s", e.Field)
}

func (e *ReferenceError) Unwrap() error { return ErrInvalidReference }

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a unique-index violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
