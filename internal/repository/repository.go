package repository

import (
	"context"
	"database/sql"
	"strings"
)

// Repository is the owner-scoped CRUD contract shared by folders, tags and
// notes.  T is the entity returned to callers and F the set of writable
// fields.  Every method filters by ownerID; a record owned by another user
// is reported as ErrNotFound, exactly like a missing one.
//
// Delete returns how many dependent references were cleared alongside the
// record (notes unfiled from a folder, notes untagged from a tag).
type Repository[T any, F any] interface {
	List(ctx context.Context, ownerID, searchTerm string) ([]T, error)
	Get(ctx context.Context, ownerID, id string) (T, error)
	Create(ctx context.Context, ownerID string, fields F) (T, error)
	Update(ctx context.Context, ownerID, id string, fields F) (T, error)
	Delete(ctx context.Context, ownerID, id string) (int64, error)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn inside a transaction, committing when fn succeeds and
// rolling back otherwise.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()
	return fn(tx)
}

// likePattern turns a free-text search term into a case-insensitive
// substring pattern with LIKE metacharacters escaped.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// requireAffected maps a zero-row UPDATE or DELETE to ErrNotFound.  The
// DSN sets clientFoundRows so an UPDATE that matches but changes nothing
// still reports one row.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
