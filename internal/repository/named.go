package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// namedRow is the shared shape of folders and tags: a name unique per
// owner plus timestamps.
type namedRow struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// namedTable holds the queries common to the folders and tags tables.  Only
// the table name and list ordering differ between the two.
type namedTable struct {
	table   string
	orderBy string
}

func (t namedTable) columns() string {
	return "id, user_id, name, created_at, updated_at"
}

func scanNamed(s interface{ Scan(...any) error }) (namedRow, error) {
	var r namedRow
	err := s.Scan(&r.ID, &r.UserID, &r.Name, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

// list returns every row owned by ownerID, optionally narrowed to names
// containing term (case-insensitive).
func (t namedTable) list(ctx context.Context, q querier, ownerID, term string) ([]namedRow, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE user_id = ?", t.columns(), t.table)
	args := []any{ownerID}
	if term != "" {
		query += " AND LOWER(name) LIKE ?"
		args = append(args, likePattern(term))
	}
	query += " ORDER BY " + t.orderBy

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]namedRow, 0)
	for rows.Next() {
		r, err := scanNamed(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// get fetches one row by id for the owner, or ErrNotFound.
func (t namedTable) get(ctx context.Context, q querier, ownerID, id string) (namedRow, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? AND user_id = ?", t.columns(), t.table)
	r, err := scanNamed(q.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return namedRow{}, ErrNotFound
		}
		return namedRow{}, err
	}
	return r, nil
}

// insert stores a new row and reads it back so defaulted timestamps are
// populated.
func (t namedTable) insert(ctx context.Context, q querier, id, ownerID, name string) (namedRow, error) {
	query := fmt.Sprintf("INSERT INTO %s (id, user_id, name) VALUES (?, ?, ?)", t.table)
	if _, err := q.ExecContext(ctx, query, id, ownerID, name); err != nil {
		if isDuplicate(err) {
			return namedRow{}, ErrDuplicate
		}
		return namedRow{}, err
	}
	return t.get(ctx, q, ownerID, id)
}

// rename changes the name of an owned row.
func (t namedTable) rename(ctx context.Context, q querier, ownerID, id, name string) (namedRow, error) {
	query := fmt.Sprintf("UPDATE %s SET name = ? WHERE id = ? AND user_id = ?", t.table)
	res, err := q.ExecContext(ctx, query, name, id, ownerID)
	if err != nil {
		if isDuplicate(err) {
			return namedRow{}, ErrDuplicate
		}
		return namedRow{}, err
	}
	if err := requireAffected(res); err != nil {
		return namedRow{}, err
	}
	return t.get(ctx, q, ownerID, id)
}

// remove deletes an owned row.
func (t namedTable) remove(ctx context.Context, q querier, ownerID, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ? AND user_id = ?", t.table)
	res, err := q.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
