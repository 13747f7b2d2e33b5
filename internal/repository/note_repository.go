package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/noteful-api/internal/model"
)

const noteColumns = "id, user_id, folder_id, title, content, created_at, updated_at"

// NoteRepo encapsulates all database queries related to notes and their
// tag links.
type NoteRepo struct {
	db    *sql.DB
	newID func() string
}

var _ Repository[*model.Note, model.NoteFields] = (*NoteRepo)(nil)

// NewNoteRepo constructs a NoteRepo with the provided DB handle.
func NewNoteRepo(db *sql.DB) *NoteRepo {
	return &NoteRepo{db: db, newID: uuid.NewString}
}

func scanNote(s interface{ Scan(...any) error }) (*model.Note, error) {
	var (
		n      model.Note
		folder sql.NullString
	)
	if err := s.Scan(&n.ID, &n.UserID, &folder, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	if folder.Valid {
		f := folder.String
		n.FolderID = &f
	}
	n.Tags = []string{}
	return &n, nil
}

// List returns the owner's notes in creation order.  A non-empty searchTerm
// keeps only notes whose title or content contains it, ignoring case.
func (r *NoteRepo) List(ctx context.Context, ownerID, searchTerm string) ([]*model.Note, error) {
	query := "SELECT " + noteColumns + " FROM notes WHERE user_id = ?"
	args := []any{ownerID}
	if searchTerm != "" {
		p := likePattern(searchTerm)
		query += " AND (LOWER(title) LIKE ? OR LOWER(content) LIKE ?)"
		args = append(args, p, p)
	}
	query += " ORDER BY created_at, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := attachTags(ctx, r.db, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one note owned by ownerID or returns ErrNotFound.
func (r *NoteRepo) Get(ctx context.Context, ownerID, id string) (*model.Note, error) {
	return getNote(ctx, r.db, ownerID, id)
}

func getNote(ctx context.Context, q querier, ownerID, id string) (*model.Note, error) {
	n, err := scanNote(q.QueryRowContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE id = ? AND user_id = ?", id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := attachTags(ctx, q, []*model.Note{n}); err != nil {
		return nil, err
	}
	return n, nil
}

// Create inserts a note and its tag links in one transaction.  The folder
// and every tag must belong to ownerID, otherwise a *ReferenceError is
// returned and nothing is written.
func (r *NoteRepo) Create(ctx context.Context, ownerID string, f model.NoteFields) (*model.Note, error) {
	id := r.newID()
	var tagIDs []string
	if f.Tags != nil {
		tagIDs = uniqueIDs(*f.Tags)
	}
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := checkRefs(ctx, tx, ownerID, f.FolderID, tagIDs); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO notes (id, user_id, folder_id, title, content) VALUES (?, ?, ?, ?, ?)",
			id, ownerID, nullable(f.FolderID), deref(f.Title), deref(f.Content)); err != nil {
			return err
		}
		return insertTags(ctx, tx, id, tagIDs)
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, ownerID, id)
}

// Update applies the provided fields only.  Tags, when provided, replace
// the whole set.  ClearFolder unfiles the note.
func (r *NoteRepo) Update(ctx context.Context, ownerID, id string, f model.NoteFields) (*model.Note, error) {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var found string
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM notes WHERE id = ? AND user_id = ? FOR UPDATE", id, ownerID).Scan(&found)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		var folderRef *string
		if !f.ClearFolder {
			folderRef = f.FolderID
		}
		var tagIDs []string
		if f.Tags != nil {
			tagIDs = uniqueIDs(*f.Tags)
		}
		if err := checkRefs(ctx, tx, ownerID, folderRef, tagIDs); err != nil {
			return err
		}

		var (
			sets []string
			args []any
		)
		if f.Title != nil {
			sets = append(sets, "title = ?")
			args = append(args, *f.Title)
		}
		if f.Content != nil {
			sets = append(sets, "content = ?")
			args = append(args, *f.Content)
		}
		switch {
		case f.ClearFolder:
			sets = append(sets, "folder_id = NULL")
		case f.FolderID != nil:
			sets = append(sets, "folder_id = ?")
			args = append(args, *f.FolderID)
		}
		if len(sets) == 0 && f.Tags == nil {
			return nil
		}
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP(6)")
		args = append(args, id, ownerID)
		if _, err := tx.ExecContext(ctx,
			"UPDATE notes SET "+strings.Join(sets, ", ")+" WHERE id = ? AND user_id = ?", args...); err != nil {
			return err
		}

		if f.Tags == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM note_tags WHERE note_id = ?", id); err != nil {
			return err
		}
		return insertTags(ctx, tx, id, tagIDs)
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, ownerID, id)
}

// Delete removes an owned note.  Its tag links go with it through the
// note_tags foreign key; folders and tags are untouched.
func (r *NoteRepo) Delete(ctx context.Context, ownerID, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return 0, err
	}
	return 0, requireAffected(res)
}

// checkRefs verifies that the folder and tags exist for ownerID.
func checkRefs(ctx context.Context, q querier, ownerID string, folderID *string, tagIDs []string) error {
	if folderID != nil {
		var n int
		if err := q.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM folders WHERE id = ? AND user_id = ?", *folderID, ownerID).Scan(&n); err != nil {
			return err
		}
		if n == 0 {
			return &ReferenceError{Field: "folderId"}
		}
	}
	if len(tagIDs) > 0 {
		args := make([]any, 0, len(tagIDs)+1)
		args = append(args, ownerID)
		for _, id := range tagIDs {
			args = append(args, id)
		}
		var n int
		if err := q.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM tags WHERE user_id = ? AND id IN ("+placeholders(len(tagIDs))+")", args...).Scan(&n); err != nil {
			return err
		}
		if n != len(tagIDs) {
			return &ReferenceError{Field: "tags"}
		}
	}
	return nil
}

// insertTags links tagIDs to a note, keeping their order in position.
func insertTags(ctx context.Context, q querier, noteID string, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}
	values := make([]string, 0, len(tagIDs))
	args := make([]any, 0, len(tagIDs)*3)
	for i, tagID := range tagIDs {
		values = append(values, "(?, ?, ?)")
		args = append(args, noteID, tagID, i)
	}
	_, err := q.ExecContext(ctx,
		"INSERT INTO note_tags (note_id, tag_id, position) VALUES "+strings.Join(values, ", "), args...)
	return err
}

// attachTags fills Tags on each note with a single query.
func attachTags(ctx context.Context, q querier, notes []*model.Note) error {
	if len(notes) == 0 {
		return nil
	}
	byID := make(map[string]*model.Note, len(notes))
	args := make([]any, 0, len(notes))
	for _, n := range notes {
		byID[n.ID] = n
		args = append(args, n.ID)
	}
	rows, err := q.QueryContext(ctx,
		"SELECT note_id, tag_id FROM note_tags WHERE note_id IN ("+placeholders(len(notes))+") ORDER BY note_id, position", args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var noteID, tagID string
		if err := rows.Scan(&noteID, &tagID); err != nil {
			return err
		}
		if n, ok := byID[noteID]; ok {
			n.Tags = append(n.Tags, tagID)
		}
	}
	return rows.Err()
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
