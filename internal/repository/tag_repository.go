package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/noteful-api/internal/model"
)

var tags = namedTable{table: "tags", orderBy: "created_at, id"}

// TagRepo encapsulates all database queries related to tags.
type TagRepo struct {
	db    *sql.DB
	newID func() string
}

var _ Repository[*model.Tag, model.TagFields] = (*TagRepo)(nil)

// NewTagRepo constructs a TagRepo with the provided DB handle.
func NewTagRepo(db *sql.DB) *TagRepo {
	return &TagRepo{db: db, newID: uuid.NewString}
}

func toTag(r namedRow) *model.Tag {
	return &model.Tag{ID: r.ID, Name: r.Name, UserID: r.UserID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

// List returns the owner's tags in creation order.
func (r *TagRepo) List(ctx context.Context, ownerID, searchTerm string) ([]*model.Tag, error) {
	rows, err := tags.list(ctx, r.db, ownerID, searchTerm)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Tag, 0, len(rows))
	for _, row := range rows {
		out = append(out, toTag(row))
	}
	return out, nil
}

// Get fetches one tag owned by ownerID or returns ErrNotFound.
func (r *TagRepo) Get(ctx context.Context, ownerID, id string) (*model.Tag, error) {
	row, err := tags.get(ctx, r.db, ownerID, id)
	if err != nil {
		return nil, err
	}
	return toTag(row), nil
}

// Create inserts a tag.  A name already used by the same owner yields
// ErrDuplicate.
func (r *TagRepo) Create(ctx context.Context, ownerID string, f model.TagFields) (*model.Tag, error) {
	row, err := tags.insert(ctx, r.db, r.newID(), ownerID, deref(f.Name))
	if err != nil {
		return nil, err
	}
	return toTag(row), nil
}

// Update renames a tag when a name is provided.
func (r *TagRepo) Update(ctx context.Context, ownerID, id string, f model.TagFields) (*model.Tag, error) {
	if f.Name == nil {
		return r.Get(ctx, ownerID, id)
	}
	row, err := tags.rename(ctx, r.db, ownerID, id, *f.Name)
	if err != nil {
		return nil, err
	}
	return toTag(row), nil
}

// Delete unlinks the tag from every note and then removes the tag.  Both
// writes run in one transaction in that order (note_tags references tags,
// so the unlink must come first); a failure in either rolls back both and
// no note is left pointing at a deleted tag.  It returns the number of
// notes the tag was removed from.
func (r *TagRepo) Delete(ctx context.Context, ownerID, id string) (int64, error) {
	var unlinked int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var found string
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM tags WHERE id = ? AND user_id = ? FOR UPDATE", id, ownerID).Scan(&found)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM note_tags WHERE tag_id = ?", id)
		if err != nil {
			return err
		}
		if unlinked, err = res.RowsAffected(); err != nil {
			return err
		}
		return tags.remove(ctx, tx, ownerID, id)
	})
	if err != nil {
		return 0, err
	}
	return unlinked, nil
}
