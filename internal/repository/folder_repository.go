package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/noteful-api/internal/model"
)

var folders = namedTable{table: "folders", orderBy: "name, id"}

// FolderRepo encapsulates all database queries related to folders.  It
// depends on a sql.DB connection which should be configured elsewhere.
type FolderRepo struct {
	db    *sql.DB
	newID func() string
}

var _ Repository[*model.Folder, model.FolderFields] = (*FolderRepo)(nil)

// NewFolderRepo constructs a FolderRepo with the provided DB handle.
func NewFolderRepo(db *sql.DB) *FolderRepo {
	return &FolderRepo{db: db, newID: uuid.NewString}
}

func toFolder(r namedRow) *model.Folder {
	return &model.Folder{ID: r.ID, Name: r.Name, UserID: r.UserID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

// List returns the owner's folders ordered by name.
func (r *FolderRepo) List(ctx context.Context, ownerID, searchTerm string) ([]*model.Folder, error) {
	rows, err := folders.list(ctx, r.db, ownerID, searchTerm)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Folder, 0, len(rows))
	for _, row := range rows {
		out = append(out, toFolder(row))
	}
	return out, nil
}

// Get fetches one folder owned by ownerID or returns ErrNotFound.
func (r *FolderRepo) Get(ctx context.Context, ownerID, id string) (*model.Folder, error) {
	row, err := folders.get(ctx, r.db, ownerID, id)
	if err != nil {
		return nil, err
	}
	return toFolder(row), nil
}

// Create inserts a folder.  A name already used by the same owner yields
// ErrDuplicate.
func (r *FolderRepo) Create(ctx context.Context, ownerID string, f model.FolderFields) (*model.Folder, error) {
	row, err := folders.insert(ctx, r.db, r.newID(), ownerID, deref(f.Name))
	if err != nil {
		return nil, err
	}
	return toFolder(row), nil
}

// Update renames a folder when a name is provided.
func (r *FolderRepo) Update(ctx context.Context, ownerID, id string, f model.FolderFields) (*model.Folder, error) {
	if f.Name == nil {
		return r.Get(ctx, ownerID, id)
	}
	row, err := folders.rename(ctx, r.db, ownerID, id, *f.Name)
	if err != nil {
		return nil, err
	}
	return toFolder(row), nil
}

// Delete removes a folder and, in the same transaction, clears folder_id on
// the owner's notes that were filed in it.  It returns the number of notes
// unfiled.
func (r *FolderRepo) Delete(ctx context.Context, ownerID, id string) (int64, error) {
	var unfiled int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE notes SET folder_id = NULL WHERE folder_id = ? AND user_id = ?", id, ownerID)
		if err != nil {
			return err
		}
		if unfiled, err = res.RowsAffected(); err != nil {
			return err
		}
		return folders.remove(ctx, tx, ownerID, id)
	})
	if err != nil {
		return 0, err
	}
	return unfiled, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
