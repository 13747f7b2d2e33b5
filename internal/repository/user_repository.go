package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/noteful-api/internal/model"
)

// UserRepo is the credential store.  It persists users with their bcrypt
// hash; hashing itself happens in the caller.
type UserRepo struct {
	DB    *sql.DB
	newID func() string
}

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db, newID: uuid.NewString} }

var ErrUsernameExists = errors.New("username already exists")

const userColumns = "id, fullname, username, password_hash, created_at, updated_at"

func scanUser(s interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.Fullname, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a user and returns the stored record.
func (r *UserRepo) Create(ctx context.Context, fullname, username, passwordHash string) (*model.User, error) {
	id := r.newID()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, fullname, username, password_hash) VALUES (?,?,?,?)",
		id, strings.TrimSpace(fullname), username, passwordHash)
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// UsernameTaken reports whether another user already holds username.
// exceptID excludes the caller's own record on profile updates.
func (r *UserRepo) UsernameTaken(ctx context.Context, username, exceptID string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE username=? AND id<>?", username, exceptID).Scan(&n)
	return n > 0, err
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// Update writes fullname, username and password hash back.
func (r *UserRepo) Update(ctx context.Context, u *model.User) (*model.User, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET fullname=?, username=?, password_hash=? WHERE id=?",
		u.Fullname, u.Username, u.PasswordHash, u.ID)
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, u.ID)
}
