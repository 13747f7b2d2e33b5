// Package service holds the application logic that sits between the HTTP
// handlers and the repositories: credential checks, token issuance and the
// activity event publisher.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/noteful-api/internal/model"
	"github.com/iliyamo/noteful-api/internal/repository"
	"github.com/iliyamo/noteful-api/internal/utils"
)

// ErrBadCredentials covers both an unknown username and a wrong password so
// callers cannot tell which one failed.
var ErrBadCredentials = errors.New("bad credentials")

// UserStore is the subset of the credential store the Authenticator needs.
// *repository.UserRepo satisfies it.
type UserStore interface {
	Create(ctx context.Context, fullname, username, passwordHash string) (*model.User, error)
	UsernameTaken(ctx context.Context, username, exceptID string) (bool, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	Update(ctx context.Context, u *model.User) (*model.User, error)
}

// Authenticator registers users, checks passwords and issues and verifies
// auth tokens.  It holds no per-session state.
type Authenticator struct {
	Users      UserStore
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
}

func NewAuthenticator(users UserStore, secret string, ttl time.Duration, cost int) *Authenticator {
	return &Authenticator{Users: users, Secret: secret, TokenTTL: ttl, BcryptCost: cost}
}

// Register stores a new user.  The username must be free; the unique index
// backs up the pre-check when two registrations race, and both paths return
// repository.ErrUsernameExists.
func (a *Authenticator) Register(ctx context.Context, fullname, username, password string) (*model.User, error) {
	taken, err := a.Users.UsernameTaken(ctx, username, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, repository.ErrUsernameExists
	}
	hash, err := utils.HashPassword(password, a.BcryptCost)
	if err != nil {
		return nil, err
	}
	return a.Users.Create(ctx, fullname, username, hash)
}

// Login checks a username and password and returns the user with a fresh
// token.  An unknown user still costs one bcrypt comparison.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*model.User, utils.AuthToken, error) {
	u, err := a.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.BurnCompare(password)
			return nil, utils.AuthToken{}, ErrBadCredentials
		}
		return nil, utils.AuthToken{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, utils.AuthToken{}, ErrBadCredentials
	}
	tok, err := a.issue(u)
	if err != nil {
		return nil, utils.AuthToken{}, err
	}
	return u, tok, nil
}

func (a *Authenticator) issue(u *model.User) (utils.AuthToken, error) {
	return utils.NewAuthToken(a.Secret, utils.TokenUser{ID: u.ID, Username: u.Username, Fullname: u.Fullname}, a.TokenTTL)
}

// Verify validates a raw bearer token and returns its claims.  It never
// touches the store.
func (a *Authenticator) Verify(raw string) (*utils.Claims, error) {
	return utils.ParseAuthToken(a.Secret, raw)
}

// ProfileUpdate carries the optional fields of a profile change.  Nil means
// keep the current value.
type ProfileUpdate struct {
	Fullname *string
	Username *string
	Password *string
}

// UpdateProfile changes the caller's own record.  Any id other than
// callerID is reported as repository.ErrNotFound.  A new password is always
// re-hashed.
func (a *Authenticator) UpdateProfile(ctx context.Context, callerID, id string, p ProfileUpdate) (*model.User, error) {
	if id != callerID {
		return nil, repository.ErrNotFound
	}
	u, err := a.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Fullname != nil {
		u.Fullname = strings.TrimSpace(*p.Fullname)
	}
	if p.Username != nil && *p.Username != u.Username {
		taken, err := a.Users.UsernameTaken(ctx, *p.Username, u.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, repository.ErrUsernameExists
		}
		u.Username = *p.Username
	}
	if p.Password != nil {
		hash, err := utils.HashPassword(*p.Password, a.BcryptCost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	return a.Users.Update(ctx, u)
}
