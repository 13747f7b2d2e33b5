package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/noteful-api/internal/model"
	"github.com/iliyamo/noteful-api/internal/repository"
)

// memUsers is an in-memory UserStore.
type memUsers struct {
	mu   sync.Mutex
	byID map[string]model.User
	fail error
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]model.User{}} }

func (m *memUsers) Create(_ context.Context, fullname, username, hash string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	for _, u := range m.byID {
		if u.Username == username {
			return nil, repository.ErrUsernameExists
		}
	}
	u := model.User{ID: uuid.NewString(), Fullname: fullname, Username: username, PasswordHash: hash, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.byID[u.ID] = u
	return &u, nil
}

func (m *memUsers) UsernameTaken(_ context.Context, username, exceptID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == username && u.ID != exceptID {
			return true, nil
		}
	}
	return false, m.fail
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	for _, u := range m.byID {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) Update(_ context.Context, u *model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	m.byID[u.ID] = *u
	out := *u
	return &out, nil
}

func newAuth(users UserStore) *Authenticator {
	return NewAuthenticator(users, "test-secret", time.Hour, bcrypt.MinCost)
}

func TestRegister_HashesAndRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	a := newAuth(users)

	u, err := a.Register(ctx, "Example User", "exampleUser", "examplePass")
	require.NoError(t, err)
	assert.Equal(t, "exampleUser", u.Username)
	assert.NotEqual(t, "examplePass", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("examplePass")))

	_, err = a.Register(ctx, "", "exampleUser", "otherPassword")
	assert.ErrorIs(t, err, repository.ErrUsernameExists)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	a := newAuth(newMemUsers())
	reg, err := a.Register(ctx, "", "exampleUser", "examplePass")
	require.NoError(t, err)

	u, tok, err := a.Login(ctx, "exampleUser", "examplePass")
	require.NoError(t, err)
	assert.Equal(t, reg.ID, u.ID)
	require.NotEmpty(t, tok.Token)

	claims, err := a.Verify(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, claims.User.ID)
	assert.Equal(t, "exampleUser", claims.Subject)

	_, _, err = a.Login(ctx, "exampleUser", "wrongPassword")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, _, err = a.Login(ctx, "nobody", "examplePass")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestLogin_StoreErrorIsNotBadCredentials(t *testing.T) {
	users := newMemUsers()
	users.fail = errors.New("connection reset")
	_, _, err := newAuth(users).Login(context.Background(), "exampleUser", "examplePass")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBadCredentials)
}

func TestVerify_RejectsForeignSecret(t *testing.T) {
	ctx := context.Background()
	a := newAuth(newMemUsers())
	_, err := a.Register(ctx, "", "exampleUser", "examplePass")
	require.NoError(t, err)
	_, tok, err := a.Login(ctx, "exampleUser", "examplePass")
	require.NoError(t, err)

	other := NewAuthenticator(newMemUsers(), "another-secret", time.Hour, bcrypt.MinCost)
	_, err = other.Verify(tok.Token)
	assert.Error(t, err)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	a := newAuth(newMemUsers())
	me, err := a.Register(ctx, "Me", "me", "examplePass")
	require.NoError(t, err)
	other, err := a.Register(ctx, "Other", "other", "examplePass")
	require.NoError(t, err)

	t.Run("foreign id", func(t *testing.T) {
		_, err := a.UpdateProfile(ctx, me.ID, other.ID, ProfileUpdate{})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("username taken", func(t *testing.T) {
		name := "other"
		_, err := a.UpdateProfile(ctx, me.ID, me.ID, ProfileUpdate{Username: &name})
		assert.ErrorIs(t, err, repository.ErrUsernameExists)
	})

	t.Run("rehash and rename", func(t *testing.T) {
		name, pw, full := "renamed", "newPassword1", "  New Name "
		u, err := a.UpdateProfile(ctx, me.ID, me.ID, ProfileUpdate{Username: &name, Password: &pw, Fullname: &full})
		require.NoError(t, err)
		assert.Equal(t, "renamed", u.Username)
		assert.Equal(t, "New Name", u.Fullname)

		_, _, err = a.Login(ctx, "renamed", "newPassword1")
		assert.NoError(t, err)
		_, _, err = a.Login(ctx, "renamed", "examplePass")
		assert.ErrorIs(t, err, ErrBadCredentials)
	})

	t.Run("same username is not a conflict", func(t *testing.T) {
		name := "renamed"
		_, err := a.UpdateProfile(ctx, me.ID, me.ID, ProfileUpdate{Username: &name})
		assert.NoError(t, err)
	})
}
