// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/readtrack/internal/platform/apperr"
	"github.com/taibuivan/readtrack/internal/platform/sec"
	"github.com/taibuivan/readtrack/internal/users/auth"
)

// # Fakes

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func (repo *fakeUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if user, ok := repo.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (repo *fakeUsers) FindByLogin(_ context.Context, login string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, user := range repo.users {
		if strings.EqualFold(user.Email, login) || strings.EqualFold(user.Username, login) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *fakeUsers) Create(_ context.Context, user *auth.User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, existing := range repo.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return apperr.Conflict("Email is already registered")
		}
		if strings.EqualFold(existing.Username, user.Username) {
			return apperr.Conflict("Username is already taken")
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	repo.users[user.ID] = &copied
	return nil
}

func (repo *fakeUsers) count() int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return len(repo.users)
}

// fakeTransactor rolls the fake stores back when the unit of work fails.
type fakeTransactor struct {
	users    *fakeUsers
	profiles *fakeProfiles
}

func (transactor *fakeTransactor) WithinTx(ctx context.Context, fn func(context.Context) error) error {
	transactor.users.mu.Lock()
	users := make(map[string]*auth.User, len(transactor.users.users))
	for id, user := range transactor.users.users {
		users[id] = user
	}
	transactor.users.mu.Unlock()
	provisioned := append([]string(nil), transactor.profiles.provisioned...)

	if err := fn(ctx); err != nil {
		transactor.users.mu.Lock()
		transactor.users.users = users
		transactor.users.mu.Unlock()
		transactor.profiles.provisioned = provisioned
		return err
	}
	return nil
}

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]*auth.Session
}

func (repo *fakeSessions) Create(_ context.Context, session *auth.Session) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	copied := *session
	repo.sessions[session.ID] = &copied
	return nil
}

func (repo *fakeSessions) FindByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, session := range repo.sessions {
		if session.TokenHash == tokenHash {
			copied := *session
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Session")
}

func (repo *fakeSessions) Revoke(_ context.Context, sessionID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if session, ok := repo.sessions[sessionID]; ok {
		session.IsRevoked = true
	}
	return nil
}

func (repo *fakeSessions) RevokeAll(_ context.Context, userID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, session := range repo.sessions {
		if session.UserID == userID {
			session.IsRevoked = true
		}
	}
	return nil
}

func (repo *fakeSessions) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	var removed int64
	for id, session := range repo.sessions {
		if session.ExpiresAt.Before(cutoff) || session.IsRevoked {
			delete(repo.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func (repo *fakeSessions) active(userID string) int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	count := 0
	for _, session := range repo.sessions {
		if session.UserID == userID && !session.IsRevoked {
			count++
		}
	}
	return count
}

func (repo *fakeSessions) expire(tokenHash string) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, session := range repo.sessions {
		if session.TokenHash == tokenHash {
			session.ExpiresAt = time.Now().Add(-time.Minute)
		}
	}
}

type fakeProfiles struct {
	provisioned []string
	err         error
}

func (profiles *fakeProfiles) Provision(_ context.Context, userID string) error {
	if profiles.err != nil {
		return profiles.err
	}
	profiles.provisioned = append(profiles.provisioned, userID)
	return nil
}

type fakeTokens struct{}

func (fakeTokens) GenerateAccessToken(userID, _, role string, _ time.Duration) (string, error) {
	return "access-" + userID + "-" + role, nil
}

type fixture struct {
	users    *fakeUsers
	sessions *fakeSessions
	profiles *fakeProfiles
	service  *auth.Service
}

func newFixture() *fixture {
	f := &fixture{
		users:    &fakeUsers{users: map[string]*auth.User{}},
		sessions: &fakeSessions{sessions: map[string]*auth.Session{}},
		profiles: &fakeProfiles{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	transactor := &fakeTransactor{users: f.users, profiles: f.profiles}
	f.service = auth.NewService(f.users, f.sessions, f.profiles, transactor, fakeTokens{}, logger)
	return f
}

func (f *fixture) register(t *testing.T, username, email string) *auth.User {
	t.Helper()
	user, err := f.service.Register(context.Background(), auth.RegisterInput{
		Username: username,
		Email:    email,
		Password: "correct-horse",
	})
	require.NoError(t, err)
	return user
}

// # Tests

func TestRegister(t *testing.T) {
	tests := []struct {
		name      string
		input     auth.RegisterInput
		wantField string
	}{
		{"short_username", auth.RegisterInput{Username: "ab", Email: "a@b.io", Password: "long-enough"}, auth.FieldUsername},
		{"bad_username", auth.RegisterInput{Username: "has space", Email: "a@b.io", Password: "long-enough"}, auth.FieldUsername},
		{"bad_email", auth.RegisterInput{Username: "reader", Email: "nope", Password: "long-enough"}, auth.FieldEmail},
		{"short_password", auth.RegisterInput{Username: "reader", Email: "a@b.io", Password: "short"}, auth.FieldPassword},
		{"bad_role", auth.RegisterInput{Username: "reader", Email: "a@b.io", Password: "long-enough", Role: "owner"}, "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.service.Register(context.Background(), tt.input)
			appErr := apperr.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, apperr.CodeValidation, appErr.Code)

			fields := make([]string, 0, len(appErr.Details))
			for _, detail := range appErr.Details {
				fields = append(fields, detail.Field)
			}
			assert.Contains(t, fields, tt.wantField)
			assert.Empty(t, f.profiles.provisioned)
		})
	}

	t.Run("creates_member_and_profile", func(t *testing.T) {
		f := newFixture()
		user := f.register(t, "reader", " Reader@Example.com ")

		assert.Equal(t, "reader@example.com", user.Email)
		assert.Equal(t, sec.RoleMember, user.Role)
		assert.NotEqual(t, "correct-horse", user.PasswordHash)
		assert.Equal(t, []string{user.ID}, f.profiles.provisioned)
	})

	t.Run("duplicate_identity", func(t *testing.T) {
		f := newFixture()
		f.register(t, "reader", "reader@example.com")

		_, err := f.service.Register(context.Background(), auth.RegisterInput{
			Username: "READER", Email: "other@example.com", Password: "correct-horse",
		})
		assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
	})

	t.Run("provision_failure", func(t *testing.T) {
		f := newFixture()
		f.profiles.err = errors.New("profile store down")

		input := auth.RegisterInput{Username: "reader", Email: "reader@example.com", Password: "correct-horse"}
		_, err := f.service.Register(context.Background(), input)
		require.Error(t, err)
		assert.False(t, apperr.HasCode(err, apperr.CodeConflict))
		assert.Zero(t, f.users.count(), "the account rolls back with the profile")
		assert.Empty(t, f.profiles.provisioned)

		f.profiles.err = nil
		user, err := f.service.Register(context.Background(), input)
		require.NoError(t, err, "a retry after the outage succeeds")
		assert.Equal(t, 1, f.users.count())
		assert.Equal(t, []string{user.ID}, f.profiles.provisioned)
	})
}

func TestLogin(t *testing.T) {
	f := newFixture()
	user := f.register(t, "reader", "reader@example.com")

	for _, login := range []string{"reader", "READER@example.com"} {
		session, err := f.service.Login(context.Background(), auth.LoginInput{Login: login, Password: "correct-horse"})
		require.NoError(t, err, login)
		assert.Equal(t, "access-"+user.ID+"-member", session.AccessToken)
		assert.NotEmpty(t, session.RefreshToken)
		assert.True(t, session.RefreshTokenExpiresAt.After(time.Now()))

		stored, err := f.sessions.FindByTokenHash(context.Background(), sec.HashToken(session.RefreshToken))
		require.NoError(t, err)
		assert.Equal(t, user.ID, stored.UserID)
	}

	_, err := f.service.Login(context.Background(), auth.LoginInput{Login: "reader", Password: "wrong-password"})
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	_, err = f.service.Login(context.Background(), auth.LoginInput{Login: "ghost", Password: "correct-horse"})
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	_, err = f.service.Login(context.Background(), auth.LoginInput{Login: "reader"})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

func TestRefreshSessionRotation(t *testing.T) {
	f := newFixture()
	user := f.register(t, "reader", "reader@example.com")

	first, err := f.service.Login(context.Background(), auth.LoginInput{Login: "reader", Password: "correct-horse"})
	require.NoError(t, err)

	second, err := f.service.RefreshSession(context.Background(), first.RefreshToken, "agent", "127.0.0.1")
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Equal(t, 1, f.sessions.active(user.ID))

	// Replaying the rotated token revokes the whole family.
	_, err = f.service.RefreshSession(context.Background(), first.RefreshToken, "agent", "127.0.0.1")
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
	assert.Equal(t, 0, f.sessions.active(user.ID))

	_, err = f.service.RefreshSession(context.Background(), second.RefreshToken, "agent", "127.0.0.1")
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
}

func TestRefreshSessionExpired(t *testing.T) {
	f := newFixture()
	f.register(t, "reader", "reader@example.com")

	session, err := f.service.Login(context.Background(), auth.LoginInput{Login: "reader", Password: "correct-horse"})
	require.NoError(t, err)
	f.sessions.expire(sec.HashToken(session.RefreshToken))

	_, err = f.service.RefreshSession(context.Background(), session.RefreshToken, "", "")
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	_, err = f.service.RefreshSession(context.Background(), "never-issued", "", "")
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
}

func TestLogoutAndPurge(t *testing.T) {
	f := newFixture()
	user := f.register(t, "reader", "reader@example.com")

	kept, err := f.service.Login(context.Background(), auth.LoginInput{Login: "reader", Password: "correct-horse"})
	require.NoError(t, err)
	dropped, err := f.service.Login(context.Background(), auth.LoginInput{Login: "reader", Password: "correct-horse"})
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(context.Background(), dropped.RefreshToken))
	require.NoError(t, f.service.Logout(context.Background(), dropped.RefreshToken))
	require.NoError(t, f.service.Logout(context.Background(), "unknown"))
	assert.Equal(t, 1, f.sessions.active(user.ID))

	removed, err := f.service.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = f.service.RefreshSession(context.Background(), kept.RefreshToken, "", "")
	assert.NoError(t, err)
}
