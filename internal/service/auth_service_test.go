package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plansey/internal/model"
)

func TestRegisterCreatesRoleRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		email string
		role  model.Role
	}{
		{"planner@example.com", model.RolePlanner},
		{"vendor@example.com", model.RoleVendor},
		{"story@example.com", model.RoleStoryteller},
	}
	for _, tc := range cases {
		user := env.register(t, tc.email, tc.role)
		loaded, err := env.users.FindByID(ctx, user.ID)
		require.NoError(t, err)

		assert.True(t, loaded.IsActive)
		assert.True(t, loaded.IsFirstLogin)
		assert.Equal(t, tc.role, loaded.DefaultAccount)
		assert.NotEqual(t, "correct horse", loaded.PasswordHash)
		assert.Equal(t, tc.role == model.RolePlanner, loaded.Planner != nil)
		assert.Equal(t, tc.role == model.RoleVendor, loaded.Vendor != nil)
		assert.Equal(t, tc.role == model.RoleStoryteller, loaded.Storyteller != nil)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := map[string]RegisterInput{
		"missing email":  {Password: "correct horse", FirstName: "A", Role: model.RolePlanner},
		"bad email":      {Email: "nope", Password: "correct horse", FirstName: "A", Role: model.RolePlanner},
		"short password": {Email: "a@b.io", Password: "short", FirstName: "A", Role: model.RolePlanner},
		"unknown role":   {Email: "a@b.io", Password: "correct horse", FirstName: "A", Role: "admin"},
		"missing name":   {Email: "a@b.io", Password: "correct horse", Role: model.RolePlanner},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, in)
			assert.ErrorIs(t, err, ErrBadArguments)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "anna@example.com", model.RolePlanner)

	_, err := env.auth.Register(context.Background(), RegisterInput{
		Email:     "ANNA@example.com",
		Password:  "another secret",
		FirstName: "Other",
		Role:      model.RoleVendor,
	})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestLoginAndParseToken(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "anna@example.com", model.RoleVendor)

	session, err := env.auth.Login(context.Background(), " Anna@Example.com ", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, user.ID, session.User.ID)

	identity, err := env.auth.ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, model.RoleVendor, identity.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "anna@example.com", model.RolePlanner)
	ctx := context.Background()

	_, err := env.auth.Login(ctx, "anna@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = env.auth.Login(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = env.auth.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrBadArguments)
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "anna@example.com", model.RolePlanner)
	require.NoError(t, env.db.Model(&model.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)

	_, err := env.auth.Login(context.Background(), "anna@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestParseTokenRejectsExpiredAndForeign(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "anna@example.com", model.RolePlanner)

	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	env.auth.now = func() time.Time { return issuedAt }
	session, err := env.auth.Login(context.Background(), "anna@example.com", "correct horse")
	require.NoError(t, err)

	env.auth.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	_, err = env.auth.ParseToken(session.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	env.auth.now = func() time.Time { return issuedAt }
	other := NewAuthService(env.users, "another-secret-of-16+", time.Hour, 4)
	other.now = env.auth.now
	_, err = other.ParseToken(session.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = env.auth.ParseToken("")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
