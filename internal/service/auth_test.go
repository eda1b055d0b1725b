package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupLogin(t *testing.T) {
	ctx := context.Background()
	s := NewAuthService(openTestDB(t))

	u, err := s.Signup(ctx, " Ann@Example.com ", "correct horse", "Ann")
	require.NoError(t, err)
	assert.NotEmpty(t, u.UID)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.NotEqual(t, "correct horse", u.Password)
	assert.False(t, u.EmailVerified)

	_, err = s.Signup(ctx, "ann@example.com", "another one", "")
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, err := s.Login(ctx, "ANN@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.UID, got.UID)

	_, err = s.Login(ctx, "ann@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Login(ctx, "nobody@example.com", "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, s.MarkVerified(ctx, u.UID))
	got, err = s.Get(ctx, u.UID)
	require.NoError(t, err)
	assert.True(t, got.EmailVerified)

	assert.Error(t, s.MarkVerified(ctx, "missing"))
}

func TestSetRole(t *testing.T) {
	ctx := context.Background()
	s := NewAuthService(openTestDB(t))

	u, err := s.Signup(ctx, "carer@example.com", "password123", "")
	require.NoError(t, err)
	assert.Equal(t, "member", u.Role)

	require.NoError(t, s.SetRole(ctx, u.UID, "caregiver"))
	got, err := s.Get(ctx, u.UID)
	require.NoError(t, err)
	assert.Equal(t, "caregiver", got.Role)

	assert.Error(t, s.SetRole(ctx, "missing", "caregiver"))
}
