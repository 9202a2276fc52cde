package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
)

func TestAuthRegisterAndLogin(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	user, err := e.auth.Register(ctx, RegisterInput{
		Handle:   "meera",
		Email:    "  Meera@Example.com ",
		Password: "carromking",
	})
	require.NoError(t, err)
	assert.Equal(t, "meera@example.com", user.Email)
	assert.Equal(t, "meera", user.DisplayName)
	assert.Equal(t, models.RolePlayer, user.Role)
	assert.Empty(t, user.PasswordHash)

	logged, err := e.auth.Login(ctx, LoginInput{Email: "MEERA@example.com", Password: "carromking"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.Empty(t, logged.PasswordHash)

	_, err = e.auth.Login(ctx, LoginInput{Email: "meera@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = e.auth.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "carromking"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	got, err := e.auth.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "meera", got.Handle)

	_, err = e.auth.GetUser(ctx, 404)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthRegister_AdminEmail(t *testing.T) {
	e := newEnv()
	user, err := e.auth.Register(context.Background(), RegisterInput{
		Handle:   "td",
		Email:    "TD@example.com",
		Password: "password1",
		Role:     models.RoleViewer,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestAuthRegister_Rejected(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, err := e.auth.Register(ctx, RegisterInput{Handle: "a", Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)

	cases := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{"short password", RegisterInput{Handle: "b", Email: "b@example.com", Password: "short"}, ErrPasswordTooShort},
		{"bad email", RegisterInput{Handle: "b", Email: "not-an-email", Password: "password1"}, ErrValidation},
		{"missing handle", RegisterInput{Email: "b@example.com", Password: "password1"}, ErrValidation},
		{"self-assigned admin", RegisterInput{Handle: "b", Email: "b@example.com", Password: "password1", Role: models.RoleAdmin}, ErrForbiddenOperation},
		{"duplicate email", RegisterInput{Handle: "b", Email: "A@example.com", Password: "password1"}, ErrEmailConflict},
		{"duplicate handle", RegisterInput{Handle: "a", Email: "b@example.com", Password: "password1"}, ErrHandleConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.auth.Register(ctx, tc.input)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
