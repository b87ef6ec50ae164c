package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-cd/internal/application/dto"
	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/internal/infrastructure/memory"
	"github.com/jhoicas/estoque-cd/pkg/jwt"
)

const secret = "test-secret"

func newAuth() *AuthUseCase {
	store := memory.NewSeeded()
	return NewAuthUseCase(store.Users(), store.Repos().Registry, JWTConfig{Secret: secret, ExpMinutes: 5, Issuer: "test"})
}

func TestCreateUserAndLogin(t *testing.T) {
	uc := newAuth()
	ctx := context.Background()

	u, err := uc.CreateUser(ctx, dto.CreateUserRequest{Username: "alice", Password: "password1", Role: "store", Store: "mdc - carioca"})
	require.NoError(t, err)
	assert.Equal(t, "MDC - Carioca", u.Store)
	assert.True(t, u.Active)

	resp, err := uc.Login(ctx, dto.LoginRequest{Username: "alice", Password: "password1"})
	require.NoError(t, err)
	id, err := jwt.Parse(secret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Username)
	assert.Equal(t, "store", id.Role)
	assert.Equal(t, "MDC - Carioca", id.Store)
}

func TestLogin_Failures(t *testing.T) {
	uc := newAuth()
	ctx := context.Background()
	u, err := uc.CreateUser(ctx, dto.CreateUserRequest{Username: "bob", Password: "password1", Role: "cd"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "bob", Password: "wrong-pass"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{Username: "ghost", Password: "password1"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	require.NoError(t, uc.DeactivateUser(ctx, u.ID))
	_, err = uc.Login(ctx, dto.LoginRequest{Username: "bob", Password: "password1"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestIsActive(t *testing.T) {
	uc := newAuth()
	ctx := context.Background()
	u, err := uc.CreateUser(ctx, dto.CreateUserRequest{Username: "carol", Password: "password1", Role: "cd"})
	require.NoError(t, err)

	active, err := uc.IsActive(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, uc.DeactivateUser(ctx, u.ID))
	active, err = uc.IsActive(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, active)

	active, err = uc.IsActive(ctx, "no-existe")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestCreateUser_Validation(t *testing.T) {
	uc := newAuth()
	ctx := context.Background()

	_, err := uc.CreateUser(ctx, dto.CreateUserRequest{Username: "x", Password: "short", Role: "cd"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = uc.CreateUser(ctx, dto.CreateUserRequest{Username: "x", Password: "password1", Role: "root"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = uc.CreateUser(ctx, dto.CreateUserRequest{Username: "x", Password: "password1", Role: "store", Store: "Loja X"})
	assert.ErrorIs(t, err, domain.ErrUnknownUnit)

	_, err = uc.CreateUser(ctx, dto.CreateUserRequest{Username: "dup", Password: "password1", Role: "cd"})
	require.NoError(t, err)
	_, err = uc.CreateUser(ctx, dto.CreateUserRequest{Username: "dup", Password: "password1", Role: "cd"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	uc := newAuth()
	ctx := context.Background()

	created, err := uc.EnsureAdmin(ctx, "admin", "changeme123")
	require.NoError(t, err)
	assert.True(t, created)
	created, err = uc.EnsureAdmin(ctx, "admin", "changeme123")
	require.NoError(t, err)
	assert.False(t, created)

	users, err := uc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Role)
}
