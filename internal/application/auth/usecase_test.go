package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/auth"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
	"github.com/jhoicas/almacen-api/pkg/jwt"
)

const testSecret = "secreto-de-test-bastante-largo"

func newAuthUseCase(t *testing.T) (*auth.AuthUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	uc := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{
		Secret:     testSecret,
		ExpMinutes: 15,
		Issuer:     "almacen-api-test",
	})
	return uc, store
}

func register(t *testing.T, uc *auth.AuthUseCase, email, password, role string) *dto.UserResponse {
	t.Helper()
	user, err := uc.RegisterUser(context.Background(), dto.RegisterRequest{
		Name:     "Usuario Test",
		Email:    email,
		Password: password,
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func TestRegisterUser_RolPorDefectoYSinHashExpuesto(t *testing.T) {
	uc, store := newAuthUseCase(t)
	user := register(t, uc, "ana@test.local", "password123", "")

	assert.Equal(t, entity.RoleUser, user.Role)
	assert.True(t, user.IsActive)

	// el hash queda en el store, nunca en la respuesta
	stored, err := store.Users().FindByEmail(context.Background(), "ana@test.local")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "password123", stored.PasswordHash)
}

func TestRegisterUser_EmailDuplicado(t *testing.T) {
	uc, _ := newAuthUseCase(t)
	register(t, uc, "ana@test.local", "password123", "")

	_, err := uc.RegisterUser(context.Background(), dto.RegisterRequest{
		Name:     "Otra",
		Email:    "ANA@test.local", // el email no distingue mayúsculas
		Password: "password456",
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegisterUser_RolDesconocido(t *testing.T) {
	uc, _ := newAuthUseCase(t)
	_, err := uc.RegisterUser(context.Background(), dto.RegisterRequest{
		Name:     "Ana",
		Email:    "ana@test.local",
		Password: "password123",
		Role:     "SUPERADMIN",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin_TokenConIdentidadYRol(t *testing.T) {
	uc, _ := newAuthUseCase(t)
	user := register(t, uc, "ana@test.local", "password123", entity.RoleManager)

	resp, err := uc.Login(context.Background(), dto.LoginRequest{
		Email:    "ana@test.local",
		Password: "password123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.NotNil(t, resp.User.LastLogin)

	userID, role, err := jwt.Parse(testSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, entity.RoleManager, role)
}

func TestLogin_PasswordIncorrecto(t *testing.T) {
	uc, _ := newAuthUseCase(t)
	register(t, uc, "ana@test.local", "password123", "")

	_, err := uc.Login(context.Background(), dto.LoginRequest{
		Email:    "ana@test.local",
		Password: "password-equivocado",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UsuarioInexistente(t *testing.T) {
	uc, _ := newAuthUseCase(t)
	_, err := uc.Login(context.Background(), dto.LoginRequest{
		Email:    "nadie@test.local",
		Password: "password123",
	})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	uc, store := newAuthUseCase(t)
	user := register(t, uc, "ana@test.local", "password123", "")

	ctx := context.Background()
	stored, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	stored.IsActive = false
	require.NoError(t, store.Users().Update(ctx, stored))

	_, err = uc.Login(ctx, dto.LoginRequest{
		Email:    "ana@test.local",
		Password: "password123",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
