package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/estoque-cd/internal/application/catalog"
	"github.com/jhoicas/estoque-cd/internal/application/dto"
	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
	"github.com/jhoicas/estoque-cd/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase login y administración de usuarios.
type AuthUseCase struct {
	userRepo repository.UserRepository
	registry repository.RegistryRepository
	jwtCfg   JWTConfig
	now      func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, registry repository.RegistryRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, registry: registry, jwtCfg: jwtCfg, now: time.Now}
}

// Login verifica usuario/password, genera JWT y retorna token + usuario.
// Usuario inexistente o password incorrecto = ErrUnauthorized; usuario inactivo = ErrForbidden.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.Active {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes, jwt.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Store:    user.Store,
	})
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: *toUserResponse(user)}, nil
}

// CreateUser hashea el password con bcrypt y persiste. Los usuarios de tienda deben
// pertenecer a una unidad registrada.
func (uc *AuthUseCase) CreateUser(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || len(in.Password) < 8 {
		return nil, domain.Validation("usuario y password (mínimo 8 caracteres) son obligatorios")
	}
	if !entity.ValidRole(in.Role) {
		return nil, domain.Validation("rol inválido %q", in.Role)
	}
	store := strings.TrimSpace(in.Store)
	if in.Role == entity.RoleStore || store != "" {
		unit, err := catalog.LookupUnit(ctx, uc.registry, store)
		if err != nil {
			return nil, err
		}
		store = unit.Name
	}
	existing, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		name = username
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		FullName:     name,
		Role:         in.Role,
		Store:        store,
		Active:       true,
		CreatedAt:    uc.now(),
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// DeactivateUser desactiva un usuario (no se borra).
func (uc *AuthUseCase) DeactivateUser(ctx context.Context, id string) error {
	return uc.userRepo.Deactivate(ctx, id)
}

// IsActive indica si el usuario sigue activo; inexistente cuenta como inactivo.
func (uc *AuthUseCase) IsActive(ctx context.Context, id string) (bool, error) {
	u, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return false, nil
		}
		return false, err
	}
	return u != nil && u.Active, nil
}

// ListUsers lista los usuarios ordenados por nombre de usuario.
func (uc *AuthUseCase) ListUsers(ctx context.Context) ([]*dto.UserResponse, error) {
	users, err := uc.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out, nil
}

// EnsureAdmin crea el administrador inicial si no existe. Devuelve true si lo creó.
func (uc *AuthUseCase) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	existing, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	_, err = uc.CreateUser(ctx, dto.CreateUserRequest{
		Username: username,
		Password: password,
		FullName: "Administrador",
		Role:     entity.RoleAdmin,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Role:      u.Role,
		Store:     u.Store,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}
