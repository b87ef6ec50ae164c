package repository

import (
	"context"

	"github.com/jhoicas/estoque-cd/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Deactivate(ctx context.Context, id string) error
	List(ctx context.Context) ([]*entity.User, error)
}
