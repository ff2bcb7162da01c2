package repo

import (
	"context"
	"time"

	"github.com/rogerio-castellano/pixel-canvas/internal/models"
)

// UserRepository stores accounts. Username and email uniqueness is enforced
// by the store itself; violations come back as *UniqueViolationError.
type UserRepository interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id int) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string, at time.Time) error
	UpdateProfile(ctx context.Context, id int, username, email string, at time.Time) (models.User, error)
}
