package repo

import (
	"context"

	"github.com/rogerio-castellano/pixel-canvas/internal/models"
)

// GridMutator receives the current canvas, with its grid, while the row is
// locked, and returns the canvas to persist. Only Grid and UpdatedAt of the
// result are written. Returning an error aborts the write.
type GridMutator func(current models.Canvas) (models.Canvas, error)

// CanvasRepository defines the canvas persistence operations.
type CanvasRepository interface {
	Create(ctx context.Context, c models.Canvas) (models.Canvas, error)
	GetByID(ctx context.Context, id int) (models.Canvas, error)
	// UpdateGrid replaces the grid of canvas id atomically.
	UpdateGrid(ctx context.Context, id int, mutate GridMutator) (models.Canvas, error)
	// Delete removes canvas id if it belongs to ownerID.
	Delete(ctx context.Context, id, ownerID int) error
	ListByOwner(ctx context.Context, ownerID int) ([]models.Canvas, error)
	ListPublic(ctx context.Context) ([]models.Canvas, error)
	ListAll(ctx context.Context) ([]models.Canvas, error)
}
