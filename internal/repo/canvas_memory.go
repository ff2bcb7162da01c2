package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/rogerio-castellano/pixel-canvas/internal/grid"
	"github.com/rogerio-castellano/pixel-canvas/internal/models"
)

// InMemoryCanvasRepository keeps canvases in a map. Grids are stored in their
// encoded form, so callers never share cells with the repository.
type InMemoryCanvasRepository struct {
	mu       sync.Mutex
	canvases map[int]storedCanvas
	nextID   int
	users    *InMemoryUserRepository
}

type storedCanvas struct {
	models.Canvas
	data string
}

// NewInMemoryCanvasRepository creates an empty repository. users, when not
// nil, is used to fill in owner names.
func NewInMemoryCanvasRepository(users *InMemoryUserRepository) *InMemoryCanvasRepository {
	return &InMemoryCanvasRepository{
		canvases: map[int]storedCanvas{},
		nextID:   1,
		users:    users,
	}
}

func (r *InMemoryCanvasRepository) Create(_ context.Context, c models.Canvas) (models.Canvas, error) {
	data, err := grid.Encode(c.Grid)
	if err != nil {
		return models.Canvas{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c.ID = r.nextID
	r.nextID++
	summary := c
	summary.Grid = nil
	r.canvases[c.ID] = storedCanvas{Canvas: summary, data: data}
	return c, nil
}

func (r *InMemoryCanvasRepository) GetByID(_ context.Context, id int) (models.Canvas, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load(id)
}

func (r *InMemoryCanvasRepository) UpdateGrid(_ context.Context, id int, mutate GridMutator) (models.Canvas, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.load(id)
	if err != nil {
		return models.Canvas{}, err
	}

	next, err := mutate(current)
	if err != nil {
		return models.Canvas{}, err
	}
	if err := grid.Validate(next.Grid, current.Width, current.Height); err != nil {
		return models.Canvas{}, err
	}
	data, err := grid.Encode(next.Grid)
	if err != nil {
		return models.Canvas{}, err
	}

	stored := r.canvases[id]
	stored.data = data
	stored.UpdatedAt = next.UpdatedAt
	r.canvases[id] = stored

	current.Grid = next.Grid
	current.UpdatedAt = next.UpdatedAt
	return current, nil
}

func (r *InMemoryCanvasRepository) Delete(_ context.Context, id, ownerID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.canvases[id]
	if !ok || c.OwnerID != ownerID {
		return ErrCanvasNotFound
	}
	delete(r.canvases, id)
	return nil
}

func (r *InMemoryCanvasRepository) ListByOwner(_ context.Context, ownerID int) ([]models.Canvas, error) {
	return r.list(func(c models.Canvas) bool { return c.OwnerID == ownerID }, byUpdatedDesc), nil
}

func (r *InMemoryCanvasRepository) ListPublic(_ context.Context) ([]models.Canvas, error) {
	return r.list(func(c models.Canvas) bool { return c.IsPublic }, byUpdatedDesc), nil
}

func (r *InMemoryCanvasRepository) ListAll(_ context.Context) ([]models.Canvas, error) {
	return r.list(func(models.Canvas) bool { return true }, byCreatedDesc), nil
}

// Clear removes every canvas.
func (r *InMemoryCanvasRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.canvases = map[int]storedCanvas{}
	r.nextID = 1
}

func (r *InMemoryCanvasRepository) load(id int) (models.Canvas, error) {
	stored, ok := r.canvases[id]
	if !ok {
		return models.Canvas{}, ErrCanvasNotFound
	}
	c := r.withOwner(stored.Canvas)
	g, err := grid.Decode(stored.data, c.Width, c.Height)
	if err != nil {
		return models.Canvas{}, err
	}
	c.Grid = g
	return c, nil
}

func (r *InMemoryCanvasRepository) list(keep func(models.Canvas) bool, less func(a, b models.Canvas) bool) []models.Canvas {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.Canvas{}
	for _, stored := range r.canvases {
		if keep(stored.Canvas) {
			out = append(out, r.withOwner(stored.Canvas))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (r *InMemoryCanvasRepository) withOwner(c models.Canvas) models.Canvas {
	if r.users != nil {
		c.OwnerName = r.users.username(c.OwnerID)
	}
	return c
}

func byUpdatedDesc(a, b models.Canvas) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.ID > b.ID
}

func byCreatedDesc(a, b models.Canvas) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
