// Package service holds the canvas and account operations behind the web
// surface. Every call takes the acting viewer explicitly.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rogerio-castellano/pixel-canvas/internal/access"
	"github.com/rogerio-castellano/pixel-canvas/internal/grid"
	"github.com/rogerio-castellano/pixel-canvas/internal/models"
	"github.com/rogerio-castellano/pixel-canvas/internal/repo"
	"github.com/rogerio-castellano/pixel-canvas/internal/validation"
)

const (
	DefaultMaxDimension = 256
	DefaultCanvasSize   = 32
)

type CreateCanvasInput struct {
	Title    string
	Width    int
	Height   int
	IsPublic bool
}

// CanvasService creates, reads, edits and deletes canvases on behalf of a
// viewer.
type CanvasService struct {
	canvases     repo.CanvasRepository
	maxDimension int
	defaultSize  int
	now          func() time.Time
}

func NewCanvasService(canvases repo.CanvasRepository, maxDimension, defaultSize int) *CanvasService {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	if defaultSize <= 0 || defaultSize > maxDimension {
		defaultSize = min(DefaultCanvasSize, maxDimension)
	}
	return &CanvasService{
		canvases:     canvases,
		maxDimension: maxDimension,
		defaultSize:  defaultSize,
		now:          time.Now,
	}
}

// SetClock overrides the time source.
func (s *CanvasService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *CanvasService) MaxDimension() int { return s.maxDimension }

func (s *CanvasService) DefaultSize() int { return s.defaultSize }

// Create stores a new all-empty canvas owned by owner and returns its id.
func (s *CanvasService) Create(ctx context.Context, owner access.Viewer, in CreateCanvasInput) (int, error) {
	if !owner.Authenticated() {
		return 0, ErrForbidden
	}

	title := strings.TrimSpace(in.Title)
	errs := CanvasSchema(s.maxDimension).Validate(validation.Values{
		"title":  title,
		"width":  strconv.Itoa(in.Width),
		"height": strconv.Itoa(in.Height),
	})
	if err := invalid(errs); err != nil {
		return 0, err
	}
	if title == "" {
		title = DefaultCanvasTitle
	}

	now := timestamp(s.now())
	c, err := s.canvases.Create(ctx, models.Canvas{
		Title:     title,
		Width:     in.Width,
		Height:    in.Height,
		Grid:      grid.New(in.Width, in.Height),
		IsPublic:  in.IsPublic,
		OwnerID:   owner.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return 0, fmt.Errorf("create canvas: %w", err)
	}
	return c.ID, nil
}

// View returns canvas id with its grid if viewer may see it.
func (s *CanvasService) View(ctx context.Context, id int, viewer access.Viewer) (models.Canvas, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return models.Canvas{}, err
	}
	if !access.CanView(c, viewer) {
		return models.Canvas{}, ErrForbidden
	}
	return c, nil
}

// Edit returns canvas id for the editor. Only the owner may open it.
func (s *CanvasService) Edit(ctx context.Context, id int, actor access.Viewer) (models.Canvas, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return models.Canvas{}, err
	}
	if !access.CanMutate(c, actor) {
		return models.Canvas{}, ErrForbidden
	}
	return c, nil
}

// Update replaces the grid of canvas id wholesale. The ownership and shape
// checks run while the canvas row is locked, so a failed check never writes.
func (s *CanvasService) Update(ctx context.Context, id int, actor access.Viewer, newGrid grid.Grid) (models.Canvas, error) {
	updated, err := s.canvases.UpdateGrid(ctx, id, func(current models.Canvas) (models.Canvas, error) {
		if !access.CanMutate(current, actor) {
			return models.Canvas{}, ErrForbidden
		}
		if err := grid.Validate(newGrid, current.Width, current.Height); err != nil {
			return models.Canvas{}, err
		}
		current.Grid = newGrid.Clone()
		current.UpdatedAt = nextTimestamp(current.UpdatedAt, s.now())
		return current, nil
	})
	if err != nil {
		return models.Canvas{}, canvasError(err)
	}
	return updated, nil
}

// Delete removes canvas id permanently. Only the owner may delete it.
func (s *CanvasService) Delete(ctx context.Context, id int, actor access.Viewer) error {
	c, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanMutate(c, actor) {
		return ErrForbidden
	}
	if err := s.canvases.Delete(ctx, id, actor.UserID); err != nil {
		return canvasError(err)
	}
	return nil
}

// ListOwned returns the owner's canvases, most recently updated first.
func (s *CanvasService) ListOwned(ctx context.Context, owner access.Viewer) ([]models.Canvas, error) {
	if !owner.Authenticated() {
		return nil, ErrForbidden
	}
	list, err := s.canvases.ListByOwner(ctx, owner.UserID)
	if err != nil {
		return nil, fmt.Errorf("list canvases of user %d: %w", owner.UserID, err)
	}
	return list, nil
}

// ListPublic returns every public canvas, most recently updated first.
func (s *CanvasService) ListPublic(ctx context.Context) ([]models.Canvas, error) {
	list, err := s.canvases.ListPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("list public canvases: %w", err)
	}
	return list, nil
}

func (s *CanvasService) load(ctx context.Context, id int) (models.Canvas, error) {
	c, err := s.canvases.GetByID(ctx, id)
	if err != nil {
		return models.Canvas{}, canvasError(err)
	}
	return c, nil
}

func canvasError(err error) error {
	var malformed *grid.MalformedGridError
	switch {
	case errors.Is(err, repo.ErrCanvasNotFound):
		return ErrNotFound
	case errors.Is(err, ErrForbidden), errors.As(err, &malformed):
		return err
	default:
		return fmt.Errorf("canvas store: %w", err)
	}
}

// Timestamps are kept at microsecond precision, the resolution Postgres
// stores.
func timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// nextTimestamp returns now, or the smallest representable instant after
// prev when the clock has not moved past it.
func nextTimestamp(prev, now time.Time) time.Time {
	t := timestamp(now)
	if !t.After(prev) {
		t = timestamp(prev).Add(time.Microsecond)
	}
	return t
}
