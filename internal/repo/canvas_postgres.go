package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rogerio-castellano/pixel-canvas/internal/dbx"
	"github.com/rogerio-castellano/pixel-canvas/internal/grid"
	"github.com/rogerio-castellano/pixel-canvas/internal/models"
)

const (
	canvasSummaryColumns = `c.id, c.title, c.width, c.height, c.is_public, c.user_id, u.username, c.created_at, c.updated_at`
	canvasFrom           = ` FROM canvases c JOIN users u ON u.id = c.user_id`

	insertCanvasQuery   = `INSERT INTO canvases (title, width, height, grid_data, is_public, user_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	canvasByIDQuery     = `SELECT ` + canvasSummaryColumns + `, c.grid_data` + canvasFrom + ` WHERE c.id = $1`
	canvasForUpdate     = canvasByIDQuery + ` FOR UPDATE OF c`
	updateGridStmt      = `UPDATE canvases SET grid_data = $1, updated_at = $2 WHERE id = $3`
	deleteCanvasStmt    = `DELETE FROM canvases WHERE id = $1 AND user_id = $2`
	canvasesByOwner     = `SELECT ` + canvasSummaryColumns + canvasFrom + ` WHERE c.user_id = $1 ORDER BY c.updated_at DESC, c.id DESC`
	publicCanvasesQuery = `SELECT ` + canvasSummaryColumns + canvasFrom + ` WHERE c.is_public ORDER BY c.updated_at DESC, c.id DESC`
	allCanvasesQuery    = `SELECT ` + canvasSummaryColumns + canvasFrom + ` ORDER BY c.created_at DESC, c.id DESC`
)

type PostgresCanvasRepository struct {
	db *sql.DB
}

func NewPostgresCanvasRepository(db *sql.DB) *PostgresCanvasRepository {
	return &PostgresCanvasRepository{db: db}
}

func (r *PostgresCanvasRepository) Create(ctx context.Context, c models.Canvas) (models.Canvas, error) {
	data, err := grid.Encode(c.Grid)
	if err != nil {
		return models.Canvas{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err = r.db.QueryRowContext(ctx, insertCanvasQuery,
		c.Title, c.Width, c.Height, data, c.IsPublic, c.OwnerID, c.CreatedAt, c.UpdatedAt).Scan(&c.ID)
	if err != nil {
		return models.Canvas{}, fmt.Errorf("create canvas: %w", err)
	}
	return c, nil
}

func (r *PostgresCanvasRepository) GetByID(ctx context.Context, id int) (models.Canvas, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return getCanvas(ctx, r.db, canvasByIDQuery, id)
}

func (r *PostgresCanvasRepository) UpdateGrid(ctx context.Context, id int, mutate GridMutator) (models.Canvas, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var updated models.Canvas
	err := dbx.InTx(ctx, r.db, func(tx dbx.Querier) error {
		current, err := getCanvas(ctx, tx, canvasForUpdate, id)
		if err != nil {
			return err
		}

		next, err := mutate(current)
		if err != nil {
			return err
		}
		if err := grid.Validate(next.Grid, current.Width, current.Height); err != nil {
			return err
		}
		data, err := grid.Encode(next.Grid)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, updateGridStmt, data, next.UpdatedAt, id); err != nil {
			return fmt.Errorf("update grid: %w", err)
		}

		updated = current
		updated.Grid = next.Grid
		updated.UpdatedAt = next.UpdatedAt
		return nil
	})
	if err != nil {
		return models.Canvas{}, err
	}
	return updated, nil
}

func (r *PostgresCanvasRepository) Delete(ctx context.Context, id, ownerID int) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, deleteCanvasStmt, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete canvas: %w", err)
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrCanvasNotFound
	}
	return nil
}

func (r *PostgresCanvasRepository) ListByOwner(ctx context.Context, ownerID int) ([]models.Canvas, error) {
	return r.list(ctx, canvasesByOwner, ownerID)
}

func (r *PostgresCanvasRepository) ListPublic(ctx context.Context) ([]models.Canvas, error) {
	return r.list(ctx, publicCanvasesQuery)
}

func (r *PostgresCanvasRepository) ListAll(ctx context.Context) ([]models.Canvas, error) {
	return r.list(ctx, allCanvasesQuery)
}

func (r *PostgresCanvasRepository) list(ctx context.Context, query string, args ...any) ([]models.Canvas, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list canvases: %w", err)
	}
	defer rows.Close()

	canvases := []models.Canvas{}
	for rows.Next() {
		var c models.Canvas
		if err := rows.Scan(&c.ID, &c.Title, &c.Width, &c.Height, &c.IsPublic, &c.OwnerID, &c.OwnerName, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		canvases = append(canvases, c)
	}
	return canvases, rows.Err()
}

func getCanvas(ctx context.Context, db dbx.Querier, query string, id int) (models.Canvas, error) {
	var (
		c    models.Canvas
		data string
	)
	err := db.QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.Title, &c.Width, &c.Height, &c.IsPublic, &c.OwnerID, &c.OwnerName, &c.CreatedAt, &c.UpdatedAt, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Canvas{}, ErrCanvasNotFound
	}
	if err != nil {
		return models.Canvas{}, fmt.Errorf("get canvas: %w", err)
	}

	c.Grid, err = grid.Decode(data, c.Width, c.Height)
	if err != nil {
		return models.Canvas{}, fmt.Errorf("canvas %d: %w", id, err)
	}
	return c, nil
}
