package repo

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	statsQuery = `
		SELECT
			(SELECT COUNT(*) FROM users),
			COUNT(*),
			COUNT(*) FILTER (WHERE is_public)
		FROM canvases
	`
	userCanvasCountsQuery = `
		SELECT u.id, u.username, u.email, COUNT(c.id)
		FROM users u
		LEFT JOIN canvases c ON c.user_id = u.id
		GROUP BY u.id, u.username, u.email
		ORDER BY u.id
	`
)

type PostgresStatsRepository struct {
	db *sql.DB
}

func NewPostgresStatsRepository(db *sql.DB) *PostgresStatsRepository {
	return &PostgresStatsRepository{db: db}
}

func (r *PostgresStatsRepository) GetStats(ctx context.Context) (Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var s Stats
	if err := r.db.QueryRowContext(ctx, statsQuery).Scan(&s.Users, &s.Canvases, &s.PublicCanvases); err != nil {
		return Stats{}, fmt.Errorf("get stats: %w", err)
	}
	s.PrivateCanvases = s.Canvases - s.PublicCanvases
	return s, nil
}

func (r *PostgresStatsRepository) UserCanvasCounts(ctx context.Context) ([]UserCanvasCount, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, userCanvasCountsQuery)
	if err != nil {
		return nil, fmt.Errorf("user canvas counts: %w", err)
	}
	defer rows.Close()

	var counts []UserCanvasCount
	for rows.Next() {
		var c UserCanvasCount
		if err := rows.Scan(&c.ID, &c.Username, &c.Email, &c.Canvases); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
