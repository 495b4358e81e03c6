package stats

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Mranger2024/plasticwatcha/pkg/repository"
)

const (
	defaultBrandLimit = 10
	maxBrandLimit     = 100
	defaultSeriesDays = 30
	maxSeriesDays     = 365
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a stats repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "stats"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Overview(ctx context.Context) (*Overview, error) {
	q := `
		SELECT total, pending, classified, rejected, contributors, last_7_days
		FROM contribution_stats`

	var o Overview
	err := r.db.QueryRowContext(ctx, q).Scan(
		&o.Total,
		&o.Pending,
		&o.Classified,
		&o.Rejected,
		&o.Contributors,
		&o.Last7Days,
	)

	if err != nil {
		return nil, fmt.Errorf("query contribution stats: %w", err)
	}
	return &o, nil
}

func (r *repo) TopBrands(ctx context.Context, limit int) ([]BrandCount, error) {
	if limit < 1 {
		limit = defaultBrandLimit
	}
	if limit > maxBrandLimit {
		limit = maxBrandLimit
	}

	q := `
		SELECT brand, COUNT(*) AS count
		FROM classifications
		GROUP BY brand
		ORDER BY count DESC, brand ASC
		LIMIT $1`

	return repository.QueryMany(ctx, r.db, q, []any{limit}, scanBrandCount)
}

func (r *repo) DailySeries(ctx context.Context, days int) ([]DailyCount, error) {
	if days < 1 {
		days = r.configuredSeriesDays(ctx)
	}
	if days > maxSeriesDays {
		days = maxSeriesDays
	}

	q := `
		SELECT date_trunc('day', created_at) AS day, COUNT(*) AS count
		FROM contributions
		WHERE created_at >= NOW() - ($1 * INTERVAL '1 day')
		GROUP BY day
		ORDER BY day ASC`

	return repository.QueryMany(ctx, r.db, q, []any{days}, scanDailyCount)
}

func scanBrandCount(s repository.Scanner) (BrandCount, error) {
	var b BrandCount
	err := s.Scan(&b.Brand, &b.Count)
	return b, err
}

func scanDailyCount(s repository.Scanner) (DailyCount, error) {
	var d DailyCount
	err := s.Scan(&d.Day, &d.Count)
	return d, err
}
