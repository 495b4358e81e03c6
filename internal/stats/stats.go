// Package stats implements dashboard aggregate queries over contributions
// and classifications. All routes are admin-only; aggregates are computed
// by the database, never in application memory.
package stats

import (
	"context"
	"encoding/json"
	"time"
)

// Overview summarizes the contribution pipeline for the dashboard landing page.
type Overview struct {
	Total        int `json:"total"`
	Pending      int `json:"pending"`
	Classified   int `json:"classified"`
	Rejected     int `json:"rejected"`
	Contributors int `json:"contributors"`
	Last7Days    int `json:"last_7_days"`
}

// BrandCount is one entry in the verified-brand leaderboard.
type BrandCount struct {
	Brand string `json:"brand"`
	Count int    `json:"count"`
}

// DailyCount is one day's submission volume.
type DailyCount struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

// System defines the public contract for dashboard statistics.
type System interface {
	Handler() *Handler

	Overview(ctx context.Context) (*Overview, error)
	TopBrands(ctx context.Context, limit int) ([]BrandCount, error)
	DailySeries(ctx context.Context, days int) ([]DailyCount, error)

	Setting(ctx context.Context, key string) (*Setting, error)
	PutSetting(ctx context.Context, key string, value json.RawMessage) (*Setting, error)
}
