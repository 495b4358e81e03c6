package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Mranger2024/plasticwatcha/pkg/repository"
)

// SettingDailyDays overrides the default daily-series window when present.
const SettingDailyDays = "stats.daily_days"

// ErrSettingNotFound indicates no setting exists under the requested key.
var ErrSettingNotFound = errors.New("setting not found")

// ErrInvalidSetting indicates a setting value that is not valid JSON.
var ErrInvalidSetting = errors.New("setting value must be valid JSON")

// Setting is a platform toggle the dashboard reads. Values are opaque JSON;
// interpretation belongs to the reader.
type Setting struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (r *repo) Setting(ctx context.Context, key string) (*Setting, error) {
	q := `
		SELECT key, value, updated_at
		FROM settings
		WHERE key = $1`

	var s Setting
	err := r.db.QueryRowContext(ctx, q, key).Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if err != nil {
		return nil, repository.MapError(
			fmt.Errorf("query setting %s: %w", key, err),
			ErrSettingNotFound,
			ErrSettingNotFound,
		)
	}

	return &s, nil
}

func (r *repo) PutSetting(ctx context.Context, key string, value json.RawMessage) (*Setting, error) {
	if !json.Valid(value) {
		return nil, ErrInvalidSetting
	}

	q := `
		INSERT INTO settings(key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
		RETURNING key, value, updated_at`

	var s Setting
	err := r.db.QueryRowContext(ctx, q, key, value).Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert setting %s: %w", key, err)
	}

	r.logger.Info("setting updated", "key", key)
	return &s, nil
}

// configuredSeriesDays reads the platform default for the daily series
// window. Missing or malformed settings fall back to the built-in default.
func (r *repo) configuredSeriesDays(ctx context.Context) int {
	setting, err := r.Setting(ctx, SettingDailyDays)
	if err != nil {
		return defaultSeriesDays
	}

	var days int
	if err := json.Unmarshal(setting.Value, &days); err != nil || days < 1 {
		return defaultSeriesDays
	}
	return days
}
