package offline

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Mranger2024/plasticwatcha/pkg/storage"
)

// Remote is the agent's view of the backend: connectivity probing, image
// upload, and contribution insertion. Implementations must tolerate retried
// calls for the same local id.
type Remote interface {
	Online(ctx context.Context) bool
	UploadImage(ctx context.Context, key string, img QueuedImage) (string, error)
	InsertContribution(ctx context.Context, item QueuedContribution, imageURLs map[string]string) error
}

type storeRemote struct {
	db      *sql.DB
	storage storage.System
	logger  *slog.Logger
}

// NewRemote returns a Remote backed by the platform database and blob store.
func NewRemote(db *sql.DB, st storage.System, logger *slog.Logger) Remote {
	return &storeRemote{
		db:      db,
		storage: st,
		logger:  logger,
	}
}

func (r *storeRemote) Online(ctx context.Context) bool {
	return r.db.PingContext(ctx) == nil
}

func (r *storeRemote) UploadImage(ctx context.Context, key string, img QueuedImage) (string, error) {
	url, err := r.storage.Upload(ctx, key, bytes.NewReader(img.Data), img.ContentType)
	if err != nil {
		return "", fmt.Errorf("upload queued image %s: %w", key, err)
	}
	return url, nil
}

// InsertContribution writes a synced item to the contributions table. The
// row id is the queue's local id, so a retry after a partial failure
// conflicts instead of duplicating; the original capture time is preserved
// rather than the sync time. Synced items always land as pending review.
func (r *storeRemote) InsertContribution(ctx context.Context, item QueuedContribution, imageURLs map[string]string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO contributions (
		id, user_id, latitude, longitude, beach_name,
		brand_suggestion, plastic_type_suggestion, notes,
		product_image_url, backside_image_url, recycling_image_url, manufacturer_image_url,
		status, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 'pending', $13, NOW())
	ON CONFLICT (id) DO NOTHING`,
		item.LocalID,
		item.UserID,
		item.Form.Latitude,
		item.Form.Longitude,
		item.Form.BeachName,
		item.Form.BrandSuggestion,
		item.Form.PlasticTypeSuggestion,
		item.Form.Notes,
		imageURLs[SlotProduct],
		nullableURL(imageURLs, SlotBackside),
		nullableURL(imageURLs, SlotRecycling),
		nullableURL(imageURLs, SlotManufacturer),
		item.CapturedAt,
	)

	if err != nil {
		return fmt.Errorf("insert synced contribution %s: %w", item.LocalID, err)
	}

	return nil
}

func nullableURL(urls map[string]string, slot string) *string {
	url, ok := urls[slot]
	if !ok || url == "" {
		return nil
	}
	return &url
}
