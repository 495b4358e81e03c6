package offline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// ErrItemNotFound indicates the referenced queue item does not exist.
var ErrItemNotFound = errors.New("queued contribution not found")

const schema = `CREATE TABLE IF NOT EXISTS queued_contributions (
	local_id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	captured_at INTEGER NOT NULL,
	latitude REAL NOT NULL,
	longitude REAL NOT NULL,
	beach_name TEXT,
	brand_suggestion TEXT NOT NULL,
	plastic_type_suggestion TEXT NOT NULL,
	notes TEXT,
	product_image BLOB NOT NULL,
	product_filename TEXT NOT NULL,
	product_content_type TEXT NOT NULL,
	backside_image BLOB,
	backside_filename TEXT,
	backside_content_type TEXT,
	recycling_image BLOB,
	recycling_filename TEXT,
	recycling_content_type TEXT,
	manufacturer_image BLOB,
	manufacturer_filename TEXT,
	manufacturer_content_type TEXT,
	status TEXT NOT NULL DEFAULT 'pending',
	retry_count INTEGER NOT NULL DEFAULT 0,
	last_error TEXT NOT NULL DEFAULT ''
)`

// Queue is the device-local durable store for captured submissions.
// Image payloads live in the same row as their metadata: there is no
// separate file store to drift out of sync with the queue.
type Queue struct {
	db *sql.DB
}

// Open opens (creating if necessary) the queue database at path.
// The special path ":memory:" opens a private in-memory queue.
func Open(path string) (*Queue, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open queue database: %w", err)
	}

	// A single writer keeps WAL checkpointing trivial, and the sync pass
	// is the only concurrent reader.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create queue schema: %w", err)
	}

	return &Queue{db: db}, nil
}

// Close closes the underlying database.
func (q *Queue) Close() error {
	return q.db.Close()
}

// Enqueue durably stores a captured submission with status pending and
// returns its locally generated id. It never touches the network.
func (q *Queue) Enqueue(ctx context.Context, item QueuedContribution) (string, error) {
	localID := uuid.NewString()

	capturedAt := item.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now().UTC()
	}

	_, err := q.db.ExecContext(ctx, `INSERT INTO queued_contributions (
		local_id, user_id, captured_at,
		latitude, longitude, beach_name, brand_suggestion, plastic_type_suggestion, notes,
		product_image, product_filename, product_content_type,
		backside_image, backside_filename, backside_content_type,
		recycling_image, recycling_filename, recycling_content_type,
		manufacturer_image, manufacturer_filename, manufacturer_content_type,
		status, retry_count, last_error
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, '')`,
		localID,
		item.UserID.String(),
		capturedAt.Unix(),
		item.Form.Latitude,
		item.Form.Longitude,
		item.Form.BeachName,
		item.Form.BrandSuggestion,
		item.Form.PlasticTypeSuggestion,
		item.Form.Notes,
		item.ProductImage.Data,
		item.ProductImage.Filename,
		item.ProductImage.ContentType,
		imageData(item.BacksideImage),
		imageFilename(item.BacksideImage),
		imageContentType(item.BacksideImage),
		imageData(item.RecyclingImage),
		imageFilename(item.RecyclingImage),
		imageContentType(item.RecyclingImage),
		imageData(item.ManufacturerImage),
		imageFilename(item.ManufacturerImage),
		imageContentType(item.ManufacturerImage),
		string(StatusPending),
	)

	if err != nil {
		return "", fmt.Errorf("enqueue contribution: %w", err)
	}

	return localID, nil
}

// ListAll returns every locally stored item regardless of status,
// oldest capture first.
func (q *Queue) ListAll(ctx context.Context) ([]QueuedContribution, error) {
	return q.list(ctx, selectColumns+" FROM queued_contributions ORDER BY captured_at ASC")
}

// ListSyncable returns the items eligible for the next sync pass: pending
// items and previously failed ones, oldest capture first.
func (q *Queue) ListSyncable(ctx context.Context) ([]QueuedContribution, error) {
	return q.list(
		ctx,
		selectColumns+" FROM queued_contributions WHERE status IN (?, ?) ORDER BY captured_at ASC",
		string(StatusPending), string(StatusFailed),
	)
}

// SetStatus updates an item's status in place. A transition to failed
// records the error and increments the retry counter; the item is retained
// for retry and inspection, never silently dropped.
func (q *Queue) SetStatus(ctx context.Context, localID string, status Status, lastError string) error {
	var result sql.Result
	var err error

	if status == StatusFailed {
		result, err = q.db.ExecContext(
			ctx,
			"UPDATE queued_contributions SET status = ?, last_error = ?, retry_count = retry_count + 1 WHERE local_id = ?",
			string(status), lastError, localID,
		)
	} else {
		result, err = q.db.ExecContext(
			ctx,
			"UPDATE queued_contributions SET status = ?, last_error = ? WHERE local_id = ?",
			string(status), lastError, localID,
		)
	}

	if err != nil {
		return fmt.Errorf("set queue status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrItemNotFound
	}

	return nil
}

// Remove permanently deletes a local item. Called only after the remote
// insert and status update have both succeeded, or on explicit purge.
func (q *Queue) Remove(ctx context.Context, localID string) error {
	result, err := q.db.ExecContext(
		ctx,
		"DELETE FROM queued_contributions WHERE local_id = ?",
		localID,
	)
	if err != nil {
		return fmt.Errorf("remove queued contribution: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrItemNotFound
	}

	return nil
}

// Stats returns per-status counts and the oldest capture timestamp.
func (q *Queue) Stats(ctx context.Context) (QueueStats, error) {
	var stats QueueStats
	var oldest sql.NullInt64

	err := q.db.QueryRowContext(ctx, `SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'uploading' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
		MIN(captured_at)
	FROM queued_contributions`).Scan(
		&stats.Total,
		&stats.Pending,
		&stats.Uploading,
		&stats.Failed,
		&stats.Completed,
		&oldest,
	)

	if err != nil {
		return QueueStats{}, fmt.Errorf("queue stats: %w", err)
	}

	if oldest.Valid {
		t := time.Unix(oldest.Int64, 0).UTC()
		stats.OldestItem = &t
	}

	return stats, nil
}

// EstimatedSizeBytes returns the approximate storage consumed by queued
// image payloads.
func (q *Queue) EstimatedSizeBytes(ctx context.Context) (int64, error) {
	var size int64
	err := q.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(
		LENGTH(product_image)
		+ COALESCE(LENGTH(backside_image), 0)
		+ COALESCE(LENGTH(recycling_image), 0)
		+ COALESCE(LENGTH(manufacturer_image), 0)
	), 0) FROM queued_contributions`).Scan(&size)

	if err != nil {
		return 0, fmt.Errorf("queue size: %w", err)
	}
	return size, nil
}

const selectColumns = `SELECT
	local_id, user_id, captured_at,
	latitude, longitude, beach_name, brand_suggestion, plastic_type_suggestion, notes,
	product_image, product_filename, product_content_type,
	backside_image, backside_filename, backside_content_type,
	recycling_image, recycling_filename, recycling_content_type,
	manufacturer_image, manufacturer_filename, manufacturer_content_type,
	status, retry_count, last_error`

func (q *Queue) list(ctx context.Context, query string, args ...any) ([]QueuedContribution, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list queued contributions: %w", err)
	}
	defer rows.Close()

	items := make([]QueuedContribution, 0)
	for rows.Next() {
		item, err := scanQueued(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func scanQueued(rows *sql.Rows) (QueuedContribution, error) {
	var item QueuedContribution
	var userID string
	var capturedAt int64
	var status string
	var backside, recycling, manufacturer optionalImage

	err := rows.Scan(
		&item.LocalID,
		&userID,
		&capturedAt,
		&item.Form.Latitude,
		&item.Form.Longitude,
		&item.Form.BeachName,
		&item.Form.BrandSuggestion,
		&item.Form.PlasticTypeSuggestion,
		&item.Form.Notes,
		&item.ProductImage.Data,
		&item.ProductImage.Filename,
		&item.ProductImage.ContentType,
		&backside.data,
		&backside.filename,
		&backside.contentType,
		&recycling.data,
		&recycling.filename,
		&recycling.contentType,
		&manufacturer.data,
		&manufacturer.filename,
		&manufacturer.contentType,
		&status,
		&item.RetryCount,
		&item.LastError,
	)
	if err != nil {
		return QueuedContribution{}, fmt.Errorf("scan queued contribution: %w", err)
	}

	parsed, err := uuid.Parse(userID)
	if err != nil {
		return QueuedContribution{}, fmt.Errorf("parse queued user id: %w", err)
	}

	item.UserID = parsed
	item.CapturedAt = time.Unix(capturedAt, 0).UTC()
	item.Status = Status(status)
	item.BacksideImage = backside.image()
	item.RecyclingImage = recycling.image()
	item.ManufacturerImage = manufacturer.image()

	return item, nil
}

type optionalImage struct {
	data        []byte
	filename    sql.NullString
	contentType sql.NullString
}

func (o optionalImage) image() *QueuedImage {
	if len(o.data) == 0 {
		return nil
	}
	return &QueuedImage{
		Data:        o.data,
		Filename:    o.filename.String,
		ContentType: o.contentType.String,
	}
}

func imageData(img *QueuedImage) []byte {
	if img == nil {
		return nil
	}
	return img.Data
}

func imageFilename(img *QueuedImage) *string {
	if img == nil {
		return nil
	}
	return &img.Filename
}

func imageContentType(img *QueuedImage) *string {
	if img == nil {
		return nil
	}
	return &img.ContentType
}
