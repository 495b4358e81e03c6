package offline_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Mranger2024/plasticwatcha/internal/offline"
)

func ptr[T any](v T) *T { return &v }

func openQueue(t *testing.T) *offline.Queue {
	t.Helper()

	queue, err := offline.Open(filepath.Join(t.TempDir(), "queue.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { queue.Close() })

	return queue
}

func sampleItem() offline.QueuedContribution {
	return offline.QueuedContribution{
		UserID:     uuid.New(),
		CapturedAt: time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		Form: offline.FormData{
			Latitude:              54.18,
			Longitude:             7.88,
			BeachName:             ptr("Helgoland Nordstrand"),
			BrandSuggestion:       "Coca-Cola",
			PlasticTypeSuggestion: "PET",
			Notes:                 ptr("half buried in sand"),
		},
		ProductImage: offline.QueuedImage{
			Data:        []byte("product jpeg bytes"),
			Filename:    "product.jpg",
			ContentType: "image/jpeg",
		},
	}
}

func TestEnqueueRoundTrip(t *testing.T) {
	queue := openQueue(t)
	ctx := context.Background()

	item := sampleItem()
	item.BacksideImage = &offline.QueuedImage{
		Data:        []byte("backside jpeg bytes"),
		Filename:    "backside.jpg",
		ContentType: "image/jpeg",
	}

	localID, err := queue.Enqueue(ctx, item)
	if err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}
	if localID == "" {
		t.Fatal("Enqueue() returned empty local id")
	}

	items, err := queue.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("ListAll() returned %d items, want 1", len(items))
	}

	got := items[0]
	if got.LocalID != localID {
		t.Errorf("LocalID = %q, want %q", got.LocalID, localID)
	}
	if got.Status != offline.StatusPending {
		t.Errorf("Status = %q, want %q", got.Status, offline.StatusPending)
	}
	if got.UserID != item.UserID {
		t.Errorf("UserID = %v, want %v", got.UserID, item.UserID)
	}
	if !got.CapturedAt.Equal(item.CapturedAt) {
		t.Errorf("CapturedAt = %v, want %v", got.CapturedAt, item.CapturedAt)
	}
	if got.Form.Latitude != item.Form.Latitude || got.Form.Longitude != item.Form.Longitude {
		t.Errorf("location = (%v, %v), want (%v, %v)",
			got.Form.Latitude, got.Form.Longitude, item.Form.Latitude, item.Form.Longitude)
	}
	if got.Form.BeachName == nil || *got.Form.BeachName != *item.Form.BeachName {
		t.Errorf("BeachName = %v, want %v", got.Form.BeachName, item.Form.BeachName)
	}
	if got.Form.Notes == nil || *got.Form.Notes != *item.Form.Notes {
		t.Errorf("Notes = %v, want %v", got.Form.Notes, item.Form.Notes)
	}
	if !bytes.Equal(got.ProductImage.Data, item.ProductImage.Data) {
		t.Error("product image payload did not survive the round trip")
	}
	if got.ProductImage.ContentType != "image/jpeg" {
		t.Errorf("ContentType = %q, want image/jpeg", got.ProductImage.ContentType)
	}
	if got.BacksideImage == nil || !bytes.Equal(got.BacksideImage.Data, item.BacksideImage.Data) {
		t.Error("backside image payload did not survive the round trip")
	}
	if got.RecyclingImage != nil || got.ManufacturerImage != nil {
		t.Error("absent optional images came back non-nil")
	}
	if got.RetryCount != 0 {
		t.Errorf("RetryCount = %d, want 0", got.RetryCount)
	}
}

func TestQueueSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "queue.db")

	queue, err := offline.Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	localID, err := queue.Enqueue(ctx, sampleItem())
	if err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}
	if err := queue.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	reopened, err := offline.Open(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer reopened.Close()

	items, err := reopened.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error: %v", err)
	}
	if len(items) != 1 || items[0].LocalID != localID {
		t.Errorf("reopened queue has %d items, want the original one", len(items))
	}
}

func TestSetStatusFailedIncrementsRetryCount(t *testing.T) {
	queue := openQueue(t)
	ctx := context.Background()

	localID, err := queue.Enqueue(ctx, sampleItem())
	if err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}

	if err := queue.SetStatus(ctx, localID, offline.StatusFailed, "remote insert failed"); err != nil {
		t.Fatalf("SetStatus(failed) error: %v", err)
	}
	if err := queue.SetStatus(ctx, localID, offline.StatusFailed, "remote insert failed again"); err != nil {
		t.Fatalf("SetStatus(failed) error: %v", err)
	}

	items, err := queue.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error: %v", err)
	}

	got := items[0]
	if got.Status != offline.StatusFailed {
		t.Errorf("Status = %q, want %q", got.Status, offline.StatusFailed)
	}
	if got.RetryCount != 2 {
		t.Errorf("RetryCount = %d, want 2", got.RetryCount)
	}
	if got.LastError != "remote insert failed again" {
		t.Errorf("LastError = %q", got.LastError)
	}

	// Non-failure transitions leave the counter alone.
	if err := queue.SetStatus(ctx, localID, offline.StatusUploading, ""); err != nil {
		t.Fatalf("SetStatus(uploading) error: %v", err)
	}

	items, _ = queue.ListAll(ctx)
	if items[0].RetryCount != 2 {
		t.Errorf("RetryCount after uploading = %d, want 2", items[0].RetryCount)
	}
}

func TestSetStatusUnknownItem(t *testing.T) {
	queue := openQueue(t)

	err := queue.SetStatus(context.Background(), uuid.NewString(), offline.StatusFailed, "boom")
	if !errors.Is(err, offline.ErrItemNotFound) {
		t.Errorf("SetStatus(unknown) = %v, want %v", err, offline.ErrItemNotFound)
	}
}

func TestListSyncableSkipsTerminalStates(t *testing.T) {
	queue := openQueue(t)
	ctx := context.Background()

	pendingID, _ := queue.Enqueue(ctx, sampleItem())
	failedID, _ := queue.Enqueue(ctx, sampleItem())
	completedID, _ := queue.Enqueue(ctx, sampleItem())

	if err := queue.SetStatus(ctx, failedID, offline.StatusFailed, "boom"); err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}
	if err := queue.SetStatus(ctx, completedID, offline.StatusCompleted, ""); err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}

	items, err := queue.ListSyncable(ctx)
	if err != nil {
		t.Fatalf("ListSyncable() error: %v", err)
	}

	ids := make(map[string]bool, len(items))
	for _, item := range items {
		ids[item.LocalID] = true
	}

	if len(items) != 2 || !ids[pendingID] || !ids[failedID] {
		t.Errorf("ListSyncable() = %v, want pending and failed items only", ids)
	}
}

func TestRemove(t *testing.T) {
	queue := openQueue(t)
	ctx := context.Background()

	localID, _ := queue.Enqueue(ctx, sampleItem())

	if err := queue.Remove(ctx, localID); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}

	items, err := queue.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("ListAll() after Remove = %d items, want 0", len(items))
	}

	if err := queue.Remove(ctx, localID); !errors.Is(err, offline.ErrItemNotFound) {
		t.Errorf("Remove(removed) = %v, want %v", err, offline.ErrItemNotFound)
	}
}

func TestStats(t *testing.T) {
	queue := openQueue(t)
	ctx := context.Background()

	first := sampleItem()
	first.CapturedAt = time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)
	if _, err := queue.Enqueue(ctx, first); err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}

	second := sampleItem()
	second.CapturedAt = time.Date(2026, 2, 10, 16, 45, 0, 0, time.UTC)
	failedID, err := queue.Enqueue(ctx, second)
	if err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}
	if err := queue.SetStatus(ctx, failedID, offline.StatusFailed, "boom"); err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}

	stats, err := queue.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}

	if stats.Total != 2 || stats.Pending != 1 || stats.Failed != 1 {
		t.Errorf("Stats() = %+v, want total 2, pending 1, failed 1", stats)
	}
	if stats.OldestItem == nil || !stats.OldestItem.Equal(first.CapturedAt) {
		t.Errorf("OldestItem = %v, want %v", stats.OldestItem, first.CapturedAt)
	}

	size, err := queue.EstimatedSizeBytes(ctx)
	if err != nil {
		t.Fatalf("EstimatedSizeBytes() error: %v", err)
	}
	want := int64(len(first.ProductImage.Data) + len(second.ProductImage.Data))
	if size != want {
		t.Errorf("EstimatedSizeBytes() = %d, want %d", size, want)
	}
}

func TestEmptyQueueStats(t *testing.T) {
	queue := openQueue(t)

	stats, err := queue.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if stats.Total != 0 || stats.OldestItem != nil {
		t.Errorf("Stats() on empty queue = %+v", stats)
	}
}
