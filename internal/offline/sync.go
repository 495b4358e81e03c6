package offline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Image slot names, shared between blob keys and the remote insert.
const (
	SlotProduct      = "product"
	SlotBackside     = "backside"
	SlotRecycling    = "recycling"
	SlotManufacturer = "manufacturer"
)

// Result summarizes a sync pass.
type Result struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// Progress reports the state of an in-flight sync pass after each item.
type Progress struct {
	LocalID   string `json:"localId"`
	Completed int    `json:"completed"`
	Failed    int    `json:"failed"`
	Total     int    `json:"total"`
	Err       error  `json:"-"`
}

// Syncer drains the local queue into the backend. At most one sync pass
// runs at a time; overlapping triggers are dropped, not queued.
type Syncer struct {
	queue  *Queue
	remote Remote
	logger *slog.Logger

	inProgress atomic.Bool

	mu          sync.Mutex
	subscribers []func(Progress)
}

// NewSyncer binds a queue to a remote.
func NewSyncer(queue *Queue, remote Remote, logger *slog.Logger) *Syncer {
	return &Syncer{
		queue:  queue,
		remote: remote,
		logger: logger,
	}
}

// Subscribe registers a callback invoked after each item of a sync pass.
func (s *Syncer) Subscribe(fn func(Progress)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// InProgress reports whether a sync pass is currently running.
func (s *Syncer) InProgress() bool {
	return s.inProgress.Load()
}

// SyncQueue runs one sync pass over the syncable items. It returns a zero
// Result without side effects when a pass is already running or the remote
// is unreachable. A failing item is marked failed and left in the queue;
// the pass continues with the remaining items.
func (s *Syncer) SyncQueue(ctx context.Context) (Result, error) {
	if !s.inProgress.CompareAndSwap(false, true) {
		return Result{}, nil
	}
	defer s.inProgress.Store(false)

	if !s.remote.Online(ctx) {
		return Result{}, nil
	}

	items, err := s.queue.ListSyncable(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list syncable items: %w", err)
	}

	result := Result{Total: len(items)}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if err := s.syncItem(ctx, item); err != nil {
			result.Failed++

			s.logger.Error(
				"sync item failed",
				slog.String("localId", item.LocalID),
				slog.Int("retryCount", item.RetryCount),
				slog.String("error", err.Error()),
			)

			if serr := s.queue.SetStatus(ctx, item.LocalID, StatusFailed, err.Error()); serr != nil {
				s.logger.Error(
					"mark item failed",
					slog.String("localId", item.LocalID),
					slog.String("error", serr.Error()),
				)
			}

			s.notify(Progress{
				LocalID:   item.LocalID,
				Completed: result.Completed,
				Failed:    result.Failed,
				Total:     result.Total,
				Err:       err,
			})
			continue
		}

		result.Completed++

		s.logger.Info("synced contribution", slog.String("localId", item.LocalID))

		s.notify(Progress{
			LocalID:   item.LocalID,
			Completed: result.Completed,
			Failed:    result.Failed,
			Total:     result.Total,
		})
	}

	return result, nil
}

func (s *Syncer) syncItem(ctx context.Context, item QueuedContribution) error {
	if err := s.queue.SetStatus(ctx, item.LocalID, StatusUploading, ""); err != nil {
		return fmt.Errorf("mark uploading: %w", err)
	}

	urls, err := s.uploadImages(ctx, item)
	if err != nil {
		return err
	}

	if err := s.remote.InsertContribution(ctx, item, urls); err != nil {
		return err
	}

	if err := s.queue.SetStatus(ctx, item.LocalID, StatusCompleted, ""); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}

	if err := s.queue.Remove(ctx, item.LocalID); err != nil {
		return fmt.Errorf("remove completed item: %w", err)
	}

	return nil
}

// uploadImages pushes every captured image concurrently. Keys embed the
// local id, so a retried item overwrites its earlier blobs instead of
// orphaning them.
func (s *Syncer) uploadImages(ctx context.Context, item QueuedContribution) (map[string]string, error) {
	slots := map[string]*QueuedImage{
		SlotProduct:      &item.ProductImage,
		SlotBackside:     item.BacksideImage,
		SlotRecycling:    item.RecyclingImage,
		SlotManufacturer: item.ManufacturerImage,
	}

	var mu sync.Mutex
	urls := make(map[string]string, len(slots))

	g, gctx := errgroup.WithContext(ctx)

	for slot, img := range slots {
		if img == nil {
			continue
		}

		g.Go(func() error {
			key := fmt.Sprintf("contributions/%s/%s", item.LocalID, slot)

			url, err := s.remote.UploadImage(gctx, key, *img)
			if err != nil {
				return err
			}

			mu.Lock()
			urls[slot] = url
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return urls, nil
}

// Watch polls connectivity at the given interval and triggers a sync pass
// whenever the remote transitions from unreachable to reachable. An initial
// pass runs immediately if the remote is already up. Watch returns when ctx
// is cancelled.
func (s *Syncer) Watch(ctx context.Context, interval time.Duration) {
	online := s.remote.Online(ctx)
	if online {
		s.runPass(ctx)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := s.remote.Online(ctx)
			if now && !online {
				s.runPass(ctx)
			}
			online = now
		}
	}
}

func (s *Syncer) runPass(ctx context.Context) {
	result, err := s.SyncQueue(ctx)
	if err != nil {
		s.logger.Error("sync pass failed", slog.String("error", err.Error()))
		return
	}

	if result.Total > 0 {
		s.logger.Info(
			"sync pass finished",
			slog.Int("total", result.Total),
			slog.Int("completed", result.Completed),
			slog.Int("failed", result.Failed),
		)
	}
}

func (s *Syncer) notify(p Progress) {
	s.mu.Lock()
	subs := make([]func(Progress), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(p)
	}
}
