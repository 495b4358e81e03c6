// Package offline implements the device-local durable queue and the sync
// manager that drains it into the remote store. Submissions captured without
// connectivity are persisted with their image payloads in the same durable
// unit until a sync pass confirms the remote insert, so a crash between
// capture and sync can never orphan an image or drop a record.
package offline

import (
	"time"

	"github.com/google/uuid"
)

// Status is the local lifecycle state of a queued contribution.
type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusFailed    Status = "failed"
	StatusCompleted Status = "completed"
)

// FormData bundles the structured fields captured with a submission.
type FormData struct {
	Latitude              float64
	Longitude             float64
	BeachName             *string
	BrandSuggestion       string
	PlasticTypeSuggestion string
	Notes                 *string
}

// QueuedImage is a binary attachment held in the local queue.
type QueuedImage struct {
	Data        []byte
	Filename    string
	ContentType string
}

// QueuedContribution is a locally captured submission awaiting sync.
// ProductImage is required; the remaining slots are optional.
type QueuedContribution struct {
	LocalID           string
	UserID            uuid.UUID
	CapturedAt        time.Time
	Form              FormData
	ProductImage      QueuedImage
	BacksideImage     *QueuedImage
	RecyclingImage    *QueuedImage
	ManufacturerImage *QueuedImage
	Status            Status
	RetryCount        int
	LastError         string
}

// QueueStats summarizes queue contents for UI and operational visibility.
type QueueStats struct {
	Total      int        `json:"total"`
	Pending    int        `json:"pending"`
	Uploading  int        `json:"uploading"`
	Failed     int        `json:"failed"`
	Completed  int        `json:"completed"`
	OldestItem *time.Time `json:"oldest_item,omitempty"`
}
