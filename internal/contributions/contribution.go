// Package contributions implements the contribution domain for plasticwatcha.
// It provides types, data access, and business logic for citizen-submitted
// plastic waste records: multipart photo submission, blob storage integration,
// owner-scoped editing, and the public read surface for classified records.
package contributions

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a contribution. Transitions out of
// pending are owned exclusively by the review engine.
type Status string

const (
	StatusPending    Status = "pending"
	StatusClassified Status = "classified"
	StatusRejected   Status = "rejected"
)

// Valid reports whether s is a recognized contribution status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusClassified, StatusRejected:
		return true
	}
	return false
}

// Contribution represents a submitted plastic waste record. The verified
// fields (VerifiedBrand, Confidence, ClassifiedAt) are projected from the
// contribution's classification row when one exists.
type Contribution struct {
	ID                    uuid.UUID  `json:"id"`
	UserID                uuid.UUID  `json:"user_id"`
	Status                Status     `json:"status"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	Latitude              float64    `json:"latitude"`
	Longitude             float64    `json:"longitude"`
	BeachName             *string    `json:"beach_name"`
	BrandSuggestion       string     `json:"brand_suggestion"`
	PlasticTypeSuggestion string     `json:"plastic_type_suggestion"`
	Notes                 *string    `json:"notes"`
	ProductImageURL       string     `json:"product_image_url"`
	BacksideImageURL      *string    `json:"backside_image_url"`
	RecyclingImageURL     *string    `json:"recycling_image_url"`
	ManufacturerImageURL  *string    `json:"manufacturer_image_url"`
	VerifiedBrand         *string    `json:"verified_brand"`
	Confidence            *string    `json:"confidence"`
	ClassifiedAt          *time.Time `json:"classified_at"`
}

// ImagePayload carries a raw image and its upload metadata.
type ImagePayload struct {
	Data        []byte
	Filename    string
	ContentType string
}

// SubmitCommand carries the data needed to register a new contribution.
// ProductImage is required; the remaining slots are optional. CreatedAt
// overrides the record timestamp for submissions that were captured offline
// and synced later; nil means now.
type SubmitCommand struct {
	UserID                uuid.UUID
	Latitude              float64
	Longitude             float64
	BeachName             *string
	BrandSuggestion       string
	PlasticTypeSuggestion string
	Notes                 *string
	CreatedAt             *time.Time
	ProductImage          ImagePayload
	BacksideImage         *ImagePayload
	RecyclingImage        *ImagePayload
	ManufacturerImage     *ImagePayload
}

// Validate checks the command for structural problems before any storage work.
func (c SubmitCommand) Validate() error {
	if c.UserID == uuid.Nil {
		return ErrInvalidSubmission
	}
	if len(c.ProductImage.Data) == 0 {
		return ErrMissingProductImage
	}
	if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return ErrInvalidLocation
	}
	return nil
}

// UpdateCommand carries owner-editable suggestion fields. Only pending
// contributions accept updates.
type UpdateCommand struct {
	BrandSuggestion       *string `json:"brand_suggestion,omitempty"`
	PlasticTypeSuggestion *string `json:"plastic_type_suggestion,omitempty"`
	BeachName             *string `json:"beach_name,omitempty"`
	Notes                 *string `json:"notes,omitempty"`
}
