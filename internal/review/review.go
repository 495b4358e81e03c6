// Package review implements the classification engine for plasticwatcha.
// Classify and Reject are the only write paths that touch more than one
// table: each transitions a contribution's status, reconciles its
// classification row, and appends an immutable review history entry as a
// single transaction. Both operations re-check admin capability even though
// the HTTP layer already gates them; the engine is the last line of defense.
package review

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Mranger2024/plasticwatcha/internal/auth"
	"github.com/Mranger2024/plasticwatcha/internal/contributions"
)

// Action is the kind of administrative act recorded in review history.
type Action string

const (
	ActionClassified   Action = "classified"
	ActionReclassified Action = "reclassified"
	ActionRejected     Action = "rejected"
	ActionUpdated      Action = "updated"
	ActionDeleted      Action = "deleted"
)

// Valid reports whether a is an action the history schema accepts. The
// engine writes only classified, reclassified, and rejected; filters admit
// the full set so rows recorded under updated or deleted remain queryable.
func (a Action) Valid() bool {
	switch a {
	case ActionClassified, ActionReclassified, ActionRejected, ActionUpdated, ActionDeleted:
		return true
	}
	return false
}

// Confidence is the admin's subjective certainty in a classification.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Valid reports whether c is one of the three enumerated confidence levels.
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// ClassifyCommand carries the verified facts an admin asserts about a
// contribution. An empty Confidence defaults to medium.
type ClassifyCommand struct {
	Actor          auth.Principal
	ContributionID uuid.UUID
	Brand          string
	Manufacturer   string
	PlasticType    *string
	ProductType    *string
	Confidence     Confidence
	AdminNotes     *string
	BeachID        *uuid.UUID
	CompanyID      *uuid.UUID
	BeachLatitude  *float64
	BeachLongitude *float64
}

// Normalize applies the medium default to an unset confidence level.
func (c *ClassifyCommand) Normalize() {
	if c.Confidence == "" {
		c.Confidence = ConfidenceMedium
	}
}

// Validate checks command preconditions that do not require database access.
// Order matters: authorization is checked before any field validation.
func (c ClassifyCommand) Validate() error {
	if !c.Actor.IsAdmin() {
		return ErrUnauthorized
	}
	if !c.Confidence.Valid() {
		return ErrInvalidConfidence
	}
	if c.Brand == "" || c.Manufacturer == "" {
		return ErrMissingFields
	}
	return nil
}

// Changes builds the structured field snapshot recorded in review history.
// Only fields the admin actually submitted appear in the snapshot.
func (c ClassifyCommand) Changes() (json.RawMessage, error) {
	changes := map[string]any{
		"brand":            c.Brand,
		"manufacturer":     c.Manufacturer,
		"confidence_level": c.Confidence,
	}

	if c.PlasticType != nil {
		changes["plastic_type"] = *c.PlasticType
	}
	if c.ProductType != nil {
		changes["product_type"] = *c.ProductType
	}
	if c.AdminNotes != nil {
		changes["admin_notes"] = *c.AdminNotes
	}
	if c.BeachID != nil {
		changes["beach_id"] = c.BeachID.String()
	}
	if c.CompanyID != nil {
		changes["company_id"] = c.CompanyID.String()
	}
	if c.BeachLatitude != nil {
		changes["beach_latitude"] = *c.BeachLatitude
	}
	if c.BeachLongitude != nil {
		changes["beach_longitude"] = *c.BeachLongitude
	}

	return json.Marshal(changes)
}

// RejectCommand carries a rejection and its optional free-text reason.
type RejectCommand struct {
	Actor          auth.Principal
	ContributionID uuid.UUID
	Reason         *string
}

// Validate checks command preconditions that do not require database access.
func (c RejectCommand) Validate() error {
	if !c.Actor.IsAdmin() {
		return ErrUnauthorized
	}
	return nil
}

// ActionResult is the structured outcome of an engine operation. Callers
// branch on Success and Err instead of handling panics or thrown failures;
// on failure every table write has been rolled back.
type ActionResult struct {
	Success          bool                 `json:"success"`
	ClassificationID *uuid.UUID           `json:"classification_id,omitempty"`
	PreviousStatus   contributions.Status `json:"previous_status,omitempty"`
	Error            string               `json:"error,omitempty"`

	// Err carries the typed failure for errors.Is branching.
	Err error `json:"-"`
}

func failure(err error) *ActionResult {
	return &ActionResult{
		Success: false,
		Error:   err.Error(),
		Err:     err,
	}
}

// HistoryEntry is one immutable review history record. No update or delete
// path exists for these rows anywhere in the codebase.
type HistoryEntry struct {
	ID             uuid.UUID            `json:"id"`
	ContributionID uuid.UUID            `json:"contribution_id"`
	AdminID        uuid.UUID            `json:"admin_id"`
	Action         Action               `json:"action"`
	PreviousStatus contributions.Status `json:"previous_status"`
	NewStatus      contributions.Status `json:"new_status"`
	Changes        json.RawMessage      `json:"changes"`
	Reason         *string              `json:"reason"`
	CreatedAt      time.Time            `json:"created_at"`
}
