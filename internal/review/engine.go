package review

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Mranger2024/plasticwatcha/internal/contributions"
	"github.com/Mranger2024/plasticwatcha/pkg/pagination"
	"github.com/Mranger2024/plasticwatcha/pkg/repository"
)

// System defines the public contract of the classification engine.
type System interface {
	Handler() *Handler

	// Classify transitions a contribution to classified, upserting its
	// classification row and appending a history entry atomically.
	Classify(ctx context.Context, cmd ClassifyCommand) *ActionResult

	// Reject transitions a contribution to rejected, deleting any
	// classification row and appending a history entry atomically.
	Reject(ctx context.Context, cmd RejectCommand) *ActionResult

	ListHistory(
		ctx context.Context,
		page pagination.PageRequest,
		filters HistoryFilters,
	) (*pagination.PageResult[HistoryEntry], error)
}

type engine struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a review engine implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &engine{
		db:         db,
		logger:     logger.With("system", "review"),
		pagination: pagination,
	}
}

func (e *engine) Handler() *Handler {
	return NewHandler(e, e.logger, e.pagination)
}

type classifyOutcome struct {
	classificationID uuid.UUID
	previousStatus   contributions.Status
	action           Action
}

// Every state accepts both Classify and Reject: reclassifying a rejected
// contribution and re-rejecting a rejected one are permitted so admins can
// correct earlier decisions at any time.
func (e *engine) Classify(ctx context.Context, cmd ClassifyCommand) *ActionResult {
	cmd.Normalize()
	if err := cmd.Validate(); err != nil {
		return failure(err)
	}

	changes, err := cmd.Changes()
	if err != nil {
		return failure(fmt.Errorf("encode changes: %w", err))
	}

	upsertQ := `
		INSERT INTO classifications(
			contribution_id, brand, manufacturer, plastic_type, product_type,
			confidence_level, classified_by, admin_notes, beach_id, company_id,
			beach_latitude, beach_longitude
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (contribution_id) DO UPDATE SET
			brand = EXCLUDED.brand,
			manufacturer = EXCLUDED.manufacturer,
			plastic_type = EXCLUDED.plastic_type,
			product_type = EXCLUDED.product_type,
			confidence_level = EXCLUDED.confidence_level,
			classified_by = EXCLUDED.classified_by,
			admin_notes = EXCLUDED.admin_notes,
			beach_id = EXCLUDED.beach_id,
			company_id = EXCLUDED.company_id,
			beach_latitude = EXCLUDED.beach_latitude,
			beach_longitude = EXCLUDED.beach_longitude,
			classified_at = NOW(),
			updated_at = NOW()
		RETURNING id`

	upsertArgs := []any{
		cmd.ContributionID,
		cmd.Brand,
		cmd.Manufacturer,
		cmd.PlasticType,
		cmd.ProductType,
		cmd.Confidence,
		cmd.Actor.ID,
		cmd.AdminNotes,
		cmd.BeachID,
		cmd.CompanyID,
		cmd.BeachLatitude,
		cmd.BeachLongitude,
	}

	outcome, err := repository.WithTx(ctx, e.db, func(tx *sql.Tx) (classifyOutcome, error) {
		previous, err := lockStatus(ctx, tx, cmd.ContributionID)
		if err != nil {
			return classifyOutcome{}, err
		}

		if err := repository.ExecExpectOne(
			ctx, tx,
			"UPDATE contributions SET status = $1, updated_at = NOW() WHERE id = $2",
			contributions.StatusClassified, cmd.ContributionID,
		); err != nil {
			return classifyOutcome{}, fmt.Errorf("update contribution status: %w", err)
		}

		var classificationID uuid.UUID
		if err := tx.QueryRowContext(ctx, upsertQ, upsertArgs...).Scan(&classificationID); err != nil {
			return classifyOutcome{}, fmt.Errorf("upsert classification: %w", err)
		}

		action := deriveAction(previous)

		if err := appendHistory(ctx, tx, historyRow{
			ContributionID: cmd.ContributionID,
			AdminID:        cmd.Actor.ID,
			Action:         action,
			PreviousStatus: previous,
			NewStatus:      contributions.StatusClassified,
			Changes:        changes,
		}); err != nil {
			return classifyOutcome{}, err
		}

		return classifyOutcome{
			classificationID: classificationID,
			previousStatus:   previous,
			action:           action,
		}, nil
	})

	if err != nil {
		return failure(repository.MapError(err, ErrNotFound, ErrDuplicate))
	}

	e.logger.Info("contribution classified",
		"contribution_id", cmd.ContributionID,
		"classification_id", outcome.classificationID,
		"action", outcome.action,
		"admin_id", cmd.Actor.ID,
	)

	return &ActionResult{
		Success:          true,
		ClassificationID: &outcome.classificationID,
		PreviousStatus:   outcome.previousStatus,
	}
}

func (e *engine) Reject(ctx context.Context, cmd RejectCommand) *ActionResult {
	if err := cmd.Validate(); err != nil {
		return failure(err)
	}

	previous, err := repository.WithTx(ctx, e.db, func(tx *sql.Tx) (contributions.Status, error) {
		previous, err := lockStatus(ctx, tx, cmd.ContributionID)
		if err != nil {
			return "", err
		}

		if err := repository.ExecExpectOne(
			ctx, tx,
			"UPDATE contributions SET status = $1, updated_at = NOW() WHERE id = $2",
			contributions.StatusRejected, cmd.ContributionID,
		); err != nil {
			return "", fmt.Errorf("update contribution status: %w", err)
		}

		// Rejected contributions carry no verified data; a row may or may
		// not exist depending on prior classification.
		if _, err := tx.ExecContext(
			ctx,
			"DELETE FROM classifications WHERE contribution_id = $1",
			cmd.ContributionID,
		); err != nil {
			return "", fmt.Errorf("delete classification: %w", err)
		}

		if err := appendHistory(ctx, tx, historyRow{
			ContributionID: cmd.ContributionID,
			AdminID:        cmd.Actor.ID,
			Action:         ActionRejected,
			PreviousStatus: previous,
			NewStatus:      contributions.StatusRejected,
			Reason:         cmd.Reason,
		}); err != nil {
			return "", err
		}

		return previous, nil
	})

	if err != nil {
		return failure(repository.MapError(err, ErrNotFound, ErrDuplicate))
	}

	e.logger.Info("contribution rejected",
		"contribution_id", cmd.ContributionID,
		"previous_status", previous,
		"admin_id", cmd.Actor.ID,
	)

	return &ActionResult{
		Success:        true,
		PreviousStatus: previous,
	}
}

// deriveAction names the history action recorded for a classify call.
// Classifying an already-classified contribution is a reclassification;
// every other prior state, including rejected, records a fresh classification.
func deriveAction(previous contributions.Status) Action {
	if previous == contributions.StatusClassified {
		return ActionReclassified
	}
	return ActionClassified
}

// lockStatus captures the contribution's current status under a row lock so
// concurrent classify/reject calls against the same record serialize.
func lockStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID) (contributions.Status, error) {
	var status contributions.Status
	err := tx.QueryRowContext(
		ctx,
		"SELECT status FROM contributions WHERE id = $1 FOR UPDATE",
		id,
	).Scan(&status)

	if err != nil {
		return "", fmt.Errorf("lock contribution: %w", err)
	}
	return status, nil
}

type historyRow struct {
	ContributionID uuid.UUID
	AdminID        uuid.UUID
	Action         Action
	PreviousStatus contributions.Status
	NewStatus      contributions.Status
	Changes        []byte
	Reason         *string
}

func appendHistory(ctx context.Context, tx *sql.Tx, row historyRow) error {
	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO review_history(
			contribution_id, admin_id, action, previous_status, new_status, changes, reason
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		row.ContributionID,
		row.AdminID,
		row.Action,
		row.PreviousStatus,
		row.NewStatus,
		row.Changes,
		row.Reason,
	)

	if err != nil {
		return fmt.Errorf("append review history: %w", err)
	}
	return nil
}
