package contributions

import (
	"context"

	"github.com/google/uuid"

	"github.com/Mranger2024/plasticwatcha/pkg/pagination"
)

// System defines the public contract for contribution domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Contribution], error)

	Find(ctx context.Context, id uuid.UUID) (*Contribution, error)
	Create(ctx context.Context, cmd SubmitCommand) (*Contribution, error)

	// UpdateSuggestions applies owner edits to a pending contribution.
	// Returns ErrNotEditable once the contribution has left pending.
	UpdateSuggestions(ctx context.Context, id, ownerID uuid.UUID, cmd UpdateCommand) (*Contribution, error)

	// Delete removes a pending contribution on behalf of its owner,
	// including its stored images.
	Delete(ctx context.Context, id, ownerID uuid.UUID) error

	// OwnedBy reports whether the contribution's submitter equals userID.
	OwnedBy(ctx context.Context, id, userID uuid.UUID) (bool, error)
}
