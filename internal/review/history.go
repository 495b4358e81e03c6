package review

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/Mranger2024/plasticwatcha/pkg/pagination"
	"github.com/Mranger2024/plasticwatcha/pkg/query"
	"github.com/Mranger2024/plasticwatcha/pkg/repository"
)

var historyProjection = query.
	NewProjectionMap("public", "review_history", "rh").
	Project("id", "ID").
	Project("contribution_id", "ContributionID").
	Project("admin_id", "AdminID").
	Project("action", "Action").
	Project("previous_status", "PreviousStatus").
	Project("new_status", "NewStatus").
	Project("changes", "Changes").
	Project("reason", "Reason").
	Project("created_at", "CreatedAt")

var historyDefaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// HistoryFilters contains optional filtering criteria for review history queries.
type HistoryFilters struct {
	ContributionID *uuid.UUID `json:"contribution_id,omitempty"`
	AdminID        *uuid.UUID `json:"admin_id,omitempty"`
	Action         *Action    `json:"action,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f HistoryFilters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("ContributionID", f.ContributionID).
		WhereEquals("AdminID", f.AdminID).
		WhereEquals("Action", f.Action)
}

// HistoryFiltersFromQuery extracts filter values from URL query parameters.
func HistoryFiltersFromQuery(values url.Values) HistoryFilters {
	var f HistoryFilters

	if c := values.Get("contribution_id"); c != "" {
		if id, err := uuid.Parse(c); err == nil {
			f.ContributionID = &id
		}
	}

	if a := values.Get("admin_id"); a != "" {
		if id, err := uuid.Parse(a); err == nil {
			f.AdminID = &id
		}
	}

	if raw := values.Get("action"); raw != "" {
		if action := Action(raw); action.Valid() {
			f.Action = &action
		}
	}

	return f
}

func (e *engine) ListHistory(
	ctx context.Context,
	page pagination.PageRequest,
	filters HistoryFilters,
) (*pagination.PageResult[HistoryEntry], error) {
	page.Normalize(e.pagination)

	qb := query.NewBuilder(historyProjection, historyDefaultSort)
	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := e.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count review history: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	entries, err := repository.QueryMany(ctx, e.db, pageSQL, pageArgs, scanHistoryEntry)
	if err != nil {
		return nil, fmt.Errorf("query review history: %w", err)
	}

	result := pagination.NewPageResult(entries, total, page.Page, page.PageSize)
	return &result, nil
}

func scanHistoryEntry(s repository.Scanner) (HistoryEntry, error) {
	var h HistoryEntry
	err := s.Scan(
		&h.ID,
		&h.ContributionID,
		&h.AdminID,
		&h.Action,
		&h.PreviousStatus,
		&h.NewStatus,
		&h.Changes,
		&h.Reason,
		&h.CreatedAt,
	)
	return h, err
}
