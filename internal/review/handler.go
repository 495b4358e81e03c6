package review

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/Mranger2024/plasticwatcha/internal/auth"
	"github.com/Mranger2024/plasticwatcha/pkg/handlers"
	"github.com/Mranger2024/plasticwatcha/pkg/pagination"
	"github.com/Mranger2024/plasticwatcha/pkg/routes"
)

// Handler provides HTTP endpoints for review engine operations.
// Every route requires the admin role.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// ClassifyRequest is the JSON body for a classify call.
type ClassifyRequest struct {
	Brand          string     `json:"brand"`
	Manufacturer   string     `json:"manufacturer"`
	PlasticType    *string    `json:"plastic_type,omitempty"`
	ProductType    *string    `json:"product_type,omitempty"`
	Confidence     Confidence `json:"confidence_level,omitempty"`
	AdminNotes     *string    `json:"admin_notes,omitempty"`
	BeachID        *uuid.UUID `json:"beach_id,omitempty"`
	CompanyID      *uuid.UUID `json:"company_id,omitempty"`
	BeachLatitude  *float64   `json:"beach_latitude,omitempty"`
	BeachLongitude *float64   `json:"beach_longitude,omitempty"`
}

// RejectRequest is the JSON body for a reject call.
type RejectRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "review"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for review endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/review",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/contributions/{id}/classify", Handler: h.Classify},
			{Method: "POST", Pattern: "/contributions/{id}/reject", Handler: h.Reject},
			{Method: "GET", Pattern: "/history", Handler: h.History},
		},
	}
}

// Classify records verified facts about a contribution and transitions it to classified.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.RequireAdmin(w, r, h.logger)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingFields)
		return
	}

	result := h.sys.Classify(r.Context(), ClassifyCommand{
		Actor:          caller,
		ContributionID: id,
		Brand:          req.Brand,
		Manufacturer:   req.Manufacturer,
		PlasticType:    req.PlasticType,
		ProductType:    req.ProductType,
		Confidence:     req.Confidence,
		AdminNotes:     req.AdminNotes,
		BeachID:        req.BeachID,
		CompanyID:      req.CompanyID,
		BeachLatitude:  req.BeachLatitude,
		BeachLongitude: req.BeachLongitude,
	})

	respondResult(w, result)
}

// Reject transitions a contribution to rejected with an optional reason.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.RequireAdmin(w, r, h.logger)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	// The reason body is optional; chunked requests report ContentLength -1,
	// so decode whatever arrives and treat an empty body as no reason.
	var req RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingFields)
		return
	}

	result := h.sys.Reject(r.Context(), RejectCommand{
		Actor:          caller,
		ContributionID: id,
		Reason:         req.Reason,
	})

	respondResult(w, result)
}

// History returns a paginated, filterable view of the review audit trail.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireAdmin(w, r, h.logger); !ok {
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := HistoryFiltersFromQuery(r.URL.Query())

	result, err := h.sys.ListHistory(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// respondResult writes the engine's structured result with a status code
// derived from its typed error; the body always carries the result itself
// so clients branch on the success flag.
func respondResult(w http.ResponseWriter, result *ActionResult) {
	status := http.StatusOK
	if !result.Success {
		status = MapHTTPStatus(result.Err)
	}
	handlers.RespondJSON(w, status, result)
}
