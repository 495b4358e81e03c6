package contributions

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/Mranger2024/plasticwatcha/internal/auth"
	"github.com/Mranger2024/plasticwatcha/pkg/handlers"
	"github.com/Mranger2024/plasticwatcha/pkg/pagination"
	"github.com/Mranger2024/plasticwatcha/pkg/routes"
)

// Handler provides HTTP endpoints for contribution operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, pagination config, and upload size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "contributions"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for contribution endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/contributions",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "", Handler: h.Submit},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "PATCH", Pattern: "/{id}", Handler: h.Update},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// List returns a paginated list of contributions. Anonymous and non-admin
// callers see only classified records unless they request their own via
// mine=true; admins may filter freely.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	caller := auth.FromContext(r.Context())
	if !caller.IsAdmin() {
		filters = restrictFilters(filters, caller, r.URL.Query().Get("mine") == "true")
	}

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single contribution. Classified contributions are public;
// anything else is visible only to its owner or an admin.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidSubmission)
		return
	}

	c, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	caller := auth.FromContext(r.Context())
	if c.Status != StatusClassified && !caller.IsAdmin() && caller.ID != c.UserID {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNotFound)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, c)
}

// Search accepts a JSON body with pagination and filter criteria. Admin only:
// the flexible filter surface exists for the dashboard.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireAdmin(w, r, h.logger); !ok {
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidSubmission)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Submit processes a multipart contribution submission: location and
// suggestion fields plus one required and up to three optional images.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.RequirePrincipal(w, r, h.logger)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	latitude, latErr := strconv.ParseFloat(r.FormValue("latitude"), 64)
	longitude, lonErr := strconv.ParseFloat(r.FormValue("longitude"), 64)
	if latErr != nil || lonErr != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidLocation)
		return
	}

	product, err := formImage(r, "product_image")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingProductImage)
		return
	}

	cmd := SubmitCommand{
		UserID:                caller.ID,
		Latitude:              latitude,
		Longitude:             longitude,
		BeachName:             formOptional(r, "beach_name"),
		BrandSuggestion:       r.FormValue("brand_suggestion"),
		PlasticTypeSuggestion: r.FormValue("plastic_type_suggestion"),
		Notes:                 formOptional(r, "notes"),
		ProductImage:          *product,
		BacksideImage:         formImageOptional(r, "backside_image"),
		RecyclingImage:        formImageOptional(r, "recycling_image"),
		ManufacturerImage:     formImageOptional(r, "manufacturer_image"),
	}

	c, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, c)
}

// Update applies owner edits to a pending contribution.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.RequirePrincipal(w, r, h.logger)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidSubmission)
		return
	}

	var cmd UpdateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidSubmission)
		return
	}

	c, err := h.sys.UpdateSuggestions(r.Context(), id, caller.ID, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, c)
}

// Delete removes a pending contribution on behalf of its owner.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.RequirePrincipal(w, r, h.logger)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidSubmission)
		return
	}

	if err := h.sys.Delete(r.Context(), id, caller.ID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// restrictFilters clamps non-admin list queries to the public surface:
// classified records, or the caller's own records when mine=true.
func restrictFilters(f Filters, caller auth.Principal, mine bool) Filters {
	if mine && !caller.Anonymous() {
		id := caller.ID
		f.UserID = &id
		return f
	}

	classified := string(StatusClassified)
	f.Status = &classified
	f.UserID = nil
	return f
}

func formOptional(r *http.Request, field string) *string {
	if v := r.FormValue(field); v != "" {
		return &v
	}
	return nil
}

func formImage(r *http.Request, field string) (*ImagePayload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &ImagePayload{
		Data:        data,
		Filename:    header.Filename,
		ContentType: detectContentType(header, data),
	}, nil
}

func formImageOptional(r *http.Request, field string) *ImagePayload {
	image, err := formImage(r, field)
	if err != nil {
		return nil
	}
	return image
}

func detectContentType(header *multipart.FileHeader, data []byte) string {
	if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	return http.DetectContentType(data)
}
