package stats

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Mranger2024/plasticwatcha/internal/auth"
	"github.com/Mranger2024/plasticwatcha/pkg/handlers"
	"github.com/Mranger2024/plasticwatcha/pkg/routes"
)

// Handler provides HTTP endpoints for dashboard statistics.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "stats"),
	}
}

// Routes returns the route group definition for stats endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/stats",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/overview", Handler: h.Overview},
			{Method: "GET", Pattern: "/brands", Handler: h.TopBrands},
			{Method: "GET", Pattern: "/daily", Handler: h.DailySeries},
			{Method: "GET", Pattern: "/settings/{key}", Handler: h.Setting},
			{Method: "PUT", Pattern: "/settings/{key}", Handler: h.PutSetting},
		},
	}
}

// Overview returns pipeline counts for the dashboard landing page.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireAdmin(w, r, h.logger); !ok {
		return
	}

	overview, err := h.sys.Overview(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, overview)
}

// TopBrands returns the verified-brand leaderboard.
func (h *Handler) TopBrands(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireAdmin(w, r, h.logger); !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	brands, err := h.sys.TopBrands(r.Context(), limit)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, brands)
}

// Setting returns the platform setting under the given key.
func (h *Handler) Setting(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireAdmin(w, r, h.logger); !ok {
		return
	}

	setting, err := h.sys.Setting(r.Context(), r.PathValue("key"))
	if err != nil {
		handlers.RespondError(w, h.logger, settingStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, setting)
}

// PutSetting creates or replaces the platform setting under the given key.
// The request body is the raw JSON value.
func (h *Handler) PutSetting(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireAdmin(w, r, h.logger); !ok {
		return
	}

	value, err := io.ReadAll(io.LimitReader(r.Body, maxSettingBytes))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	setting, err := h.sys.PutSetting(r.Context(), r.PathValue("key"), value)
	if err != nil {
		handlers.RespondError(w, h.logger, settingStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, setting)
}

const maxSettingBytes = 64 * 1024

func settingStatus(err error) int {
	switch {
	case errors.Is(err, ErrSettingNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidSetting):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// DailySeries returns submission volume per day.
func (h *Handler) DailySeries(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireAdmin(w, r, h.logger); !ok {
		return
	}

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	series, err := h.sys.DailySeries(r.Context(), days)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, series)
}
