package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/V4T54L/lead-intake/internal/adapter/api/response"
	"github.com/V4T54L/lead-intake/internal/usecase"
)

// AdminHandler handles HTTP requests for service administration.
type AdminHandler struct {
	uc     *usecase.EventLogUseCase
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler. uc is nil when events are disabled.
func NewAdminHandler(uc *usecase.EventLogUseCase, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{uc: uc, logger: logger.With("component", "admin_handler")}
}

// HealthCheck is a simple health check endpoint.
func (h *AdminHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetEventInfo handles requests for the event stream summary.
// GET /api/admin/events/info
func (h *AdminHandler) GetEventInfo(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w) {
		return
	}
	info, err := h.uc.Info(r.Context())
	if err != nil {
		h.logger.Error("failed to get event stream info", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	response.OK(w, http.StatusOK, info)
}

// GetRecentEvents handles requests for the newest published events.
// GET /api/admin/events?count=50
func (h *AdminHandler) GetRecentEvents(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w) {
		return
	}
	var count int64
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid count")
			return
		}
		count = n
	}

	events, err := h.uc.Recent(r.Context(), count)
	if err != nil {
		h.logger.Error("failed to read recent events", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	response.OK(w, http.StatusOK, events)
}

// TrimEvents handles requests to cap the event stream.
// POST /api/admin/events/trim
func (h *AdminHandler) TrimEvents(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w) {
		return
	}
	var req struct {
		MaxLen int64 `json:"maxLen"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	removed, err := h.uc.Trim(r.Context(), req.MaxLen)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidMaxLen) {
			response.Error(w, http.StatusBadRequest, "maxLen must be positive")
			return
		}
		h.logger.Error("failed to trim event stream", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.logger.Info("event stream trimmed", "max_len", req.MaxLen, "removed", removed)
	response.OK(w, http.StatusOK, map[string]int64{"removed": removed})
}

func (h *AdminHandler) enabled(w http.ResponseWriter) bool {
	if h.uc == nil {
		response.Error(w, http.StatusNotFound, "Event stream is disabled")
		return false
	}
	return true
}
