package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/resultshub/chat-server-go/internal/errors"
	"github.com/resultshub/chat-server-go/internal/middleware"
	"github.com/resultshub/chat-server-go/internal/model"
	"github.com/resultshub/chat-server-go/internal/service"
)

type BroadcastHandler struct {
	broadcastService *service.BroadcastService
}

func NewBroadcastHandler(broadcastService *service.BroadcastService) *BroadcastHandler {
	return &BroadcastHandler{broadcastService: broadcastService}
}

// POST /broadcast (admin)
// Duration is accepted as any JSON value: non-numeric or out-of-range input
// falls back to the default rather than rejecting the announcement.
func (h *BroadcastHandler) Publish(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetAdmin(r.Context())
	if admin == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	var req struct {
		Title    string          `json:"title"`
		Message  string          `json:"message"`
		URL      *string         `json:"url"`
		Type     string          `json:"type"`
		Duration json.RawMessage `json:"duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	duration := 0
	if len(req.Duration) > 0 {
		// Silent-correction policy: a non-numeric duration is treated as
		// absent, the service clamps out-of-range values.
		json.Unmarshal(req.Duration, &duration)
	}

	notification, err := h.broadcastService.Publish(r.Context(), model.CreateBroadcastParams{
		Title:           req.Title,
		Message:         req.Message,
		URL:             req.URL,
		Type:            model.NotificationType(req.Type),
		DurationSeconds: duration,
		SentBy:          admin.Name,
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			writeError(w, err)
			return
		}
		log.Error().Err(err).Msg("publish broadcast failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"notificationId": notification.ID,
	})
}

// GET /broadcasts (public, rate limited)
// Clients poll this for notifications to display.
func (h *BroadcastHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit, _ := pageParams(r)

	notifications, err := h.broadcastService.ListRecent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list broadcasts")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"notifications": notifications,
		"count":         len(notifications),
	})
}
