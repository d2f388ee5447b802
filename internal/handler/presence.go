package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/resultshub/chat-server-go/internal/errors"
	"github.com/resultshub/chat-server-go/internal/model"
	"github.com/resultshub/chat-server-go/internal/service"
)

type PresenceHandler struct {
	presenceService *service.PresenceService
}

func NewPresenceHandler(presenceService *service.PresenceService) *PresenceHandler {
	return &PresenceHandler{presenceService: presenceService}
}

// POST /presence/heartbeat
// Creates or refreshes a session. Banned devices get 403 before any write.
func (h *PresenceHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
		Username  string `json:"username"`
		DeviceID  string `json:"deviceId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	presence, err := h.presenceService.Heartbeat(r.Context(), model.HeartbeatParams{
		SessionID: req.SessionID,
		Username:  req.Username,
		DeviceID:  req.DeviceID,
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			writeError(w, err)
			return
		}
		log.Error().Err(err).Msg("heartbeat failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"sessionId": presence.SessionID,
	})
}

// POST /presence/disconnect
func (h *PresenceHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if err := h.presenceService.Disconnect(r.Context(), req.SessionID); err != nil {
		if apperrors.IsAppError(err) {
			writeError(w, err)
			return
		}
		log.Error().Err(err).Msg("disconnect failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// GET /presence/active (admin)
func (h *PresenceHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	users, err := h.presenceService.ListActive(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list active sessions")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"users":   users,
		"count":   len(users),
	})
}
