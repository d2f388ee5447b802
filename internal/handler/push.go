package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/resultshub/chat-server-go/internal/errors"
	"github.com/resultshub/chat-server-go/internal/model"
	"github.com/resultshub/chat-server-go/internal/service"
)

type PushHandler struct {
	pushService *service.PushService
}

func NewPushHandler(pushService *service.PushService) *PushHandler {
	return &PushHandler{pushService: pushService}
}

// GET /push/public-key (unauthenticated)
func (h *PushHandler) PublicKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"publicKey": h.pushService.PublicKey(),
	})
}

// POST /push/subscribe
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AnonID       string                    `json:"anon_id"`
		RollNumber   *string                   `json:"roll_number"`
		Subscription model.WebPushSubscription `json:"subscription"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if _, err := h.pushService.Register(r.Context(), req.AnonID, req.RollNumber, req.Subscription); err != nil {
		if apperrors.IsAppError(err) {
			writeError(w, err)
			return
		}
		log.Error().Err(err).Msg("push subscribe failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// POST /push/broadcast (admin)
func (h *PushHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string  `json:"title"`
		Body  string  `json:"body"`
		URL   *string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	summary, err := h.pushService.Broadcast(r.Context(), req.Title, req.Body, req.URL)
	if err != nil {
		if apperrors.IsAppError(err) {
			writeError(w, err)
			return
		}
		log.Error().Err(err).Msg("push broadcast failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"totalSubscriptions": summary.TotalSubscriptions,
		"successful":         summary.Successful,
		"failed":             summary.Failed,
	})
}

// GET /push/history?limit=&offset= (admin)
func (h *PushHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	entries, total, err := h.pushService.History(r.Context(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("failed to list push history")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"notifications": entries,
		"total":         total,
	})
}

// GET /push/keys (admin)
// The only place the private key is ever returned, for configuration
// display.
func (h *PushHandler) Keys(w http.ResponseWriter, r *http.Request) {
	publicKey, privateKey := h.pushService.Keys()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"publicKey":  publicKey,
		"privateKey": privateKey,
	})
}
