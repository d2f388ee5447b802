package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/resultshub/chat-server-go/internal/errors"
	"github.com/resultshub/chat-server-go/internal/middleware"
	"github.com/resultshub/chat-server-go/internal/model"
	"github.com/resultshub/chat-server-go/internal/service"
)

type ModerationHandler struct {
	moderationService *service.ModerationService
}

func NewModerationHandler(moderationService *service.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

// POST /moderation/ban
func (h *ModerationHandler) Ban(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetAdmin(r.Context())
	if admin == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	var req struct {
		DeviceID string `json:"deviceId"`
		Reason   string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	record, err := h.moderationService.Ban(r.Context(), req.DeviceID, req.Reason, admin.Name)
	if err != nil {
		if apperrors.IsAppError(err) {
			writeError(w, err)
			return
		}
		log.Error().Err(err).Msg("ban failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Device " + record.DeviceID + " banned",
	})
}

// POST /moderation/unban
func (h *ModerationHandler) Unban(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeviceID string `json:"deviceId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if err := h.moderationService.Unban(r.Context(), req.DeviceID); err != nil {
		if apperrors.IsAppError(err) {
			writeError(w, err)
			return
		}
		log.Error().Err(err).Msg("unban failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Device " + req.DeviceID + " unbanned",
	})
}

// GET /moderation/banned
func (h *ModerationHandler) ListBanned(w http.ResponseWriter, r *http.Request) {
	records, err := h.moderationService.ListBanned(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list banned devices")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"users":   records,
		"count":   len(records),
	})
}

// POST /moderation/reports (public, rate limited)
func (h *ModerationHandler) FileReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MessageID        string `json:"messageId"`
		MessageText      string `json:"messageText"`
		ReportedUsername string `json:"reportedUsername"`
		ReportedDeviceID string `json:"reportedDeviceId"`
		ReporterDeviceID string `json:"reporterDeviceId"`
		Reason           string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	report, err := h.moderationService.FileReport(r.Context(), model.CreateReportParams{
		MessageID:        req.MessageID,
		MessageText:      req.MessageText,
		ReportedUsername: req.ReportedUsername,
		ReportedDeviceID: req.ReportedDeviceID,
		ReporterDeviceID: req.ReporterDeviceID,
		Reason:           req.Reason,
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			writeError(w, err)
			return
		}
		log.Error().Err(err).Msg("file report failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"reportId": report.ID,
	})
}

// GET /moderation/reports?status=pending|reviewed|resolved|dismissed|all
func (h *ModerationHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	limit, _ := pageParams(r)

	reports, err := h.moderationService.ListReports(r.Context(), status, limit)
	if err != nil {
		if apperrors.IsAppError(err) {
			writeError(w, err)
			return
		}
		log.Error().Err(err).Msg("failed to list reports")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"reports": reports,
		"count":   len(reports),
	})
}

// PATCH /moderation/reports/{id}
func (h *ModerationHandler) SetReportStatus(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "id")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if err := h.moderationService.SetReportStatus(r.Context(), reportID, model.ReportStatus(req.Status)); err != nil {
		if apperrors.IsAppError(err) {
			writeError(w, err)
			return
		}
		log.Error().Err(err).Msg("failed to update report status")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Report marked as " + req.Status,
	})
}
