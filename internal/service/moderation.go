package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/resultshub/chat-server-go/internal/config"
	apperrors "github.com/resultshub/chat-server-go/internal/errors"
	"github.com/resultshub/chat-server-go/internal/metrics"
	"github.com/resultshub/chat-server-go/internal/model"
	"github.com/resultshub/chat-server-go/internal/repository"
)

// ModerationService owns the ban registry and the message-report workflow.
type ModerationService struct {
	banRepo    repository.BanRepository
	reportRepo repository.ReportRepository
}

func NewModerationService(
	banRepo repository.BanRepository,
	reportRepo repository.ReportRepository,
) *ModerationService {
	return &ModerationService{
		banRepo:    banRepo,
		reportRepo: reportRepo,
	}
}

// Ban records a device ban. Re-banning an already banned device overwrites
// the existing record.
func (s *ModerationService) Ban(ctx context.Context, deviceID, reason, bannedBy string) (*model.BanRecord, error) {
	if strings.TrimSpace(deviceID) == "" {
		return nil, apperrors.MissingRequired("deviceId")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.MissingRequired("reason")
	}

	record, err := s.banRepo.Upsert(ctx, model.CreateBanParams{
		DeviceID: strings.TrimSpace(deviceID),
		Reason:   strings.TrimSpace(reason),
		BannedBy: bannedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("ban device: %w", err)
	}

	log.Info().
		Str("deviceId", record.DeviceID).
		Str("reason", record.Reason).
		Str("bannedBy", bannedBy).
		Msg("device banned")

	return record, nil
}

// Unban deletes the ban record. Unbanning a device that is not banned is a
// no-op, not an error.
func (s *ModerationService) Unban(ctx context.Context, deviceID string) error {
	if strings.TrimSpace(deviceID) == "" {
		return apperrors.MissingRequired("deviceId")
	}

	if err := s.banRepo.Delete(ctx, strings.TrimSpace(deviceID)); err != nil {
		return fmt.Errorf("unban device: %w", err)
	}

	log.Info().Str("deviceId", deviceID).Msg("device unbanned")
	return nil
}

// IsBanned is a point existence check. There is no ban flag anywhere: the
// record itself is the ban.
func (s *ModerationService) IsBanned(ctx context.Context, deviceID string) (bool, error) {
	return s.banRepo.Exists(ctx, deviceID)
}

// ListBanned returns all ban records, most recently banned first.
func (s *ModerationService) ListBanned(ctx context.Context) ([]model.BanRecord, error) {
	return s.banRepo.List(ctx)
}

// FileReport creates a report in the pending state. The reporter cannot
// choose the initial status, and banned devices may not file reports.
func (s *ModerationService) FileReport(ctx context.Context, params model.CreateReportParams) (*model.MessageReport, error) {
	if strings.TrimSpace(params.MessageID) == "" {
		return nil, apperrors.MissingRequired("messageId")
	}
	if strings.TrimSpace(params.ReporterDeviceID) == "" {
		return nil, apperrors.MissingRequired("reporterDeviceId")
	}

	banned, err := s.banRepo.Exists(ctx, params.ReporterDeviceID)
	if err != nil {
		return nil, fmt.Errorf("check ban: %w", err)
	}
	if banned {
		return nil, apperrors.DeviceBanned("reporting is not allowed")
	}

	report, err := s.reportRepo.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	metrics.ReportsTotal.WithLabelValues("filed").Inc()
	log.Info().
		Str("reportId", report.ID).
		Str("messageId", report.MessageID).
		Str("reportedDeviceId", report.ReportedDeviceID).
		Msg("message reported")

	return report, nil
}

// SetReportStatus transitions a report and stamps reviewed_at. Any of the
// four statuses may be set from any current status; leaving resolved or
// dismissed is deliberately not prevented.
func (s *ModerationService) SetReportStatus(ctx context.Context, reportID string, status model.ReportStatus) error {
	if !status.Valid() {
		return apperrors.InvalidInput("status", fmt.Sprintf("%q is not a valid report status", status))
	}

	affected, err := s.reportRepo.UpdateStatus(ctx, reportID, status, time.Now())
	if err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	if affected == 0 {
		return apperrors.NotFound("Report")
	}

	metrics.ReportsTotal.WithLabelValues(string(status)).Inc()
	log.Info().
		Str("reportId", reportID).
		Str("status", string(status)).
		Msg("report status updated")

	return nil
}

// ListReports returns up to limit (capped at 100) reports matching the
// status filter, newest first. Filtering happens in memory over a batch of
// at most 1000 fetched rows, so matches older than the newest 1000 reports
// are not returned. That bound is deliberate: it avoids a compound index on
// the store at a known, capped cost.
func (s *ModerationService) ListReports(ctx context.Context, statusFilter string, limit int) ([]model.MessageReport, error) {
	if statusFilter != "" && statusFilter != "all" && !model.ReportStatus(statusFilter).Valid() {
		return nil, apperrors.InvalidInput("status", fmt.Sprintf("%q is not a valid report status filter", statusFilter))
	}

	if limit <= 0 || limit > config.ReportListCap {
		limit = config.ReportListCap
	}

	batch, err := s.reportRepo.ListNewest(ctx, config.ReportFetchCap)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	reports := make([]model.MessageReport, 0, limit)
	for _, r := range batch {
		if statusFilter != "" && statusFilter != "all" && r.Status != model.ReportStatus(statusFilter) {
			continue
		}
		reports = append(reports, r)
		if len(reports) >= limit {
			break
		}
	}

	return reports, nil
}
