package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/resultshub/chat-server-go/internal/model"
)

type ReportRepository interface {
	Create(ctx context.Context, params model.CreateReportParams) (*model.MessageReport, error)
	FindByID(ctx context.Context, id string) (*model.MessageReport, error)
	// ListNewest returns up to limit reports ordered by timestamp descending,
	// regardless of status. Status filtering happens in the service over this
	// bounded batch.
	ListNewest(ctx context.Context, limit int) ([]model.MessageReport, error)
	UpdateStatus(ctx context.Context, id string, status model.ReportStatus, reviewedAt time.Time) (int64, error)
}

type reportRepo struct {
	db execDB
}

func NewReportRepository(db *sqlx.DB) ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) Create(ctx context.Context, params model.CreateReportParams) (*model.MessageReport, error) {
	var report model.MessageReport
	err := r.db.GetContext(ctx, &report, `
		INSERT INTO message_reports (
			message_id, message_text, reported_username,
			reported_device_id, reporter_device_id, reason
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`, params.MessageID, params.MessageText, params.ReportedUsername,
		params.ReportedDeviceID, params.ReporterDeviceID, params.Reason)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// The id columns are UUIDs but the handlers pass client-supplied strings
// through unparsed, so comparisons cast to text: a malformed id must miss,
// not make Postgres reject the statement.
func (r *reportRepo) FindByID(ctx context.Context, id string) (*model.MessageReport, error) {
	var report model.MessageReport
	err := r.db.GetContext(ctx, &report, `
		SELECT * FROM message_reports WHERE id::text = $1
	`, id)
	return HandleNotFound(&report, err)
}

func (r *reportRepo) ListNewest(ctx context.Context, limit int) ([]model.MessageReport, error) {
	reports := []model.MessageReport{}
	err := r.db.SelectContext(ctx, &reports, `
		SELECT * FROM message_reports
		ORDER BY timestamp DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *reportRepo) UpdateStatus(ctx context.Context, id string, status model.ReportStatus, reviewedAt time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE message_reports SET
			status = $2,
			reviewed_at = $3
		WHERE id::text = $1
	`, id, status, reviewedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
