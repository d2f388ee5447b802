package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/resultshub/chat-server-go/internal/model"
)

type PresenceRepository interface {
	Upsert(ctx context.Context, params model.HeartbeatParams) (*model.SessionPresence, error)
	FindByID(ctx context.Context, sessionID string) (*model.SessionPresence, error)
	ListActive(ctx context.Context) ([]model.SessionPresence, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteStale(ctx context.Context, olderThan time.Time) (int64, error)
	Count(ctx context.Context) (int, error)
}

type presenceRepo struct {
	db execDB
}

func NewPresenceRepository(db *sqlx.DB) PresenceRepository {
	return &presenceRepo{db: db}
}

func (r *presenceRepo) Upsert(ctx context.Context, params model.HeartbeatParams) (*model.SessionPresence, error) {
	var presence model.SessionPresence
	err := r.db.GetContext(ctx, &presence, `
		INSERT INTO sessions (session_id, username, device_id, last_seen)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (session_id) DO UPDATE SET
			username = EXCLUDED.username,
			device_id = EXCLUDED.device_id,
			last_seen = NOW()
		RETURNING *
	`, params.SessionID, params.Username, params.DeviceID)
	if err != nil {
		return nil, err
	}
	return &presence, nil
}

func (r *presenceRepo) FindByID(ctx context.Context, sessionID string) (*model.SessionPresence, error) {
	var presence model.SessionPresence
	err := r.db.GetContext(ctx, &presence, `
		SELECT * FROM sessions WHERE session_id = $1
	`, sessionID)
	return HandleNotFound(&presence, err)
}

func (r *presenceRepo) ListActive(ctx context.Context) ([]model.SessionPresence, error) {
	sessions := []model.SessionPresence{}
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT * FROM sessions ORDER BY last_seen DESC
	`)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *presenceRepo) Delete(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE session_id = $1
	`, sessionID)
	return err
}

func (r *presenceRepo) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE last_seen < $1
	`, olderThan)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *presenceRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sessions`)
	return count, err
}
