package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/resultshub/chat-server-go/internal/model"
)

type BanRepository interface {
	// Upsert overwrites any existing record for the device: a re-ban
	// refreshes reason, banned_at and banned_by.
	Upsert(ctx context.Context, params model.CreateBanParams) (*model.BanRecord, error)
	FindByDeviceID(ctx context.Context, deviceID string) (*model.BanRecord, error)
	Exists(ctx context.Context, deviceID string) (bool, error)
	List(ctx context.Context) ([]model.BanRecord, error)
	Delete(ctx context.Context, deviceID string) error
}

type banRepo struct {
	db execDB
}

func NewBanRepository(db *sqlx.DB) BanRepository {
	return &banRepo{db: db}
}

func (r *banRepo) Upsert(ctx context.Context, params model.CreateBanParams) (*model.BanRecord, error) {
	var record model.BanRecord
	err := r.db.GetContext(ctx, &record, `
		INSERT INTO banned_users (device_id, reason, banned_at, banned_by)
		VALUES ($1, $2, NOW(), $3)
		ON CONFLICT (device_id) DO UPDATE SET
			reason = EXCLUDED.reason,
			banned_at = NOW(),
			banned_by = EXCLUDED.banned_by
		RETURNING *
	`, params.DeviceID, params.Reason, params.BannedBy)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *banRepo) FindByDeviceID(ctx context.Context, deviceID string) (*model.BanRecord, error) {
	var record model.BanRecord
	err := r.db.GetContext(ctx, &record, `
		SELECT * FROM banned_users WHERE device_id = $1
	`, deviceID)
	return HandleNotFound(&record, err)
}

func (r *banRepo) Exists(ctx context.Context, deviceID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM banned_users WHERE device_id = $1)
	`, deviceID)
	return exists, err
}

func (r *banRepo) List(ctx context.Context) ([]model.BanRecord, error) {
	records := []model.BanRecord{}
	err := r.db.SelectContext(ctx, &records, `
		SELECT * FROM banned_users ORDER BY banned_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *banRepo) Delete(ctx context.Context, deviceID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM banned_users WHERE device_id = $1
	`, deviceID)
	return err
}
