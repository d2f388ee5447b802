package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/resultshub/chat-server-go/internal/database"
	"github.com/resultshub/chat-server-go/internal/model"
)

type BroadcastRepository interface {
	// CreateAndPrune inserts the notification and deletes every row beyond
	// the keep newest by created_at, in one transaction so a concurrent
	// reader never observes the collection over its cap. Deletes run in
	// batches of at most batchSize rows per statement. Returns the stored
	// notification and the number of rows pruned.
	CreateAndPrune(ctx context.Context, params model.CreateBroadcastParams, keep, batchSize int) (*model.BroadcastNotification, int64, error)
	ListRecent(ctx context.Context, limit int) ([]model.BroadcastNotification, error)
	Count(ctx context.Context) (int, error)
}

type broadcastRepo struct {
	db *database.DB
}

func NewBroadcastRepository(db *database.DB) BroadcastRepository {
	return &broadcastRepo{db: db}
}

func (r *broadcastRepo) CreateAndPrune(ctx context.Context, params model.CreateBroadcastParams, keep, batchSize int) (*model.BroadcastNotification, int64, error) {
	var notification model.BroadcastNotification
	var pruned int64

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &notification, `
			INSERT INTO broadcast_notifications (title, message, url, type, duration_seconds, sent_by)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING *
		`, params.Title, params.Message, params.URL, params.Type, params.DurationSeconds, params.SentBy); err != nil {
			return err
		}

		var err error
		pruned, err = pruneBroadcasts(ctx, tx, keep, batchSize)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	return &notification, pruned, nil
}

func pruneBroadcasts(ctx context.Context, q execDB, keep, batchSize int) (int64, error) {
	var total int64
	for {
		result, err := q.ExecContext(ctx, `
			DELETE FROM broadcast_notifications
			WHERE id IN (
				SELECT id FROM broadcast_notifications
				ORDER BY created_at DESC
				OFFSET $1 LIMIT $2
			)
		`, keep, batchSize)
		if err != nil {
			return total, err
		}
		deleted, err := result.RowsAffected()
		if err != nil {
			return total, err
		}
		total += deleted
		if deleted < int64(batchSize) {
			return total, nil
		}
	}
}

func (r *broadcastRepo) ListRecent(ctx context.Context, limit int) ([]model.BroadcastNotification, error) {
	notifications := []model.BroadcastNotification{}
	err := r.db.SelectContext(ctx, &notifications, `
		SELECT * FROM broadcast_notifications
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *broadcastRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM broadcast_notifications`)
	return count, err
}
