package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/resultshub/chat-server-go/internal/model"
)

// DeliveryLogRepository is append-only. There is no retention sweep here:
// unlike broadcast notifications the delivery log grows without bound.
type DeliveryLogRepository interface {
	Append(ctx context.Context, params model.CreateDeliveryLogParams) (*model.DeliveryLogEntry, error)
	List(ctx context.Context, limit, offset int) ([]model.DeliveryLogEntry, error)
	Count(ctx context.Context) (int, error)
}

type deliveryLogRepo struct {
	db execDB
}

func NewDeliveryLogRepository(db *sqlx.DB) DeliveryLogRepository {
	return &deliveryLogRepo{db: db}
}

func (r *deliveryLogRepo) Append(ctx context.Context, params model.CreateDeliveryLogParams) (*model.DeliveryLogEntry, error) {
	var entry model.DeliveryLogEntry
	err := r.db.GetContext(ctx, &entry, `
		INSERT INTO push_delivery_log (title, body, url, total_subscriptions, successful, failed)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`, params.Title, params.Body, params.URL, params.TotalSubscriptions, params.Successful, params.Failed)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *deliveryLogRepo) List(ctx context.Context, limit, offset int) ([]model.DeliveryLogEntry, error) {
	entries := []model.DeliveryLogEntry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT * FROM push_delivery_log
		ORDER BY sent_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *deliveryLogRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM push_delivery_log`)
	return count, err
}
