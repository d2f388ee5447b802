package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/resultshub/chat-server-go/internal/model"
)

type PushSubscriptionRepository interface {
	// Upsert is field-aware: resubscribing under the same derived id
	// overwrites the endpoint/keys and refreshes updated_at while created_at
	// is preserved.
	Upsert(ctx context.Context, params model.UpsertSubscriptionParams) (*model.PushSubscription, error)
	FindByID(ctx context.Context, id string) (*model.PushSubscription, error)
	ListAll(ctx context.Context) ([]model.PushSubscription, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type pushSubRepo struct {
	db execDB
}

func NewPushSubscriptionRepository(db *sqlx.DB) PushSubscriptionRepository {
	return &pushSubRepo{db: db}
}

func (r *pushSubRepo) Upsert(ctx context.Context, params model.UpsertSubscriptionParams) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := r.db.GetContext(ctx, &sub, `
		INSERT INTO push_subscriptions (id, anon_id, roll_number, endpoint, p256dh, auth)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			anon_id = EXCLUDED.anon_id,
			roll_number = COALESCE(EXCLUDED.roll_number, push_subscriptions.roll_number),
			endpoint = EXCLUDED.endpoint,
			p256dh = EXCLUDED.p256dh,
			auth = EXCLUDED.auth,
			updated_at = NOW()
		RETURNING *
	`, params.ID, params.AnonID, params.RollNumber, params.Endpoint, params.P256dh, params.Auth)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *pushSubRepo) FindByID(ctx context.Context, id string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := r.db.GetContext(ctx, &sub, `
		SELECT * FROM push_subscriptions WHERE id = $1
	`, id)
	return HandleNotFound(&sub, err)
}

func (r *pushSubRepo) ListAll(ctx context.Context) ([]model.PushSubscription, error) {
	subs := []model.PushSubscription{}
	err := r.db.SelectContext(ctx, &subs, `
		SELECT * FROM push_subscriptions ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *pushSubRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM push_subscriptions WHERE id = $1
	`, id)
	return err
}

func (r *pushSubRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM push_subscriptions`)
	return count, err
}
