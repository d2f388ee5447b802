package model

import "time"

// SubscriptionKeys are the browser-issued encryption keys for a push
// endpoint.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// WebPushSubscription is the subscription object as posted by the browser.
type WebPushSubscription struct {
	Endpoint string           `json:"endpoint"`
	Keys     SubscriptionKeys `json:"keys"`
}

// PushSubscription is a stored delivery subscription. The id is derived
// deterministically from the subscription (p256dh key, endpoint hash, or the
// anon id as last resort) so resubscribing overwrites instead of duplicating.
type PushSubscription struct {
	ID         string    `db:"id" json:"id"`
	AnonID     string    `db:"anon_id" json:"anonId"`
	RollNumber *string   `db:"roll_number" json:"rollNumber,omitempty"`
	Endpoint   string    `db:"endpoint" json:"endpoint"`
	P256dh     string    `db:"p256dh" json:"p256dh"`
	Auth       string    `db:"auth" json:"auth"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

type UpsertSubscriptionParams struct {
	ID         string
	AnonID     string
	RollNumber *string
	Endpoint   string
	P256dh     string
	Auth       string
}

// DeliveryLogEntry records one fan-out batch for audit. The log is
// append-only and, unlike broadcast notifications, never pruned.
type DeliveryLogEntry struct {
	ID                 string    `db:"id" json:"id"`
	Title              string    `db:"title" json:"title"`
	Body               string    `db:"body" json:"body"`
	URL                *string   `db:"url" json:"url,omitempty"`
	TotalSubscriptions int       `db:"total_subscriptions" json:"totalSubscriptions"`
	Successful         int       `db:"successful" json:"successful"`
	Failed             int       `db:"failed" json:"failed"`
	SentAt             time.Time `db:"sent_at" json:"sentAt"`
}

type CreateDeliveryLogParams struct {
	Title              string
	Body               string
	URL                *string
	TotalSubscriptions int
	Successful         int
	Failed             int
}

// BroadcastSummary is returned by the fan-out dispatcher.
type BroadcastSummary struct {
	TotalSubscriptions int `json:"totalSubscriptions"`
	Successful         int `json:"successful"`
	Failed             int `json:"failed"`
}
