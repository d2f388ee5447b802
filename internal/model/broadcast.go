package model

import "time"

// BroadcastNotification is an administrator announcement shown to all
// clients for DurationSeconds. The collection is capped: every publish
// prunes all but the newest entries.
type BroadcastNotification struct {
	ID              string           `db:"id" json:"id"`
	Title           string           `db:"title" json:"title"`
	Message         string           `db:"message" json:"message"`
	URL             *string          `db:"url" json:"url,omitempty"`
	Type            NotificationType `db:"type" json:"type"`
	DurationSeconds int              `db:"duration_seconds" json:"durationSeconds"`
	CreatedAt       time.Time        `db:"created_at" json:"createdAt"`
	SentBy          string           `db:"sent_by" json:"sentBy"`
}

type CreateBroadcastParams struct {
	Title           string
	Message         string
	URL             *string
	Type            NotificationType
	DurationSeconds int
	SentBy          string
}
