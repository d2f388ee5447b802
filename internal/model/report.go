package model

import "time"

// MessageReport is a participant-filed report of a chat message. Only the
// workflow state lives here; the message text is carried verbatim for
// moderator review, never analyzed.
type MessageReport struct {
	ID               string       `db:"id" json:"id"`
	MessageID        string       `db:"message_id" json:"messageId"`
	MessageText      string       `db:"message_text" json:"messageText"`
	ReportedUsername string       `db:"reported_username" json:"reportedUsername"`
	ReportedDeviceID string       `db:"reported_device_id" json:"reportedDeviceId"`
	ReporterDeviceID string       `db:"reporter_device_id" json:"reporterDeviceId"`
	Reason           string       `db:"reason" json:"reason"`
	Status           ReportStatus `db:"status" json:"status"`
	Timestamp        time.Time    `db:"timestamp" json:"timestamp"`
	ReviewedAt       *time.Time   `db:"reviewed_at" json:"reviewedAt,omitempty"`
}

type CreateReportParams struct {
	MessageID        string
	MessageText      string
	ReportedUsername string
	ReportedDeviceID string
	ReporterDeviceID string
	Reason           string
}
