package model

import "time"

// BanRecord maps a device id to its ban. Existence of the record is the ban:
// there is no enabled flag, unban deletes the row.
type BanRecord struct {
	DeviceID string    `db:"device_id" json:"deviceId"`
	Reason   string    `db:"reason" json:"reason"`
	BannedAt time.Time `db:"banned_at" json:"bannedAt"`
	BannedBy string    `db:"banned_by" json:"bannedBy"`
}

type CreateBanParams struct {
	DeviceID string
	Reason   string
	BannedBy string
}
