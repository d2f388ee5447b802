package model

import "time"

// SessionPresence is a heartbeat-refreshed record of a client currently in
// the chat. The username and device id are client-asserted; nothing here is
// verified identity.
type SessionPresence struct {
	SessionID string    `db:"session_id" json:"sessionId"`
	Username  string    `db:"username" json:"username"`
	DeviceID  string    `db:"device_id" json:"deviceId"`
	LastSeen  time.Time `db:"last_seen" json:"lastSeen"`
}

type HeartbeatParams struct {
	SessionID string
	Username  string
	DeviceID  string
}
