package model

import "time"

// AdminAccount is a moderator/administrator identity. The bearer token is
// stored as a SHA-256 hash, never in the clear.
type AdminAccount struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	TokenHash string    `db:"token_hash" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
