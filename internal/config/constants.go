package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerWriteTimeout    = 60 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Broadcast retention: every publish prunes all but the newest entries.
const (
	BroadcastRetention = 50
	DeleteBatchSize    = 500
)

// Report listing bounds: fetch at most FetchCap rows, return at most ListCap
// after in-memory filtering.
const (
	ReportFetchCap = 1000
	ReportListCap  = 100
)

// Broadcast payload limits and display duration bounds
const (
	BroadcastTitleMax        = 100
	BroadcastMessageMax      = 500
	BroadcastDurationMin     = 5
	BroadcastDurationMax     = 300
	BroadcastDurationDefault = 30
)

// Pagination bounds for list endpoints
const (
	PageDefaultLimit = 50
	PageMaxLimit     = 100
)
