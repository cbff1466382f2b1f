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
	ServerWriteTimeout    = 30 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Background job intervals
const CleanupJobInterval = 5 * time.Minute

// Password rules
const MinPasswordLength = 6

// BcryptCost is the work factor applied to every stored password hash.
const BcryptCost = 10

// Password reset tokens are single-use and expire after this window.
const ResetTokenTTL = time.Hour

// Login rate limiting (per client IP, sliding window)
const (
	LoginRateLimit  = 5
	LoginRateWindow = time.Minute
)

// Admin user search returns at most this many rows.
const UserSearchLimit = 20
