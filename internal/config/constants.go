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
	ServerRequestTimeout = 60 * time.Second
	ServerReadTimeout    = 15 * time.Second
	// Above ServerRequestTimeout so timed-out handlers can still write 504s.
	ServerWriteTimeout    = 90 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// CodeCollisionRetries bounds how many fresh codes the workflow mints when an
// insert hits the global code uniqueness constraint before giving up.
const CodeCollisionRetries = 3
