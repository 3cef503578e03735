// Package config loads client and gateway settings from environment
// variables with defaults, and validates them on startup.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	API     APIConfig
	Server  ServerConfig
	Import  ImportConfig
	Poll    PollConfig
	Rate    RateLimitConfig
	Logging LoggingConfig
}

// APIConfig points the client at the list-management backend.
type APIConfig struct {
	// URL is the backend base URL (default: http://localhost:8000)
	URL string `env:"PHARMADB_API_URL" envAlt:"API_BASE_URL" default:"http://localhost:8000"`

	// Timeout bounds every backend request (default: 30s)
	Timeout time.Duration `env:"PHARMADB_API_TIMEOUT" default:"30s"`

	// Token is a bearer token sent with every request. Takes precedence
	// over the token file.
	Token string `env:"PHARMADB_TOKEN"`

	// TokenFile holds a token saved by `pharmadb token set`
	TokenFile string `env:"PHARMADB_TOKEN_FILE" default:"~/.pharmadb/token"`

	// Actor is recorded as updated_by and uploader name when a request names none
	Actor string `env:"PHARMADB_ACTOR" default:"PharmaDB Client"`
}

// ServerConfig holds gateway HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"SERVER_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"120s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests. Row-by-row
	// imports run inside it (default: 110s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"110s"`

	// AllowedOrigins are the browser origins allowed by CORS
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173,http://localhost:3000"`

	// TrustedProxies are CIDRs whose X-Real-IP and X-Forwarded-For headers
	// are believed
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// ImportConfig holds CSV import and document upload settings.
type ImportConfig struct {
	// MaxFileSize is the largest accepted file in bytes (default: 10MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"10485760"`

	// MaxConcurrent is how many row-by-row imports run at once (default: 4)
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long an import waits for a slot (default: 15s)
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"15s"`

	// EntryLimit is how many rows an entry table view fetches (default: 100)
	EntryLimit int `env:"ENTRY_LIMIT" default:"100"`
}

// PollConfig holds view refresh intervals.
type PollConfig struct {
	Dashboard time.Duration `env:"POLL_DASHBOARD_INTERVAL" default:"10s"`
	Domain    time.Duration `env:"POLL_DOMAIN_INTERVAL" default:"10s"`
}

// RateLimitConfig holds per-IP gateway rate limiting.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the sustained rate per IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// Burst is how many requests an IP may make at once (default: 20)
	Burst int `env:"RATE_LIMIT_BURST" default:"20"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
