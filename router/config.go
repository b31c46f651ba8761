package router

import (
	"net/http"
	"time"
)

// Config holds the settings of the default middleware chain.
type Config struct {
	// Timeout bounds each request. Zero disables the timeout middleware.
	Timeout time.Duration
	CORS    CORSConfig
	// QuietdownRoutes are logged at debug level only. Probe and scrape
	// endpoints are polled constantly and would drown the access log.
	QuietdownRoutes []string
	// HideHeaders are replaced by their length in request logs.
	HideHeaders []string
}

// CORSConfig enables cross-origin requests when Origins is non-empty.
type CORSConfig struct {
	Origins          []string
	Methods          []string
	Headers          []string
	AllowCredentials bool
}

// DefaultConfig returns the settings used by the probe daemon.
func DefaultConfig() Config {
	return Config{
		Timeout:         30 * time.Second,
		QuietdownRoutes: []string{"/healthz", "/readyz", "/metrics"},
		HideHeaders:     []string{"Authorization", "Cookie", "Proxy-Authorization"},
		CORS: CORSConfig{
			Methods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			Headers: []string{"Content-Type", "X-Request-Id"},
		},
	}
}
