package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, logging level/format, CORS, request
// limits); AppConfig is everything specific to NoteHub.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration. The signing key is loaded once at
	// startup and never rotated mid-process.
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: notehub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionTTL    time.Duration // Session lifetime (signature + expiry window)

	// Google OAuth configuration (federated sign-in)
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL for OAuth callbacks (e.g., "https://notehub.example.com")
	BaseURL string
}
