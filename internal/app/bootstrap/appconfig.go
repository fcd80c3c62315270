// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, CORS); AppConfig carries everything specific to this
// service: where the Mongo instance lives, where the pre-processed
// document trees are mounted, and how sessions are signed.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session configuration. SessionKey signs the cookie wrapping the
	// opaque token; SessionTTL is the fixed validity window.
	SessionKey    string
	SessionName   string
	SessionDomain string
	SessionTTL    time.Duration

	// Content roots. DocumentsRoot holds catalog document folders,
	// BatchRoot holds ad-hoc batch job output trees.
	DocumentsRoot string
	BatchRoot     string

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL for OAuth callbacks
	BaseURL string
}
