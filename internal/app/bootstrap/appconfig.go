// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, CORS, body limits). AppConfig is everything specific to
// MentorLink: the MongoDB connection, session cookies, SMTP delivery,
// OTP login, and the superadmin bootstrap.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: mentorlink-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host (e.g., localhost for Mailpit)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string // SMTP username (empty for Mailpit)
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address (e.g., noreply@mentorlink.edu)
	MailFromName string // From display name (e.g., MentorLink)

	// Background mail queue
	MailQueueSize int // Buffered queue capacity before Enqueue starts failing
	MailWorkers   int // Delivery worker goroutines

	// Base URL for links embedded in outgoing email
	BaseURL string // e.g., "https://mentorlink.example.edu"

	// Site name shown in email subjects and bodies
	SiteName string

	// OTP login settings
	OTPExpiry time.Duration // Lifetime of a one-time login code

	// SuperAdmin bootstrap: when both are set, the account is created or
	// promoted at startup so a fresh deployment is never locked out.
	SuperAdminEmail string
	SuperAdminMUJid string
}
