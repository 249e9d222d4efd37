// Package security provides centralized security configuration and utilities
// for the application portal: input validation, rate limiting, structured
// security logging, and monitoring.
package security

import (
	"time"
)

// SecurityConfig holds all security-related configuration values.
// These values are tuned based on OWASP ASVS and NIST guidelines.
type SecurityConfig struct {
	// Secure password storage
	BcryptCost int // Cost factor for bcrypt hashing (recommended: 12)

	// Session management
	SessionTimeout    time.Duration // Session inactivity timeout
	SessionCookieName string        // Name of session cookie
	SessionSecure     bool          // Require HTTPS for session cookies
	SessionHTTPOnly   bool          // Prevent JavaScript access to session cookies
	SessionSameSite   string        // CSRF protection via SameSite attribute

	// Brute force protection
	LoginRateLimit          int           // Max login attempts per minute per IP
	AccountLockoutThreshold int           // Failed attempts before account lockout
	AccountLockoutDuration  time.Duration // How long account stays locked

	// Input validation
	MaxNameLength       int           // Maximum characters in applicant name
	MaxMotivationLength int           // Maximum characters in motivation essay
	MaxNotesLength      int           // Maximum characters in status change notes
	MaxPreferences      int           // Maximum slot preferences per application
	MaxUploadSize       int           // Maximum resume upload size in bytes
	MaxExportRows       int           // CSV exports are truncated past this many rows
	QueryTimeout        time.Duration // Upper bound on a single export query

	// Rate limiting (requests per time window)
	RateLimitLogin         int // Login endpoint, per minute per IP
	RateLimitApply         int // Application submission, per hour per IP
	RateLimitAssignmentRun int // Batch assignment trigger, per hour per admin
	RateLimitExport        int // CSV export, per hour per admin

	// Security monitoring
	MonitoringInterval     time.Duration // How often counters reset
	AlertThresholdFailures int           // Failed logins before alerting
	AlertThresholdExport   int           // Exported rows before alerting
}

// DefaultSecurityConfig returns security configuration with recommended defaults.
// These values comply with OWASP ASVS 4.0 and NIST SP 800-53 guidelines.
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		// Bcrypt cost 12 = 2^12 = 4096 iterations
		BcryptCost: 12,

		// Session configuration
		SessionTimeout:    8 * time.Hour,
		SessionCookieName: "tcg_portal_session",
		SessionSecure:     true,     // Requires HTTPS
		SessionHTTPOnly:   true,     // No JavaScript access
		SessionSameSite:   "Strict", // Strong CSRF protection

		// Brute force protection
		LoginRateLimit:          5,
		AccountLockoutThreshold: 10,
		AccountLockoutDuration:  30 * time.Minute,

		// Input validation limits
		MaxNameLength:       100,
		MaxMotivationLength: 5000,
		MaxNotesLength:      1000,
		MaxPreferences:      10,
		MaxUploadSize:       5 * 1024 * 1024, // 5MB resume
		MaxExportRows:       10000,
		QueryTimeout:        30 * time.Second,

		// Rate limits
		RateLimitLogin:         5,  // per minute per IP
		RateLimitApply:         10, // per hour per IP
		RateLimitAssignmentRun: 10, // per hour per admin
		RateLimitExport:        20, // per hour per admin

		// Security monitoring
		MonitoringInterval:     5 * time.Minute,
		AlertThresholdFailures: 5,
		AlertThresholdExport:   1000, // Export of >1000 rows triggers alert
	}
}
