// Package security provides structured JSON logging for security events,
// HTTP requests, and application errors, plus threshold-based monitoring
// that raises alerts on suspicious activity.
package security

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// LogLevel identifies the severity of a log entry.
type LogLevel string

const (
	LogLevelInfo     LogLevel = "INFO"
	LogLevelWarning  LogLevel = "WARNING"
	LogLevelError    LogLevel = "ERROR"
	LogLevelCritical LogLevel = "CRITICAL"
	LogLevelSecurity LogLevel = "SECURITY"
)

// SecurityEventType classifies a security-relevant event.
type SecurityEventType string

const (
	// Authentication events
	EventLoginSuccess       SecurityEventType = "login_success"
	EventLoginFailure       SecurityEventType = "login_failure"
	EventLogout             SecurityEventType = "logout"
	EventAccountLocked      SecurityEventType = "account_locked"
	EventUnauthorizedAccess SecurityEventType = "unauthorized_access"

	// Application lifecycle events
	EventApplicationSubmit SecurityEventType = "application_submit"
	EventStatusChange      SecurityEventType = "status_change"
	EventApplicationDelete SecurityEventType = "application_delete"

	// Case night events
	EventAssignmentRun      SecurityEventType = "assignment_run"
	EventConfirmationChange SecurityEventType = "confirmation_change"
	EventExportGenerate     SecurityEventType = "export_generate"
	EventLargeExport        SecurityEventType = "large_export"

	// Admin account events
	EventAdminCreate SecurityEventType = "admin_create"
	EventAdminDelete SecurityEventType = "admin_delete"

	// Attack indicators
	EventRateLimitExceeded   SecurityEventType = "rate_limit_exceeded"
	EventCSRFViolation       SecurityEventType = "csrf_violation"
	EventUploadRejected      SecurityEventType = "upload_rejected"
	EventSQLInjectionAttempt SecurityEventType = "sql_injection_attempt"
	EventXSSAttempt          SecurityEventType = "xss_attempt"
)

// LogEntry is the JSON structure emitted for every log line.
// Empty fields are omitted so routine entries stay compact.
type LogEntry struct {
	Timestamp time.Time         `json:"timestamp"`
	Level     LogLevel          `json:"level"`
	Message   string            `json:"message"`
	EventType SecurityEventType `json:"event_type,omitempty"`

	// Actor context for security events
	ActorID    *int   `json:"actor_id,omitempty"`
	ActorEmail string `json:"actor_email,omitempty"`
	IPAddress  string `json:"ip_address,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`

	// HTTP request context
	Method    string `json:"method,omitempty"`
	Path      string `json:"path,omitempty"`
	Status    int    `json:"status,omitempty"`
	LatencyMS int64  `json:"latency_ms,omitempty"`

	// Error context
	Error string `json:"error,omitempty"`

	// Free-form extra fields
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// Logger emits structured JSON log entries, one per line.
// Safe for concurrent use; the underlying log.Logger serializes writes.
type Logger struct {
	output *log.Logger
}

// NewLogger creates a logger writing JSON lines to stdout.
func NewLogger() *Logger {
	return &Logger{
		output: log.New(os.Stdout, "", 0),
	}
}

// write marshals and emits a single entry. Marshal failures fall back to a
// plain-text line so the event is never silently dropped.
func (l *Logger) write(entry LogEntry) {
	entry.Timestamp = time.Now().UTC()

	data, err := json.Marshal(entry)
	if err != nil {
		l.output.Printf(`{"timestamp":%q,"level":"ERROR","message":"log marshal failed: %v"}`,
			entry.Timestamp.Format(time.RFC3339), err)
		return
	}
	l.output.Println(string(data))
}

// Info logs a routine informational message.
func (l *Logger) Info(message string) {
	l.write(LogEntry{Level: LogLevelInfo, Message: message})
}

// Warn logs a condition worth attention but not failing the request.
func (l *Logger) Warn(message string) {
	l.write(LogEntry{Level: LogLevelWarning, Message: message})
}

// Error logs a failure with its underlying error. err may be nil.
func (l *Logger) Error(message string, err error) {
	entry := LogEntry{Level: LogLevelError, Message: message}
	if err != nil {
		entry.Error = err.Error()
	}
	l.write(entry)
}

// Critical logs a failure requiring immediate operator attention.
func (l *Logger) Critical(message string, err error) {
	entry := LogEntry{Level: LogLevelCritical, Message: message}
	if err != nil {
		entry.Error = err.Error()
	}
	l.write(entry)
}

// SecurityEvent logs a security-relevant action with full actor context.
//
// Parameters:
//   - eventType: What happened (see SecurityEventType constants)
//   - actorID: Database ID of the acting admin (nil for anonymous actions)
//   - actorEmail: Email of the actor (empty for anonymous actions)
//   - ipAddress: Client IP from the request
//   - userAgent: Client User-Agent header
//   - extra: Optional event-specific fields
func (l *Logger) SecurityEvent(eventType SecurityEventType, actorID *int, actorEmail, ipAddress, userAgent string, extra map[string]interface{}) {
	l.write(LogEntry{
		Level:      LogLevelSecurity,
		Message:    fmt.Sprintf("security event: %s", eventType),
		EventType:  eventType,
		ActorID:    actorID,
		ActorEmail: actorEmail,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Extra:      extra,
	})
}

// HTTPRequest logs one completed HTTP request.
func (l *Logger) HTTPRequest(method, path string, status int, latencyMS int64, ipAddress, userAgent string) {
	l.write(LogEntry{
		Level:     LogLevelInfo,
		Message:   fmt.Sprintf("%s %s %d %dms", method, path, status, latencyMS),
		Method:    method,
		Path:      path,
		Status:    status,
		LatencyMS: latencyMS,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	})
}

// Alerter delivers security alerts to an external channel.
type Alerter interface {
	SendAlert(ctx context.Context, severity, title, message string) error
}

// LogAlerter is the default Alerter: it writes alerts to the security log.
// Deployments with a paging integration can substitute their own Alerter.
type LogAlerter struct {
	logger *Logger
}

// NewLogAlerter creates an Alerter backed by the given logger.
func NewLogAlerter(logger *Logger) *LogAlerter {
	return &LogAlerter{logger: logger}
}

func (a *LogAlerter) SendAlert(ctx context.Context, severity, title, message string) error {
	a.logger.Critical(fmt.Sprintf("ALERT [%s] %s: %s", severity, title, message), nil)
	return nil
}

// SecurityMonitor watches event counters and raises alerts when thresholds
// are crossed. Counters reset on the configured monitoring interval.
type SecurityMonitor struct {
	logger  *Logger
	config  *SecurityConfig
	alerter Alerter

	mu           sync.Mutex
	failedLogins map[string]int // IP -> failures in current window
	lastReset    time.Time
}

// NewSecurityMonitor creates a monitor with zeroed counters.
// A nil alerter falls back to logging alerts through logger.
func NewSecurityMonitor(logger *Logger, config *SecurityConfig, alerter Alerter) *SecurityMonitor {
	if alerter == nil {
		alerter = NewLogAlerter(logger)
	}
	return &SecurityMonitor{
		logger:       logger,
		config:       config,
		alerter:      alerter,
		failedLogins: make(map[string]int),
		lastReset:    time.Now(),
	}
}

// MonitorLoginFailure records a failed login and alerts once the per-IP
// failure count reaches the configured threshold.
func (m *SecurityMonitor) MonitorLoginFailure(ipAddress string) {
	m.mu.Lock()
	m.failedLogins[ipAddress]++
	count := m.failedLogins[ipAddress]
	m.mu.Unlock()

	if count == m.config.AlertThresholdFailures {
		m.alerter.SendAlert(context.Background(), "HIGH",
			"Repeated login failures",
			fmt.Sprintf("%d failed login attempts from %s", count, ipAddress))
	}
}

// MonitorLargeExport alerts when an export meets or exceeds the configured
// row threshold.
func (m *SecurityMonitor) MonitorLargeExport(actorEmail string, rowCount int, filters map[string]string) {
	if rowCount < m.config.AlertThresholdExport {
		return
	}

	m.alerter.SendAlert(context.Background(), "MEDIUM",
		"Large data export",
		fmt.Sprintf("%s exported %d rows (filters: %v)", actorEmail, rowCount, filters))
}

// ResetCounters clears the failure counters once the monitoring interval
// has elapsed. Called periodically by the monitoring loop.
func (m *SecurityMonitor) ResetCounters() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.lastReset) < m.config.MonitoringInterval {
		return
	}

	m.failedLogins = make(map[string]int)
	m.lastReset = time.Now()
}
