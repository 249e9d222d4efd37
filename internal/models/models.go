// Package models defines the domain entities and data transfer objects for the
// TCG application portal. It includes database models mapped to PostgreSQL tables,
// form DTOs for applicant and admin input, and view models for template rendering.
package models

import "time"

// ============================================================================
// Status Enumeration
// ============================================================================

// Application review statuses. Every applicant carries exactly one of these
// values at any time; the full transition history is kept in status_history.
//
// The data model places no restriction on which status may follow which:
// admins may move an application between any two recognized statuses. UI
// policy decides which statuses lock the application against self-service
// edits (Accepted, Rejected, Final Interview - Yes).
const (
	StatusUnderReview         = "Under Review"
	StatusCaseNightYes        = "Case Night - Yes"
	StatusCaseNightNo         = "Case Night - No"
	StatusFinalInterviewYes   = "Final Interview - Yes"
	StatusFinalInterviewNo    = "Final Interview - No"
	StatusFinalInterviewMaybe = "Final Interview - Maybe"
	StatusAccepted            = "Accepted"
	StatusRejected            = "Rejected"
)

// AllStatuses lists every recognized application status.
// Used for validation and for rendering the status dropdown.
var AllStatuses = []string{
	StatusUnderReview,
	StatusCaseNightYes,
	StatusCaseNightNo,
	StatusFinalInterviewYes,
	StatusFinalInterviewNo,
	StatusFinalInterviewMaybe,
	StatusAccepted,
	StatusRejected,
}

// IsValidStatus reports whether s is a member of the status enumeration.
// Status changes are rejected before any mutation when this returns false.
func IsValidStatus(s string) bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsLockedStatus reports whether an application in status s is closed to
// self-service edits. Once a final decision is made (or a final interview
// offer is out), the applicant can no longer change their submission.
func IsLockedStatus(s string) bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusFinalInterviewYes:
		return true
	}
	return false
}

// ============================================================================
// Candidate Type Enumeration
// ============================================================================

// Candidate types partition applicants into the two independent pools that
// the case-night assignment engine processes separately.
const (
	CandidateTechnical    = "Technical"
	CandidateNontechnical = "Non-Technical"
)

// IsValidCandidateType reports whether t is one of the two recognized pools.
// Applicants outside both pools are ineligible for case-night assignment.
func IsValidCandidateType(t string) bool {
	return t == CandidateTechnical || t == CandidateNontechnical
}

// ============================================================================
// Domain Models (Database Entities)
// ============================================================================

// Applicant represents one submitted application.
// Email is unique and is the primary lookup key for self-service access.
//
// Database Table: applicants
// Related: StatusHistoryEntry (one-to-many, append-only)
type Applicant struct {
	ID            int       `db:"id"`             // Primary key, auto-increment
	Email         string    `db:"email"`          // Unique, primary lookup key
	Name          string    `db:"name"`           // Full name
	Year          string    `db:"year"`           // Academic year (e.g., "Sophomore")
	Major         string    `db:"major"`          // Declared major
	Motivation    string    `db:"motivation"`     // Free-text motivation statement
	AppliedBefore bool      `db:"applied_before"` // Whether applicant applied in a prior cycle
	CandidateType string    `db:"candidate_type"` // "Technical" or "Non-Technical"
	Preferences   []string  `db:"preferences"`    // Preferred time-slot IDs, in listed order
	ResumeFile    string    `db:"resume_file"`    // Stored filename of uploaded resume (may be empty)
	Status        string    `db:"status"`         // Current review status
	CreatedAt     time.Time `db:"created_at"`     // Submission timestamp

	// StatusHistory is loaded separately from the status_history table.
	// Ordered oldest first; never truncated or rewritten.
	StatusHistory []StatusHistoryEntry `db:"-"`
}

// StatusHistoryEntry is one immutable audit record of a status transition.
// Entries are only ever appended; existing rows are never updated or deleted.
//
// Database Table: status_history
// Related: Applicant (many-to-one)
type StatusHistoryEntry struct {
	ID          int       `db:"id"`           // Primary key
	ApplicantID int       `db:"applicant_id"` // Foreign key to applicants.id
	Status      string    `db:"status"`       // Status the application moved to
	ChangedBy   string    `db:"changed_by"`   // Actor identifier (admin email or "System")
	ChangedAt   time.Time `db:"changed_at"`   // When the transition occurred
	Notes       string    `db:"notes"`        // Optional free-text note (empty when absent)
}

// GroupAssignment represents one applicant's case-night placement.
// Name, email, and candidate type are denormalized for reporting and export.
// The full set is regenerated from scratch on each assignment run.
//
// Database Table: group_assignments
// Confirmation Values: "Assigned", "Confirmed", "Cancelled"
type GroupAssignment struct {
	ID             int       `db:"id"`              // Primary key
	ApplicantID    int       `db:"applicant_id"`    // Foreign key to applicants.id
	ApplicantName  string    `db:"applicant_name"`  // Denormalized applicant name
	ApplicantEmail string    `db:"applicant_email"` // Denormalized applicant email
	CandidateType  string    `db:"candidate_type"`  // Pool the applicant belongs to
	SlotID         string    `db:"slot_id"`         // Assigned time-slot identifier
	SlotLabel      string    `db:"slot_label"`      // Human-readable time range
	GroupNumber    int       `db:"group_number"`    // 1-based within (slot, pool)
	GroupID        string    `db:"group_id"`        // Composite "{slot}-{groupNumber}"
	RunID          string    `db:"run_id"`          // UUID shared by all records of one batch run
	AssignedBy     string    `db:"assigned_by"`     // "System" for batch runs, admin email for edits
	AssignedAt     time.Time `db:"assigned_at"`     // When the record was created
	Confirmation   string    `db:"confirmation"`    // Tri-state confirmation status
	Notes          string    `db:"notes"`           // Optional notes
}

// Confirmation states for a GroupAssignment.
const (
	ConfirmationAssigned  = "Assigned"
	ConfirmationConfirmed = "Confirmed"
	ConfirmationCancelled = "Cancelled"
)

// AdminUser represents a portal administrator account.
//
// Database Table: admins
// Security Note: PasswordHash must never appear in API responses or logs.
type AdminUser struct {
	ID           int       `db:"id"`
	Email        string    `db:"email"`         // Unique, used for login
	Name         string    `db:"name"`          // Display name
	PasswordHash string    `db:"password_hash"` // bcrypt hashed password
	CreatedAt    time.Time `db:"created_at"`
}

// AuditLog represents an audit trail entry for administrative actions.
//
// Database Table: audit_logs
// Purpose: Security auditing, compliance reporting, forensic analysis
type AuditLog struct {
	ID         int       // Primary key
	ActorID    *int      // Admin who performed the action (nil for system actions)
	Action     string    // Action type (e.g., "UPDATE_STATUS", "RUN_ASSIGNMENT")
	ObjectType string    // Type of object affected (e.g., "applicant", "assignment_run")
	ObjectID   *int      // ID of affected object (nil when not applicable)
	IPAddress  string    // Source IP address
	UserAgent  string    // Browser/client identifier
	CreatedAt  time.Time // When action occurred
}

// ============================================================================
// Data Transfer Objects (DTOs) - Form Input
// ============================================================================

// ApplicationForm represents data submitted from the public application form.
type ApplicationForm struct {
	Email         string   // Applicant's email address
	Name          string   // Full name
	Year          string   // Academic year
	Major         string   // Declared major
	Motivation    string   // Free-text motivation statement
	AppliedBefore bool     // "Have you applied before?" checkbox
	CandidateType string   // Pool selection
	Preferences   []string // Preferred case-night slot IDs, in listed order
}

// StatusUpdateForm represents a status-change command from the review screen.
type StatusUpdateForm struct {
	NewStatus string // Target status (must be in AllStatuses)
	Notes     string // Optional reviewer note
}

// LoginForm represents admin login credentials.
type LoginForm struct {
	Email    string
	Password string // Plain-text password, verified against bcrypt hash
}

// ============================================================================
// View Models - Template Rendering
// ============================================================================

// ApplicantView is an enriched applicant for template rendering.
// Combines the applicant with the latest history entry for list screens.
type ApplicantView struct {
	Applicant
	LastChangedBy string     // Actor of the most recent status change
	LastChangedAt *time.Time // Timestamp of the most recent status change (nil when unchanged)
}

// AssignmentSummaryRow aggregates one (pool, slot) bucket for the case-night
// overview: how many applicants were placed and how many groups were formed.
type AssignmentSummaryRow struct {
	CandidateType  string // Pool
	SlotID         string // Time-slot identifier
	SlotLabel      string // Human-readable time range
	ApplicantCount int    // Applicants placed in this bucket
	GroupCount     int    // Groups formed (last may be partial)
}
