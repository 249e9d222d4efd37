// Package security provides input validation functionality for the
// application form and admin console.
package security

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/models"
)

// ValidationService provides centralized input validation functions.
// All validation methods return descriptive errors that are safe to show to users.
type ValidationService struct {
	config *SecurityConfig
}

// NewValidationService creates a new validation service with security configuration.
func NewValidationService(config *SecurityConfig) *ValidationService {
	return &ValidationService{
		config: config,
	}
}

// ValidateEmail validates email address format according to RFC 5322.
// Returns error if email is invalid or too long.
func (v *ValidationService) ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}

	if len(email) > 255 {
		return fmt.Errorf("email must be less than 255 characters")
	}

	// Use Go's standard mail.ParseAddress for RFC 5322 compliance
	_, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email format")
	}

	return nil
}

// ValidatePassword validates password meets minimum security requirements.
// Requirements: At least 8 characters, contains uppercase, lowercase, and number.
func (v *ValidationService) ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}

	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	if len(password) > 128 {
		return fmt.Errorf("password must be less than 128 characters")
	}

	hasUpper := regexp.MustCompile(`[A-Z]`).MatchString(password)
	hasLower := regexp.MustCompile(`[a-z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}

	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}

	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

// ValidateName validates applicant name length and content.
func (v *ValidationService) ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is required")
	}

	if utf8.RuneCountInString(name) > v.config.MaxNameLength {
		return fmt.Errorf("name must be %d characters or less", v.config.MaxNameLength)
	}

	return nil
}

// ValidateStatus validates a status value against the recruitment lifecycle.
func (v *ValidationService) ValidateStatus(status string) error {
	if status == "" {
		return fmt.Errorf("status is required")
	}

	if !models.IsValidStatus(status) {
		return fmt.Errorf("invalid status (must be one of: %s)", strings.Join(models.AllStatuses, ", "))
	}

	return nil
}

// ValidateCandidateType validates the candidate pool selector.
func (v *ValidationService) ValidateCandidateType(candidateType string) error {
	if candidateType == "" {
		return fmt.Errorf("candidate type is required")
	}

	if !models.IsValidCandidateType(candidateType) {
		return fmt.Errorf("invalid candidate type (must be %q or %q)",
			models.CandidateTechnical, models.CandidateNontechnical)
	}

	return nil
}

// ValidatePreferences validates the slot preference list size. Individual
// preference values are not checked against the slot set here; unrecognized
// preferences are tolerated and resolved by the assignment engine.
func (v *ValidationService) ValidatePreferences(preferences []string) error {
	if len(preferences) == 0 {
		return fmt.Errorf("at least one time slot preference is required")
	}

	if len(preferences) > v.config.MaxPreferences {
		return fmt.Errorf("at most %d preferences are allowed", v.config.MaxPreferences)
	}

	seen := make(map[string]bool, len(preferences))
	for _, p := range preferences {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("preferences cannot be blank")
		}
		if seen[p] {
			return fmt.Errorf("duplicate preference %q", p)
		}
		seen[p] = true
	}

	return nil
}

// ValidateMotivation validates the motivation essay size.
func (v *ValidationService) ValidateMotivation(motivation string) error {
	if strings.TrimSpace(motivation) == "" {
		return fmt.Errorf("motivation is required")
	}

	if utf8.RuneCountInString(motivation) > v.config.MaxMotivationLength {
		return fmt.Errorf("motivation must be %d characters or less", v.config.MaxMotivationLength)
	}

	return nil
}

// ValidateNotes validates optional free-text notes (status changes,
// confirmation updates).
func (v *ValidationService) ValidateNotes(notes string) error {
	if utf8.RuneCountInString(notes) > v.config.MaxNotesLength {
		return fmt.Errorf("notes must be %d characters or less", v.config.MaxNotesLength)
	}

	return nil
}

// ValidateApplication validates a complete application form submission.
// Returns the first validation failure encountered, field order matching
// the form layout.
func (v *ValidationService) ValidateApplication(form *models.ApplicationForm) error {
	if err := v.ValidateName(form.Name); err != nil {
		return err
	}
	if err := v.ValidateEmail(form.Email); err != nil {
		return err
	}
	if err := v.ValidateRequired("year", form.Year); err != nil {
		return err
	}
	if err := v.ValidateRequired("major", form.Major); err != nil {
		return err
	}
	if err := v.ValidateMotivation(form.Motivation); err != nil {
		return err
	}
	if err := v.ValidateCandidateType(form.CandidateType); err != nil {
		return err
	}
	return v.ValidatePreferences(form.Preferences)
}

// SanitizeString removes potentially dangerous characters from string input.
// Removes control characters and normalizes whitespace.
func (v *ValidationService) SanitizeString(input string) string {
	// Remove control characters (except newline and tab)
	input = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`).ReplaceAllString(input, "")

	// Normalize whitespace
	input = strings.TrimSpace(input)

	return input
}

// ValidateRequired checks if a required field is present and non-empty.
func (v *ValidationService) ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	return nil
}

// ValidateLength validates string length is within bounds.
func (v *ValidationService) ValidateLength(fieldName string, value string, min, max int) error {
	length := utf8.RuneCountInString(value)

	if length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}

	if length > max {
		return fmt.Errorf("%s must be %d characters or less", fieldName, max)
	}

	return nil
}
