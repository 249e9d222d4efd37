// Package security provides security tests for input validation on the
// application form and admin console.
package security

import (
	"strings"
	"testing"

	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/models"
)

func newTestValidator() *ValidationService {
	return NewValidationService(DefaultSecurityConfig())
}

// TestValidateEmail tests email format validation.
func TestValidateEmail(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid email", "applicant@ucsd.edu", false},
		{"valid with plus", "applicant+tcg@ucsd.edu", false},
		{"empty", "", true},
		{"missing domain", "applicant@", true},
		{"missing at sign", "applicant.ucsd.edu", true},
		{"too long", strings.Repeat("a", 250) + "@ucsd.edu", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

// TestValidateStatus tests lifecycle status validation.
func TestValidateStatus(t *testing.T) {
	v := newTestValidator()

	for _, status := range models.AllStatuses {
		if err := v.ValidateStatus(status); err != nil {
			t.Errorf("ValidateStatus(%q) should pass, got %v", status, err)
		}
	}

	invalid := []string{"", "Pending", "accepted", "Case Night"}
	for _, status := range invalid {
		if err := v.ValidateStatus(status); err == nil {
			t.Errorf("ValidateStatus(%q) should fail", status)
		}
	}
}

// TestValidateCandidateType tests pool selector validation.
func TestValidateCandidateType(t *testing.T) {
	v := newTestValidator()

	if err := v.ValidateCandidateType(models.CandidateTechnical); err != nil {
		t.Errorf("Technical should pass, got %v", err)
	}
	if err := v.ValidateCandidateType(models.CandidateNontechnical); err != nil {
		t.Errorf("Non-Technical should pass, got %v", err)
	}
	if err := v.ValidateCandidateType("technical"); err == nil {
		t.Error("lowercase pool name should fail")
	}
	if err := v.ValidateCandidateType(""); err == nil {
		t.Error("empty pool should fail")
	}
}

// TestValidatePreferences tests slot preference list validation.
func TestValidatePreferences(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name        string
		preferences []string
		wantErr     bool
	}{
		{"single preference", []string{"A"}, false},
		{"full ranking", []string{"B", "A", "C"}, false},
		// Unrecognized slot IDs are accepted; the engine resolves them
		{"unrecognized slot", []string{"Z"}, false},
		{"empty list", nil, true},
		{"blank entry", []string{"A", " "}, true},
		{"duplicate", []string{"A", "A"}, true},
		{"too many", []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePreferences(tt.preferences)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePreferences(%v) error = %v, wantErr %v", tt.preferences, err, tt.wantErr)
			}
		})
	}
}

// TestValidateApplication tests full form validation.
func TestValidateApplication(t *testing.T) {
	v := newTestValidator()

	valid := models.ApplicationForm{
		Name:          "Ada Lovelace",
		Email:         "ada@ucsd.edu",
		Year:          "Junior",
		Major:         "Mathematics",
		Motivation:    "I want to learn consulting.",
		CandidateType: models.CandidateTechnical,
		Preferences:   []string{"A", "C"},
	}

	if err := v.ValidateApplication(&valid); err != nil {
		t.Fatalf("valid form should pass, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(f *models.ApplicationForm)
	}{
		{"missing name", func(f *models.ApplicationForm) { f.Name = " " }},
		{"bad email", func(f *models.ApplicationForm) { f.Email = "not-an-email" }},
		{"missing year", func(f *models.ApplicationForm) { f.Year = "" }},
		{"missing major", func(f *models.ApplicationForm) { f.Major = "" }},
		{"missing motivation", func(f *models.ApplicationForm) { f.Motivation = "" }},
		{"oversize motivation", func(f *models.ApplicationForm) { f.Motivation = strings.Repeat("x", 5001) }},
		{"bad pool", func(f *models.ApplicationForm) { f.CandidateType = "Other" }},
		{"no preferences", func(f *models.ApplicationForm) { f.Preferences = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			tt.mutate(&form)
			if err := v.ValidateApplication(&form); err == nil {
				t.Error("expected validation failure")
			}
		})
	}
}

// TestSanitizeString tests control character removal.
// TestValidatePassword tests admin password complexity rules.
func TestValidatePassword(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Str0ngPassw0rd", false},
		{"empty", "", true},
		{"too short", "Ab1", true},
		{"no uppercase", "weakpassword1", true},
		{"no lowercase", "WEAKPASSWORD1", true},
		{"no number", "WeakPassword", true},
		{"too long", "Aa1" + strings.Repeat("x", 126), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

// TestValidateNotes tests the note length cap. Empty notes are allowed.
func TestValidateNotes(t *testing.T) {
	v := newTestValidator()

	if err := v.ValidateNotes(""); err != nil {
		t.Errorf("ValidateNotes(\"\") should pass, got %v", err)
	}
	if err := v.ValidateNotes("moved to final round after panel review"); err != nil {
		t.Errorf("ValidateNotes on a short note should pass, got %v", err)
	}
	if err := v.ValidateNotes(strings.Repeat("n", 1001)); err == nil {
		t.Error("ValidateNotes should fail above the configured cap")
	}
}

// TestValidateLength tests the generic bounds check.
func TestValidateLength(t *testing.T) {
	v := newTestValidator()

	if err := v.ValidateLength("name", "Jordan", 2, 100); err != nil {
		t.Errorf("ValidateLength should pass for an in-bounds value, got %v", err)
	}
	if err := v.ValidateLength("name", "J", 2, 100); err == nil {
		t.Error("ValidateLength should fail below the minimum")
	}
	if err := v.ValidateLength("name", strings.Repeat("a", 101), 2, 100); err == nil {
		t.Error("ValidateLength should fail above the maximum")
	}
}

func TestSanitizeString(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		input    string
		expected string
	}{
		{"  hello  ", "hello"},
		{"hello\x00world", "helloworld"},
		{"line1\nline2", "line1\nline2"}, // newlines survive
		{"tab\there", "tab\there"},       // tabs survive
	}

	for _, tt := range tests {
		if got := v.SanitizeString(tt.input); got != tt.expected {
			t.Errorf("SanitizeString(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
