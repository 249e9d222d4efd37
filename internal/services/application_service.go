// This file implements public application intake: form validation,
// duplicate detection, persistence, and the best-effort confirmation email.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/models"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/notify"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/repository"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/security"
)

// uniqueViolation is the PostgreSQL error code raised when an insert hits
// the applicants email unique constraint.
const uniqueViolation = "23505"

// ApplicationService handles public application submissions.
//
// Submissions are validated before any write, stored together with their
// initial history entry, and acknowledged by email after the fact. Email
// delivery never decides the outcome of a submission.
type ApplicationService struct {
	applicantRepo *repository.ApplicantRepository
	validator     *security.ValidationService
	mailer        *notify.Mailer // nil when SMTP is not configured
	logger        *security.Logger
}

// NewApplicationService creates the service. mailer may be nil.
func NewApplicationService(validator *security.ValidationService, mailer *notify.Mailer, logger *security.Logger) *ApplicationService {
	return &ApplicationService{
		applicantRepo: repository.NewApplicantRepository(),
		validator:     validator,
		mailer:        mailer,
		logger:        logger,
	}
}

// Submit validates and stores one application.
//
// The stored applicant starts in "Under Review" with a single system-attributed
// history entry. A second submission with the same email is rejected as a
// ValidationError; the unique constraint on the email column backs this even
// under concurrent submissions.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - form: Parsed application form
//   - resumeFile: Stored filename of the uploaded resume (empty when none)
//
// Returns:
//   - *models.Applicant: Stored applicant with ID and CreatedAt populated
//   - error: ValidationError for bad input or a duplicate email, otherwise
//     the underlying database error
func (s *ApplicationService) Submit(ctx context.Context, form *models.ApplicationForm, resumeFile string) (*models.Applicant, error) {
	if err := s.validator.ValidateApplication(form); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	applicant := &models.Applicant{
		Email:         strings.ToLower(strings.TrimSpace(form.Email)),
		Name:          s.validator.SanitizeString(form.Name),
		Year:          s.validator.SanitizeString(form.Year),
		Major:         s.validator.SanitizeString(form.Major),
		Motivation:    s.validator.SanitizeString(form.Motivation),
		AppliedBefore: form.AppliedBefore,
		CandidateType: form.CandidateType,
		Preferences:   form.Preferences,
		ResumeFile:    resumeFile,
		Status:        models.StatusUnderReview,
	}

	if err := s.applicantRepo.Create(ctx, applicant); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, &ValidationError{
				Field:   "email",
				Message: "an application with this email already exists",
			}
		}
		return nil, err
	}

	// Best effort: the submission already succeeded, so a mail failure is
	// logged and otherwise ignored.
	go func(email, name string) {
		if err := s.mailer.SendApplicationReceived(email, name); err != nil {
			s.logger.Error("Failed to send application confirmation email", err)
		}
	}(applicant.Email, applicant.Name)

	return applicant, nil
}

// UpdateProfile applies a self-service edit to an existing application,
// looked up by email. Email, status, and history are not editable here;
// applications in a locked status (final decision made) reject all edits.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - email: Self-service lookup key of the application to edit
//   - form: Replacement values for the editable fields
//
// Returns:
//   - *models.Applicant: Updated applicant
//   - error: repository.ErrNotFound for an unknown email, ValidationError
//     for bad input or a locked application
func (s *ApplicationService) UpdateProfile(ctx context.Context, email string, form *models.ApplicationForm) (*models.Applicant, error) {
	applicant, err := s.applicantRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}

	if models.IsLockedStatus(applicant.Status) {
		return nil, &ValidationError{
			Field:   "status",
			Message: "this application can no longer be edited",
		}
	}

	// Same field rules as a fresh submission; the stored email and candidate
	// type stand in for the non-editable form fields.
	form.Email = applicant.Email
	form.CandidateType = applicant.CandidateType
	if err := s.validator.ValidateApplication(form); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	applicant.Name = s.validator.SanitizeString(form.Name)
	applicant.Year = s.validator.SanitizeString(form.Year)
	applicant.Major = s.validator.SanitizeString(form.Major)
	applicant.Motivation = s.validator.SanitizeString(form.Motivation)
	applicant.AppliedBefore = form.AppliedBefore
	applicant.Preferences = form.Preferences

	if err := s.applicantRepo.UpdateProfile(ctx, applicant); err != nil {
		return nil, err
	}

	return applicant, nil
}
