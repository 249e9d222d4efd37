// This file handles the public application form: rendering, submission with
// resume upload, and the self-service status lookup.
package handlers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/assignment"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/models"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/repository"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/security"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/services"
)

// uploadDir is where submitted resumes are stored, named by a generated UUID
// so original filenames never touch the filesystem.
const uploadDir = "./uploads"

// allowedResumeExtensions are the accepted resume file types.
var allowedResumeExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// ApplyHandler handles the public-facing application endpoints.
// These routes require no session; abuse protection comes from the
// per-endpoint rate limiter and input validation middleware.
type ApplyHandler struct {
	appService    *services.ApplicationService
	applicantRepo *repository.ApplicantRepository
	config        *security.SecurityConfig
	logger        *security.Logger
}

// NewApplyHandler creates a new instance of ApplyHandler.
//
// Parameters:
//   - appService: Application submission service (validation, persistence, email)
//   - config: Security configuration (upload size limit)
//   - logger: Logger for security events
//
// Returns:
//   - *ApplyHandler: Initialized handler instance
func NewApplyHandler(appService *services.ApplicationService, config *security.SecurityConfig, logger *security.Logger) *ApplyHandler {
	return &ApplyHandler{
		appService:    appService,
		applicantRepo: repository.NewApplicantRepository(),
		config:        config,
		logger:        logger,
	}
}

// ShowForm renders the public application form.
// The slot options come from the case-night configuration so the form and
// the assignment engine always agree on the slot set.
//
// Template: web/templates/apply.html with layouts/blank layout
func (h *ApplyHandler) ShowForm(c *fiber.Ctx) error {
	return c.Render("apply", fiber.Map{
		"Title":          "Apply - Triton Consulting Group",
		"Slots":          assignment.DefaultConfig().Slots,
		"CandidateTypes": []string{models.CandidateTechnical, models.CandidateNontechnical},
	}, "layouts/blank")
}

// Submit handles application form submission.
// Parses the multipart form, stores the resume upload, and delegates
// validation and persistence to the application service. A failed resume
// save is logged and swallowed: the application is still accepted.
//
// Parameters:
//   - c: Fiber context containing multipart form data
//
// Returns:
//   - error: Re-rendered form with message on validation failure, thank-you page on success
//
// Form Fields: name, email, year, major, motivation, applied_before,
// candidate_type, preferences (multiple)
func (h *ApplyHandler) Submit(c *fiber.Ctx) error {
	form := &models.ApplicationForm{
		Email:         c.FormValue("email"),
		Name:          c.FormValue("name"),
		Year:          c.FormValue("year"),
		Major:         c.FormValue("major"),
		Motivation:    c.FormValue("motivation"),
		AppliedBefore: c.FormValue("applied_before") == "on",
		CandidateType: c.FormValue("candidate_type"),
	}
	form.Preferences = formValues(c, "preferences")

	resumeFile, err := h.saveResume(c)
	if err != nil {
		return h.renderFormError(c, form, err.Error())
	}

	applicant, err := h.appService.Submit(c.Context(), form, resumeFile)
	if err != nil {
		if services.IsValidation(err) {
			return h.renderFormError(c, form, err.Error())
		}
		return err
	}

	h.logger.SecurityEvent(
		security.EventApplicationSubmit,
		nil,
		applicant.Email,
		c.IP(),
		c.Get("User-Agent"),
		map[string]interface{}{
			"applicant_id":   applicant.ID,
			"candidate_type": applicant.CandidateType,
		},
	)

	return c.Render("thankyou", fiber.Map{
		"Title": "Application Received - Triton Consulting Group",
		"Name":  applicant.Name,
		"Email": applicant.Email,
	}, "layouts/blank")
}

// ShowStatus handles the self-service status lookup by email.
// Renders the current status and full history for the matching application,
// or the lookup form again when no application exists for the address.
//
// Template: web/templates/status.html with layouts/blank layout
func (h *ApplyHandler) ShowStatus(c *fiber.Ctx) error {
	email := strings.ToLower(strings.TrimSpace(c.Query("email")))
	if email == "" {
		return c.Render("status", fiber.Map{
			"Title": "Check Application Status - Triton Consulting Group",
		}, "layouts/blank")
	}

	applicant, err := h.applicantRepo.GetByEmail(c.Context(), email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Render("status", fiber.Map{
				"Title": "Check Application Status - Triton Consulting Group",
				"Error": "No application found for that email address",
			}, "layouts/blank")
		}
		return err
	}

	history, err := h.applicantRepo.ListHistory(c.Context(), applicant.ID)
	if err != nil {
		return err
	}

	return c.Render("status", fiber.Map{
		"Title":     "Application Status - Triton Consulting Group",
		"Applicant": applicant,
		"History":   history,
	}, "layouts/blank")
}

// ShowEdit renders the self-service edit form for an existing application.
// Applications in a locked status get the status page with an explanation
// instead of the form.
//
// Template: web/templates/edit.html with layouts/blank layout
func (h *ApplyHandler) ShowEdit(c *fiber.Ctx) error {
	email := strings.ToLower(strings.TrimSpace(c.Query("email")))

	applicant, err := h.applicantRepo.GetByEmail(c.Context(), email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Redirect("/status")
		}
		return err
	}

	if models.IsLockedStatus(applicant.Status) {
		return c.Render("status", fiber.Map{
			"Title":     "Application Status - Triton Consulting Group",
			"Applicant": applicant,
			"Error":     "This application can no longer be edited",
		}, "layouts/blank")
	}

	return c.Render("edit", fiber.Map{
		"Title":     "Edit Application - Triton Consulting Group",
		"Applicant": applicant,
		"Slots":     assignment.DefaultConfig().Slots,
	}, "layouts/blank")
}

// UpdateProfile handles a self-service edit submission. Email, candidate
// type, and status are not editable; locked applications are refused.
//
// Form Fields: email (lookup key), name, year, major, motivation,
// applied_before, preferences (multiple)
func (h *ApplyHandler) UpdateProfile(c *fiber.Ctx) error {
	email := c.FormValue("email")
	form := &models.ApplicationForm{
		Name:          c.FormValue("name"),
		Year:          c.FormValue("year"),
		Major:         c.FormValue("major"),
		Motivation:    c.FormValue("motivation"),
		AppliedBefore: c.FormValue("applied_before") == "on",
	}
	form.Preferences = formValues(c, "preferences")

	applicant, err := h.appService.UpdateProfile(c.Context(), email, form)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Redirect("/status")
		}
		if services.IsValidation(err) {
			return c.Status(fiber.StatusBadRequest).Render("edit", fiber.Map{
				"Title": "Edit Application - Triton Consulting Group",
				"Slots": assignment.DefaultConfig().Slots,
				"Form":  form,
				"Email": email,
				"Error": err.Error(),
			}, "layouts/blank")
		}
		return err
	}

	return c.Redirect("/status?email=" + applicant.Email)
}

// formValues returns every value submitted for one form field. The apply
// form posts as multipart/form-data because it carries the resume upload,
// and multipart bodies keep repeated fields in the multipart form rather
// than in PostArgs. Urlencoded posts (the edit form has no upload) fall
// back to PostArgs.
func formValues(c *fiber.Ctx, key string) []string {
	if mf, err := c.MultipartForm(); err == nil && mf != nil {
		return mf.Value[key]
	}

	var values []string
	for _, v := range c.Request().PostArgs().PeekMulti(key) {
		values = append(values, string(v))
	}
	return values
}

// saveResume stores the uploaded resume under a generated name and returns
// the stored filename. A missing file is not an error; the resume is
// optional. Rejected uploads (wrong type, too large) return an error the
// caller shows to the applicant. Storage failures are logged and swallowed.
func (h *ApplyHandler) saveResume(c *fiber.Ctx) (string, error) {
	fh, err := c.FormFile("resume")
	if err != nil {
		// No file attached
		return "", nil
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedResumeExtensions[ext] {
		h.logger.SecurityEvent(security.EventUploadRejected, nil, c.FormValue("email"),
			c.IP(), c.Get("User-Agent"), map[string]interface{}{
				"reason":   "disallowed_extension",
				"filename": fh.Filename,
			})
		return "", fmt.Errorf("resume must be a PDF or Word document")
	}

	if fh.Size > int64(h.config.MaxUploadSize) {
		h.logger.SecurityEvent(security.EventUploadRejected, nil, c.FormValue("email"),
			c.IP(), c.Get("User-Agent"), map[string]interface{}{
				"reason": "file_too_large",
				"size":   fh.Size,
			})
		return "", fmt.Errorf("resume exceeds the %d MB upload limit", h.config.MaxUploadSize/(1024*1024))
	}

	stored := uuid.NewString() + ext
	if err := c.SaveFile(fh, filepath.Join(uploadDir, stored)); err != nil {
		// Best effort: the application proceeds without the resume.
		h.logger.Error("failed to store resume upload", err)
		return "", nil
	}

	return stored, nil
}

// renderFormError re-renders the application form with the submitted values
// and a validation message.
func (h *ApplyHandler) renderFormError(c *fiber.Ctx, form *models.ApplicationForm, message string) error {
	return c.Status(fiber.StatusBadRequest).Render("apply", fiber.Map{
		"Title":          "Apply - Triton Consulting Group",
		"Slots":          assignment.DefaultConfig().Slots,
		"CandidateTypes": []string{models.CandidateTechnical, models.CandidateNontechnical},
		"Form":           form,
		"Error":          message,
	}, "layouts/blank")
}
