// This file implements the admin console handlers: dashboard, application
// review, case-night assignment, CSV exports, audit log, and admin account
// management.
package handlers

import (
	"context"
	"encoding/csv"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/assignment"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/middleware"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/models"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/repository"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/security"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/services"
)

// AdminHandler handles all administrator HTTP requests.
// Covers application triage, the case-night assignment run, reporting
// exports, audit review, and admin account management.
type AdminHandler struct {
	store         *session.Store
	applicantRepo *repository.ApplicantRepository
	assignRepo    *repository.AssignmentRepository
	adminRepo     *repository.AdminRepository
	auditRepo     *repository.AuditRepository
	statsRepo     *repository.StatsRepository
	statusService *services.StatusService
	caseNight     *services.CaseNightService
	authService   *services.AuthService
	validator     *security.ValidationService
	config        *security.SecurityConfig
	logger        *security.Logger
	monitor       *security.SecurityMonitor
}

// NewAdminHandler creates a new instance of AdminHandler with initialized
// repositories and services.
//
// Parameters:
//   - store: Session store for managing admin sessions
//   - caseNight: Assignment orchestrator (carries the run lock)
//   - config: Security configuration (export caps, query timeout, input limits)
//   - logger: Logger for security events
//   - monitor: Monitor for large-export alerting
//
// Returns:
//   - *AdminHandler: Initialized handler with all dependencies
func NewAdminHandler(store *session.Store, caseNight *services.CaseNightService, config *security.SecurityConfig, logger *security.Logger, monitor *security.SecurityMonitor) *AdminHandler {
	return &AdminHandler{
		store:         store,
		applicantRepo: repository.NewApplicantRepository(),
		assignRepo:    repository.NewAssignmentRepository(),
		adminRepo:     repository.NewAdminRepository(),
		auditRepo:     repository.NewAuditRepository(),
		statsRepo:     repository.NewStatsRepository(),
		statusService: services.NewStatusService(),
		caseNight:     caseNight,
		authService:   services.NewAuthService(),
		validator:     security.NewValidationService(config),
		config:        config,
		logger:        logger,
		monitor:       monitor,
	}
}

// Dashboard displays the admin dashboard with recruitment-cycle statistics:
// application counts by status, review progress, and assignment coverage.
//
// Template: admin/dashboard.html with stats cards
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.statsRepo.GetDashboardStats(c.Context())
	if err != nil {
		// If stats fail, use default empty stats
		stats = &repository.DashboardStats{}
	}

	return c.Render("admin/dashboard", fiber.Map{
		"Title":     "Dashboard - TCG Application Portal",
		"AdminName": middleware.AdminName(c),
		"Stats":     stats,
	})
}

// ListApplications displays submitted applications with optional filters.
//
// Query Parameters:
//   - status: Filter by review status (empty matches all)
//   - type: Filter by candidate type (empty matches all)
//
// Template: admin/applications.html with application table
func (h *AdminHandler) ListApplications(c *fiber.Ctx) error {
	status := c.Query("status")
	candidateType := c.Query("type")

	if status != "" {
		if err := h.validator.ValidateStatus(status); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}

	applicants, err := h.applicantRepo.ListAll(c.Context(), status, candidateType)
	if err != nil {
		return err
	}

	return c.Render("admin/applications", fiber.Map{
		"Title":          "Applications - TCG Application Portal",
		"AdminName":      middleware.AdminName(c),
		"Applicants":     applicants,
		"Statuses":       models.AllStatuses,
		"CandidateTypes": []string{models.CandidateTechnical, models.CandidateNontechnical},
		"FilterStatus":   status,
		"FilterType":     candidateType,
	})
}

// ShowApplication displays one application with its full status history and
// the status-change form.
//
// Template: admin/application.html with detail view and history timeline
func (h *AdminHandler) ShowApplication(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid application ID")
	}

	applicant, err := h.applicantRepo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "application not found")
		}
		return err
	}

	view := models.ApplicantView{Applicant: *applicant}
	if n := len(applicant.StatusHistory); n > 0 {
		last := applicant.StatusHistory[n-1]
		view.LastChangedBy = last.ChangedBy
		view.LastChangedAt = &last.ChangedAt
	}

	return c.Render("admin/application", fiber.Map{
		"Title":     "Application - TCG Application Portal",
		"AdminName": middleware.AdminName(c),
		"Applicant": view,
		"Statuses":  models.AllStatuses,
	})
}

// UpdateStatus handles a status-change command from the review screen.
// The status update and its history entry commit atomically; the acting
// admin's display name is recorded as the history actor.
//
// Form Fields: status, notes (optional)
// Audit: Logs UPDATE_STATUS action with the applicant ID
func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid application ID")
	}

	form := models.StatusUpdateForm{
		NewStatus: c.FormValue("status"),
		Notes:     h.validator.SanitizeString(c.FormValue("notes")),
	}
	if err := h.validator.ValidateNotes(form.Notes); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	actor := middleware.AdminName(c)

	applicant, err := h.statusService.ChangeStatus(c.Context(), id, form.NewStatus, actor, form.Notes)
	if err != nil {
		if services.IsValidation(err) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if errors.Is(err, repository.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "application not found")
		}
		return err
	}

	h.auditRepo.Log(c.Context(), &models.AuditLog{
		ActorID:    middleware.AdminID(c),
		Action:     "UPDATE_STATUS",
		ObjectType: "applicant",
		ObjectID:   &id,
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	})

	h.logger.SecurityEvent(
		security.EventStatusChange,
		middleware.AdminID(c),
		middleware.AdminEmail(c),
		c.IP(),
		c.Get("User-Agent"),
		map[string]interface{}{
			"applicant_id": applicant.ID,
			"new_status":   applicant.Status,
		},
	)

	return c.Redirect("/admin/applications/" + strconv.Itoa(id))
}

// DeleteApplication permanently removes an application. Deletion cascades
// to the status history and any case-night assignment.
//
// Audit: Logs DELETE_APPLICATION action with the applicant ID
func (h *AdminHandler) DeleteApplication(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid application ID")
	}

	if err := h.applicantRepo.Delete(c.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "application not found")
		}
		return err
	}

	h.auditRepo.Log(c.Context(), &models.AuditLog{
		ActorID:    middleware.AdminID(c),
		Action:     "DELETE_APPLICATION",
		ObjectType: "applicant",
		ObjectID:   &id,
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	})

	h.logger.SecurityEvent(
		security.EventApplicationDelete,
		middleware.AdminID(c),
		middleware.AdminEmail(c),
		c.IP(),
		c.Get("User-Agent"),
		map[string]interface{}{"applicant_id": id},
	)

	return c.Redirect("/admin/applications")
}

// CaseNight displays the case-night overview: per (pool, slot) assignment
// summary, the full assignment list, and the reconciliation view of eligible
// applicants missing from the current assignment set.
//
// Template: admin/casenight.html
func (h *AdminHandler) CaseNight(c *fiber.Ctx) error {
	summary, err := h.assignRepo.SummaryByPoolSlot(c.Context())
	if err != nil {
		return err
	}

	assignments, err := h.assignRepo.ListAll(c.Context())
	if err != nil {
		return err
	}

	unassigned, err := h.caseNight.Unassigned(c.Context())
	if err != nil {
		return err
	}

	return c.Render("admin/casenight", fiber.Map{
		"Title":       "Case Night - TCG Application Portal",
		"AdminName":   middleware.AdminName(c),
		"Summary":     summary,
		"Assignments": assignments,
		"Unassigned":  unassigned,
		"Slots":       assignment.DefaultConfig().Slots,
	})
}

// RunAssignment triggers a case-night assignment batch run.
// The run is destructive: all existing assignment records are replaced by
// the new batch in one transaction. A concurrent run attempt is refused.
//
// Audit: Logs RUN_ASSIGNMENT action
func (h *AdminHandler) RunAssignment(c *fiber.Ctx) error {
	actor := middleware.AdminName(c)

	result, err := h.caseNight.RunAssignment(c.Context(), assignment.DefaultConfig(), actor)
	if err != nil {
		if errors.Is(err, services.ErrRunInProgress) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return err
	}

	h.auditRepo.Log(c.Context(), &models.AuditLog{
		ActorID:    middleware.AdminID(c),
		Action:     "RUN_ASSIGNMENT",
		ObjectType: "assignment_run",
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	})

	h.logger.SecurityEvent(
		security.EventAssignmentRun,
		middleware.AdminID(c),
		middleware.AdminEmail(c),
		c.IP(),
		c.Get("User-Agent"),
		map[string]interface{}{
			"assigned": len(result.Assignments),
			"skipped":  result.Skipped,
		},
	)

	return c.Redirect("/admin/casenight")
}

// UpdateConfirmation sets the confirmation state of one assignment record
// (Assigned, Confirmed, or Cancelled) with an optional note.
//
// Form Fields: confirmation, notes (optional)
// Audit: Logs UPDATE_CONFIRMATION action with the assignment ID
func (h *AdminHandler) UpdateConfirmation(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid assignment ID")
	}

	confirmation := c.FormValue("confirmation")
	switch confirmation {
	case models.ConfirmationAssigned, models.ConfirmationConfirmed, models.ConfirmationCancelled:
	default:
		return fiber.NewError(fiber.StatusBadRequest, "invalid confirmation state")
	}

	notes := h.validator.SanitizeString(c.FormValue("notes"))
	if err := h.validator.ValidateNotes(notes); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	actor := middleware.AdminEmail(c)

	if err := h.assignRepo.UpdateConfirmation(c.Context(), id, confirmation, notes, actor); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "assignment not found")
		}
		return err
	}

	h.auditRepo.Log(c.Context(), &models.AuditLog{
		ActorID:    middleware.AdminID(c),
		Action:     "UPDATE_CONFIRMATION",
		ObjectType: "assignment",
		ObjectID:   &id,
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	})

	h.logger.SecurityEvent(
		security.EventConfirmationChange,
		middleware.AdminID(c),
		middleware.AdminEmail(c),
		c.IP(),
		c.Get("User-Agent"),
		map[string]interface{}{
			"assignment_id": id,
			"confirmation":  confirmation,
		},
	)

	return c.Redirect("/admin/casenight")
}

// ExportAssignments exports the current assignment set as a CSV download.
//
// CSV Columns: Name, Email, Candidate Type, Slot, Time, Group, Confirmation, Assigned At
// Content-Type: text/csv with attachment disposition
func (h *AdminHandler) ExportAssignments(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.config.QueryTimeout)
	defer cancel()

	records, err := h.assignRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(records) > h.config.MaxExportRows {
		records = records[:h.config.MaxExportRows]
	}

	h.recordExport(c, "assignments", len(records), nil)

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", "attachment; filename=casenight_assignments.csv")

	w := csv.NewWriter(c)
	w.Write([]string{"Name", "Email", "Candidate Type", "Slot", "Time", "Group", "Confirmation", "Assigned At"})

	for _, r := range records {
		w.Write([]string{
			r.ApplicantName,
			r.ApplicantEmail,
			r.CandidateType,
			r.SlotID,
			r.SlotLabel,
			r.GroupID,
			r.Confirmation,
			r.AssignedAt.Format("2006-01-02 15:04:05"),
		})
	}

	w.Flush()
	return nil
}

// ExportApplications exports applications as a CSV download, honoring the
// same status and candidate-type filters as the list screen.
//
// CSV Columns: Name, Email, Year, Major, Candidate Type, Applied Before, Preferences, Status, Submitted At
// Content-Type: text/csv with attachment disposition
func (h *AdminHandler) ExportApplications(c *fiber.Ctx) error {
	status := c.Query("status")
	candidateType := c.Query("type")

	if status != "" {
		if err := h.validator.ValidateStatus(status); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.config.QueryTimeout)
	defer cancel()

	applicants, err := h.applicantRepo.ListAll(ctx, status, candidateType)
	if err != nil {
		return err
	}
	if len(applicants) > h.config.MaxExportRows {
		applicants = applicants[:h.config.MaxExportRows]
	}

	h.recordExport(c, "applications", len(applicants), map[string]string{
		"status": status,
		"type":   candidateType,
	})

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", "attachment; filename=applications.csv")

	w := csv.NewWriter(c)
	w.Write([]string{"Name", "Email", "Year", "Major", "Candidate Type", "Applied Before", "Preferences", "Status", "Submitted At"})

	for _, a := range applicants {
		appliedBefore := "No"
		if a.AppliedBefore {
			appliedBefore = "Yes"
		}

		w.Write([]string{
			a.Name,
			a.Email,
			a.Year,
			a.Major,
			a.CandidateType,
			appliedBefore,
			strings.Join(a.Preferences, "; "),
			a.Status,
			a.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	w.Flush()
	return nil
}

// ViewAuditLog displays the most recent audit entries.
//
// Template: admin/audit.html with audit table
func (h *AdminHandler) ViewAuditLog(c *fiber.Ctx) error {
	entries, err := h.auditRepo.ListRecent(c.Context(), 100)
	if err != nil {
		return err
	}

	return c.Render("admin/audit", fiber.Map{
		"Title":     "Audit Log - TCG Application Portal",
		"AdminName": middleware.AdminName(c),
		"Entries":   entries,
	})
}

// ListAdmins displays all administrator accounts with the account
// creation form.
//
// Template: admin/admins.html
func (h *AdminHandler) ListAdmins(c *fiber.Ctx) error {
	admins, err := h.adminRepo.ListAll(c.Context())
	if err != nil {
		return err
	}

	return c.Render("admin/admins", fiber.Map{
		"Title":     "Administrators - TCG Application Portal",
		"AdminName": middleware.AdminName(c),
		"Admins":    admins,
	})
}

// CreateAdmin handles administrator account creation.
// The password is bcrypt hashed before storage; the plaintext never leaves
// this handler.
//
// Form Fields: name, email, password
// Audit: Logs CREATE_ADMIN action with the new account ID
func (h *AdminHandler) CreateAdmin(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.FormValue("name"))
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	password := c.FormValue("password")

	if name == "" || email == "" || password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name, email, and password are required")
	}
	if err := h.validator.ValidateLength("name", name, 2, 100); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := h.validator.ValidateEmail(email); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := h.validator.ValidatePassword(password); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	hash, err := h.authService.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &models.AdminUser{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}
	if err := h.adminRepo.Create(c.Context(), admin); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fiber.NewError(fiber.StatusBadRequest, "an admin with this email already exists")
		}
		return err
	}

	h.auditRepo.Log(c.Context(), &models.AuditLog{
		ActorID:    middleware.AdminID(c),
		Action:     "CREATE_ADMIN",
		ObjectType: "admin",
		ObjectID:   &admin.ID,
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	})

	h.logger.SecurityEvent(
		security.EventAdminCreate,
		middleware.AdminID(c),
		middleware.AdminEmail(c),
		c.IP(),
		c.Get("User-Agent"),
		map[string]interface{}{"created_email": email},
	)

	return c.Redirect("/admin/admins")
}

// DeleteAdmin removes an administrator account. Admins cannot delete their
// own account; that would orphan the active session.
//
// Audit: Logs DELETE_ADMIN action with the removed account ID
func (h *AdminHandler) DeleteAdmin(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid admin ID")
	}

	if self := middleware.AdminID(c); self != nil && *self == id {
		return fiber.NewError(fiber.StatusBadRequest, "cannot delete your own account")
	}

	// Capture the account before it goes, for the security log
	target, err := h.adminRepo.FindByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "admin not found")
		}
		return err
	}

	if err := h.adminRepo.Delete(c.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "admin not found")
		}
		return err
	}

	h.auditRepo.Log(c.Context(), &models.AuditLog{
		ActorID:    middleware.AdminID(c),
		Action:     "DELETE_ADMIN",
		ObjectType: "admin",
		ObjectID:   &id,
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	})

	h.logger.SecurityEvent(
		security.EventAdminDelete,
		middleware.AdminID(c),
		middleware.AdminEmail(c),
		c.IP(),
		c.Get("User-Agent"),
		map[string]interface{}{"deleted_admin_id": id, "deleted_email": target.Email},
	)

	return c.Redirect("/admin/admins")
}

// recordExport logs the export security event and feeds the large-export
// monitor.
func (h *AdminHandler) recordExport(c *fiber.Ctx, kind string, rowCount int, filters map[string]string) {
	h.logger.SecurityEvent(
		security.EventExportGenerate,
		middleware.AdminID(c),
		middleware.AdminEmail(c),
		c.IP(),
		c.Get("User-Agent"),
		map[string]interface{}{
			"export":    kind,
			"row_count": rowCount,
		},
	)
	h.monitor.MonitorLargeExport(middleware.AdminEmail(c), rowCount, filters)
}
