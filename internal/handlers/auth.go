// Package handlers implements HTTP request handlers for the TCG application
// portal. This file handles admin authentication: login, logout, and session
// lifecycle.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/middleware"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/models"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/repository"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/security"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/services"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles authentication-related HTTP requests.
// Manages admin login, logout, and session lifecycle operations.
type AuthHandler struct {
	store       *session.Store
	authService *services.AuthService
	auditRepo   *repository.AuditRepository
	secMW       *middleware.SecurityMiddleware
	logger      *security.Logger
}

// NewAuthHandler creates a new instance of AuthHandler.
//
// Parameters:
//   - store: Session store for managing admin sessions
//   - secMW: Security middleware providing login rate limiting and lockout
//   - logger: Logger for security events
//
// Returns:
//   - *AuthHandler: Initialized handler instance with all dependencies
func NewAuthHandler(store *session.Store, secMW *middleware.SecurityMiddleware, logger *security.Logger) *AuthHandler {
	return &AuthHandler{
		store:       store,
		authService: services.NewAuthService(),
		auditRepo:   repository.NewAuditRepository(),
		secMW:       secMW,
		logger:      logger,
	}
}

// ShowLogin renders the login page for unauthenticated admins.
//
// Template: web/templates/login.html with layouts/blank layout
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	return c.Render("login", fiber.Map{
		"Title": "Admin Login - TCG Application Portal",
	}, "layouts/blank")
}

// Login authenticates admin credentials and creates a session.
// Applies per-IP rate limiting and per-account lockout before touching the
// password check, so locked accounts never reach bcrypt.
//
// Parameters:
//   - c: Fiber context containing form data (email, password)
//
// Returns:
//   - error: Render error with message if authentication fails, redirect on success
//
// Form Data:
//   - email: Admin's email address
//   - password: Plain-text password, verified against the stored bcrypt hash
//
// Side Effects:
//   - Creates session with admin_id, admin_email, admin_name on success
//   - Records success/failure with the lockout tracker and security log
//   - Logs a LOGIN audit entry on success
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	form := models.LoginForm{
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
	}

	if err := h.secMW.LoginRateLimit(form.Email, c.IP()); err != nil {
		return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{
			"Title": "Admin Login - TCG Application Portal",
			"Error": err.Error(),
		}, "layouts/blank")
	}

	admin, err := h.authService.Authenticate(c.Context(), form.Email, form.Password)
	if err != nil {
		h.secMW.RecordLoginFailure(form.Email, c.IP())

		// Same message for unknown email and wrong password.
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{
				"Title": "Admin Login - TCG Application Portal",
				"Error": "Invalid email or password",
			}, "layouts/blank")
		}
		return err
	}

	sess, err := h.store.Get(c)
	if err != nil {
		return err
	}

	sess.Set("admin_id", admin.ID)
	sess.Set("admin_email", admin.Email)
	sess.Set("admin_name", admin.Name)

	if err := sess.Save(); err != nil {
		return err
	}

	h.secMW.RecordLoginSuccess(admin.Email, c.IP(), admin.ID)

	adminID := admin.ID
	h.auditRepo.Log(c.Context(), &models.AuditLog{
		ActorID:    &adminID,
		Action:     "LOGIN",
		ObjectType: "session",
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	})

	return c.Redirect("/admin/dashboard")
}

// Logout destroys the admin session and redirects to the login page.
//
// Side Effects:
//   - Destroys the session if one exists
//   - Logs a logout security event and a LOGOUT audit entry
//   - Redirects to /login regardless of session state
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return c.Redirect("/login")
	}

	adminID, _ := sess.Get("admin_id").(int)
	adminEmail, _ := sess.Get("admin_email").(string)

	if adminID != 0 {
		h.logger.SecurityEvent(
			security.EventLogout,
			&adminID,
			adminEmail,
			c.IP(),
			c.Get("User-Agent"),
			nil,
		)
		h.auditRepo.Log(c.Context(), &models.AuditLog{
			ActorID:    &adminID,
			Action:     "LOGOUT",
			ObjectType: "session",
			IPAddress:  c.IP(),
			UserAgent:  c.Get("User-Agent"),
		})
	}

	if err := sess.Destroy(); err != nil {
		return err
	}

	return c.Redirect("/login")
}
