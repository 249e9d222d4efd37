// Package main is the entry point for the TCG application portal.
// It initializes the database, security components, and all HTTP routes:
// the public application form and the admin review console.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"
	"github.com/joho/godotenv"

	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/database"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/handlers"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/lock"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/middleware"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/notify"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/security"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/services"
)

func main() {
	// Load .env for local development; a missing file is fine in production
	// where the environment is set by the deployment platform.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if err := database.Connect(nil); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// First-run provisioning: creates the admin account named by
	// ADMIN_EMAIL/ADMIN_PASSWORD when it does not exist yet.
	if err := services.NewAuthService().EnsureBootstrapAdmin(context.Background()); err != nil {
		log.Fatalf("Failed to provision bootstrap admin: %v", err)
	}

	// BACKFILL_HISTORY=true gives applicants imported without a status trail
	// a synthetic first entry. Idempotent, so leaving it on is harmless.
	if os.Getenv("BACKFILL_HISTORY") == "true" {
		if err := services.NewStatusService().BackfillHistory(context.Background()); err != nil {
			log.Fatalf("Failed to backfill status history: %v", err)
		}
	}

	// Security components: configuration, structured JSON logger, and the
	// middleware suite (headers, CSRF, rate limiting, injection detection).
	securityConfig := security.DefaultSecurityConfig()
	securityLogger := security.NewLogger()
	securityMiddleware := middleware.NewSecurityMiddleware(securityLogger, securityConfig, nil)
	securityMonitor := security.NewSecurityMonitor(securityLogger, securityConfig, nil)

	// Per-endpoint token-bucket rate limiters. The refill interval is the
	// window divided by the allowed request count.
	applyRateLimiter := security.NewRateLimiter(
		securityConfig.RateLimitApply, // 10 submissions
		6*time.Minute,                 // per hour
	)
	defer applyRateLimiter.Stop()

	runRateLimiter := security.NewRateLimiter(
		securityConfig.RateLimitAssignmentRun, // 10 runs
		6*time.Minute,                         // per hour
	)
	defer runRateLimiter.Stop()

	exportRateLimiter := security.NewRateLimiter(
		securityConfig.RateLimitExport, // 20 exports
		3*time.Minute,                  // per hour
	)
	defer exportRateLimiter.Stop()

	// Redis is optional: without REDIS_URL the assignment run lock degrades
	// to single-instance operation.
	locker := lock.NewRedisLockerFromEnv()
	defer locker.Close()

	// SMTP is optional: without SMTP_HOST confirmation emails are dropped.
	mailer := notify.NewMailerFromEnv()

	validator := security.NewValidationService(securityConfig)
	applicationService := services.NewApplicationService(validator, mailer, securityLogger)
	caseNightService := services.NewCaseNightService(locker, mailer, securityLogger)

	engine := html.New("./web/templates", ".html")
	if os.Getenv("ENV") != "production" {
		engine.Reload(true)
	}

	app := fiber.New(fiber.Config{
		Views:             engine,
		ViewsLayout:       "layouts/main",
		PassLocalsToViews: true,
		BodyLimit:         securityConfig.MaxUploadSize + 1024*1024, // resume + form overhead
	})

	// Global middleware. Panic recovery first, then request logging,
	// security headers, and injection detection on every route.
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(securityMiddleware.RequestLogger())
	app.Use(securityMiddleware.SecureHeaders())
	app.Use(securityMiddleware.InputValidation())

	app.Static("/static", "./web/static")

	store := session.New(session.Config{
		Expiration:     securityConfig.SessionTimeout,
		CookieSecure:   securityConfig.SessionSecure,
		CookieHTTPOnly: securityConfig.SessionHTTPOnly,
		CookieSameSite: securityConfig.SessionSameSite,
		CookieName:     securityConfig.SessionCookieName,
		CookiePath:     "/",
	})

	app.Use(securityMiddleware.SetCSRFToken(store))

	authHandler := handlers.NewAuthHandler(store, securityMiddleware, securityLogger)
	applyHandler := handlers.NewApplyHandler(applicationService, securityConfig, securityLogger)
	adminHandler := handlers.NewAdminHandler(store, caseNightService, securityConfig, securityLogger, securityMonitor)

	// Root route: authenticated admins go to the dashboard, everyone else
	// to the public application form.
	app.Get("/", func(c *fiber.Ctx) error {
		sess, _ := store.Get(c)
		if sess != nil && sess.Get("admin_id") != nil {
			return c.Redirect("/admin/dashboard")
		}
		return c.Redirect("/apply")
	})

	// Public routes: application form, status lookup, admin login.
	app.Get("/apply", applyHandler.ShowForm)
	app.Post("/apply",
		securityMiddleware.RateLimit(applyRateLimiter, "apply"),
		applyHandler.Submit,
	)
	app.Get("/status", applyHandler.ShowStatus)
	app.Get("/status/edit", applyHandler.ShowEdit)
	app.Post("/status/edit", applyHandler.UpdateProfile)

	app.Get("/login", authHandler.ShowLogin)
	app.Post("/login", authHandler.Login)
	app.Get("/logout", authHandler.Logout)

	// Admin routes: authentication and CSRF protection on the whole group.
	admin := app.Group("/admin",
		middleware.AuthRequired(store),
		securityMiddleware.CSRFProtection(store),
	)

	admin.Get("/dashboard", adminHandler.Dashboard)

	// Application review
	admin.Get("/applications", adminHandler.ListApplications)
	admin.Get("/applications/export",
		securityMiddleware.RateLimit(exportRateLimiter, "export"),
		adminHandler.ExportApplications,
	)
	admin.Get("/applications/:id", adminHandler.ShowApplication)
	admin.Post("/applications/:id/status", adminHandler.UpdateStatus)
	admin.Post("/applications/:id/delete", adminHandler.DeleteApplication)

	// Case-night assignment
	admin.Get("/casenight", adminHandler.CaseNight)
	admin.Post("/casenight/run",
		securityMiddleware.RateLimit(runRateLimiter, "assignment_run"),
		adminHandler.RunAssignment,
	)
	admin.Post("/casenight/assignments/:id/confirmation", adminHandler.UpdateConfirmation)
	admin.Get("/casenight/export",
		securityMiddleware.RateLimit(exportRateLimiter, "export"),
		adminHandler.ExportAssignments,
	)

	// Audit log and admin account management
	admin.Get("/audit", adminHandler.ViewAuditLog)
	admin.Get("/admins", adminHandler.ListAdmins)
	admin.Post("/admins/create", adminHandler.CreateAdmin)
	admin.Post("/admins/:id/delete", adminHandler.DeleteAdmin)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	securityLogger.Info("TCG application portal starting on port " + port)

	if err := app.Listen(":" + port); err != nil {
		securityLogger.Critical("Failed to start server", err)
		log.Fatalf("Failed to start server: %v", err)
	}
}
