// Package middleware provides HTTP middleware for the application portal:
// admin session enforcement and the security layer around every request.
package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// AuthRequired ensures the request carries an authenticated admin session.
// Unauthenticated requests are redirected to the login page.
//
// Context Locals Set:
//   - admin_id: The authenticated admin's ID (int)
//   - admin_email: The admin's email (string)
//   - admin_name: The admin's display name (string)
//
// Example:
//
//	admin := app.Group("/admin", middleware.AuthRequired(store))
func AuthRequired(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return c.Redirect("/login")
		}

		adminID := sess.Get("admin_id")
		if adminID == nil {
			return c.Redirect("/login")
		}

		// Pass admin identity to downstream handlers
		c.Locals("admin_id", adminID)
		c.Locals("admin_email", sess.Get("admin_email"))
		c.Locals("admin_name", sess.Get("admin_name"))

		return c.Next()
	}
}

// AdminName returns the display name of the authenticated admin, or the
// empty string outside an authenticated context. Handlers use it as the
// actor recorded on status changes and assignment runs.
func AdminName(c *fiber.Ctx) string {
	if name, ok := c.Locals("admin_name").(string); ok {
		return name
	}
	return ""
}

// AdminEmail returns the email of the authenticated admin, or the empty
// string outside an authenticated context.
func AdminEmail(c *fiber.Ctx) string {
	if email, ok := c.Locals("admin_email").(string); ok {
		return email
	}
	return ""
}

// AdminID returns the database ID of the authenticated admin, or nil
// outside an authenticated context. The pointer form feeds audit log rows
// directly.
func AdminID(c *fiber.Ctx) *int {
	if id, ok := c.Locals("admin_id").(int); ok {
		return &id
	}
	return nil
}
