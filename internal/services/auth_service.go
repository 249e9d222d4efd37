// This file implements authentication services for the admin console,
// including credential verification and password hashing using bcrypt.
package services

import (
	"context"
	"errors"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/models"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/repository"
)

// AuthService handles admin authentication and password management.
// Provides a layer of abstraction between HTTP handlers and the repository.
//
// Security Notes:
//   - Uses bcrypt with cost 12 for password hashing
//   - Constant-time password comparison prevents timing attacks
//   - Never stores or logs plaintext passwords
type AuthService struct {
	adminRepo *repository.AdminRepository // Repository for admin account operations
}

// NewAuthService creates and returns a new AuthService instance.
//
// Example:
//
//	authService := services.NewAuthService()
//	admin, err := authService.Authenticate(ctx, email, password)
func NewAuthService() *AuthService {
	return &AuthService{
		adminRepo: repository.NewAdminRepository(),
	}
}

// Authenticate verifies admin credentials and returns the account on success.
// Performs two-step validation: email lookup followed by password verification.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - email: Admin's email address
//   - password: Plaintext password provided at login
//
// Returns:
//   - *models.AdminUser: Admin record if authentication successful
//   - error: repository.ErrNotFound or bcrypt.ErrMismatchedHashAndPassword
//
// Security Notes:
//   - bcrypt.CompareHashAndPassword is constant-time to prevent timing attacks
//   - Callers should present the same error message for "unknown email" and
//     "wrong password" to avoid revealing which accounts exist
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.AdminUser, error) {
	admin, err := s.adminRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	// Constant-time comparison against the stored hash
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, err
	}

	return admin, nil
}

// HashPassword generates a bcrypt hash of the provided plaintext password.
// Used when provisioning new admin accounts.
//
// Cost 12 provides 2^12 iterations, balancing security and performance, and
// complies with NIST SP 800-63B recommendations. The output includes the
// salt and cost and is safe to store in the database.
func (s *AuthService) HashPassword(password string) (string, error) {
	const bcryptCost = 12
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hash), err
}

// EnsureBootstrapAdmin provisions the first admin account from the
// ADMIN_EMAIL and ADMIN_PASSWORD environment variables. Without it a fresh
// deployment has no way to log in. A no-op when the variables are unset or
// the account already exists; further accounts are created in the console.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	_, err := s.adminRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return err
	}

	name := os.Getenv("ADMIN_NAME")
	if name == "" {
		name = "Portal Admin"
	}

	return s.adminRepo.Create(ctx, &models.AdminUser{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	})
}
