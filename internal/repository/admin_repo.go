// Package repository provides the data access layer for the application portal.
// This file implements the admin account repository used by authentication
// and admin management.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/database"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/models"
)

// AdminRepository handles database operations for administrator accounts.
type AdminRepository struct{}

// NewAdminRepository creates and returns a new AdminRepository instance.
func NewAdminRepository() *AdminRepository {
	return &AdminRepository{}
}

// FindByEmail retrieves an admin account by email for login.
// Returns ErrNotFound when the address is unknown; the auth service reports
// the same failure for unknown accounts and wrong passwords.
func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	query := `
		SELECT id, email, name, password_hash, created_at
		FROM admins
		WHERE email = $1
	`

	var admin models.AdminUser
	err := database.DB.QueryRow(ctx, query, email).Scan(
		&admin.ID, &admin.Email, &admin.Name, &admin.PasswordHash, &admin.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &admin, nil
}

// FindByID retrieves an admin account by primary key.
func (r *AdminRepository) FindByID(ctx context.Context, id int) (*models.AdminUser, error) {
	query := `
		SELECT id, email, name, password_hash, created_at
		FROM admins
		WHERE id = $1
	`

	var admin models.AdminUser
	err := database.DB.QueryRow(ctx, query, id).Scan(
		&admin.ID, &admin.Email, &admin.Name, &admin.PasswordHash, &admin.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &admin, nil
}

// ListAll retrieves all admin accounts ordered by name.
// Password hashes are included for internal use; handlers never render them.
func (r *AdminRepository) ListAll(ctx context.Context) ([]models.AdminUser, error) {
	query := `
		SELECT id, email, name, password_hash, created_at
		FROM admins
		ORDER BY name
	`

	rows, err := database.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []models.AdminUser
	for rows.Next() {
		var admin models.AdminUser
		if err := rows.Scan(
			&admin.ID, &admin.Email, &admin.Name, &admin.PasswordHash, &admin.CreatedAt,
		); err != nil {
			return nil, err
		}
		admins = append(admins, admin)
	}

	return admins, nil
}

// Create inserts a new admin account. Email must be unique.
//
// Side Effects:
//   - Sets admin.ID and admin.CreatedAt from the database
func (r *AdminRepository) Create(ctx context.Context, admin *models.AdminUser) error {
	query := `
		INSERT INTO admins (email, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	return database.DB.QueryRow(ctx, query,
		admin.Email, admin.Name, admin.PasswordHash,
	).Scan(&admin.ID, &admin.CreatedAt)
}

// Delete removes an admin account by ID.
func (r *AdminRepository) Delete(ctx context.Context, adminID int) error {
	tag, err := database.DB.Exec(ctx, `DELETE FROM admins WHERE id = $1`, adminID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
