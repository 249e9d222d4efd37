// Package repository provides the data access layer for the application portal.
// This file implements the audit repository for administrative action logging.
package repository

import (
	"context"

	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/database"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/models"
)

// AuditRepository handles all database operations related to audit logging.
// It provides methods for creating and retrieving audit trail entries.
//
// Immutability Note:
//
//	Audit logs are never modified or deleted once created. They provide a
//	permanent record of every significant administrative action.
type AuditRepository struct{}

// NewAuditRepository creates and returns a new AuditRepository instance.
func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

// Log creates a new audit log entry.
// Called after any significant action such as:
//   - Status changes on an application
//   - Case-night assignment runs
//   - Application deletion
//   - Admin account creation or deletion
//
// The method updates the provided log struct with the generated ID and timestamp.
//
// Common Action Types:
//   - "UPDATE_STATUS", "DELETE_APPLICATION"
//   - "RUN_ASSIGNMENT", "UPDATE_CONFIRMATION"
//   - "CREATE_ADMIN", "DELETE_ADMIN"
func (r *AuditRepository) Log(ctx context.Context, log *models.AuditLog) error {
	query := `
        INSERT INTO audit_logs (actor_id, action, object_type, object_id, ip_address, user_agent)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `

	return database.DB.QueryRow(ctx, query,
		log.ActorID, log.Action, log.ObjectType, log.ObjectID, log.IPAddress, log.UserAgent,
	).Scan(&log.ID, &log.CreatedAt)
}

// ListRecent retrieves the most recent audit log entries, newest first.
// Used by administrators for security monitoring and compliance review.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - limit: Maximum number of entries to retrieve (typically 50-500)
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	query := `
        SELECT id, actor_id, action, object_type, object_id,
               ip_address, user_agent, created_at
        FROM audit_logs
        ORDER BY created_at DESC
        LIMIT $1
    `

	rows, err := database.DB.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.AuditLog
	for rows.Next() {
		var log models.AuditLog

		// ActorID and ObjectID are pointers to handle NULL values
		if err := rows.Scan(
			&log.ID,
			&log.ActorID,
			&log.Action,
			&log.ObjectType,
			&log.ObjectID,
			&log.IPAddress,
			&log.UserAgent,
			&log.CreatedAt,
		); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}

	return logs, nil
}
