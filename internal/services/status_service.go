// This file implements the applicant status lifecycle: transactional status
// changes with an append-only history trail, and history backfill for rows
// created before the history table existed.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/database"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/models"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/repository"
)

// UnknownActor is recorded in the history trail when a status change arrives
// without an identified admin, so every row still names a responsible party.
const UnknownActor = "Unknown Admin"

// migrationActor marks history entries synthesized by backfill rather than
// recorded at the time of an actual status change.
const migrationActor = "System Migration"

// StatusService manages applicant status transitions.
//
// Every successful change writes two rows atomically: the new status on the
// applicant and an append-only entry in status_history. History rows are
// never updated or deleted, so the trail always reflects what actually
// happened, in order.
//
// Related:
//   - Status update handler (POST /admin/applications/:id/status)
//   - StatusHistoryEntry model and status_history table
type StatusService struct {
	applicantRepo *repository.ApplicantRepository
}

// NewStatusService creates and returns a new StatusService instance.
func NewStatusService() *StatusService {
	return &StatusService{
		applicantRepo: repository.NewApplicantRepository(),
	}
}

// ChangeStatus moves an applicant to newStatus and records who did it.
//
// Validation happens before any write: an unrecognized status is rejected
// with a ValidationError and the database is untouched. A blank actor is
// normalized to UnknownActor rather than rejected, because a missing session
// display name must not block a legitimate status change.
//
// The status update and the history append run in one transaction. If the
// history insert fails the status update rolls back with it, so the trail
// can never disagree with the current status.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - applicantID: Target applicant
//   - newStatus: One of models.AllStatuses
//   - actor: Display name of the admin making the change
//   - notes: Optional free-text reason, stored verbatim in the history entry
//
// Returns:
//   - *models.Applicant: Updated applicant with full history loaded
//   - error: ValidationError for a bad status, repository.ErrNotFound for an
//     unknown applicant, or the underlying database error
func (s *StatusService) ChangeStatus(ctx context.Context, applicantID int, newStatus, actor, notes string) (*models.Applicant, error) {
	// Reject before mutating: nothing below runs for an invalid status.
	if !models.IsValidStatus(newStatus) {
		return nil, &ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("unrecognized status %q", newStatus),
		}
	}

	if strings.TrimSpace(actor) == "" {
		actor = UnknownActor
	}

	tx, err := database.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin status transaction: %w", err)
	}
	// Rollback is a no-op after a successful commit
	defer tx.Rollback(ctx)

	if err := s.applicantRepo.UpdateStatusTx(ctx, tx, applicantID, newStatus); err != nil {
		return nil, err
	}

	entry := &models.StatusHistoryEntry{
		ApplicantID: applicantID,
		Status:      newStatus,
		ChangedBy:   actor,
		ChangedAt:   time.Now(),
		Notes:       notes,
	}
	if err := s.applicantRepo.AppendHistoryTx(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("failed to append status history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status change: %w", err)
	}

	// Re-read so the caller sees the committed row and the complete trail
	return s.applicantRepo.GetByID(ctx, applicantID)
}

// InitializeHistory backfills a synthetic first history entry for an
// applicant that has none. Applicants created before the history table was
// introduced have a current status but no trail; this gives them a starting
// point attributed to migrationActor and dated at their application time.
//
// The operation is idempotent: the existence check and the insert run as a
// single statement, so an applicant with any history rows is left untouched
// even when two backfills run concurrently.
func (s *StatusService) InitializeHistory(ctx context.Context, applicant *models.Applicant) error {
	changedAt := applicant.CreatedAt
	if changedAt.IsZero() {
		changedAt = time.Now()
	}

	_, err := s.applicantRepo.AppendHistoryIfEmpty(ctx, &models.StatusHistoryEntry{
		ApplicantID: applicant.ID,
		Status:      applicant.Status,
		ChangedBy:   migrationActor,
		ChangedAt:   changedAt,
	})
	return err
}

// BackfillHistory runs InitializeHistory over every stored applicant.
// Safe to run repeatedly; applicants that already have a trail are skipped.
func (s *StatusService) BackfillHistory(ctx context.Context) error {
	applicants, err := s.applicantRepo.ListAll(ctx, "", "")
	if err != nil {
		return err
	}

	for i := range applicants {
		if err := s.InitializeHistory(ctx, &applicants[i]); err != nil {
			return err
		}
	}

	return nil
}
