// Package repository provides the data access layer for the application portal.
// This file implements the applicant repository covering application records
// and their append-only status history.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/database"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/models"
)

// ErrNotFound is returned when a referenced record does not exist.
// Handlers map it to a 404 response; callers must not retry.
var ErrNotFound = errors.New("record not found")

// ApplicantRepository handles all database operations for applicants and
// their status history.
//
// Immutability Note:
//
//	status_history rows are only ever inserted. No method updates or deletes
//	an existing history entry; the trail is a permanent record of every
//	transition the application went through.
type ApplicantRepository struct{}

// NewApplicantRepository creates and returns a new ApplicantRepository instance.
func NewApplicantRepository() *ApplicantRepository {
	return &ApplicantRepository{}
}

// Create inserts a new applicant together with its initial history entry.
// Both rows are written in one transaction: an applicant never exists
// without at least one status_history row recording its initial status.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - a: Applicant to create (Email, Name, CandidateType, Preferences required;
//     Status defaults to "Under Review" when empty)
//
// Returns:
//   - error: Database error if creation fails (e.g., duplicate email), nil on success
//
// Side Effects:
//   - Sets a.ID and a.CreatedAt from the database
//   - Sets a.Status to StatusUnderReview when empty
func (r *ApplicantRepository) Create(ctx context.Context, a *models.Applicant) error {
	if a.Status == "" {
		a.Status = models.StatusUnderReview
	}

	tx, err := database.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO applicants
			(email, name, year, major, motivation, applied_before, candidate_type, preferences, resume_file, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	err = tx.QueryRow(ctx, query,
		a.Email, a.Name, a.Year, a.Major, a.Motivation, a.AppliedBefore,
		a.CandidateType, a.Preferences, a.ResumeFile, a.Status,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return err
	}

	// Initial history entry, timestamped with the submission time so the
	// trail starts exactly where the application does.
	_, err = tx.Exec(ctx, `
		INSERT INTO status_history (applicant_id, status, changed_by, changed_at, notes)
		VALUES ($1, $2, $3, $4, $5)
	`, a.ID, a.Status, "System", a.CreatedAt, "Application submitted")
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetByID retrieves one applicant with its full status history.
// Returns ErrNotFound when the id does not exist.
func (r *ApplicantRepository) GetByID(ctx context.Context, id int) (*models.Applicant, error) {
	query := `
		SELECT id, email, name, year, major, motivation, applied_before,
		       candidate_type, preferences, resume_file, status, created_at
		FROM applicants
		WHERE id = $1
	`

	var a models.Applicant
	err := database.DB.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.Email, &a.Name, &a.Year, &a.Major, &a.Motivation, &a.AppliedBefore,
		&a.CandidateType, &a.Preferences, &a.ResumeFile, &a.Status, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	history, err := r.ListHistory(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.StatusHistory = history

	return &a, nil
}

// GetByEmail retrieves one applicant by email, the self-service lookup key.
// Returns ErrNotFound when no application exists for the address.
// History is not loaded; use GetByID for the full record.
func (r *ApplicantRepository) GetByEmail(ctx context.Context, email string) (*models.Applicant, error) {
	query := `
		SELECT id, email, name, year, major, motivation, applied_before,
		       candidate_type, preferences, resume_file, status, created_at
		FROM applicants
		WHERE email = $1
	`

	var a models.Applicant
	err := database.DB.QueryRow(ctx, query, email).Scan(
		&a.ID, &a.Email, &a.Name, &a.Year, &a.Major, &a.Motivation, &a.AppliedBefore,
		&a.CandidateType, &a.Preferences, &a.ResumeFile, &a.Status, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &a, nil
}

// ListAll retrieves applicants filtered by status and candidate type.
// Empty filter values match everything. Results are ordered by submission
// time ascending, the same stable order the assignment engine uses.
//
// History is not loaded per row; list screens show current status only.
func (r *ApplicantRepository) ListAll(ctx context.Context, status, candidateType string) ([]models.Applicant, error) {
	query := `
		SELECT id, email, name, year, major, motivation, applied_before,
		       candidate_type, preferences, resume_file, status, created_at
		FROM applicants
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR candidate_type = $2)
		ORDER BY created_at, email
	`

	rows, err := database.DB.Query(ctx, query, status, candidateType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var applicants []models.Applicant
	for rows.Next() {
		var a models.Applicant
		if err := rows.Scan(
			&a.ID, &a.Email, &a.Name, &a.Year, &a.Major, &a.Motivation, &a.AppliedBefore,
			&a.CandidateType, &a.Preferences, &a.ResumeFile, &a.Status, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		applicants = append(applicants, a)
	}

	return applicants, nil
}

// ListEligible retrieves the applicants eligible for case-night assignment:
// recognized candidate type and at least one stated preference. This is the
// snapshot the assignment engine consumes, read once at batch start.
func (r *ApplicantRepository) ListEligible(ctx context.Context) ([]models.Applicant, error) {
	query := `
		SELECT id, email, name, year, major, motivation, applied_before,
		       candidate_type, preferences, resume_file, status, created_at
		FROM applicants
		WHERE candidate_type = ANY($1)
		  AND cardinality(preferences) > 0
		ORDER BY created_at, email
	`

	pools := []string{models.CandidateTechnical, models.CandidateNontechnical}
	rows, err := database.DB.Query(ctx, query, pools)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var applicants []models.Applicant
	for rows.Next() {
		var a models.Applicant
		if err := rows.Scan(
			&a.ID, &a.Email, &a.Name, &a.Year, &a.Major, &a.Motivation, &a.AppliedBefore,
			&a.CandidateType, &a.Preferences, &a.ResumeFile, &a.Status, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		applicants = append(applicants, a)
	}

	return applicants, nil
}

// ListHistory retrieves the status history for one applicant, oldest first.
// The (applicant_id, id) ordering preserves append order even when several
// entries share a timestamp.
func (r *ApplicantRepository) ListHistory(ctx context.Context, applicantID int) ([]models.StatusHistoryEntry, error) {
	query := `
		SELECT id, applicant_id, status, changed_by, changed_at, notes
		FROM status_history
		WHERE applicant_id = $1
		ORDER BY id
	`

	rows, err := database.DB.Query(ctx, query, applicantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []models.StatusHistoryEntry
	for rows.Next() {
		var e models.StatusHistoryEntry
		if err := rows.Scan(&e.ID, &e.ApplicantID, &e.Status, &e.ChangedBy, &e.ChangedAt, &e.Notes); err != nil {
			return nil, err
		}
		history = append(history, e)
	}

	return history, nil
}

// AppendHistoryIfEmpty inserts a history entry only when the applicant has
// no history rows at all. The existence check and the insert run as one
// statement, so concurrent backfills cannot both write a synthetic entry.
// Returns whether a row was written. Used by the backfill path only; status
// changes go through the transactional pair UpdateStatusTx + AppendHistoryTx.
func (r *ApplicantRepository) AppendHistoryIfEmpty(ctx context.Context, e *models.StatusHistoryEntry) (bool, error) {
	tag, err := database.DB.Exec(ctx, `
		INSERT INTO status_history (applicant_id, status, changed_by, changed_at, notes)
		SELECT $1, $2, $3, $4, $5
		WHERE NOT EXISTS (SELECT 1 FROM status_history WHERE applicant_id = $1)
	`, e.ApplicantID, e.Status, e.ChangedBy, e.ChangedAt, e.Notes)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateStatusTx sets the applicant's current status inside an open
// transaction. Returns ErrNotFound when the id does not exist, which
// rolls the whole status change back before any history is written.
func (r *ApplicantRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, applicantID int, status string) error {
	tag, err := tx.Exec(ctx,
		`UPDATE applicants SET status = $2 WHERE id = $1`, applicantID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendHistoryTx appends a history entry inside an open transaction.
// Always paired with UpdateStatusTx under the same transaction so the
// current status and the last history entry can never diverge.
func (r *ApplicantRepository) AppendHistoryTx(ctx context.Context, tx pgx.Tx, e *models.StatusHistoryEntry) error {
	return tx.QueryRow(ctx, `
		INSERT INTO status_history (applicant_id, status, changed_by, changed_at, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, e.ApplicantID, e.Status, e.ChangedBy, e.ChangedAt, e.Notes).Scan(&e.ID)
}

// UpdateProfile updates the self-service editable fields of an application.
// Status and history are untouched; whether the applicant is allowed to edit
// at all (status-based locking) is decided by the caller before this runs.
func (r *ApplicantRepository) UpdateProfile(ctx context.Context, a *models.Applicant) error {
	tag, err := database.DB.Exec(ctx, `
		UPDATE applicants
		SET name = $2, year = $3, major = $4, motivation = $5,
		    applied_before = $6, preferences = $7
		WHERE id = $1
	`, a.ID, a.Name, a.Year, a.Major, a.Motivation, a.AppliedBefore, a.Preferences)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete permanently removes an application. Explicit administrative action
// only; CASCADE removes the history and any group assignment with it.
func (r *ApplicantRepository) Delete(ctx context.Context, applicantID int) error {
	tag, err := database.DB.Exec(ctx, `DELETE FROM applicants WHERE id = $1`, applicantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
