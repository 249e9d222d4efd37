// Package repository provides the data access layer for the application portal.
// This file implements the group assignment repository for case-night placements.
package repository

import (
	"context"

	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/database"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/models"
)

// AssignmentRepository handles database operations for case-night group
// assignments. The assignment set is regenerated wholesale on each batch run
// rather than patched incrementally.
type AssignmentRepository struct{}

// NewAssignmentRepository creates and returns a new AssignmentRepository instance.
func NewAssignmentRepository() *AssignmentRepository {
	return &AssignmentRepository{}
}

// ReplaceAll atomically swaps the persisted assignment set for a freshly
// computed one. Delete and insert run in a single transaction: a crash
// mid-swap leaves the previous run's records intact instead of losing them.
//
// Callers compute the complete new set in memory first (the engine run) and
// only then invoke ReplaceAll, so the delete happens immediately before the
// insert, never before the computation.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - records: the complete new assignment set (may be empty, which clears all)
//
// Returns:
//   - error: Database error; on error no change is visible to readers
func (r *AssignmentRepository) ReplaceAll(ctx context.Context, records []models.GroupAssignment) error {
	tx, err := database.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM group_assignments`); err != nil {
		return err
	}

	query := `
		INSERT INTO group_assignments
			(applicant_id, applicant_name, applicant_email, candidate_type,
			 slot_id, slot_label, group_number, group_id, run_id,
			 assigned_by, assigned_at, confirmation, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	for _, rec := range records {
		_, err := tx.Exec(ctx, query,
			rec.ApplicantID, rec.ApplicantName, rec.ApplicantEmail, rec.CandidateType,
			rec.SlotID, rec.SlotLabel, rec.GroupNumber, rec.GroupID, rec.RunID,
			rec.AssignedBy, rec.AssignedAt, rec.Confirmation, rec.Notes,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ListAll retrieves every assignment record ordered for display and export:
// pool, then slot, then group number, then applicant name.
func (r *AssignmentRepository) ListAll(ctx context.Context) ([]models.GroupAssignment, error) {
	query := `
		SELECT id, applicant_id, applicant_name, applicant_email, candidate_type,
		       slot_id, slot_label, group_number, group_id, run_id,
		       assigned_by, assigned_at, confirmation, notes
		FROM group_assignments
		ORDER BY candidate_type, slot_id, group_number, applicant_name
	`

	rows, err := database.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.GroupAssignment
	for rows.Next() {
		var rec models.GroupAssignment
		if err := rows.Scan(
			&rec.ID, &rec.ApplicantID, &rec.ApplicantName, &rec.ApplicantEmail, &rec.CandidateType,
			&rec.SlotID, &rec.SlotLabel, &rec.GroupNumber, &rec.GroupID, &rec.RunID,
			&rec.AssignedBy, &rec.AssignedAt, &rec.Confirmation, &rec.Notes,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// SummaryByPoolSlot aggregates the persisted assignment set into per
// (pool, slot) counts for the case-night overview screen.
//
// Buckets with no assignments do not appear; the overview merges this with
// the configured slot set to show empty slots.
func (r *AssignmentRepository) SummaryByPoolSlot(ctx context.Context) ([]models.AssignmentSummaryRow, error) {
	query := `
		SELECT candidate_type, slot_id, slot_label,
		       COUNT(*) AS applicant_count,
		       COUNT(DISTINCT group_number) AS group_count
		FROM group_assignments
		GROUP BY candidate_type, slot_id, slot_label
		ORDER BY candidate_type, slot_id
	`

	rows, err := database.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summary []models.AssignmentSummaryRow
	for rows.Next() {
		var row models.AssignmentSummaryRow
		if err := rows.Scan(
			&row.CandidateType, &row.SlotID, &row.SlotLabel,
			&row.ApplicantCount, &row.GroupCount,
		); err != nil {
			return nil, err
		}
		summary = append(summary, row)
	}

	return summary, nil
}

// ListUnassignedEligible is the reconciliation query: applicants with a
// recognized candidate type and stated preferences that are absent from the
// current assignment set. Non-empty output after a run means the snapshot
// has drifted (late submissions) and the batch should be re-run.
func (r *AssignmentRepository) ListUnassignedEligible(ctx context.Context) ([]models.Applicant, error) {
	query := `
		SELECT a.id, a.email, a.name, a.year, a.major, a.motivation, a.applied_before,
		       a.candidate_type, a.preferences, a.resume_file, a.status, a.created_at
		FROM applicants a
		LEFT JOIN group_assignments ga ON ga.applicant_id = a.id
		WHERE a.candidate_type = ANY($1)
		  AND cardinality(a.preferences) > 0
		  AND ga.id IS NULL
		ORDER BY a.created_at, a.email
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

// UpdateConfirmation sets the tri-state confirmation status and notes of one
// assignment record, recording the admin who made the change.
// Returns ErrNotFound when the record does not exist.
func (r *AssignmentRepository) UpdateConfirmation(ctx context.Context, id int, confirmation, notes, actor string) error {
	tag, err := database.DB.Exec(ctx, `
		UPDATE group_assignments
		SET confirmation = $2, notes = $3, assigned_by = $4
		WHERE id = $1
	`, id, confirmation, notes, actor)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
