package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/models"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/repository"
)

// TestAssignmentRepository_ReplaceAll verifies the atomic swap of the
// assignment set: delete and inserts run inside a single transaction, so a
// failure mid-insert leaves the previous run's records untouched.
func TestAssignmentRepository_ReplaceAll(t *testing.T) {
	testTime := time.Date(2025, 10, 25, 12, 0, 0, 0, time.UTC)

	records := []models.GroupAssignment{
		{
			ApplicantID: 1, ApplicantName: "A", ApplicantEmail: "a@ucsd.edu",
			CandidateType: models.CandidateTechnical, SlotID: "A",
			SlotLabel: "Thursday 6:00-7:30 PM", GroupNumber: 1, GroupID: "A-1",
			RunID: "run-1", AssignedBy: "System", AssignedAt: testTime,
			Confirmation: models.ConfirmationAssigned,
		},
		{
			ApplicantID: 2, ApplicantName: "B", ApplicantEmail: "b@ucsd.edu",
			CandidateType: models.CandidateTechnical, SlotID: "A",
			SlotLabel: "Thursday 6:00-7:30 PM", GroupNumber: 1, GroupID: "A-1",
			RunID: "run-1", AssignedBy: "System", AssignedAt: testTime,
			Confirmation: models.ConfirmationAssigned,
		},
	}

	tests := []struct {
		name        string
		mockSetup   func(pgxmock.PgxPoolIface)
		expectError bool
	}{
		{
			name: "successful swap",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectExec("DELETE FROM group_assignments").
					WillReturnResult(pgxmock.NewResult("DELETE", 5))
				mock.ExpectExec("INSERT INTO group_assignments").
					WithArgs(1, "A", "a@ucsd.edu", models.CandidateTechnical,
						"A", "Thursday 6:00-7:30 PM", 1, "A-1", "run-1",
						"System", testTime, models.ConfirmationAssigned, "").
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
				mock.ExpectExec("INSERT INTO group_assignments").
					WithArgs(2, "B", "b@ucsd.edu", models.CandidateTechnical,
						"A", "Thursday 6:00-7:30 PM", 1, "A-1", "run-1",
						"System", testTime, models.ConfirmationAssigned, "").
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
				mock.ExpectCommit()
			},
			expectError: false,
		},
		{
			name: "insert failure rolls back the delete",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectExec("DELETE FROM group_assignments").
					WillReturnResult(pgxmock.NewResult("DELETE", 5))
				mock.ExpectExec("INSERT INTO group_assignments").
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
						pgxmock.AnyArg()).
					WillReturnError(assert.AnError)
				mock.ExpectRollback()
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockDB(t)
			tt.mockSetup(mock)

			repo := repository.NewAssignmentRepository()
			err := repo.ReplaceAll(context.Background(), records)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestAssignmentRepository_ReplaceAll_Empty verifies that swapping in an
// empty set clears the table without error.
func TestAssignmentRepository_ReplaceAll_Empty(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM group_assignments").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectCommit()

	repo := repository.NewAssignmentRepository()
	err := repo.ReplaceAll(context.Background(), nil)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestAssignmentRepository_SummaryByPoolSlot verifies the per-bucket
// aggregation used by the case-night overview.
func TestAssignmentRepository_SummaryByPoolSlot(t *testing.T) {
	mock := newMockDB(t)

	rows := pgxmock.NewRows([]string{
		"candidate_type", "slot_id", "slot_label", "applicant_count", "group_count",
	}).
		AddRow(models.CandidateNontechnical, "A", "Thursday 6:00-7:30 PM", 3, 1).
		AddRow(models.CandidateTechnical, "A", "Thursday 6:00-7:30 PM", 9, 3)

	mock.ExpectQuery("SELECT(.+)FROM group_assignments").
		WillReturnRows(rows)

	repo := repository.NewAssignmentRepository()
	summary, err := repo.SummaryByPoolSlot(context.Background())

	assert.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, 9, summary[1].ApplicantCount)
	assert.Equal(t, 3, summary[1].GroupCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestAssignmentRepository_ListUnassignedEligible verifies the
// reconciliation query for eligible applicants missing from the current
// assignment set.
func TestAssignmentRepository_ListUnassignedEligible(t *testing.T) {
	testTime := time.Date(2025, 10, 25, 12, 0, 0, 0, time.UTC)

	mock := newMockDB(t)

	rows := pgxmock.NewRows([]string{
		"id", "email", "name", "year", "major", "motivation", "applied_before",
		"candidate_type", "preferences", "resume_file", "status", "created_at",
	}).AddRow(3, "late@ucsd.edu", "Late Applicant", "Junior", "MAE", "", false,
		models.CandidateTechnical, []string{"B"}, "", models.StatusUnderReview, testTime)

	mock.ExpectQuery("SELECT(.+)LEFT JOIN group_assignments").
		WithArgs([]string{models.CandidateTechnical, models.CandidateNontechnical}).
		WillReturnRows(rows)

	repo := repository.NewAssignmentRepository()
	applicants, err := repo.ListUnassignedEligible(context.Background())

	assert.NoError(t, err)
	require.Len(t, applicants, 1)
	assert.Equal(t, "late@ucsd.edu", applicants[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestAssignmentRepository_UpdateConfirmation verifies the tri-state
// confirmation update and its not-found mapping.
func TestAssignmentRepository_UpdateConfirmation(t *testing.T) {
	tests := []struct {
		name      string
		affected  int64
		expectErr error
	}{
		{name: "confirmed", affected: 1, expectErr: nil},
		{name: "unknown record", affected: 0, expectErr: repository.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockDB(t)

			mock.ExpectExec("UPDATE group_assignments").
				WithArgs(5, models.ConfirmationConfirmed, "confirmed by phone", "admin@tcg.ucsd.edu").
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))

			repo := repository.NewAssignmentRepository()
			err := repo.UpdateConfirmation(context.Background(), 5,
				models.ConfirmationConfirmed, "confirmed by phone", "admin@tcg.ucsd.edu")

			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
