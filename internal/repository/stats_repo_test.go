package repository_test

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/models"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/repository"
)

// TestStatsRepository_GetDashboardStats verifies dashboard aggregation and
// the review-progress calculation.
func TestStatsRepository_GetDashboardStats(t *testing.T) {
	mock := newMockDB(t)

	pools := []string{models.CandidateTechnical, models.CandidateNontechnical}
	rows := pgxmock.NewRows([]string{
		"total_applicants", "under_review", "accepted", "rejected", "eligible", "assigned",
	}).AddRow(40, 10, 8, 12, 30, 28)

	mock.ExpectQuery("SELECT(.+)FROM applicants").
		WithArgs(models.StatusUnderReview, models.StatusAccepted, models.StatusRejected, pools).
		WillReturnRows(rows)

	repo := repository.NewStatsRepository()
	stats, err := repo.GetDashboardStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 40, stats.TotalApplicants)
	assert.Equal(t, 30, stats.Eligible)
	assert.Equal(t, 28, stats.Assigned)
	// 30 of 40 applications moved past Under Review
	assert.InDelta(t, 75.0, stats.ReviewProgress, 0.01)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestStatsRepository_GetDashboardStats_Empty verifies a cycle with no
// applications reports zero progress rather than dividing by zero.
func TestStatsRepository_GetDashboardStats_Empty(t *testing.T) {
	mock := newMockDB(t)

	rows := pgxmock.NewRows([]string{
		"total_applicants", "under_review", "accepted", "rejected", "eligible", "assigned",
	}).AddRow(0, 0, 0, 0, 0, 0)

	mock.ExpectQuery("SELECT(.+)FROM applicants").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(rows)

	repo := repository.NewStatsRepository()
	stats, err := repo.GetDashboardStats(context.Background())

	require.NoError(t, err)
	assert.Zero(t, stats.TotalApplicants)
	assert.Zero(t, stats.ReviewProgress)
	assert.NoError(t, mock.ExpectationsWereMet())
}
