// Package repository provides the data access layer for the application portal.
// This file provides statistical aggregation queries for the admin dashboard.
package repository

import (
	"context"

	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/database"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/models"
)

// StatsRepository handles statistical queries for dashboard displays.
// These queries aggregate data across applicants and assignments to give
// administrators a recruitment-cycle overview.
type StatsRepository struct{}

// NewStatsRepository creates a new instance of StatsRepository.
func NewStatsRepository() *StatsRepository {
	return &StatsRepository{}
}

// DashboardStats represents aggregated statistics for the admin dashboard.
type DashboardStats struct {
	TotalApplicants int     // All submitted applications
	UnderReview     int     // Applications still awaiting triage
	Accepted        int     // Applications in Accepted status
	Rejected        int     // Applications in Rejected status
	Eligible        int     // Recognized pool + stated preferences (case-night candidates)
	Assigned        int     // Applicants present in the current assignment set
	ReviewProgress  float64 // Percentage of applications moved past Under Review (0-100)
}

// GetDashboardStats retrieves aggregated statistics for the admin dashboard
// in a single query.
func (r *StatsRepository) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_applicants,
			COUNT(*) FILTER (WHERE status = $1) AS under_review,
			COUNT(*) FILTER (WHERE status = $2) AS accepted,
			COUNT(*) FILTER (WHERE status = $3) AS rejected,
			COUNT(*) FILTER (WHERE candidate_type = ANY($4)
				AND cardinality(preferences) > 0) AS eligible,
			(SELECT COUNT(DISTINCT applicant_id) FROM group_assignments) AS assigned
		FROM applicants
	`

	pools := []string{models.CandidateTechnical, models.CandidateNontechnical}

	stats := &DashboardStats{}
	row := database.DB.QueryRow(ctx, query,
		models.StatusUnderReview, models.StatusAccepted, models.StatusRejected, pools)

	err := row.Scan(
		&stats.TotalApplicants,
		&stats.UnderReview,
		&stats.Accepted,
		&stats.Rejected,
		&stats.Eligible,
		&stats.Assigned,
	)
	if err != nil {
		return nil, err
	}

	if stats.TotalApplicants > 0 {
		reviewed := stats.TotalApplicants - stats.UnderReview
		stats.ReviewProgress = float64(reviewed) / float64(stats.TotalApplicants) * 100
	}

	return stats, nil
}
