// This file orchestrates case-night assignment runs: snapshot the eligible
// applicants, run the in-memory engine, and swap the stored assignment set
// atomically. A Redis lock keeps concurrent runs from interleaving.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/assignment"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/lock"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/models"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/notify"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/repository"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/security"
)

// runLockKey names the single-flight lock shared by every portal instance.
const runLockKey = "casenight:assignment-run"

// runLockTTL bounds how long a crashed run can block the next one.
const runLockTTL = 2 * time.Minute

// SystemActor is recorded on assignment records produced by unattended runs.
const SystemActor = "System"

// CaseNightService coordinates batch group assignment.
//
// A run reads the eligible applicants exactly once, computes the full
// assignment in memory, and replaces the previous assignment set in a single
// transaction. Readers therefore always see either the old complete batch or
// the new one, never a mix.
type CaseNightService struct {
	applicantRepo *repository.ApplicantRepository
	assignRepo    *repository.AssignmentRepository
	locker        lock.Locker
	mailer        *notify.Mailer // nil when SMTP is not configured
	logger        *security.Logger
}

// NewCaseNightService creates the service. locker may be a Redis-backed
// locker or a nil *lock.RedisLocker when Redis is not configured; mailer
// may be nil.
func NewCaseNightService(locker lock.Locker, mailer *notify.Mailer, logger *security.Logger) *CaseNightService {
	return &CaseNightService{
		applicantRepo: repository.NewApplicantRepository(),
		assignRepo:    repository.NewAssignmentRepository(),
		locker:        locker,
		mailer:        mailer,
		logger:        logger,
	}
}

// RunAssignment executes one complete assignment run and returns its result.
//
// Only one run may execute at a time across all portal instances; a second
// caller gets ErrRunInProgress instead of queueing. The previous assignment
// set stays visible until the new one commits, so a failed run leaves the
// stored assignments untouched.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - cfg: Slot set and group size for this event
//   - actor: Admin who triggered the run; blank means SystemActor
//
// Returns:
//   - *assignment.Result: Every record written plus the per-bucket summary
//   - error: ErrRunInProgress, a config ValidationError wrapped by the
//     engine, or the underlying database error
func (s *CaseNightService) RunAssignment(ctx context.Context, cfg assignment.Config, actor string) (*assignment.Result, error) {
	if strings.TrimSpace(actor) == "" {
		actor = SystemActor
	}

	acquired, err := s.locker.Acquire(ctx, runLockKey, runLockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire assignment lock: %w", err)
	}
	if !acquired {
		return nil, ErrRunInProgress
	}
	defer s.locker.Release(ctx, runLockKey)

	// Single snapshot: the engine never re-reads, so applicants submitting
	// mid-run land in the next batch instead of a half-assigned state.
	eligible, err := s.applicantRepo.ListEligible(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot eligible applicants: %w", err)
	}

	result, err := assignment.Run(cfg, eligible, actor, uuid.NewString())
	if err != nil {
		return nil, err
	}

	// Compute-then-swap: delete and reinsert inside one transaction.
	if err := s.assignRepo.ReplaceAll(ctx, result.Assignments); err != nil {
		return nil, fmt.Errorf("failed to store assignment run: %w", err)
	}

	// Best effort: the batch is already committed, so delivery failures are
	// logged and otherwise ignored.
	go s.sendAssignmentEmails(result.Assignments)

	return result, nil
}

// sendAssignmentEmails tells every placed applicant their slot and group.
func (s *CaseNightService) sendAssignmentEmails(records []models.GroupAssignment) {
	for _, rec := range records {
		err := s.mailer.SendCaseNightAssignment(rec.ApplicantEmail, rec.ApplicantName, rec.SlotLabel, rec.GroupNumber)
		if err != nil {
			s.logger.Error("Failed to send case night assignment email", err)
		}
	}
}

// Unassigned lists eligible applicants missing from the current assignment
// set, typically those who submitted after the last run.
func (s *CaseNightService) Unassigned(ctx context.Context) ([]models.Applicant, error) {
	return s.assignRepo.ListUnassignedEligible(ctx)
}
