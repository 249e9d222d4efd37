// Package assignment implements the case-night group assignment engine.
// It buckets eligible applicants into a fixed set of time slots by stated
// preference and partitions each (slot, pool) bucket into fixed-size groups.
//
// The engine is pure: it reads nothing and writes nothing. Callers snapshot
// the eligible applicants once, run the engine in memory, and persist the
// resulting records in a single transaction.
package assignment

import (
	"fmt"
	"sort"
	"time"

	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/models"
)

// Slot describes one case-night time slot.
type Slot struct {
	ID        string // Slot identifier (e.g., "A")
	Label     string // Human-readable time range (e.g., "Thursday 6:00-7:30 PM")
	MaxGroups int    // Capacity in groups per pool. Advisory: the preference pass does not enforce it.
}

// Config is the explicit engine configuration, passed into Run rather than
// held in package state so tests can vary slots and group sizes freely.
type Config struct {
	Slots     []Slot // Fixed slot set. Order defines the tie-break precedence for the least-loaded fallback.
	GroupSize int    // Fixed group size; the last group of a bucket may be smaller.
}

// DefaultConfig returns the standard case-night configuration:
// three slots, groups of four, five groups per slot per pool.
func DefaultConfig() Config {
	return Config{
		Slots: []Slot{
			{ID: "A", Label: "Thursday 6:00-7:30 PM", MaxGroups: 5},
			{ID: "B", Label: "Thursday 8:00-9:30 PM", MaxGroups: 5},
			{ID: "C", Label: "Friday 6:00-7:30 PM", MaxGroups: 5},
		},
		GroupSize: 4,
	}
}

// Validate checks the configuration for structural problems.
// Called once at the start of every run.
func (c Config) Validate() error {
	if len(c.Slots) == 0 {
		return fmt.Errorf("at least one time slot is required")
	}

	if c.GroupSize < 1 {
		return fmt.Errorf("group size must be at least 1, got %d", c.GroupSize)
	}

	seen := make(map[string]bool, len(c.Slots))
	for _, s := range c.Slots {
		if s.ID == "" {
			return fmt.Errorf("slot ID cannot be empty")
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate slot ID %q", s.ID)
		}
		seen[s.ID] = true
	}

	return nil
}

// slotByID returns the slot definition for id, or nil when id is not part of
// the configured slot set (an unrecognized preference).
func (c Config) slotByID(id string) *Slot {
	for i := range c.Slots {
		if c.Slots[i].ID == id {
			return &c.Slots[i]
		}
	}
	return nil
}

// Result is the complete output of one engine run. Either the whole result is
// persisted or none of it is; the engine never emits partial batches.
type Result struct {
	Assignments []models.GroupAssignment     // One record per placed applicant
	Summary     []models.AssignmentSummaryRow // Counts per (pool, slot), including empty buckets
	Skipped     int                           // Applicants outside the two recognized pools (defensive; boundary validation should prevent this)
}

// Run buckets applicants into slots and partitions each bucket into groups.
//
// The two candidate pools are processed independently: slot load tracking,
// bucket membership, and group numbering never mix pools. Within a pool:
//
//  1. Applicants are processed in submission order (email as tiebreak), which
//     makes the run reproducible for the same snapshot.
//  2. The first recognized slot in the applicant's stated preference order
//     wins, regardless of how full that slot already is. Slot capacity is
//     deliberately not enforced here; it only shapes the fallback below.
//  3. An applicant with no recognized preference goes to the slot holding the
//     fewest people at that moment, ties broken by configured slot order.
//  4. Each (slot, pool) bucket is split into consecutive groups of
//     cfg.GroupSize in accumulated order. Group numbers are 1-based; the
//     final group may be smaller than the group size.
//
// An empty applicant slice is not an error: Run returns a Result with zero
// assignments and a summary of empty buckets.
//
// Parameters:
//   - cfg: slot set and group size for this event
//   - applicants: snapshot of eligible applicants (recognized pool, non-empty preferences)
//   - actor: assigning actor recorded on every record ("System" for batch runs)
//   - runID: batch identifier shared by every record of this run
//
// Returns:
//   - *Result: full assignment set plus per-bucket summary
//   - error: configuration error; never fails on applicant data
func Run(cfg Config, applicants []models.Applicant, actor, runID string) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid assignment config: %w", err)
	}

	// Stable processing order guarantees reproducibility across runs on the
	// same snapshot: submission time ascending, email as tiebreak.
	ordered := make([]models.Applicant, len(applicants))
	copy(ordered, applicants)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].Email < ordered[j].Email
	})

	pools := []string{models.CandidateTechnical, models.CandidateNontechnical}

	// buckets[pool][slotID] accumulates applicants in placement order.
	// counts[pool][slotID] tracks per-pool slot load for the fallback.
	buckets := make(map[string]map[string][]models.Applicant, len(pools))
	counts := make(map[string]map[string]int, len(pools))
	for _, pool := range pools {
		buckets[pool] = make(map[string][]models.Applicant, len(cfg.Slots))
		counts[pool] = make(map[string]int, len(cfg.Slots))
	}

	skipped := 0
	for _, a := range ordered {
		if !models.IsValidCandidateType(a.CandidateType) {
			skipped++
			continue
		}

		slotID := ""
		for _, pref := range a.Preferences {
			if cfg.slotByID(pref) != nil {
				slotID = pref
				break
			}
		}

		if slotID == "" {
			// No recognized preference: least-loaded slot at this moment,
			// ties broken by configured slot order.
			slotID = leastLoadedSlot(cfg, counts[a.CandidateType])
		}

		buckets[a.CandidateType][slotID] = append(buckets[a.CandidateType][slotID], a)
		counts[a.CandidateType][slotID]++
	}

	now := time.Now()
	result := &Result{Skipped: skipped}

	// Partition each bucket into consecutive groups and emit one record per
	// applicant. Iteration follows pool then configured slot order so the
	// output ordering is deterministic as well.
	for _, pool := range pools {
		for _, slot := range cfg.Slots {
			bucket := buckets[pool][slot.ID]

			for i, a := range bucket {
				groupNumber := i/cfg.GroupSize + 1
				result.Assignments = append(result.Assignments, models.GroupAssignment{
					ApplicantID:    a.ID,
					ApplicantName:  a.Name,
					ApplicantEmail: a.Email,
					CandidateType:  pool,
					SlotID:         slot.ID,
					SlotLabel:      slot.Label,
					GroupNumber:    groupNumber,
					GroupID:        fmt.Sprintf("%s-%d", slot.ID, groupNumber),
					RunID:          runID,
					AssignedBy:     actor,
					AssignedAt:     now,
					Confirmation:   models.ConfirmationAssigned,
				})
			}

			groupCount := len(bucket) / cfg.GroupSize
			if len(bucket)%cfg.GroupSize != 0 {
				groupCount++
			}

			result.Summary = append(result.Summary, models.AssignmentSummaryRow{
				CandidateType:  pool,
				SlotID:         slot.ID,
				SlotLabel:      slot.Label,
				ApplicantCount: len(bucket),
				GroupCount:     groupCount,
			})
		}
	}

	return result, nil
}

// leastLoadedSlot returns the ID of the slot with the strictly smallest
// current count. Slots earlier in the configured order win ties.
func leastLoadedSlot(cfg Config, counts map[string]int) string {
	best := cfg.Slots[0].ID
	for _, s := range cfg.Slots[1:] {
		if counts[s.ID] < counts[best] {
			best = s.ID
		}
	}
	return best
}
