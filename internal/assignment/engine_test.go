// Package assignment_test provides unit tests for the case-night assignment
// engine. The engine is pure, so tests construct applicant snapshots in memory
// and assert on the emitted records directly; no database mocking is needed.
package assignment_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/assignment"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/models"
)

// testConfig returns a three-slot configuration with groups of four,
// mirroring the standard case-night setup.
func testConfig() assignment.Config {
	return assignment.Config{
		Slots: []assignment.Slot{
			{ID: "A", Label: "Thursday 6:00-7:30 PM", MaxGroups: 2},
			{ID: "B", Label: "Thursday 8:00-9:30 PM", MaxGroups: 2},
			{ID: "C", Label: "Friday 6:00-7:30 PM", MaxGroups: 2},
		},
		GroupSize: 4,
	}
}

// makeApplicants builds n applicants in one pool with identical preferences
// and strictly increasing submission times, so processing order is known.
func makeApplicants(n int, pool string, prefs []string) []models.Applicant {
	base := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	out := make([]models.Applicant, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Applicant{
			ID:            i + 1,
			Email:         fmt.Sprintf("applicant%02d@ucsd.edu", i+1),
			Name:          fmt.Sprintf("Applicant %02d", i+1),
			CandidateType: pool,
			Preferences:   prefs,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		})
	}
	return out
}

// TestRun_GroupPartition verifies group partition correctness for a single
// bucket: nine applicants preferring slot A with group size four must produce
// exactly three groups of sizes 4, 4, and 1, with slots B and C left empty.
func TestRun_GroupPartition(t *testing.T) {
	applicants := makeApplicants(9, models.CandidateTechnical, []string{"A"})

	result, err := assignment.Run(testConfig(), applicants, "System", "run-1")
	require.NoError(t, err)
	require.Len(t, result.Assignments, 9, "every applicant should be placed exactly once")

	// Count members per group in slot A
	groupSizes := make(map[int]int)
	for _, rec := range result.Assignments {
		assert.Equal(t, "A", rec.SlotID, "all applicants preferred slot A")
		assert.Equal(t, fmt.Sprintf("A-%d", rec.GroupNumber), rec.GroupID)
		groupSizes[rec.GroupNumber]++
	}

	assert.Equal(t, map[int]int{1: 4, 2: 4, 3: 1}, groupSizes,
		"9 applicants with group size 4 partition into 4+4+1")

	// Summary must report empty buckets for slots B and C
	for _, row := range result.Summary {
		if row.CandidateType != models.CandidateTechnical {
			continue
		}
		switch row.SlotID {
		case "A":
			assert.Equal(t, 9, row.ApplicantCount)
			assert.Equal(t, 3, row.GroupCount)
		default:
			assert.Zero(t, row.ApplicantCount, "slot %s should be empty", row.SlotID)
			assert.Zero(t, row.GroupCount)
		}
	}
}

// TestRun_FirstPreferenceWins verifies that a recognized first preference is
// always honored, even when the slot is far past its configured group
// capacity. Capacity shapes only the fallback, never the preference pass;
// this test pins that behavior so it cannot change silently.
func TestRun_FirstPreferenceWins(t *testing.T) {
	// 2 groups of 4 = capacity 8, but 12 applicants all prefer slot A
	applicants := makeApplicants(12, models.CandidateTechnical, []string{"A", "B"})

	result, err := assignment.Run(testConfig(), applicants, "System", "run-1")
	require.NoError(t, err)
	require.Len(t, result.Assignments, 12)

	for _, rec := range result.Assignments {
		assert.Equal(t, "A", rec.SlotID,
			"first listed preference wins regardless of slot load")
	}
}

// TestRun_PreferenceOrder verifies the applicant's own listing order decides
// placement: an applicant listing B before A lands in B.
func TestRun_PreferenceOrder(t *testing.T) {
	applicants := makeApplicants(1, models.CandidateTechnical, []string{"B", "A"})

	result, err := assignment.Run(testConfig(), applicants, "System", "run-1")
	require.NoError(t, err)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, "B", result.Assignments[0].SlotID)
}

// TestRun_UnrecognizedPreferenceFallsThrough verifies that a malformed slot
// preference is not a hard failure: the applicant falls through to the
// least-loaded slot as if no preference had been stated. A later recognized
// entry in the preference list still wins over the fallback.
func TestRun_UnrecognizedPreferenceFallsThrough(t *testing.T) {
	tests := []struct {
		name     string
		prefs    []string
		expected string
	}{
		{
			name:     "all preferences unrecognized",
			prefs:    []string{"X", "Z"},
			expected: "A", // all slots empty, tie broken by configured order
		},
		{
			name:     "later recognized preference wins over fallback",
			prefs:    []string{"X", "C"},
			expected: "C",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applicants := makeApplicants(1, models.CandidateTechnical, tt.prefs)

			result, err := assignment.Run(testConfig(), applicants, "System", "run-1")
			require.NoError(t, err)
			require.Len(t, result.Assignments, 1)
			assert.Equal(t, tt.expected, result.Assignments[0].SlotID)
		})
	}
}

// TestRun_LeastLoadedFallback verifies fallback correctness: an applicant
// with no recognized preference goes to the slot with the strictly smallest
// count at the moment they are processed.
func TestRun_LeastLoadedFallback(t *testing.T) {
	// Five applicants fill A (3) and B (2); C stays empty. The sixth has no
	// recognized preference and must land in C.
	applicants := makeApplicants(3, models.CandidateTechnical, []string{"A"})
	applicants = append(applicants, makeApplicants(2, models.CandidateTechnical, []string{"B"})...)
	noPref := makeApplicants(1, models.CandidateTechnical, nil)[0]
	noPref.Email = "latecomer@ucsd.edu"
	noPref.CreatedAt = time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	applicants = append(applicants, noPref)

	result, err := assignment.Run(testConfig(), applicants, "System", "run-1")
	require.NoError(t, err)
	require.Len(t, result.Assignments, 6)

	for _, rec := range result.Assignments {
		if rec.ApplicantEmail == "latecomer@ucsd.edu" {
			assert.Equal(t, "C", rec.SlotID, "fallback should pick the emptiest slot")
		}
	}
}

// TestRun_PoolIsolation verifies that the two candidate pools never mix:
// bucket membership, slot load tracking, and group numbering are all
// computed independently per pool.
func TestRun_PoolIsolation(t *testing.T) {
	tech := makeApplicants(5, models.CandidateTechnical, []string{"A"})
	nontech := makeApplicants(3, models.CandidateNontechnical, []string{"A"})
	// Distinct emails across pools
	for i := range nontech {
		nontech[i].Email = fmt.Sprintf("nontech%02d@ucsd.edu", i+1)
		nontech[i].ID = 100 + i
	}

	result, err := assignment.Run(testConfig(), append(tech, nontech...), "System", "run-1")
	require.NoError(t, err)
	require.Len(t, result.Assignments, 8)

	techGroups := make(map[int]int)
	nontechGroups := make(map[int]int)
	for _, rec := range result.Assignments {
		assert.Equal(t, "A", rec.SlotID)
		switch rec.CandidateType {
		case models.CandidateTechnical:
			techGroups[rec.GroupNumber]++
		case models.CandidateNontechnical:
			nontechGroups[rec.GroupNumber]++
		}
	}

	// Group numbering restarts at 1 for each pool
	assert.Equal(t, map[int]int{1: 4, 2: 1}, techGroups)
	assert.Equal(t, map[int]int{1: 3}, nontechGroups)
}

// TestRun_EmptyPool verifies that an empty eligible set is reported as zero
// records, not as an error.
func TestRun_EmptyPool(t *testing.T) {
	result, err := assignment.Run(testConfig(), nil, "System", "run-1")
	require.NoError(t, err)

	assert.Empty(t, result.Assignments)
	assert.Len(t, result.Summary, 6, "summary covers every (pool, slot) pair even when empty")
	for _, row := range result.Summary {
		assert.Zero(t, row.ApplicantCount)
	}
}

// TestRun_Deterministic verifies reproducibility: two runs over the same
// snapshot produce identical placements regardless of input slice order.
func TestRun_Deterministic(t *testing.T) {
	applicants := makeApplicants(7, models.CandidateTechnical, []string{"B"})
	applicants = append(applicants, makeApplicants(4, models.CandidateNontechnical, nil)...)
	for i := 7; i < len(applicants); i++ {
		applicants[i].Email = fmt.Sprintf("pool2-%02d@ucsd.edu", i)
	}

	first, err := assignment.Run(testConfig(), applicants, "System", "run-1")
	require.NoError(t, err)

	// Reverse the input ordering; the engine re-sorts by submission time
	reversed := make([]models.Applicant, 0, len(applicants))
	for i := len(applicants) - 1; i >= 0; i-- {
		reversed = append(reversed, applicants[i])
	}

	second, err := assignment.Run(testConfig(), reversed, "System", "run-1")
	require.NoError(t, err)

	require.Equal(t, len(first.Assignments), len(second.Assignments))
	for i := range first.Assignments {
		assert.Equal(t, first.Assignments[i].ApplicantEmail, second.Assignments[i].ApplicantEmail)
		assert.Equal(t, first.Assignments[i].GroupID, second.Assignments[i].GroupID)
	}
}

// TestRun_RecordFields verifies the metadata stamped onto each record:
// actor, run ID, confirmation status, and slot label.
func TestRun_RecordFields(t *testing.T) {
	applicants := makeApplicants(2, models.CandidateTechnical, []string{"B"})

	result, err := assignment.Run(testConfig(), applicants, "admin@tcg.ucsd.edu", "3fa8c2e1")
	require.NoError(t, err)
	require.Len(t, result.Assignments, 2)

	for _, rec := range result.Assignments {
		assert.Equal(t, "admin@tcg.ucsd.edu", rec.AssignedBy)
		assert.Equal(t, "3fa8c2e1", rec.RunID)
		assert.Equal(t, models.ConfirmationAssigned, rec.Confirmation)
		assert.Equal(t, "Thursday 8:00-9:30 PM", rec.SlotLabel)
		assert.False(t, rec.AssignedAt.IsZero())
	}
}

// TestConfigValidate verifies rejection of structurally broken configurations.
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     assignment.Config
		wantErr bool
	}{
		{
			name:    "valid default",
			cfg:     assignment.DefaultConfig(),
			wantErr: false,
		},
		{
			name:    "no slots",
			cfg:     assignment.Config{GroupSize: 4},
			wantErr: true,
		},
		{
			name: "zero group size",
			cfg: assignment.Config{
				Slots:     []assignment.Slot{{ID: "A", Label: "Slot A"}},
				GroupSize: 0,
			},
			wantErr: true,
		},
		{
			name: "duplicate slot IDs",
			cfg: assignment.Config{
				Slots:     []assignment.Slot{{ID: "A"}, {ID: "A"}},
				GroupSize: 4,
			},
			wantErr: true,
		},
		{
			name: "empty slot ID",
			cfg: assignment.Config{
				Slots:     []assignment.Slot{{ID: ""}},
				GroupSize: 4,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
