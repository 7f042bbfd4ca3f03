// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/research-digest/pkg/types"
)

func TestJournalTierScore(t *testing.T) {
	tiers := types.DefaultScoring().JournalTiers

	tests := []struct {
		journal string
		want    float64
	}{
		{"Nature", 1.0},
		{"nature", 1.0},
		{"Nature Medicine", 0.65},
		{"The Lancet", 1.0},
		{"The Lancet Psychiatry", 1.0},
		{"Psychological Science", 0.65},
		{"JAMA Network Open", 0.65},
		{"Journal of Obscure Studies", 0.35},
		{"", 0.35},
		{"Naturelle", 0.35},
	}
	for _, tt := range tests {
		t.Run(tt.journal, func(t *testing.T) {
			assert.Equal(t, tt.want, JournalTierScore(tt.journal, tiers, 0.35))
		})
	}
}

func TestJournalTierScoreUnknownNeverZero(t *testing.T) {
	assert.Greater(t, JournalTierScore("Small Regional Journal", nil, 0.35), 0.0)
}

func TestOpenAccessScore(t *testing.T) {
	tests := []struct {
		name     string
		oa       *bool
		priority bool
		want     float64
	}{
		{"open with priority", types.Bool(true), true, 1.0},
		{"open without priority", types.Bool(true), false, 0.55},
		{"unknown with priority", nil, true, 0.22},
		{"unknown without priority", nil, false, 0.22},
		{"paywalled with priority", types.Bool(false), true, 0},
		{"paywalled without priority", types.Bool(false), false, 0.22},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OpenAccessScore(tt.oa, tt.priority))
		})
	}
}

func TestStudyPriorityScore(t *testing.T) {
	table := types.DefaultHeuristics().DesignPriority

	assert.InDelta(t, 1.0, StudyPriorityScore(types.DesignMetaAnalysis, table), 1e-9)
	assert.InDelta(t, 0.9, StudyPriorityScore(types.DesignRCT, table), 1e-9)
	assert.InDelta(t, 0.7, StudyPriorityScore(types.DesignCohort, table), 1e-9)
	assert.InDelta(t, 0.45, StudyPriorityScore(types.DesignUnknown, table), 1e-9)
	assert.InDelta(t, 0.45, StudyPriorityScore("not-a-design", table), 1e-9)
	assert.Equal(t, 0.0, StudyPriorityScore(types.DesignRCT, nil))

	assert.Greater(t,
		StudyPriorityScore(types.DesignRCT, table),
		StudyPriorityScore(types.DesignCohort, table))
}

func TestRecencyScore(t *testing.T) {
	now := time.Date(2026, 10, 12, 18, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name      string
		published time.Time
		want      float64
	}{
		{"today", day(12), 1},
		{"future", day(14), 1},
		{"one day", day(11), 1 - 1.0/7},
		{"oldest in window", day(5), 0},
		{"older than window", day(1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RecencyScore(tt.published, now, 7), 1e-9)
		})
	}
}

func TestRecencyScoreIsMonotonic(t *testing.T) {
	now := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	prev := 2.0
	for age := 0; age <= 10; age++ {
		s := RecencyScore(now.AddDate(0, 0, -age), now, 7)
		assert.LessOrEqual(t, s, prev)
		assert.GreaterOrEqual(t, s, 0.0)
		prev = s
	}
}

func TestPassThroughScoresAreClamped(t *testing.T) {
	assert.Equal(t, 1.0, TopicMatchScore(1.7))
	assert.Equal(t, 0.0, TopicMatchScore(-1))
	assert.Equal(t, 0.6, QualitySignalScore(0.6))
	assert.Equal(t, 1.0, QualitySignalScore(3))
}
