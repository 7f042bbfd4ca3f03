// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// ScoreBreakdown holds the bounded sub-scores behind a composite score.
type ScoreBreakdown struct {
	JournalTier   float64 `json:"journal_tier" yaml:"journal_tier"`
	OpenAccess    float64 `json:"open_access" yaml:"open_access"`
	TopicMatch    float64 `json:"topic_match" yaml:"topic_match"`
	StudyType     float64 `json:"study_type" yaml:"study_type"`
	Recency       float64 `json:"recency" yaml:"recency"`
	QualitySignal float64 `json:"quality_signal" yaml:"quality_signal"`
}

// Rounded returns a copy with every sub-score rounded for display.
func (b ScoreBreakdown) Rounded() ScoreBreakdown {
	return ScoreBreakdown{
		JournalTier:   RoundScore(b.JournalTier),
		OpenAccess:    RoundScore(b.OpenAccess),
		TopicMatch:    RoundScore(b.TopicMatch),
		StudyType:     RoundScore(b.StudyType),
		Recency:       RoundScore(b.Recency),
		QualitySignal: RoundScore(b.QualitySignal),
	}
}

// RoundScore rounds s to two decimals. Display only; ordering always uses
// the unrounded composite.
func RoundScore(s float64) float64 {
	return math.Round(s*100) / 100
}

// SelectedPaper is a Paper as published in a weekly run.
type SelectedPaper struct {
	Paper `yaml:",inline"`

	Rank int `json:"rank" yaml:"rank"`

	// Slug is unique within the run.
	Slug string `json:"slug" yaml:"slug"`

	// Score is the composite score rounded for display.
	Score float64 `json:"score" yaml:"score"`

	Breakdown ScoreBreakdown `json:"score_breakdown" yaml:"score_breakdown"`
}

// RunStats summarizes how candidates flowed through one run.
type RunStats struct {
	Fetched      int            `json:"fetched" yaml:"fetched"`
	Normalized   int            `json:"normalized" yaml:"normalized"`
	Filtered     int            `json:"filtered" yaml:"filtered"`
	Deduped      int            `json:"deduped" yaml:"deduped"`
	Selected     int            `json:"selected" yaml:"selected"`
	Drops        map[string]int `json:"drops,omitempty" yaml:"drops,omitempty"`
	SourceErrors []string       `json:"source_errors,omitempty" yaml:"source_errors,omitempty"`
}

// WeeklyRun is one successful pipeline execution, keyed by ISO week.
type WeeklyRun struct {
	WeekKey     string          `json:"week_key" yaml:"week_key"`
	RunID       string          `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time       `json:"generated_at" yaml:"generated_at"`
	Papers      []SelectedPaper `json:"papers" yaml:"papers"`
	Stats       RunStats        `json:"stats" yaml:"stats"`

	// ConfigSnapshot is the JSON-encoded configuration the run used.
	ConfigSnapshot json.RawMessage `json:"config_snapshot,omitempty" yaml:"-"`
}

// Selection returns the run's papers, never nil.
func (r WeeklyRun) Selection() []SelectedPaper {
	if r.Papers == nil {
		return []SelectedPaper{}
	}
	return r.Papers
}

// WeekKey returns the ISO week identifier of t in the form YYYY-Www.
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// ParseWeekKey validates a YYYY-Www key and returns its year and week.
func ParseWeekKey(key string) (int, int, error) {
	var year, week int
	if _, err := fmt.Sscanf(key, "%4d-W%2d", &year, &week); err != nil {
		return 0, 0, fmt.Errorf("invalid week key %q: %w", key, err)
	}
	if len(key) != 8 || week < 1 || week > 53 {
		return 0, 0, fmt.Errorf("invalid week key %q", key)
	}
	return year, week, nil
}
