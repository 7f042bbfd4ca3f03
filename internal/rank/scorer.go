// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank scores papers with a weighted rubric and selects the weekly
// set. Every sub-score is a pure function in [0,1]; the composite is their
// weighted sum, used only for ordering.
package rank

import (
	"strings"
	"time"

	"github.com/pdiddy/research-digest/pkg/types"
)

// Scored is a paper with its composite score and sub-scores.
type Scored struct {
	Paper     types.Paper
	Score     float64
	Breakdown types.ScoreBreakdown
}

// Scorer applies the configured rubric at a fixed instant.
type Scorer struct {
	Weights            types.Weights
	JournalTiers       []types.JournalTier
	UnknownJournal     float64
	OpenAccessPriority bool
	DesignPriority     map[types.StudyDesign]float64
	WindowDays         int
	Now                time.Time
}

// NewScorer builds a Scorer from configuration.
func NewScorer(cfg types.Config, now time.Time) *Scorer {
	return &Scorer{
		Weights:            cfg.Scoring.Weights,
		JournalTiers:       cfg.Scoring.JournalTiers,
		UnknownJournal:     cfg.Scoring.UnknownJournalScore,
		OpenAccessPriority: cfg.OpenAccessPriority,
		DesignPriority:     cfg.Heuristics.DesignPriority,
		WindowDays:         cfg.TimeWindowDays,
		Now:                now,
	}
}

// Breakdown computes every sub-score of p.
func (s *Scorer) Breakdown(p types.Paper) types.ScoreBreakdown {
	return types.ScoreBreakdown{
		JournalTier:   JournalTierScore(p.Journal, s.JournalTiers, s.UnknownJournal),
		OpenAccess:    OpenAccessScore(p.IsOpenAccess, s.OpenAccessPriority),
		TopicMatch:    TopicMatchScore(p.TopicMatchStrength),
		StudyType:     StudyPriorityScore(p.StudyDesign, s.DesignPriority),
		Recency:       RecencyScore(p.PublishedDate, s.Now, s.WindowDays),
		QualitySignal: QualitySignalScore(p.QualityScore),
	}
}

// Composite is the weighted sum of b. Weights need not sum to one.
func (s *Scorer) Composite(b types.ScoreBreakdown) float64 {
	w := s.Weights
	return w.JournalTier*b.JournalTier +
		w.OpenAccess*b.OpenAccess +
		w.TopicMatch*b.TopicMatch +
		w.StudyType*b.StudyType +
		w.Recency*b.Recency +
		w.QualitySignal*b.QualitySignal
}

// Score scores one paper.
func (s *Scorer) Score(p types.Paper) Scored {
	b := s.Breakdown(p)
	return Scored{Paper: p, Score: s.Composite(b), Breakdown: b}
}

// ScoreAll scores papers in input order.
func (s *Scorer) ScoreAll(papers []types.Paper) []Scored {
	out := make([]Scored, 0, len(papers))
	for _, p := range papers {
		out = append(out, s.Score(p))
	}
	return out
}

// Compare orders a before b when it has the higher score, then the newer
// publication date, then the smaller identity key. It returns a negative
// number when a sorts first.
func Compare(a, b Scored) int {
	switch {
	case a.Score > b.Score:
		return -1
	case a.Score < b.Score:
		return 1
	}
	if !a.Paper.PublishedDate.Equal(b.Paper.PublishedDate) {
		if a.Paper.PublishedDate.After(b.Paper.PublishedDate) {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Paper.Key().String(), b.Paper.Key().String())
}
