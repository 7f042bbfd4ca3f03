// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter applies the eligibility predicates to normalized papers.
package filter

import (
	"strings"

	"github.com/pdiddy/research-digest/internal/source"
	"github.com/pdiddy/research-digest/pkg/types"
)

// Drop reasons, in predicate order.
const (
	ReasonOutsideWindow   = "outside_window"
	ReasonExcluded        = "excluded_format"
	ReasonNotPeerReviewed = "not_peer_reviewed"
	ReasonNotHuman        = "not_human"
	ReasonWeakTopicMatch  = "weak_topic_match"
)

// Predicate keeps papers for which Keep returns true. Reason names the
// failure.
type Predicate struct {
	Reason string
	Keep   func(types.Paper) bool
}

// Chain is an ordered list of predicates evaluated with short-circuit.
type Chain struct {
	Predicates []Predicate
}

// New builds the chain for one run. The window predicate is always
// present; the others follow configuration. The exclusion predicate drops
// conference and meeting abstracts named by the exclude hints.
func New(cfg types.Config, window source.Window) Chain {
	preds := []Predicate{{
		Reason: ReasonOutsideWindow,
		Keep:   func(p types.Paper) bool { return window.Contains(p.PublishedDate) },
	}}
	if exclude := source.PhrasePattern(cfg.Heuristics.ExcludeHints); exclude != nil {
		preds = append(preds, Predicate{
			Reason: ReasonExcluded,
			Keep: func(p types.Paper) bool {
				return !exclude.MatchString(strings.ToLower(p.Title + " " + p.Journal + " " + p.AbstractOrSummary))
			},
		})
	}
	if cfg.RequirePeerReview {
		preds = append(preds, Predicate{
			Reason: ReasonNotPeerReviewed,
			Keep:   func(p types.Paper) bool { return p.PeerReviewedLikely },
		})
	}
	if cfg.HumanStudiesOnly {
		preds = append(preds, Predicate{
			Reason: ReasonNotHuman,
			Keep:   func(p types.Paper) bool { return p.StudyType == types.StudyHuman },
		})
	}
	if cfg.MinTopicMatch > 0 {
		floor := cfg.MinTopicMatch
		preds = append(preds, Predicate{
			Reason: ReasonWeakTopicMatch,
			Keep:   func(p types.Paper) bool { return p.TopicMatchStrength >= floor },
		})
	}
	return Chain{Predicates: preds}
}

// Check returns the reason of the first failing predicate, or "" and true
// when p passes them all.
func (c Chain) Check(p types.Paper) (string, bool) {
	for _, pred := range c.Predicates {
		if !pred.Keep(p) {
			return pred.Reason, false
		}
	}
	return "", true
}

// Apply returns the passing papers in input order and the drop count per
// reason.
func (c Chain) Apply(papers []types.Paper) ([]types.Paper, map[string]int) {
	kept := make([]types.Paper, 0, len(papers))
	drops := make(map[string]int)
	for _, p := range papers {
		if reason, ok := c.Check(p); !ok {
			drops[reason]++
			continue
		}
		kept = append(kept, p)
	}
	return kept, drops
}
