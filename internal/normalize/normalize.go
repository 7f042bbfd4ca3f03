// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize turns source records into canonical Papers. It resolves
// the identity key and publication date, and classifies each record by
// study type, study design, peer-review likelihood, topic match strength
// and quality signals using configurable keyword tables.
package normalize

import (
	"errors"
	"math"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/pdiddy/research-digest/internal/source"
	"github.com/pdiddy/research-digest/pkg/types"
)

// ErrUnusableRecord marks a record with no identity key or no date.
var ErrUnusableRecord = errors.New("unusable record")

// Drop reasons reported for unusable records.
const (
	ReasonNoIdentity = "no_identity"
	ReasonNoDate     = "no_date"
)

// UnusableError names why a record was dropped.
type UnusableError struct {
	Reason string
}

func (e *UnusableError) Error() string { return "unusable record: " + e.Reason }

// Is makes every UnusableError match ErrUnusableRecord.
func (e *UnusableError) Is(target error) bool { return target == ErrUnusableRecord }

// Normalizer converts candidates to Papers. It is safe for concurrent use.
type Normalizer struct {
	h types.HeuristicsConfig
	c *compiled

	mu       sync.Mutex
	keywords map[string][]topicKeyword
}

type topicKeyword struct {
	word    string
	re      *regexp.Regexp
	isTopic bool
}

// New compiles the heuristic tables.
func New(h types.HeuristicsConfig) (*Normalizer, error) {
	c, err := compile(h)
	if err != nil {
		return nil, err
	}
	return &Normalizer{h: h, c: c, keywords: make(map[string][]topicKeyword)}, nil
}

// Normalize maps one candidate to a Paper. It returns an error matching
// ErrUnusableRecord when neither a DOI nor a usable title is present, or
// when no publication date could be resolved.
func (n *Normalizer) Normalize(cand source.Candidate) (types.Paper, error) {
	can := cand.Record.Canonical()

	title := strings.Join(strings.Fields(can.Title), " ")
	p := types.Paper{
		DOI:               DOI(can.DOI),
		Title:             title,
		NormalizedTitle:   Title(title),
		Authors:           slices.Clone(can.Authors),
		Source:            can.Source,
		Topic:             cand.Topic,
		Journal:           strings.Join(strings.Fields(can.Journal), " "),
		AbstractOrSummary: strings.Join(strings.Fields(can.Abstract), " "),
		URL:               can.URL,
	}
	if can.OpenAccess != nil {
		p.IsOpenAccess = types.Bool(*can.OpenAccess)
	}
	if p.Key().IsZero() {
		return types.Paper{}, &UnusableError{Reason: ReasonNoIdentity}
	}
	if can.Published.IsZero() {
		return types.Paper{}, &UnusableError{Reason: ReasonNoDate}
	}
	p.PublishedDate = source.Day(can.Published)

	text := strings.ToLower(p.Text())
	preprint := can.Preprint || n.c.preprint.match(strings.ToLower(p.Title+" "+p.Journal+" "+p.URL))

	p.StudyType = n.studyType(can, text, preprint)
	p.StudyDesign = n.studyDesign(text)
	p.PeerReviewedLikely = can.JournalArticle && !preprint && p.StudyType != types.StudyPreprint
	p.TopicMatchStrength = n.TopicMatch(cand.Topic, strings.ToLower(p.Title), text)
	p.QualitySignals, p.QualityScore = n.quality(text)
	return p, nil
}

// studyType classifies conservatively: without a positive human signal the
// result is never human.
func (n *Normalizer) studyType(can source.Canonical, text string, preprint bool) types.StudyType {
	if preprint {
		return types.StudyPreprint
	}

	var meshHumans, meshAnimals bool
	for _, m := range can.MeshTerms {
		switch strings.ToLower(strings.TrimSpace(m)) {
		case "humans":
			meshHumans = true
		case "animals":
			meshAnimals = true
		}
	}
	if meshHumans {
		return types.StudyHuman
	}
	if meshAnimals {
		return types.StudyAnimal
	}

	human := n.c.human.match(text)
	switch {
	case n.c.inVitro.match(text) && !human:
		return types.StudyInVitro
	case n.c.nonHuman.match(text) && !human:
		return types.StudyAnimal
	case n.c.nonClinical.match(text) && !human:
		return types.StudyUnknown
	case human:
		return types.StudyHuman
	case n.c.review.match(text) || hasReviewType(can.PublicationTypes):
		return types.StudyReview
	}
	return types.StudyUnknown
}

func hasReviewType(pubTypes []string) bool {
	for _, t := range pubTypes {
		if strings.Contains(strings.ToLower(t), "review") {
			return true
		}
	}
	return false
}

// studyDesign returns the first configured design with a matching pattern.
func (n *Normalizer) studyDesign(text string) types.StudyDesign {
	for _, rule := range n.c.designs {
		for _, re := range rule.patterns {
			if re.MatchString(text) {
				return rule.design
			}
		}
	}
	return types.DesignUnknown
}

// TopicMatch scores how strongly text matches topic, bucketed to
// {0, 0.36, 0.68, 1}. A keyword equal to the topic counts 2.5, any other
// keyword 1; hits in the title count half again. The literal topic phrase
// adds 1.5. Both strings must already be lowercase.
func (n *Normalizer) TopicMatch(topic, title, text string) float64 {
	raw := 0.0
	for _, kw := range n.topicKeywords(topic) {
		if !kw.re.MatchString(text) {
			continue
		}
		w := 1.0
		if kw.isTopic {
			w = 2.5
		}
		if kw.re.MatchString(title) {
			w *= 1.5
		}
		raw += w
	}
	if t := strings.ToLower(strings.TrimSpace(topic)); t != "" && strings.Contains(text, t) {
		raw += 1.5
	}
	return bucketTopicMatch(raw)
}

func bucketTopicMatch(raw float64) float64 {
	switch {
	case raw >= 4:
		return 1.0
	case raw >= 2.2:
		return 0.68
	case raw > 0:
		return 0.36
	}
	return 0
}

func (n *Normalizer) topicKeywords(topic string) []topicKeyword {
	key := strings.ToLower(strings.TrimSpace(topic))
	n.mu.Lock()
	defer n.mu.Unlock()
	if kws, ok := n.keywords[key]; ok {
		return kws
	}
	var kws []topicKeyword
	seen := make(map[string]bool)
	for _, w := range n.h.KeywordsFor(key) {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		kws = append(kws, topicKeyword{word: w, re: source.KeywordPattern(w), isTopic: w == key})
	}
	n.keywords[key] = kws
	return kws
}

// quality returns the matched phrases and the capped boost total in [0,1].
func (n *Normalizer) quality(text string) ([]string, float64) {
	var signals []string
	total := 0.0
	for _, rule := range n.c.quality {
		if m := rule.re.FindString(text); m != "" {
			signals = append(signals, m)
			total += rule.boost
		}
	}
	if n.c.qualityCap <= 0 || total <= 0 {
		return signals, 0
	}
	return signals, math.Min(1, total/n.c.qualityCap)
}

// All normalizes every candidate, dropping unusable ones. The returned map
// counts drops by reason.
func (n *Normalizer) All(cands []source.Candidate) ([]types.Paper, map[string]int) {
	papers := make([]types.Paper, 0, len(cands))
	drops := make(map[string]int)
	for _, c := range cands {
		p, err := n.Normalize(c)
		if err != nil {
			reason := "unusable"
			var ue *UnusableError
			if errors.As(err, &ue) {
				reason = ue.Reason
			}
			drops[reason]++
			continue
		}
		papers = append(papers, p)
	}
	return papers, drops
}
