// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"fmt"
	"regexp"

	"github.com/pdiddy/research-digest/internal/source"
	"github.com/pdiddy/research-digest/pkg/types"
)

// phraseSet matches any of a list of phrases on word boundaries.
type phraseSet struct {
	re *regexp.Regexp
}

func newPhraseSet(phrases []string) phraseSet {
	return phraseSet{re: source.PhrasePattern(phrases)}
}

func (s phraseSet) match(text string) bool {
	return s.re != nil && s.re.MatchString(text)
}

type designRule struct {
	design   types.StudyDesign
	patterns []*regexp.Regexp
}

type qualityRule struct {
	re    *regexp.Regexp
	boost float64
}

// compiled holds the heuristic tables ready for matching.
type compiled struct {
	human       phraseSet
	nonHuman    phraseSet
	inVitro     phraseSet
	nonClinical phraseSet
	review      phraseSet
	preprint    phraseSet

	designs    []designRule
	quality    []qualityRule
	qualityCap float64
}

func compile(h types.HeuristicsConfig) (*compiled, error) {
	c := &compiled{
		human:       newPhraseSet(h.HumanHints),
		nonHuman:    newPhraseSet(h.NonHumanHints),
		inVitro:     newPhraseSet(h.InVitroHints),
		nonClinical: newPhraseSet(h.NonClinicalHints),
		review:      newPhraseSet(h.ReviewHints),
		preprint:    newPhraseSet(h.PreprintHints),
		qualityCap:  h.QualityCap,
	}
	for _, dp := range h.DesignPatterns {
		rule := designRule{design: dp.Design}
		for _, p := range dp.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("design pattern %q for %s: %w", p, dp.Design, err)
			}
			rule.patterns = append(rule.patterns, re)
		}
		c.designs = append(c.designs, rule)
	}
	for _, qp := range h.QualityPatterns {
		re, err := regexp.Compile(qp.Pattern)
		if err != nil {
			return nil, fmt.Errorf("quality pattern %q: %w", qp.Pattern, err)
		}
		c.quality = append(c.quality, qualityRule{re: re, boost: qp.Boost})
	}
	return c, nil
}
