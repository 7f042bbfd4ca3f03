// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-digest pipeline:
// the canonical Paper, the weekly run record, and configuration.
package types

import (
	"strings"
	"time"
)

// Source identifies where a Paper's metadata came from.
type Source string

const (
	SourceCrossref          Source = "crossref"
	SourcePubMed            Source = "pubmed"
	SourceRSS               Source = "rss"
	SourceUnpaywallEnriched Source = "unpaywall-enriched"
)

// Priority returns the deterministic tie-break rank of the source. Lower
// values win: crossref, pubmed, rss, unpaywall-enriched.
func (s Source) Priority() int {
	switch s {
	case SourceCrossref:
		return 0
	case SourcePubMed:
		return 1
	case SourceRSS:
		return 2
	case SourceUnpaywallEnriched:
		return 3
	default:
		return 4
	}
}

// StudyType is the coarse evidence class of a paper.
type StudyType string

const (
	StudyHuman    StudyType = "human"
	StudyAnimal   StudyType = "animal"
	StudyInVitro  StudyType = "in-vitro"
	StudyReview   StudyType = "review"
	StudyPreprint StudyType = "preprint"
	StudyUnknown  StudyType = "unknown"
)

// StudyDesign is the methodological design used for the study priority score.
type StudyDesign string

const (
	DesignSystematicReview StudyDesign = "systematic-review"
	DesignMetaAnalysis     StudyDesign = "meta-analysis"
	DesignRCT              StudyDesign = "rct"
	DesignMendelian        StudyDesign = "mendelian-randomization"
	DesignCohort           StudyDesign = "cohort"
	DesignCaseControl      StudyDesign = "case-control"
	DesignCrossSectional   StudyDesign = "cross-sectional"
	DesignAnimal           StudyDesign = "animal"
	DesignMechanistic      StudyDesign = "mechanistic"
	DesignTheory           StudyDesign = "theory"
	DesignUnknown          StudyDesign = "unknown"
)

// Paper is the canonical record produced by normalization. It is treated as
// immutable: later stages copy it rather than modify it in place.
type Paper struct {
	// DOI is lowercase with any resolver prefix removed. Empty when unknown.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	Title string `json:"title" yaml:"title"`

	// NormalizedTitle is the fallback identity form of Title.
	NormalizedTitle string `json:"-" yaml:"-"`

	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	Source Source `json:"source" yaml:"source"`

	// EnrichedFrom records the original source when Source is unpaywall-enriched.
	EnrichedFrom Source `json:"enriched_from,omitempty" yaml:"enriched_from,omitempty"`

	PublishedDate time.Time `json:"published_date" yaml:"published_date"`

	Topic string `json:"topic" yaml:"topic"`

	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// IsOpenAccess is nil when open access status is unresolved.
	IsOpenAccess *bool `json:"is_open_access" yaml:"is_open_access"`

	StudyType   StudyType   `json:"study_type" yaml:"study_type"`
	StudyDesign StudyDesign `json:"study_design" yaml:"study_design"`

	PeerReviewedLikely bool `json:"peer_reviewed_likely" yaml:"peer_reviewed_likely"`

	AbstractOrSummary string `json:"abstract_or_summary_text" yaml:"abstract_or_summary_text"`

	// TopicMatchStrength is in [0,1].
	TopicMatchStrength float64 `json:"topic_match_strength" yaml:"topic_match_strength"`

	// QualitySignals lists matched quality-boost phrases.
	QualitySignals []string `json:"quality_signals,omitempty" yaml:"quality_signals,omitempty"`

	// QualityScore is the capped sum of matched boosts, in [0,1].
	QualityScore float64 `json:"quality_score" yaml:"quality_score"`

	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// IdentityKind distinguishes DOI keys from title keys.
type IdentityKind string

const (
	IdentityDOI   IdentityKind = "doi"
	IdentityTitle IdentityKind = "title"
)

// IdentityKey is the stable dedup key of a Paper: its DOI if present,
// otherwise its normalized title.
type IdentityKey struct {
	Kind  IdentityKind
	Value string
}

// String renders the key as "doi:<doi>" or "title:<normalized title>".
func (k IdentityKey) String() string {
	return string(k.Kind) + ":" + k.Value
}

// IsZero reports whether the key carries no value.
func (k IdentityKey) IsZero() bool { return k.Value == "" }

// Key returns the identity key of p.
func (p Paper) Key() IdentityKey {
	if p.DOI != "" {
		return IdentityKey{Kind: IdentityDOI, Value: p.DOI}
	}
	return IdentityKey{Kind: IdentityTitle, Value: p.NormalizedTitle}
}

// OpenAccessKnown reports whether open access status has been resolved.
func (p Paper) OpenAccessKnown() bool { return p.IsOpenAccess != nil }

// Text returns title and abstract joined for heuristic matching.
func (p Paper) Text() string {
	return strings.TrimSpace(p.Title + " " + p.AbstractOrSummary)
}

// Bool returns a pointer to v, for optional boolean fields.
func Bool(v bool) *bool { return &v }
