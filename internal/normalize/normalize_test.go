// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-digest/internal/source"
	"github.com/pdiddy/research-digest/pkg/types"
)

type fakeRecord struct {
	c source.Canonical
}

func (r fakeRecord) Source() types.Source { return r.c.Source }

func (r fakeRecord) Canonical() source.Canonical { return r.c }

var published = time.Date(2026, 10, 8, 15, 30, 0, 0, time.UTC)

func candidate(topic string, c source.Canonical) source.Candidate {
	if c.Source == "" {
		c.Source = types.SourceCrossref
	}
	return source.Candidate{Topic: topic, Record: fakeRecord{c: c}}
}

func newNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := New(types.DefaultHeuristics())
	require.NoError(t, err)
	return n
}

func TestNormalize(t *testing.T) {
	n := newNormalizer(t)

	p, err := n.Normalize(candidate("nutrition", source.Canonical{
		DOI:            "https://doi.org/10.1000/Diet.1",
		Title:          "  Diet quality and   mortality ",
		Authors:        []string{"A. Author"},
		Journal:        "BMJ",
		Abstract:       "A randomised trial of 1,200 adults. The trial was preregistered.",
		Published:      published,
		OpenAccess:     types.Bool(true),
		JournalArticle: true,
		URL:            "https://doi.org/10.1000/diet.1",
	}))
	require.NoError(t, err)

	assert.Equal(t, "10.1000/diet.1", p.DOI)
	assert.Equal(t, "Diet quality and mortality", p.Title)
	assert.Equal(t, "diet quality and mortality", p.NormalizedTitle)
	assert.Equal(t, types.IdentityKey{Kind: types.IdentityDOI, Value: "10.1000/diet.1"}, p.Key())
	assert.Equal(t, "nutrition", p.Topic)
	assert.Equal(t, time.Date(2026, 10, 8, 0, 0, 0, 0, time.UTC), p.PublishedDate)
	assert.Equal(t, types.StudyHuman, p.StudyType)
	assert.Equal(t, types.DesignRCT, p.StudyDesign)
	assert.True(t, p.PeerReviewedLikely)
	require.NotNil(t, p.IsOpenAccess)
	assert.True(t, *p.IsOpenAccess)
	assert.Equal(t, []string{"preregistered"}, p.QualitySignals)
	assert.InDelta(t, 0.6, p.QualityScore, 1e-9)
	assert.Greater(t, p.TopicMatchStrength, 0.0)
}

func TestNormalize_Unusable(t *testing.T) {
	n := newNormalizer(t)

	tests := []struct {
		name   string
		c      source.Canonical
		reason string
	}{
		{"no identity", source.Canonical{Title: " ?! ", Published: published}, ReasonNoIdentity},
		{"no date with doi", source.Canonical{DOI: "10.1000/x", Title: "Sleep"}, ReasonNoDate},
		{"no date with title", source.Canonical{Title: "Sleep and memory"}, ReasonNoDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(candidate("sleep", tt.c))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnusableRecord))
			var ue *UnusableError
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, tt.reason, ue.Reason)
		})
	}
}

func TestNormalize_TitleIdentityWithoutDOI(t *testing.T) {
	n := newNormalizer(t)
	p, err := n.Normalize(candidate("sleep", source.Canonical{
		Title:     "Sleep, Memory: A Study",
		Published: published,
	}))
	require.NoError(t, err)
	assert.Equal(t, types.IdentityKey{Kind: types.IdentityTitle, Value: "sleep memory a study"}, p.Key())
	assert.Nil(t, p.IsOpenAccess)
}

func TestNormalize_PeerReview(t *testing.T) {
	n := newNormalizer(t)

	tests := []struct {
		name string
		c    source.Canonical
		want bool
	}{
		{"journal article", source.Canonical{JournalArticle: true}, true},
		{"structural preprint", source.Canonical{JournalArticle: true, Preprint: true}, false},
		{"preprint server journal string", source.Canonical{JournalArticle: true, Journal: "medRxiv"}, false},
		{"preprint server url", source.Canonical{JournalArticle: true, URL: "https://www.biorxiv.org/content/1"}, false},
		{"no journal signal", source.Canonical{Journal: "Nature"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.c.Title = "Sleep in adults"
			tt.c.Published = published
			p, err := n.Normalize(candidate("sleep", tt.c))
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.PeerReviewedLikely)
		})
	}
}

func TestNormalize_StudyType(t *testing.T) {
	n := newNormalizer(t)

	tests := []struct {
		name string
		c    source.Canonical
		want types.StudyType
	}{
		{"preprint wins", source.Canonical{Title: "Trial in patients", Preprint: true}, types.StudyPreprint},
		{"mesh humans", source.Canonical{Title: "Effects in mice", MeshTerms: []string{"Humans", "Mice"}}, types.StudyHuman},
		{"mesh animals", source.Canonical{Title: "Effects of diet", MeshTerms: []string{"Animals"}}, types.StudyAnimal},
		{"mice without human signal", source.Canonical{Title: "High-fat diet in mice"}, types.StudyAnimal},
		{"in vitro", source.Canonical{Title: "An organoid model of the gut"}, types.StudyInVitro},
		{"mice with participants", source.Canonical{Title: "From mice to participants"}, types.StudyHuman},
		{"non-clinical domain", source.Canonical{Title: "Battery lifetime prediction"}, types.StudyUnknown},
		{"cohort", source.Canonical{Title: "Sleep in a national cohort"}, types.StudyHuman},
		{"narrative review", source.Canonical{Title: "Sleep: a narrative review"}, types.StudyReview},
		{"review publication type", source.Canonical{Title: "Sleep and the brain", PublicationTypes: []string{"Review"}}, types.StudyReview},
		{"no signal", source.Canonical{Title: "On sleep"}, types.StudyUnknown},
		{"rat is a whole word", source.Canonical{Title: "Heart rate variability"}, types.StudyUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.c.Published = published
			p, err := n.Normalize(candidate("sleep", tt.c))
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.StudyType)
		})
	}
}

func TestNormalize_HumanHintsAreConfigurable(t *testing.T) {
	h := types.DefaultHeuristics()
	h.HumanHints = nil
	n, err := New(h)
	require.NoError(t, err)

	p, err := n.Normalize(candidate("sleep", source.Canonical{
		Title:     "Sleep in 400 patients: a cohort study",
		Published: published,
	}))
	require.NoError(t, err)
	assert.Equal(t, types.StudyUnknown, p.StudyType, "without human hints nothing is classified human")

	p, err = newNormalizer(t).Normalize(candidate("sleep", source.Canonical{
		Title:     "Sleep in one patient after a trial",
		Published: published,
	}))
	require.NoError(t, err)
	assert.Equal(t, types.StudyHuman, p.StudyType, "singular forms are in the default hints")
}

func TestNormalize_StudyDesign(t *testing.T) {
	n := newNormalizer(t)

	tests := []struct {
		title string
		want  types.StudyDesign
	}{
		{"A systematic review and meta-analysis of sleep", types.DesignSystematicReview},
		{"Network meta-analysis of diets", types.DesignMetaAnalysis},
		{"A randomized placebo-controlled trial", types.DesignRCT},
		{"Mendelian randomization of BMI", types.DesignMendelian},
		{"A prospective cohort of adults", types.DesignCohort},
		{"A case-control study", types.DesignCaseControl},
		{"A cross-sectional survey", types.DesignCrossSectional},
		{"Obesity in mice", types.DesignAnimal},
		{"A theory of mate choice", types.DesignTheory},
		{"Notes on sleep", types.DesignUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			p, err := n.Normalize(candidate("sleep", source.Canonical{Title: tt.title, Published: published}))
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.StudyDesign)
		})
	}
}

func TestTopicMatch(t *testing.T) {
	n := newNormalizer(t)

	tests := []struct {
		name  string
		topic string
		title string
		text  string
		want  float64
	}{
		{"no hit", "nutrition", "sleep", "sleep and memory", 0},
		{"single abstract keyword", "nutrition", "a study", "a study of food", 0.36},
		{"topic word in title", "nutrition", "nutrition in adults", "nutrition in adults", 1.0},
		{"two abstract keywords", "nutrition", "x", "x diet and obesity and more", 0.36},
		{"three abstract keywords", "nutrition", "x", "x diet obesity intake", 0.68},
		{"short keyword needs whole word", "psychology of men and boys", "x", "x mental health", 0},
		{"unconfigured topic uses tokens", "sleep apnea", "sleep apnea in adults", "sleep apnea in adults", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.TopicMatch(tt.topic, tt.title, tt.text))
		})
	}
}

func TestQualityCapped(t *testing.T) {
	n := newNormalizer(t)
	p, err := n.Normalize(candidate("sleep", source.Canonical{
		Title:     "A preregistered multi-site replication",
		Abstract:  "Within-person design with negative control outcomes.",
		Published: published,
	}))
	require.NoError(t, err)
	assert.Len(t, p.QualitySignals, 5)
	assert.Equal(t, 1.0, p.QualityScore)
}

func TestNewRejectsBadPattern(t *testing.T) {
	h := types.DefaultHeuristics()
	h.QualityPatterns = []types.QualityPattern{{Pattern: "(", Boost: 1}}
	_, err := New(h)
	assert.Error(t, err)
}

func TestAll(t *testing.T) {
	n := newNormalizer(t)
	papers, drops := n.All([]source.Candidate{
		candidate("sleep", source.Canonical{DOI: "10.1000/a", Title: "A", Published: published}),
		candidate("sleep", source.Canonical{DOI: "10.1000/b", Title: "B"}),
		candidate("sleep", source.Canonical{Title: "", Published: published}),
		candidate("sleep", source.Canonical{Title: "C", Published: published}),
	})
	require.Len(t, papers, 2)
	assert.Equal(t, "10.1000/a", papers[0].DOI)
	assert.Equal(t, "c", papers[1].NormalizedTitle)
	assert.Equal(t, map[string]int{ReasonNoDate: 1, ReasonNoIdentity: 1}, drops)
}
