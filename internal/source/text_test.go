// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDOI(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"resolver link", "https://doi.org/10.1038/s41586-026-01234-5", "10.1038/s41586-026-01234-5"},
		{"embedded in prose", "See doi:10.1136/bmj.q1234. More text", "10.1136/bmj.q1234"},
		{"uppercase", "DOI 10.1001/JAMANETWORKOPEN.2026.1", "10.1001/JAMANETWORKOPEN.2026.1"},
		{"none", "https://www.nature.com/articles/abc", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDOI(tt.in))
		})
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain collapses whitespace", "  Sleep \n and   ageing ", "Sleep and ageing"},
		{"html markup", "<p>First <b>bold</b> text</p>", "First bold text"},
		{"jats abstract", "<jats:p>Participants (<jats:italic>n</jats:italic> = 40) slept.</jats:p>", "Participants (n = 40) slept."},
		{"entities", "Fish &amp; chips", "Fish & chips"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}

func TestKeywordPattern(t *testing.T) {
	tests := []struct {
		kw   string
		text string
		want bool
	}{
		{"men", "psychology of men and boys", true},
		{"men", "maternal mental health in women", false},
		{"iq", "iq scores in twins", true},
		{"iq", "unique cohorts", false},
		{"twin", "twins reared apart", true},
		{"twin", "intertwined pathways", false},
		{"Diet", "dietary fibre intake", true},
	}
	for _, tt := range tests {
		t.Run(tt.kw+"/"+tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, KeywordPattern(tt.kw).MatchString(tt.text))
		})
	}
}

func TestPhrasePattern(t *testing.T) {
	re := PhrasePattern([]string{"Meeting Abstract", " congress ", ""})
	assert.True(t, re.MatchString("annual congress of the society"))
	assert.True(t, re.MatchString("meeting abstract: sleep and mood"))
	assert.False(t, re.MatchString("congressional records"))

	assert.Nil(t, PhrasePattern([]string{" ", ""}))
}

func TestTitleOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Sleep and mortality in adults", "Sleep and Mortality in Adults", 1},
		{"half", "sleep duration mortality", "sleep duration stroke risk", 2.0 / 5.0},
		{"short words ignored", "of in at", "of in at", 0},
		{"disjoint", "sleep duration", "coffee intake", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TitleOverlap(tt.a, tt.b), 1e-9)
		})
	}
}
