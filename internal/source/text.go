// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var doiPattern = regexp.MustCompile(`(?i)10\.\d{4,9}/[-._;()/:A-Z0-9]+`)

// ExtractDOI returns the first DOI-shaped substring of s, or "".
func ExtractDOI(s string) string {
	return strings.TrimRight(doiPattern.FindString(s), ".;")
}

// PlainText strips HTML or JATS markup, decodes entities and collapses
// whitespace.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// KeywordPattern matches kw, lowercased, at a word start. Keywords of three
// characters or fewer must match the whole word so "men" does not hit
// "mental" or "women".
func KeywordPattern(kw string) *regexp.Regexp {
	kw = strings.ToLower(strings.TrimSpace(kw))
	q := regexp.QuoteMeta(kw)
	if len([]rune(kw)) <= 3 {
		return regexp.MustCompile(`\b` + q + `\b`)
	}
	return regexp.MustCompile(`\b` + q)
}

// PhrasePattern matches any of phrases, lowercased, on word boundaries. It
// returns nil when phrases holds nothing but blanks.
func PhrasePattern(phrases []string) *regexp.Regexp {
	var alts []string
	for _, p := range phrases {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			alts = append(alts, regexp.QuoteMeta(p))
		}
	}
	if len(alts) == 0 {
		return nil
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(alts, "|") + `)\b`)
}

var titleWord = regexp.MustCompile(`[a-z0-9]+`)

// TitleOverlap is the Jaccard overlap of the words longer than two
// characters in a and b. It is 0 when either side has no such word.
func TitleOverlap(a, b string) float64 {
	wa, wb := titleWords(a), titleWords(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	inter := 0
	for w := range wa {
		if wb[w] {
			inter++
		}
	}
	return float64(inter) / float64(len(wa)+len(wb)-inter)
}

func titleWords(s string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range titleWord.FindAllString(strings.ToLower(s), -1) {
		if len(w) > 2 {
			words[w] = true
		}
	}
	return words
}
