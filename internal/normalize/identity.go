// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/research-digest/internal/source"
)

var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi.org/",
	"doi:",
}

// DOI returns the canonical form of a DOI: resolver prefixes removed,
// lowercased. It returns "" when raw does not contain a DOI.
func DOI(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, p := range doiPrefixes {
		if strings.HasPrefix(s, p) {
			s = strings.TrimSpace(s[len(p):])
			break
		}
	}
	if strings.HasPrefix(s, "10.") && !strings.ContainsAny(s, " \t\n") {
		return strings.TrimRight(s, ".;,")
	}
	return strings.ToLower(source.ExtractDOI(s))
}

// Title returns the identity form of a title: NFC-composed lowercase
// letters, digits and single spaces only. Composed and decomposed spellings
// of the same title yield the same key.
func Title(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(norm.NFC.String(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
