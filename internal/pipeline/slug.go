// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxSlugLen = 110

// Slugify lowercases title, replaces each run of non-alphanumerics with a
// single dash and truncates to maxSlugLen.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	return truncateSlug(strings.Trim(b.String(), "-"), maxSlugLen)
}

func truncateSlug(s string, n int) string {
	if len(s) <= n {
		if s == "" {
			return "paper"
		}
		return s
	}
	cut := s[:n]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	cut = strings.TrimRight(cut, "-")
	if cut == "" {
		return "paper"
	}
	return cut
}

// slugger hands out slugs unique within one run.
type slugger map[string]bool

func (sl slugger) next(title string) string {
	base := Slugify(title)
	slug := base
	for i := 2; sl[slug]; i++ {
		suffix := "-" + strconv.Itoa(i)
		slug = truncateSlug(base, maxSlugLen-len(suffix)) + suffix
	}
	sl[slug] = true
	return slug
}
