// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders a weekly run for people and for other tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/research-digest/pkg/types"
)

// Output formats accepted by Write.
const (
	FormatNameTable = "table"
	FormatNameJSON  = "json"
	FormatNameCSL   = "csl"
)

// Formats lists the accepted format names.
var Formats = []string{FormatNameTable, FormatNameJSON, FormatNameCSL}

// Write renders run to w in the named format.
func Write(w io.Writer, run types.WeeklyRun, format string) error {
	switch format {
	case FormatNameTable, "":
		FormatTable(run, w)
		return nil
	case FormatNameJSON:
		return FormatJSON(run, w)
	case FormatNameCSL:
		return FormatCSL(run, w)
	default:
		return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// FormatTable writes the selection as a human-readable table.
func FormatTable(run types.WeeklyRun, w io.Writer) {
	fmt.Fprintf(w, "Week %s  (run %s, generated %s)\n\n",
		run.WeekKey, run.RunID, run.GeneratedAt.Format("2006-01-02 15:04 MST"))

	if len(run.Papers) == 0 {
		fmt.Fprintln(w, "No papers selected.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-10s  %-24s  %-5s  %s\n",
		"Rank", "Title", "Topic", "Published", "Journal", "OA", "Score")
	fmt.Fprintln(w, strings.Repeat("-", 140))

	for _, p := range run.Papers {
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-10s  %-24s  %-5s  %.2f\n",
			p.Rank,
			truncate(p.Title, 60),
			truncate(p.Topic, 20),
			p.PublishedDate.Format("2006-01-02"),
			truncate(p.Journal, 24),
			openAccess(p.IsOpenAccess),
			p.Score)
	}

	s := run.Stats
	fmt.Fprintf(w, "\n%d selected from %d fetched (%d normalized, %d eligible, %d after dedup)\n",
		s.Selected, s.Fetched, s.Normalized, s.Filtered, s.Deduped)
	if len(s.SourceErrors) > 0 {
		fmt.Fprintf(w, "%d source errors\n", len(s.SourceErrors))
	}
}

// FormatJSON writes the selection as an indented JSON array. An empty
// selection is written as [].
func FormatJSON(run types.WeeklyRun, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(run.Selection())
}

// FormatPaper writes one paper with its full score breakdown.
func FormatPaper(p types.SelectedPaper, w io.Writer) {
	fmt.Fprintf(w, "%s\n", p.Title)
	fmt.Fprintf(w, "  rank %d, score %.2f, slug %s\n", p.Rank, p.Score, p.Slug)
	if len(p.Authors) > 0 {
		fmt.Fprintf(w, "  authors: %s\n", formatAuthors(p.Authors))
	}
	if p.Journal != "" {
		fmt.Fprintf(w, "  journal: %s\n", p.Journal)
	}
	fmt.Fprintf(w, "  published: %s  topic: %s  open access: %s\n",
		p.PublishedDate.Format("2006-01-02"), p.Topic, openAccess(p.IsOpenAccess))
	fmt.Fprintf(w, "  study: %s / %s\n", p.StudyType, p.StudyDesign)
	if p.DOI != "" {
		fmt.Fprintf(w, "  doi: %s\n", p.DOI)
	}
	if p.URL != "" {
		fmt.Fprintf(w, "  url: %s\n", p.URL)
	}
	b := p.Breakdown
	fmt.Fprintf(w, "  breakdown: journal %.2f, oa %.2f, topic %.2f, study %.2f, recency %.2f, quality %.2f\n",
		b.JournalTier, b.OpenAccess, b.TopicMatch, b.StudyType, b.Recency, b.QualitySignal)
}

func openAccess(oa *bool) string {
	switch {
	case oa == nil:
		return "?"
	case *oa:
		return "yes"
	default:
		return "no"
	}
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1, 2, 3:
		return strings.Join(authors, ", ")
	default:
		return authors[0] + " et al."
	}
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
