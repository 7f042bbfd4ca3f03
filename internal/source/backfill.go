// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/pkg/types"
)

// MinTitleOverlap is the title word overlap a Crossref match needs before
// its metadata is trusted.
const MinTitleOverlap = 0.45

const backfillConcurrency = 4

// CrossrefBackfill fills missing DOI, journal, abstract, link and open
// access status from the best Crossref title match. A match is accepted
// only when it was published inside Window and its title overlaps the
// paper's by at least MinTitleOverlap.
type CrossrefBackfill struct {
	Client *httputil.Client
	Mailto string
	Window Window
	Limit  int
	Log    zerolog.Logger
}

// NewCrossrefBackfill builds the enricher, or returns nil when backfill is
// disabled.
func NewCrossrefBackfill(httpCfg types.HTTPConfig, cfg types.CrossrefConfig, window Window, log zerolog.Logger) *CrossrefBackfill {
	if !cfg.Backfill {
		return nil
	}
	return &CrossrefBackfill{
		Client: httputil.NewClient(httpCfg, cfg.RatePerSecond),
		Mailto: cfg.Mailto,
		Window: window,
		Limit:  cfg.BackfillLimit,
		Log:    log,
	}
}

// Lookup returns the top-scoring Crossref work for title, or false when
// Crossref has none.
func (b *CrossrefBackfill) Lookup(ctx context.Context, title string) (CrossrefWork, bool, error) {
	params := url.Values{
		"query.title": {title},
		"rows":        {"1"},
		"sort":        {"score"},
		"order":       {"desc"},
	}
	if b.Mailto != "" {
		params.Set("mailto", b.Mailto)
	}
	body, err := b.Client.Get(ctx, crossrefWorksURL+"?"+params.Encode(), "application/json")
	if err != nil {
		return CrossrefWork{}, false, fmt.Errorf("crossref title lookup: %w", err)
	}
	var cr crossrefResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return CrossrefWork{}, false, fmt.Errorf("parsing crossref response: %w", err)
	}
	if len(cr.Message.Items) == 0 {
		return CrossrefWork{}, false, nil
	}
	return cr.Message.Items[0], true, nil
}

// NeedsBackfill reports whether p lacks a DOI, journal or abstract.
func NeedsBackfill(p types.Paper) bool {
	return p.DOI == "" || p.Journal == "" || p.AbstractOrSummary == ""
}

// Enrich returns a copy of papers in which up to Limit incomplete papers are
// filled from their Crossref match. Only empty fields are written. Failed
// or rejected lookups leave the paper unchanged. The input slice is not
// modified.
func (b *CrossrefBackfill) Enrich(ctx context.Context, papers []types.Paper) []types.Paper {
	out := make([]types.Paper, len(papers))
	copy(out, papers)
	if b == nil {
		return out
	}

	var targets []int
	for i, p := range out {
		if p.Title == "" || !NeedsBackfill(p) {
			continue
		}
		if b.Limit > 0 && len(targets) >= b.Limit {
			break
		}
		targets = append(targets, i)
	}

	var g errgroup.Group
	g.SetLimit(backfillConcurrency)
	for _, i := range targets {
		g.Go(func() error {
			w, ok, err := b.Lookup(ctx, out[i].Title)
			if err != nil {
				b.Log.Debug().Str("title", out[i].Title).Err(err).Msg("crossref backfill failed")
				return nil
			}
			if !ok {
				return nil
			}
			if p, ok := b.fill(out[i], CrossrefRecord{Work: w}.Canonical()); ok {
				out[i] = p
			}
			return nil
		})
	}
	g.Wait()
	return out
}

// fill copies c's metadata into the empty fields of p when c is an
// acceptable match.
func (b *CrossrefBackfill) fill(p types.Paper, c Canonical) (types.Paper, bool) {
	if c.Published.IsZero() || !b.Window.Contains(c.Published) {
		b.Log.Debug().Str("title", p.Title).Msg("crossref match outside window")
		return p, false
	}
	if overlap := TitleOverlap(p.Title, c.Title); overlap < MinTitleOverlap {
		b.Log.Debug().Str("title", p.Title).Str("match", c.Title).Float64("overlap", overlap).Msg("crossref match rejected")
		return p, false
	}
	if p.DOI == "" {
		p.DOI = strings.ToLower(ExtractDOI(c.DOI))
	}
	if p.Journal == "" {
		p.Journal = c.Journal
	}
	if p.AbstractOrSummary == "" {
		p.AbstractOrSummary = c.Abstract
	}
	if p.URL == "" {
		p.URL = c.URL
	}
	if p.IsOpenAccess == nil && c.OpenAccess != nil {
		p.IsOpenAccess = types.Bool(*c.OpenAccess)
	}
	return p, true
}
