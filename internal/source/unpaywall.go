// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/pkg/types"
)

// unpaywallURL is the Unpaywall v2 DOI endpoint prefix. Declared as a var
// so tests can substitute an httptest server.
var unpaywallURL = "https://api.unpaywall.org/v2/"

// unpaywallConcurrency bounds simultaneous lookups; the limiter still
// governs the request rate.
const unpaywallConcurrency = 4

type unpaywallResponse struct {
	IsOA           bool `json:"is_oa"`
	BestOALocation *struct {
		URL       string `json:"url"`
		URLForPDF string `json:"url_for_pdf"`
	} `json:"best_oa_location"`
}

// Unpaywall resolves open access status for papers that carry a DOI.
type Unpaywall struct {
	Client *httputil.Client
	Email  string
	Limit  int
	Log    zerolog.Logger
}

// NewUnpaywall builds the enricher, or returns nil when no contact email is
// configured.
func NewUnpaywall(httpCfg types.HTTPConfig, cfg types.UnpaywallConfig, log zerolog.Logger) *Unpaywall {
	if cfg.Email == "" {
		return nil
	}
	return &Unpaywall{
		Client: httputil.NewClient(httpCfg, cfg.RatePerSecond),
		Email:  cfg.Email,
		Limit:  cfg.EnrichLimit,
		Log:    log,
	}
}

// Lookup returns whether doi is open access and the best OA location.
func (u *Unpaywall) Lookup(ctx context.Context, doi string) (bool, string, error) {
	reqURL := unpaywallURL + (&url.URL{Path: doi}).EscapedPath() + "?" + url.Values{"email": {u.Email}}.Encode()
	body, err := u.Client.Get(ctx, reqURL, "application/json")
	if err != nil {
		return false, "", fmt.Errorf("unpaywall lookup %s: %w", doi, err)
	}
	var r unpaywallResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return false, "", fmt.Errorf("parsing unpaywall response: %w", err)
	}
	location := ""
	if r.BestOALocation != nil {
		location = r.BestOALocation.URL
		if location == "" {
			location = r.BestOALocation.URLForPDF
		}
	}
	return r.IsOA, location, nil
}

// Enrich returns a copy of papers in which up to Limit papers with a DOI and
// unresolved open access status are resolved. A resolved paper's source
// becomes unpaywall-enriched and EnrichedFrom keeps the original. Failed
// lookups leave the paper unchanged. The input slice is not modified.
func (u *Unpaywall) Enrich(ctx context.Context, papers []types.Paper) []types.Paper {
	out := make([]types.Paper, len(papers))
	copy(out, papers)
	if u == nil {
		return out
	}

	var targets []int
	for i, p := range out {
		if p.DOI == "" || p.OpenAccessKnown() {
			continue
		}
		if u.Limit > 0 && len(targets) >= u.Limit {
			break
		}
		targets = append(targets, i)
	}

	var g errgroup.Group
	g.SetLimit(unpaywallConcurrency)
	for _, i := range targets {
		g.Go(func() error {
			isOA, location, err := u.Lookup(ctx, out[i].DOI)
			if err != nil {
				u.Log.Debug().Str("doi", out[i].DOI).Err(err).Msg("open access lookup failed")
				return nil
			}
			p := out[i]
			p.IsOpenAccess = types.Bool(isOA)
			p.EnrichedFrom = p.Source
			p.Source = types.SourceUnpaywallEnriched
			if p.URL == "" {
				p.URL = location
			}
			out[i] = p
			return nil
		})
	}
	g.Wait()
	return out
}
