// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-digest/pkg/types"
)

func unpaywallServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "oa@example.org", r.URL.Query().Get("email"))
		switch strings.TrimPrefix(r.URL.Path, "/") {
		case "10.1000/open":
			fmt.Fprint(w, `{"is_oa":true,"best_oa_location":{"url":"https://example.org/open.pdf"}}`)
		case "10.1000/closed":
			fmt.Fprint(w, `{"is_oa":false,"best_oa_location":null}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func withUnpaywallURL(t *testing.T, u string) {
	t.Helper()
	orig := unpaywallURL
	unpaywallURL = u + "/"
	t.Cleanup(func() { unpaywallURL = orig })
}

func newTestUnpaywall(limit int) *Unpaywall {
	return NewUnpaywall(types.HTTPConfig{Timeout: time.Second, MaxRetries: 0},
		types.UnpaywallConfig{Email: "oa@example.org", EnrichLimit: limit, RatePerSecond: 1000}, zerolog.Nop())
}

func TestUnpaywallEnrich(t *testing.T) {
	var calls atomic.Int32
	ts := unpaywallServer(t, &calls)
	defer ts.Close()
	withUnpaywallURL(t, ts.URL)

	papers := []types.Paper{
		{DOI: "10.1000/open", Source: types.SourceCrossref},
		{DOI: "10.1000/closed", Source: types.SourcePubMed, URL: "https://pubmed.example/1"},
		{DOI: "10.1000/known", Source: types.SourceCrossref, IsOpenAccess: types.Bool(false)},
		{Title: "No DOI", Source: types.SourceRSS},
		{DOI: "10.1000/missing", Source: types.SourceRSS},
	}

	out := newTestUnpaywall(0).Enrich(context.Background(), papers)
	require.Len(t, out, len(papers))

	require.NotNil(t, out[0].IsOpenAccess)
	assert.True(t, *out[0].IsOpenAccess)
	assert.Equal(t, types.SourceUnpaywallEnriched, out[0].Source)
	assert.Equal(t, types.SourceCrossref, out[0].EnrichedFrom)
	assert.Equal(t, "https://example.org/open.pdf", out[0].URL)

	require.NotNil(t, out[1].IsOpenAccess)
	assert.False(t, *out[1].IsOpenAccess)
	assert.Equal(t, "https://pubmed.example/1", out[1].URL, "existing URL kept")

	assert.Equal(t, types.SourceCrossref, out[2].Source, "known status not looked up")
	assert.Equal(t, papers[3], out[3])
	assert.Nil(t, out[4].IsOpenAccess, "failed lookup leaves status unknown")
	assert.Equal(t, types.SourceRSS, out[4].Source)

	assert.Equal(t, int32(3), calls.Load())
	assert.Nil(t, papers[0].IsOpenAccess, "input not modified")
}

func TestUnpaywallEnrich_Limit(t *testing.T) {
	var calls atomic.Int32
	ts := unpaywallServer(t, &calls)
	defer ts.Close()
	withUnpaywallURL(t, ts.URL)

	papers := []types.Paper{{DOI: "10.1000/open"}, {DOI: "10.1000/closed"}}
	out := newTestUnpaywall(1).Enrich(context.Background(), papers)

	assert.NotNil(t, out[0].IsOpenAccess)
	assert.Nil(t, out[1].IsOpenAccess)
	assert.Equal(t, int32(1), calls.Load())
}

func TestUnpaywallDisabledWithoutEmail(t *testing.T) {
	u := NewUnpaywall(types.HTTPConfig{}, types.UnpaywallConfig{}, zerolog.Nop())
	assert.Nil(t, u)

	papers := []types.Paper{{DOI: "10.1000/open"}}
	assert.Equal(t, papers, u.Enrich(context.Background(), papers))
}
