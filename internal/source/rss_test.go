// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-digest/pkg/types"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:prism="http://prismstandard.org/namespaces/basic/2.0/" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <channel>
    <title>Sleep Journal</title>
    <item>
      <title>Sleep duration and &lt;i&gt;memory&lt;/i&gt; in older adults</title>
      <link>https://example.org/articles/1</link>
      <description>&lt;p&gt;A cohort of 2,000 participants.&lt;/p&gt;</description>
      <pubDate>Thu, 08 Oct 2026 09:00:00 +0000</pubDate>
      <prism:doi>10.1093/sleep/zsab001</prism:doi>
      <dc:creator>Ada Lovelace</dc:creator>
    </item>
    <item>
      <title>Grain yields under drought</title>
      <link>https://doi.org/10.1000/crop.42</link>
      <description>Field trial of wheat.</description>
    </item>
  </channel>
</rss>`

func newTestRSS(feeds []types.FeedConfig) *RSS {
	return NewRSS(
		types.HTTPConfig{Timeout: time.Second},
		types.RSSConfig{Feeds: feeds, RatePerSecond: 1000},
		types.HeuristicsConfig{TopicKeywords: map[string][]string{"sleep": {"sleep"}, "crops": {"wheat", "grain"}}},
		zerolog.Nop(),
	)
}

func TestRSSFetch(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, sampleRSS)
	}))
	defer ts.Close()

	r := newTestRSS([]types.FeedConfig{{Name: "Sleep", URL: ts.URL, Journal: "Sleep"}})
	window := NewWindow(time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), 7)

	recs, err := r.Fetch(context.Background(), "sleep", window)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	c := recs[0].Canonical()
	assert.Equal(t, types.SourceRSS, c.Source)
	assert.Equal(t, "Sleep duration and memory in older adults", c.Title)
	assert.Equal(t, "A cohort of 2,000 participants.", c.Abstract)
	assert.Equal(t, "10.1093/sleep/zsab001", c.DOI)
	assert.Equal(t, "Sleep", c.Journal)
	assert.True(t, c.JournalArticle)
	assert.Equal(t, time.Date(2026, 10, 8, 9, 0, 0, 0, time.UTC), c.Published)
	assert.Nil(t, c.OpenAccess)

	crops, err := r.Fetch(context.Background(), "crops", window)
	require.NoError(t, err)
	require.Len(t, crops, 1)
	c = crops[0].Canonical()
	assert.Equal(t, "10.1000/crop.42", c.DOI, "DOI taken from the link")
	assert.True(t, c.Published.IsZero())

	assert.Equal(t, int32(1), hits.Load(), "feeds are fetched once per adapter")
}

func TestRSSFetch_PartialFeedFailure(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleRSS)
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer bad.Close()

	r := newTestRSS([]types.FeedConfig{
		{Name: "Broken", URL: bad.URL},
		{Name: "Sleep", URL: good.URL, Journal: "Sleep"},
	})
	recs, err := r.Fetch(context.Background(), "sleep", NewWindow(time.Now(), 7))
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestRSSFetch_AllFeedsFail(t *testing.T) {
	var hits atomic.Int32
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer bad.Close()

	r := newTestRSS([]types.FeedConfig{{Name: "Broken", URL: bad.URL}})
	_, err := r.Fetch(context.Background(), "sleep", NewWindow(time.Now(), 7))
	require.Error(t, err)

	_, err = r.Fetch(context.Background(), "sleep", NewWindow(time.Now(), 7))
	require.Error(t, err)
	assert.Equal(t, int32(2), hits.Load(), "failures are not cached")
}

func TestRSSCanonical_FeedWithoutJournal(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleRSS)
	}))
	defer ts.Close()

	r := newTestRSS([]types.FeedConfig{{Name: "Blog", URL: ts.URL}})
	recs, err := r.Fetch(context.Background(), "sleep", NewWindow(time.Now(), 7))
	require.NoError(t, err)
	require.Len(t, recs, 1)

	c := recs[0].Canonical()
	assert.Empty(t, c.Journal)
	assert.False(t, c.JournalArticle)
}

const wellbeingRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Wellbeing</title>
    <item>
      <title>Maternal mental health in women after childbirth</title>
      <link>https://example.org/articles/w1</link>
      <description>A cohort of 900 mothers.</description>
      <pubDate>Thu, 08 Oct 2026 09:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Loneliness in men after retirement</title>
      <link>https://example.org/articles/m1</link>
      <description>A survey of 3,000 adults.</description>
      <pubDate>Fri, 09 Oct 2026 09:00:00 +0000</pubDate>
    </item>
  </channel>
</rss>`

func TestRSSFetch_KeywordsMatchWholeWords(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, wellbeingRSS)
	}))
	defer ts.Close()

	r := NewRSS(
		types.HTTPConfig{Timeout: time.Second},
		types.RSSConfig{Feeds: []types.FeedConfig{{Name: "Wellbeing", URL: ts.URL}}, RatePerSecond: 1000},
		types.DefaultHeuristics(),
		zerolog.Nop(),
	)
	window := NewWindow(time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), 7)

	recs, err := r.Fetch(context.Background(), "psychology of men and boys", window)
	require.NoError(t, err)
	require.Len(t, recs, 1, "an entry about women and mental health is not offered to the men topic")
	assert.Equal(t, "Loneliness in men after retirement", recs[0].Canonical().Title)
}
