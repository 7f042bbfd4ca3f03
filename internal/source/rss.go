// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/pkg/types"
)

// RSSRecord is one feed entry together with the feed it came from.
type RSSRecord struct {
	Item *gofeed.Item
	Feed types.FeedConfig
}

// Source implements Record.
func (r RSSRecord) Source() types.Source { return types.SourceRSS }

// Canonical implements Record. The DOI comes from prism:doi or
// dc:identifier when present, else from the entry link, else from the
// description. Entries of feeds configured with a journal are journal
// articles of that journal.
func (r RSSRecord) Canonical() Canonical {
	it := r.Item
	c := Canonical{
		Source:         types.SourceRSS,
		Title:          PlainText(it.Title),
		Journal:        r.Feed.Journal,
		URL:            strings.TrimSpace(it.Link),
		JournalArticle: r.Feed.Journal != "",
	}

	summary := it.Description
	if summary == "" {
		summary = it.Content
	}
	c.Abstract = PlainText(summary)

	for _, p := range it.Authors {
		if p != nil && strings.TrimSpace(p.Name) != "" {
			c.Authors = append(c.Authors, strings.TrimSpace(p.Name))
		}
	}

	switch {
	case it.PublishedParsed != nil:
		c.Published = it.PublishedParsed.UTC()
	case it.UpdatedParsed != nil:
		c.Published = it.UpdatedParsed.UTC()
	}

	c.DOI = entryDOI(it, c.Abstract)
	return c
}

func entryDOI(it *gofeed.Item, summary string) string {
	if prism, ok := it.Extensions["prism"]; ok {
		for _, e := range prism["doi"] {
			if d := ExtractDOI(e.Value); d != "" {
				return d
			}
		}
	}
	if it.DublinCoreExt != nil {
		for _, id := range it.DublinCoreExt.Identifier {
			if d := ExtractDOI(id); d != "" {
				return d
			}
		}
	}
	if d := ExtractDOI(it.Link); d != "" {
		return d
	}
	return ExtractDOI(summary)
}

// RSS reads journal table-of-contents feeds. Feeds are fetched once per
// adapter and shared across topics; an entry is offered to a topic when its
// title or summary matches one of the topic's keywords by KeywordPattern.
type RSS struct {
	Client   *httputil.Client
	Feeds    []types.FeedConfig
	Keywords func(topic string) []string
	Log      zerolog.Logger

	mu      sync.Mutex
	records []RSSRecord
	loaded  bool
}

// NewRSS builds the adapter from configuration.
func NewRSS(httpCfg types.HTTPConfig, cfg types.RSSConfig, h types.HeuristicsConfig, log zerolog.Logger) *RSS {
	return &RSS{
		Client:   httputil.NewClient(httpCfg, cfg.RatePerSecond),
		Feeds:    cfg.Feeds,
		Keywords: h.KeywordsFor,
		Log:      log,
	}
}

// Name implements Adapter.
func (r *RSS) Name() types.Source { return types.SourceRSS }

// Fetch implements Adapter.
func (r *RSS) Fetch(ctx context.Context, topic string, _ Window) ([]Record, error) {
	all, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	var patterns []*regexp.Regexp
	for _, kw := range r.Keywords(topic) {
		if strings.TrimSpace(kw) != "" {
			patterns = append(patterns, KeywordPattern(kw))
		}
	}

	var out []Record
	for _, rec := range all {
		text := strings.ToLower(PlainText(rec.Item.Title + " " + rec.Item.Description))
		for _, re := range patterns {
			if re.MatchString(text) {
				out = append(out, rec)
				break
			}
		}
	}
	return out, nil
}

// load fetches every feed concurrently. A failing feed is logged and
// skipped; only when every feed fails is an error returned. Failures are
// not cached so a later topic may retry.
func (r *RSS) load(ctx context.Context) ([]RSSRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return r.records, nil
	}

	perFeed := make([][]RSSRecord, len(r.Feeds))
	errs := make([]error, len(r.Feeds))
	var g errgroup.Group
	for i, feed := range r.Feeds {
		g.Go(func() error {
			perFeed[i], errs[i] = r.fetchFeed(ctx, feed)
			if errs[i] != nil {
				r.Log.Warn().Str("feed", feed.Name).Err(errs[i]).Msg("feed unavailable")
			}
			return nil
		})
	}
	g.Wait()

	var records []RSSRecord
	failed := 0
	for i := range r.Feeds {
		if errs[i] != nil {
			failed++
			continue
		}
		records = append(records, perFeed[i]...)
	}
	if len(r.Feeds) > 0 && failed == len(r.Feeds) {
		return nil, fmt.Errorf("all %d feeds failed: %w", failed, errors.Join(errs...))
	}

	r.records = records
	r.loaded = true
	return records, nil
}

func (r *RSS) fetchFeed(ctx context.Context, feed types.FeedConfig) ([]RSSRecord, error) {
	body, err := r.Client.Get(ctx, feed.URL, "application/rss+xml, application/atom+xml, application/xml")
	if err != nil {
		return nil, err
	}
	parsed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", feed.Name, err)
	}
	records := make([]RSSRecord, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if it != nil {
			records = append(records, RSSRecord{Item: it, Feed: feed})
		}
	}
	return records, nil
}
