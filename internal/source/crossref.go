// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/pkg/types"
)

// crossrefWorksURL is the Crossref works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossrefWorksURL = "https://api.crossref.org/works"

// CrossrefWork is the subset of a Crossref work item the digest reads.
type CrossrefWork struct {
	DOI             string            `json:"DOI"`
	Type            string            `json:"type"`
	Title           []string          `json:"title"`
	ContainerTitle  []string          `json:"container-title"`
	Abstract        string            `json:"abstract"`
	Author          []CrossrefAuthor  `json:"author"`
	URL             string            `json:"URL"`
	License         []CrossrefLicense `json:"license"`
	PublishedOnline CrossrefDate      `json:"published-online"`
	PublishedPrint  CrossrefDate      `json:"published-print"`
	Issued          CrossrefDate      `json:"issued"`
	Created         CrossrefDate      `json:"created"`
}

// CrossrefAuthor is one contributor.
type CrossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

// CrossrefLicense is one license assertion.
type CrossrefLicense struct {
	URL string `json:"URL"`
}

// CrossrefDate holds Crossref date-parts, e.g. [[2026, 10, 12]].
type CrossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

type crossrefResponse struct {
	Message struct {
		Items []CrossrefWork `json:"items"`
	} `json:"message"`
}

// CrossrefRecord is a raw Crossref work.
type CrossrefRecord struct {
	Work CrossrefWork
}

// Source implements Record.
func (r CrossrefRecord) Source() types.Source { return types.SourceCrossref }

// Canonical implements Record. The publication date falls back from
// published-online to published-print, issued and created. Any license
// entry marks the work open access.
func (r CrossrefRecord) Canonical() Canonical {
	w := r.Work
	c := Canonical{
		Source:         types.SourceCrossref,
		DOI:            w.DOI,
		Abstract:       PlainText(w.Abstract),
		URL:            w.URL,
		JournalArticle: w.Type == "journal-article",
		Preprint:       w.Type == "posted-content",
	}
	if len(w.Title) > 0 {
		c.Title = PlainText(w.Title[0])
	}
	if len(w.ContainerTitle) > 0 {
		c.Journal = strings.TrimSpace(w.ContainerTitle[0])
	}
	for _, a := range w.Author {
		if name := strings.TrimSpace(a.Given + " " + a.Family); name != "" {
			c.Authors = append(c.Authors, name)
		} else if a.Name != "" {
			c.Authors = append(c.Authors, a.Name)
		}
	}
	for _, d := range []CrossrefDate{w.PublishedOnline, w.PublishedPrint, w.Issued, w.Created} {
		if t, ok := d.Time(); ok {
			c.Published = t
			break
		}
	}
	if len(w.License) > 0 {
		c.OpenAccess = types.Bool(true)
	}
	return c
}

// Time converts the first date-parts entry. A missing month or day
// defaults to 1; an impossible date is rejected.
func (d CrossrefDate) Time() (time.Time, bool) {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return time.Time{}, false
	}
	return dateFromParts(d.DateParts[0]...)
}

func dateFromParts(parts ...int) (time.Time, bool) {
	if len(parts) == 0 || parts[0] < 1000 {
		return time.Time{}, false
	}
	year, month, day := parts[0], 1, 1
	if len(parts) > 1 && parts[1] > 0 {
		month = parts[1]
	}
	if len(parts) > 2 && parts[2] > 0 {
		day = parts[2]
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// Crossref queries the Crossref works API for journal articles published
// inside the window.
type Crossref struct {
	Client *httputil.Client
	Rows   int
	Mailto string
}

// NewCrossref builds the adapter from configuration.
func NewCrossref(httpCfg types.HTTPConfig, cfg types.CrossrefConfig) *Crossref {
	return &Crossref{
		Client: httputil.NewClient(httpCfg, cfg.RatePerSecond),
		Rows:   cfg.Rows,
		Mailto: cfg.Mailto,
	}
}

// Name implements Adapter.
func (c *Crossref) Name() types.Source { return types.SourceCrossref }

// Fetch implements Adapter.
func (c *Crossref) Fetch(ctx context.Context, topic string, window Window) ([]Record, error) {
	rows := c.Rows
	if rows <= 0 {
		rows = 80
	}
	params := url.Values{
		"query.bibliographic": {topic},
		"filter": {fmt.Sprintf("from-pub-date:%s,until-pub-date:%s,type:journal-article",
			window.Start.Format(time.DateOnly), window.End.Format(time.DateOnly))},
		"rows":  {strconv.Itoa(rows)},
		"sort":  {"published"},
		"order": {"desc"},
	}
	if c.Mailto != "" {
		params.Set("mailto", c.Mailto)
	}

	body, err := c.Client.Get(ctx, crossrefWorksURL+"?"+params.Encode(), "application/json")
	if err != nil {
		return nil, fmt.Errorf("crossref query: %w", err)
	}

	var cr crossrefResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("parsing crossref response: %w", err)
	}

	records := make([]Record, 0, len(cr.Message.Items))
	for _, w := range cr.Message.Items {
		records = append(records, CrossrefRecord{Work: w})
	}
	return records, nil
}
