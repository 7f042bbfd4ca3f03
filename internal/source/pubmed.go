// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/pkg/types"
)

// E-utilities endpoints. Declared as vars so tests can substitute an
// httptest server.
var (
	pubmedSearchURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedFetchURL  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// pubmedFetchChunk is the number of PMIDs per efetch call.
const pubmedFetchChunk = 120

type esearchResponse struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type pubmedArticleSet struct {
	Articles []PubMedArticle `xml:"PubmedArticle"`
}

// PubMedArticle is the subset of a PubmedArticle element the digest reads.
type PubMedArticle struct {
	Citation struct {
		PMID    string `xml:"PMID"`
		Article struct {
			Journal struct {
				Title   string     `xml:"Title"`
				PubDate PubMedDate `xml:"JournalIssue>PubDate"`
			} `xml:"Journal"`
			Title            innerText      `xml:"ArticleTitle"`
			AbstractTexts    []innerText    `xml:"Abstract>AbstractText"`
			Authors          []PubMedAuthor `xml:"AuthorList>Author"`
			PublicationTypes []string       `xml:"PublicationTypeList>PublicationType"`
			ArticleDates     []PubMedDate   `xml:"ArticleDate"`
		} `xml:"Article"`
		MeshDescriptors []string `xml:"MeshHeadingList>MeshHeading>DescriptorName"`
	} `xml:"MedlineCitation"`
	ArticleIDs []PubMedArticleID `xml:"PubmedData>ArticleIdList>ArticleId"`
}

// innerText captures an element's raw content including inline markup.
type innerText struct {
	Inner string `xml:",innerxml"`
}

// PubMedAuthor is one AuthorList entry.
type PubMedAuthor struct {
	LastName       string `xml:"LastName"`
	ForeName       string `xml:"ForeName"`
	CollectiveName string `xml:"CollectiveName"`
}

// PubMedDate covers both ArticleDate and PubDate shapes.
type PubMedDate struct {
	Year        string `xml:"Year"`
	Month       string `xml:"Month"`
	Day         string `xml:"Day"`
	MedlineDate string `xml:"MedlineDate"`
}

// PubMedArticleID is one ArticleId entry (doi, pubmed, pmc, ...).
type PubMedArticleID struct {
	IDType string `xml:"IdType,attr"`
	Value  string `xml:",chardata"`
}

var (
	monthNames = map[string]time.Month{
		"jan": time.January, "feb": time.February, "mar": time.March,
		"apr": time.April, "may": time.May, "jun": time.June,
		"jul": time.July, "aug": time.August, "sep": time.September,
		"oct": time.October, "nov": time.November, "dec": time.December,
	}
	medlineYear = regexp.MustCompile(`(19|20)\d{2}`)
)

// Time parses the date. Months may be numeric or English abbreviations;
// a MedlineDate such as "2026 Sep-Oct" yields January 1 of its year.
func (d PubMedDate) Time() (time.Time, bool) {
	year, err := strconv.Atoi(strings.TrimSpace(d.Year))
	if err != nil {
		if y := medlineYear.FindString(d.MedlineDate); y != "" {
			year, _ = strconv.Atoi(y)
			return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), true
		}
		return time.Time{}, false
	}
	month := 1
	m := strings.TrimSpace(d.Month)
	if n, err := strconv.Atoi(m); err == nil {
		month = n
	} else if len(m) >= 3 {
		if mm, ok := monthNames[strings.ToLower(m[:3])]; ok {
			month = int(mm)
		}
	}
	day := 1
	if n, err := strconv.Atoi(strings.TrimSpace(d.Day)); err == nil {
		day = n
	}
	return dateFromParts(year, month, day)
}

// PubMedRecord is a raw PubMed article.
type PubMedRecord struct {
	Article PubMedArticle
}

// Source implements Record.
func (r PubMedRecord) Source() types.Source { return types.SourcePubMed }

// Canonical implements Record. The explicit ArticleDate wins over the
// journal issue date. A PMC identifier marks the article open access.
func (r PubMedRecord) Canonical() Canonical {
	a := r.Article.Citation.Article
	c := Canonical{
		Source:           types.SourcePubMed,
		Title:            PlainText(a.Title.Inner),
		Journal:          strings.Join(strings.Fields(a.Journal.Title), " "),
		MeshTerms:        r.Article.Citation.MeshDescriptors,
		PublicationTypes: a.PublicationTypes,
		JournalArticle:   true,
	}

	parts := make([]string, 0, len(a.AbstractTexts))
	for _, t := range a.AbstractTexts {
		if s := PlainText(t.Inner); s != "" {
			parts = append(parts, s)
		}
	}
	c.Abstract = strings.Join(parts, " ")

	for _, au := range a.Authors {
		if name := strings.TrimSpace(au.ForeName + " " + au.LastName); name != "" {
			c.Authors = append(c.Authors, name)
		} else if au.CollectiveName != "" {
			c.Authors = append(c.Authors, au.CollectiveName)
		}
	}

	for _, pt := range a.PublicationTypes {
		if strings.Contains(strings.ToLower(pt), "preprint") {
			c.Preprint = true
			c.JournalArticle = false
		}
	}

	for _, d := range a.ArticleDates {
		if t, ok := d.Time(); ok {
			c.Published = t
			break
		}
	}
	if c.Published.IsZero() {
		if t, ok := a.Journal.PubDate.Time(); ok {
			c.Published = t
		}
	}

	pmid := strings.TrimSpace(r.Article.Citation.PMID)
	for _, id := range r.Article.ArticleIDs {
		v := strings.TrimSpace(id.Value)
		switch strings.ToLower(id.IDType) {
		case "doi":
			c.DOI = v
		case "pubmed":
			pmid = v
		case "pmc":
			if v != "" {
				c.OpenAccess = types.Bool(true)
			}
		}
	}
	if pmid != "" {
		c.URL = "https://pubmed.ncbi.nlm.nih.gov/" + pmid + "/"
	}
	return c
}

// PubMed searches PubMed with esearch and retrieves records with efetch.
type PubMed struct {
	Client *httputil.Client
	RetMax int
	Tool   string
	Email  string
	APIKey string
}

// NewPubMed builds the adapter from configuration.
func NewPubMed(httpCfg types.HTTPConfig, cfg types.PubMedConfig) *PubMed {
	return &PubMed{
		Client: httputil.NewClient(httpCfg, cfg.RatePerSecond),
		RetMax: cfg.RetMax,
		Tool:   cfg.Tool,
		Email:  cfg.Email,
		APIKey: cfg.APIKey,
	}
}

// Name implements Adapter.
func (p *PubMed) Name() types.Source { return types.SourcePubMed }

func (p *PubMed) params() url.Values {
	v := url.Values{"db": {"pubmed"}}
	if p.Tool != "" {
		v.Set("tool", p.Tool)
	}
	if p.Email != "" {
		v.Set("email", p.Email)
	}
	if p.APIKey != "" {
		v.Set("api_key", p.APIKey)
	}
	return v
}

// Fetch implements Adapter.
func (p *PubMed) Fetch(ctx context.Context, topic string, window Window) ([]Record, error) {
	ids, err := p.search(ctx, topic, window)
	if err != nil {
		return nil, err
	}

	var records []Record
	for start := 0; start < len(ids); start += pubmedFetchChunk {
		end := min(start+pubmedFetchChunk, len(ids))
		articles, err := p.fetch(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		for _, a := range articles {
			records = append(records, PubMedRecord{Article: a})
		}
	}
	return records, nil
}

func (p *PubMed) search(ctx context.Context, topic string, window Window) ([]string, error) {
	retmax := p.RetMax
	if retmax <= 0 {
		retmax = 60
	}
	params := p.params()
	params.Set("retmode", "json")
	params.Set("retmax", strconv.Itoa(retmax))
	params.Set("term", fmt.Sprintf(`(%s) AND ("%s"[Date - Publication] : "%s"[Date - Publication])`,
		topic, window.Start.Format("2006/01/02"), window.End.Format("2006/01/02")))

	body, err := p.Client.Get(ctx, pubmedSearchURL+"?"+params.Encode(), "application/json")
	if err != nil {
		return nil, fmt.Errorf("pubmed esearch: %w", err)
	}
	var er esearchResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return nil, fmt.Errorf("parsing esearch response: %w", err)
	}
	return er.Result.IDList, nil
}

func (p *PubMed) fetch(ctx context.Context, ids []string) ([]PubMedArticle, error) {
	params := p.params()
	params.Set("retmode", "xml")
	params.Set("id", strings.Join(ids, ","))

	body, err := p.Client.Get(ctx, pubmedFetchURL+"?"+params.Encode(), "application/xml")
	if err != nil {
		return nil, fmt.Errorf("pubmed efetch: %w", err)
	}
	var set pubmedArticleSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("parsing efetch response: %w", err)
	}
	return set.Articles, nil
}
