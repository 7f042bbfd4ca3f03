// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source fetches raw candidate records from bibliographic catalogs
// and journal feeds. Each adapter yields source-specific records; every
// record type knows how to reduce itself to the common Canonical shape.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/research-digest/pkg/types"
)

// ErrSourceUnavailable marks an adapter that failed or timed out.
var ErrSourceUnavailable = errors.New("source unavailable")

// UnavailableError records one adapter failure for one topic.
type UnavailableError struct {
	Source types.Source
	Topic  string
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Source, e.Topic, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Is makes every UnavailableError match ErrSourceUnavailable.
func (e *UnavailableError) Is(target error) bool { return target == ErrSourceUnavailable }

// Window is an inclusive date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow returns the window of days ending on the calendar day of now:
// [now - days, now], at day granularity in UTC.
func NewWindow(now time.Time, days int) Window {
	end := Day(now)
	return Window{Start: end.AddDate(0, 0, -days), End: end}
}

// Contains reports whether t falls on a day inside the window.
func (w Window) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Adapter fetches raw records for one topic within one window. Fetch returns
// an error for transport or parse failures; Collect turns those into an
// empty contribution so one source never aborts a run.
type Adapter interface {
	Name() types.Source
	Fetch(ctx context.Context, topic string, window Window) ([]Record, error)
}

// Record is a raw source record. The concrete types are CrossrefRecord,
// PubMedRecord and RSSRecord.
type Record interface {
	Source() types.Source
	Canonical() Canonical
}

// Canonical carries the fields every source can supply, before identity
// resolution and classification.
type Canonical struct {
	Source   types.Source
	DOI      string
	Title    string
	Authors  []string
	Journal  string
	Abstract string

	// Published is zero when no date could be resolved.
	Published time.Time

	// OpenAccess is nil when the source says nothing about access.
	OpenAccess *bool

	// JournalArticle is set when the source structurally identifies the
	// record as published in a journal.
	JournalArticle bool

	// Preprint is set when the source structurally tags the record as a
	// preprint or posted content.
	Preprint bool

	MeshTerms        []string
	PublicationTypes []string
	URL              string
}

// Candidate is a record together with the topic it was fetched for.
type Candidate struct {
	Topic  string
	Record Record
}
