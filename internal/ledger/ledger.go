// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger is the dedup ledger: the set of paper identities already
// published in a committed run. A Ledger is loaded once per run, consulted
// during dedup, and flushed together with the run at commit time.
package ledger

import (
	"context"

	"github.com/pdiddy/research-digest/internal/store"
	"github.com/pdiddy/research-digest/pkg/types"
)

// Reader loads persisted ledger keys.
type Reader interface {
	SeenKeys(ctx context.Context, excludeWeek string) (store.SeenKeys, error)
}

// Committer persists a run together with the ledger keys of its papers.
type Committer interface {
	CommitWeek(ctx context.Context, run types.WeeklyRun) error
}

// Ledger holds the seen DOI and title sets plus keys staged for the next
// flush. It is not safe for concurrent use.
type Ledger struct {
	dois   map[string]struct{}
	titles map[string]struct{}
	staged []types.Paper
}

// Load reads the ledger. Keys first seen in excludeWeek are ignored so a
// forced refresh of that week can select them again.
func Load(ctx context.Context, r Reader, excludeWeek string) (*Ledger, error) {
	keys, err := r.SeenKeys(ctx, excludeWeek)
	if err != nil {
		return nil, err
	}
	l := New()
	for d := range keys.DOIs {
		l.dois[d] = struct{}{}
	}
	for t := range keys.Titles {
		l.titles[t] = struct{}{}
	}
	return l, nil
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{dois: make(map[string]struct{}), titles: make(map[string]struct{})}
}

// Len returns the number of DOI and title keys.
func (l *Ledger) Len() (dois, titles int) {
	return len(l.dois), len(l.titles)
}

// Seen reports whether p's DOI or normalized title was already published.
func (l *Ledger) Seen(p types.Paper) bool {
	if p.DOI != "" {
		if _, ok := l.dois[p.DOI]; ok {
			return true
		}
	}
	if p.NormalizedTitle != "" {
		if _, ok := l.titles[p.NormalizedTitle]; ok {
			return true
		}
	}
	return false
}

// Unseen returns the papers not in the ledger, in input order, and the
// number removed.
func (l *Ledger) Unseen(papers []types.Paper) ([]types.Paper, int) {
	out := make([]types.Paper, 0, len(papers))
	for _, p := range papers {
		if !l.Seen(p) {
			out = append(out, p)
		}
	}
	return out, len(papers) - len(out)
}

// Stage queues papers whose keys join the ledger on the next Flush.
func (l *Ledger) Stage(papers ...types.Paper) {
	l.staged = append(l.staged, papers...)
}

// Staged returns the queued papers.
func (l *Ledger) Staged() []types.Paper {
	return l.staged
}

// Discard drops staged keys without recording them.
func (l *Ledger) Discard() {
	l.staged = nil
}

// Flush commits run through c. Only when the commit succeeds do the staged
// keys join the in-memory sets; on failure they are discarded and the
// ledger is unchanged.
func (l *Ledger) Flush(ctx context.Context, c Committer, run types.WeeklyRun) error {
	staged := l.staged
	l.staged = nil
	if err := c.CommitWeek(ctx, run); err != nil {
		return err
	}
	for _, p := range staged {
		if p.DOI != "" {
			l.dois[p.DOI] = struct{}{}
		}
		if p.NormalizedTitle != "" {
			l.titles[p.NormalizedTitle] = struct{}{}
		}
	}
	return nil
}
