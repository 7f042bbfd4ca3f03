// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-digest/pkg/types"
)

// Collection is the outcome of one fan-out across adapters and topics.
type Collection struct {
	// Candidates are ordered by adapter, then topic, then source order.
	Candidates []Candidate

	Failures []*UnavailableError

	// Fetched counts records contributed per source.
	Fetched map[types.Source]int
}

// Collect runs every adapter for every topic concurrently, each call bounded
// by timeout. A failed or timed-out call contributes nothing and is reported
// in Failures; it never affects other calls. The result order does not
// depend on completion order.
func Collect(ctx context.Context, adapters []Adapter, topics []string, window Window, timeout time.Duration, log zerolog.Logger) Collection {
	type result struct {
		records []Record
		err     error
	}
	results := make([][]result, len(adapters))
	for i := range results {
		results[i] = make([]result, len(topics))
	}

	var g errgroup.Group
	for ai, a := range adapters {
		for ti, topic := range topics {
			g.Go(func() error {
				start := time.Now()
				recs, err := fetchWithTimeout(ctx, a, topic, window, timeout)
				results[ai][ti] = result{records: recs, err: err}
				log.Debug().
					Str("source", string(a.Name())).
					Str("topic", topic).
					Int("records", len(recs)).
					Dur("elapsed", time.Since(start)).
					Msg("fetch finished")
				return nil
			})
		}
	}
	g.Wait()

	out := Collection{Fetched: make(map[types.Source]int)}
	for ai, a := range adapters {
		for ti, topic := range topics {
			r := results[ai][ti]
			if r.err != nil {
				ue := &UnavailableError{Source: a.Name(), Topic: topic, Err: r.err}
				out.Failures = append(out.Failures, ue)
				log.Warn().Str("source", string(a.Name())).Str("topic", topic).Err(r.err).Msg("source unavailable")
				continue
			}
			for _, rec := range r.records {
				out.Candidates = append(out.Candidates, Candidate{Topic: topic, Record: rec})
			}
			out.Fetched[a.Name()] += len(r.records)
		}
	}
	return out
}

// fetchWithTimeout returns when the adapter does or when the deadline
// passes, whichever is first. Records from a call that errors are dropped.
func fetchWithTimeout(ctx context.Context, a Adapter, topic string, window Window, timeout time.Duration) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		records []Record
		err     error
	}
	ch := make(chan result, 1)
	go func() {
		recs, err := a.Fetch(ctx, topic, window)
		ch <- result{records: recs, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		return r.records, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
