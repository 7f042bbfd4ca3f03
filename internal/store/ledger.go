// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
)

// SeenKeys is the content of the dedup ledger.
type SeenKeys struct {
	DOIs   map[string]struct{}
	Titles map[string]struct{}
}

// LedgerStats summarizes the ledger.
type LedgerStats struct {
	DOIs   int         `json:"dois"`
	Titles int         `json:"titles"`
	Weeks  []WeekCount `json:"weeks"`
}

// WeekCount is the number of keys first seen in one week.
type WeekCount struct {
	WeekKey string `db:"week_key" json:"week_key"`
	DOIs    int    `db:"dois" json:"dois"`
	Titles  int    `db:"titles" json:"titles"`
}

// SeenKeys loads the ledger. Keys first seen in excludeWeek are left out,
// which lets a forced refresh of that week select them again. An empty
// excludeWeek loads everything.
func (s *Store) SeenKeys(ctx context.Context, excludeWeek string) (SeenKeys, error) {
	keys := SeenKeys{DOIs: make(map[string]struct{}), Titles: make(map[string]struct{})}

	var dois []string
	if err := s.db.SelectContext(ctx, &dois,
		`SELECT doi FROM seen_doi WHERE first_seen_week <> ?`, excludeWeek); err != nil {
		return SeenKeys{}, fmt.Errorf("loading seen dois: %w", err)
	}
	for _, d := range dois {
		keys.DOIs[d] = struct{}{}
	}

	var titles []string
	if err := s.db.SelectContext(ctx, &titles,
		`SELECT norm_title FROM seen_titles WHERE first_seen_week <> ?`, excludeWeek); err != nil {
		return SeenKeys{}, fmt.Errorf("loading seen titles: %w", err)
	}
	for _, t := range titles {
		keys.Titles[t] = struct{}{}
	}
	return keys, nil
}

// LedgerStats counts ledger keys overall and per first-seen week.
func (s *Store) LedgerStats(ctx context.Context) (LedgerStats, error) {
	var st LedgerStats
	if err := s.db.GetContext(ctx, &st.DOIs, `SELECT COUNT(*) FROM seen_doi`); err != nil {
		return LedgerStats{}, fmt.Errorf("counting dois: %w", err)
	}
	if err := s.db.GetContext(ctx, &st.Titles, `SELECT COUNT(*) FROM seen_titles`); err != nil {
		return LedgerStats{}, fmt.Errorf("counting titles: %w", err)
	}
	if err := s.db.SelectContext(ctx, &st.Weeks, `
		SELECT week_key, SUM(dois) AS dois, SUM(titles) AS titles FROM (
			SELECT first_seen_week AS week_key, 1 AS dois, 0 AS titles FROM seen_doi
			UNION ALL
			SELECT first_seen_week AS week_key, 0 AS dois, 1 AS titles FROM seen_titles
		) GROUP BY week_key ORDER BY week_key DESC`); err != nil {
		return LedgerStats{}, fmt.Errorf("counting keys by week: %w", err)
	}
	return st, nil
}
