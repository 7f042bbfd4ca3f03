// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pdiddy/research-digest/pkg/types"
)

type runRow struct {
	WeekKey     string `db:"week_key"`
	RunID       string `db:"run_id"`
	GeneratedAt string `db:"generated_at"`
	ConfigJSON  string `db:"config_json"`
	StatsJSON   string `db:"stats_json"`
}

type paperRow struct {
	WeekKey   string `db:"week_key"`
	Rank      int    `db:"rank"`
	Slug      string `db:"slug"`
	NormTitle string `db:"norm_title"`
	PaperJSON string `db:"paper_json"`
}

type summaryRow struct {
	WeekKey     string `db:"week_key"`
	RunID       string `db:"run_id"`
	GeneratedAt string `db:"generated_at"`
	Papers      int    `db:"papers"`
}

// RunSummary is one line of the run listing.
type RunSummary struct {
	WeekKey     string    `json:"week_key"`
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Papers      int       `json:"papers"`
}

// CommitWeek replaces the run for run.WeekKey and records ledger keys for
// every selected paper, all in one transaction. On failure nothing is
// written and the error wraps ErrPersistence.
func (s *Store) CommitWeek(ctx context.Context, run types.WeeklyRun) error {
	stats, err := json.Marshal(run.Stats)
	if err != nil {
		return fmt.Errorf("%w: encoding stats: %v", ErrPersistence, err)
	}
	cfgJSON := string(run.ConfigSnapshot)
	if cfgJSON == "" {
		cfgJSON = "{}"
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", ErrPersistence, err)
	}
	defer tx.Rollback()

	if err := writeRun(ctx, tx, run, cfgJSON, string(stats)); err != nil {
		return fmt.Errorf("%w: week %s: %v", ErrPersistence, run.WeekKey, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing week %s: %v", ErrPersistence, run.WeekKey, err)
	}

	s.log.Debug().Str("week", run.WeekKey).Int("papers", len(run.Papers)).Msg("run committed")
	return nil
}

func writeRun(ctx context.Context, tx *sqlx.Tx, run types.WeeklyRun, cfgJSON, statsJSON string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM run_papers WHERE week_key = ?`, run.WeekKey); err != nil {
		return fmt.Errorf("clearing papers: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO weekly_runs (week_key, run_id, generated_at, config_json, stats_json)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(week_key) DO UPDATE SET
			run_id = excluded.run_id,
			generated_at = excluded.generated_at,
			config_json = excluded.config_json,
			stats_json = excluded.stats_json`,
		run.WeekKey, run.RunID, run.GeneratedAt.UTC().Format(time.RFC3339Nano), cfgJSON, statsJSON,
	); err != nil {
		return fmt.Errorf("writing run: %w", err)
	}

	for _, sp := range run.Papers {
		body, err := json.Marshal(sp)
		if err != nil {
			return fmt.Errorf("encoding paper %s: %w", sp.Slug, err)
		}
		var doi any
		if sp.DOI != "" {
			doi = sp.DOI
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_papers (week_key, rank, slug, identity_key, doi, norm_title, title, topic, paper_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.WeekKey, sp.Rank, sp.Slug, sp.Key().String(), doi, sp.NormalizedTitle, sp.Title, sp.Topic, string(body),
		); err != nil {
			return fmt.Errorf("writing paper %s: %w", sp.Slug, err)
		}

		if sp.DOI != "" {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO seen_doi (doi, first_seen_week) VALUES (?, ?)`,
				sp.DOI, run.WeekKey,
			); err != nil {
				return fmt.Errorf("recording doi %s: %w", sp.DOI, err)
			}
		}
		if sp.NormalizedTitle != "" {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO seen_titles (norm_title, first_seen_week) VALUES (?, ?)`,
				sp.NormalizedTitle, run.WeekKey,
			); err != nil {
				return fmt.Errorf("recording title: %w", err)
			}
		}
	}
	return nil
}

// RunByWeek loads the run stored for weekKey.
func (s *Store) RunByWeek(ctx context.Context, weekKey string) (types.WeeklyRun, error) {
	var row runRow
	err := s.db.GetContext(ctx, &row, `
		SELECT week_key, run_id, generated_at, config_json, stats_json
		FROM weekly_runs WHERE week_key = ?`, weekKey)
	if isNoRows(err) {
		return types.WeeklyRun{}, fmt.Errorf("week %s: %w", weekKey, ErrRunNotFound)
	}
	if err != nil {
		return types.WeeklyRun{}, fmt.Errorf("loading run %s: %w", weekKey, err)
	}
	return s.hydrate(ctx, row)
}

// LatestRun loads the run with the greatest week key.
func (s *Store) LatestRun(ctx context.Context) (types.WeeklyRun, error) {
	var row runRow
	err := s.db.GetContext(ctx, &row, `
		SELECT week_key, run_id, generated_at, config_json, stats_json
		FROM weekly_runs ORDER BY week_key DESC LIMIT 1`)
	if isNoRows(err) {
		return types.WeeklyRun{}, ErrRunNotFound
	}
	if err != nil {
		return types.WeeklyRun{}, fmt.Errorf("loading latest run: %w", err)
	}
	return s.hydrate(ctx, row)
}

func (s *Store) hydrate(ctx context.Context, row runRow) (types.WeeklyRun, error) {
	run := types.WeeklyRun{
		WeekKey: row.WeekKey,
		RunID:   row.RunID,
		Papers:  []types.SelectedPaper{},
	}
	t, err := time.Parse(time.RFC3339Nano, row.GeneratedAt)
	if err != nil {
		return types.WeeklyRun{}, fmt.Errorf("parsing generated_at of %s: %w", row.WeekKey, err)
	}
	run.GeneratedAt = t
	if err := json.Unmarshal([]byte(row.StatsJSON), &run.Stats); err != nil {
		return types.WeeklyRun{}, fmt.Errorf("decoding stats of %s: %w", row.WeekKey, err)
	}
	run.ConfigSnapshot = json.RawMessage(row.ConfigJSON)

	var rows []paperRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT week_key, rank, slug, norm_title, paper_json
		FROM run_papers WHERE week_key = ? ORDER BY rank`, row.WeekKey); err != nil {
		return types.WeeklyRun{}, fmt.Errorf("loading papers of %s: %w", row.WeekKey, err)
	}
	for _, pr := range rows {
		sp, err := decodePaper(pr)
		if err != nil {
			return types.WeeklyRun{}, err
		}
		run.Papers = append(run.Papers, sp)
	}
	return run, nil
}

func decodePaper(pr paperRow) (types.SelectedPaper, error) {
	var sp types.SelectedPaper
	if err := json.Unmarshal([]byte(pr.PaperJSON), &sp); err != nil {
		return types.SelectedPaper{}, fmt.Errorf("decoding paper %s of %s: %w", pr.Slug, pr.WeekKey, err)
	}
	sp.NormalizedTitle = pr.NormTitle
	return sp, nil
}

// PaperBySlug finds a selected paper by slug. An empty weekKey searches
// the most recent run that contains the slug.
func (s *Store) PaperBySlug(ctx context.Context, weekKey, slug string) (types.SelectedPaper, error) {
	query := `SELECT week_key, rank, slug, norm_title, paper_json FROM run_papers WHERE slug = ?`
	args := []any{slug}
	if weekKey != "" {
		query += ` AND week_key = ?`
		args = append(args, weekKey)
	}
	query += ` ORDER BY week_key DESC LIMIT 1`

	var pr paperRow
	err := s.db.GetContext(ctx, &pr, query, args...)
	if isNoRows(err) {
		return types.SelectedPaper{}, fmt.Errorf("paper %q: %w", slug, ErrRunNotFound)
	}
	if err != nil {
		return types.SelectedPaper{}, fmt.Errorf("loading paper %q: %w", slug, err)
	}
	return decodePaper(pr)
}

// ListRuns returns every stored run, newest week first.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	var rows []summaryRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT r.week_key, r.run_id, r.generated_at, COUNT(p.rank) AS papers
		FROM weekly_runs r LEFT JOIN run_papers p ON p.week_key = r.week_key
		GROUP BY r.week_key, r.run_id, r.generated_at
		ORDER BY r.week_key DESC`); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	out := make([]RunSummary, 0, len(rows))
	for _, r := range rows {
		t, err := time.Parse(time.RFC3339Nano, r.GeneratedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing generated_at of %s: %w", r.WeekKey, err)
		}
		out = append(out, RunSummary{WeekKey: r.WeekKey, RunID: r.RunID, GeneratedAt: t, Papers: r.Papers})
	}
	return out, nil
}
