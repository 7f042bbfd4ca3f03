// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-digest/internal/secrets"
	"github.com/pdiddy/research-digest/pkg/types"
)

func newViper(t *testing.T, yamlDoc string) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	require.NoError(t, BindEnv(v))
	if yamlDoc != "" {
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBufferString(yamlDoc)))
	}
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper(t, ""), t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, types.DefaultTopics, cfg.Topics)
	assert.Equal(t, 7, cfg.TimeWindowDays)
	assert.True(t, cfg.HumanStudiesOnly)
	assert.Equal(t, 12, cfg.MaxPapersPerWeek)
	assert.Equal(t, 90*time.Second, cfg.Sources.AdapterTimeout)
	assert.Len(t, cfg.Sources.RSS.Feeds, 6)
	assert.NotEmpty(t, cfg.Scoring.JournalTiers)
	assert.NotEmpty(t, cfg.Heuristics.DesignPatterns)
	assert.Contains(t, cfg.Heuristics.ExcludeHints, "meeting abstract")
	assert.True(t, cfg.Sources.Crossref.Backfill)
	assert.Equal(t, 40, cfg.Sources.Crossref.BackfillLimit)
}

func TestLoadExclusionAndBackfill(t *testing.T) {
	doc := `
sources:
  crossref:
    backfill: false
    backfill_limit: 10
heuristics:
  exclude_hints: [symposium]
`
	cfg, err := Load(newViper(t, doc), t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []string{"symposium"}, cfg.Heuristics.ExcludeHints, "configured list replaces the default")
	assert.False(t, cfg.Sources.Crossref.Backfill)
	assert.Equal(t, 10, cfg.Sources.Crossref.BackfillLimit)
}

func TestLoadFileOverrides(t *testing.T) {
	doc := `
topics: [aging, sleep]
time_window_days: 14
human_studies_only: false
max_papers_per_week: 5
scoring:
  weights:
    recency: 0.5
sources:
  adapter_timeout: 30s
  rss:
    feeds:
      - name: Sleep
        url: https://example.org/sleep.rss
        journal: Sleep
heuristics:
  topic_keywords:
    aging: [aging, ageing, longevity]
`
	cfg, err := Load(newViper(t, doc), t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []string{"aging", "sleep"}, cfg.Topics)
	assert.Equal(t, 14, cfg.TimeWindowDays)
	assert.False(t, cfg.HumanStudiesOnly)
	assert.Equal(t, 5, cfg.MaxPapersPerWeek)
	assert.Equal(t, 0.5, cfg.Scoring.Weights.Recency)
	assert.Equal(t, 0.30, cfg.Scoring.Weights.JournalTier, "unset weights keep defaults")
	assert.Equal(t, 30*time.Second, cfg.Sources.AdapterTimeout)
	require.Len(t, cfg.Sources.RSS.Feeds, 1)
	assert.Equal(t, "Sleep", cfg.Sources.RSS.Feeds[0].Journal)
	assert.Equal(t, []string{"aging", "ageing", "longevity"}, cfg.Heuristics.TopicKeywords["aging"])
	assert.Contains(t, cfg.Heuristics.TopicKeywords, "nutrition", "default keyword entries survive")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RESEARCH_DIGEST_MAX_PAPERS_PER_WEEK", "3")
	t.Setenv("TIME_WINDOW_DAYS", "10")
	t.Setenv("UNPAYWALL_EMAIL", "env@example.org")

	cfg, err := Load(newViper(t, ""), t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.MaxPapersPerWeek)
	assert.Equal(t, 10, cfg.TimeWindowDays)
	assert.Equal(t, "env@example.org", cfg.Sources.Unpaywall.Email)
}

func TestLoadSecretsFillEmptyFields(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, secrets.UnpaywallEmail), []byte("file@example.org\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, secrets.PubMedEmail), []byte("pm@example.org"), 0o600))

	doc := `
sources:
  pubmed:
    email: config@example.org
`
	cfg, err := Load(newViper(t, doc), dir, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "file@example.org", cfg.Sources.Unpaywall.Email)
	assert.Equal(t, "config@example.org", cfg.Sources.PubMed.Email, "config value is not replaced by a secret file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.Config)
		field  string
	}{
		{"negative max papers", func(c *types.Config) { c.MaxPapersPerWeek = -1 }, "MaxPapersPerWeek"},
		{"negative min papers", func(c *types.Config) { c.MinPapersPerTopic = -2 }, "MinPapersPerTopic"},
		{"zero window", func(c *types.Config) { c.TimeWindowDays = 0 }, "TimeWindowDays"},
		{"no topics", func(c *types.Config) { c.Topics = nil }, "Topics"},
		{"duplicate topics", func(c *types.Config) { c.Topics = []string{"Sleep", "sleep"} }, "topics"},
		{"negative weight", func(c *types.Config) { c.Scoring.Weights.Recency = -0.1 }, "Recency"},
		{"all weights zero", func(c *types.Config) { c.Scoring.Weights = types.Weights{} }, "scoring.weights"},
		{"zero unknown journal baseline", func(c *types.Config) { c.Scoring.UnknownJournalScore = 0 }, "UnknownJournalScore"},
		{"bad feed url", func(c *types.Config) { c.Sources.RSS.Feeds[0].URL = "not a url" }, "URL"},
		{"bad design regex", func(c *types.Config) {
			c.Heuristics.DesignPatterns[0].Patterns = []string{"(unclosed"}
		}, "design_patterns"},
		{"zero adapter timeout", func(c *types.Config) { c.Sources.AdapterTimeout = 0 }, "AdapterTimeout"},
		{"unknown log level", func(c *types.Config) { c.Logging.Level = "loud" }, "Level"},
		{"all sources disabled", func(c *types.Config) {
			c.Sources.Crossref.Enabled = false
			c.Sources.PubMed.Enabled = false
			c.Sources.RSS.Enabled = false
		}, "sources"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := types.DefaultConfig()
			tt.mutate(&cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfigurationInvalid))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	assert.NoError(t, Validate(types.DefaultConfig()))
}

func TestValidateAllowsZeroCaps(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.MaxPapersPerWeek = 0
	cfg.MinPapersPerTopic = 0
	assert.NoError(t, Validate(cfg))
}
