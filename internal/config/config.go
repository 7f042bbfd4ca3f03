// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads and validates the digest configuration. Values come
// from built-in defaults, an optional YAML file, RESEARCH_DIGEST_* environment
// variables and, for contact addresses and keys, a .secrets/ directory.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-digest/internal/secrets"
	"github.com/pdiddy/research-digest/pkg/types"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "RESEARCH_DIGEST"

// ErrConfigurationInvalid marks a configuration the pipeline cannot run with.
var ErrConfigurationInvalid = errors.New("configuration invalid")

// ValidationError describes one rejected field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is makes every ValidationError match ErrConfigurationInvalid.
func (e *ValidationError) Is(target error) bool {
	return target == ErrConfigurationInvalid
}

// aliases are unprefixed environment names also honored for their keys.
var aliases = map[string]string{
	"topics":                  "TOPICS",
	"time_window_days":        "TIME_WINDOW_DAYS",
	"human_studies_only":      "HUMAN_STUDIES_ONLY",
	"min_papers_per_topic":    "MIN_PAPERS_PER_TOPIC",
	"max_papers_per_week":     "MAX_PAPERS_PER_WEEK",
	"open_access_priority":    "OPEN_ACCESS_PRIORITY",
	"sources.unpaywall.email": "UNPAYWALL_EMAIL",
	"sources.pubmed.email":    "PUBMED_EMAIL",
	"sources.crossref.mailto": "CROSSREF_MAILTO",
	"sources.pubmed.api_key":  "PUBMED_API_KEY",
}

// SetDefaults registers every scalar default on v so that environment
// overrides resolve for them.
func SetDefaults(v *viper.Viper) {
	d := types.DefaultConfig()
	v.SetDefault("topics", d.Topics)
	v.SetDefault("time_window_days", d.TimeWindowDays)
	v.SetDefault("human_studies_only", d.HumanStudiesOnly)
	v.SetDefault("require_peer_review", d.RequirePeerReview)
	v.SetDefault("min_papers_per_topic", d.MinPapersPerTopic)
	v.SetDefault("max_papers_per_week", d.MaxPapersPerWeek)
	v.SetDefault("open_access_priority", d.OpenAccessPriority)
	v.SetDefault("min_topic_match", d.MinTopicMatch)

	w := d.Scoring.Weights
	v.SetDefault("scoring.weights.journal_tier", w.JournalTier)
	v.SetDefault("scoring.weights.open_access", w.OpenAccess)
	v.SetDefault("scoring.weights.topic_match", w.TopicMatch)
	v.SetDefault("scoring.weights.study_type", w.StudyType)
	v.SetDefault("scoring.weights.recency", w.Recency)
	v.SetDefault("scoring.weights.quality_signal", w.QualitySignal)
	v.SetDefault("scoring.unknown_journal_score", d.Scoring.UnknownJournalScore)

	s := d.Sources
	v.SetDefault("sources.timeout", s.Timeout)
	v.SetDefault("sources.user_agent", s.UserAgent)
	v.SetDefault("sources.max_retries", s.MaxRetries)
	v.SetDefault("sources.adapter_timeout", s.AdapterTimeout)
	v.SetDefault("sources.crossref.enabled", s.Crossref.Enabled)
	v.SetDefault("sources.crossref.rows", s.Crossref.Rows)
	v.SetDefault("sources.crossref.mailto", "")
	v.SetDefault("sources.crossref.rate_per_second", s.Crossref.RatePerSecond)
	v.SetDefault("sources.crossref.backfill", s.Crossref.Backfill)
	v.SetDefault("sources.crossref.backfill_limit", s.Crossref.BackfillLimit)
	v.SetDefault("sources.pubmed.enabled", s.PubMed.Enabled)
	v.SetDefault("sources.pubmed.retmax", s.PubMed.RetMax)
	v.SetDefault("sources.pubmed.tool", s.PubMed.Tool)
	v.SetDefault("sources.pubmed.email", "")
	v.SetDefault("sources.pubmed.api_key", "")
	v.SetDefault("sources.pubmed.rate_per_second", s.PubMed.RatePerSecond)
	v.SetDefault("sources.rss.enabled", s.RSS.Enabled)
	v.SetDefault("sources.rss.rate_per_second", s.RSS.RatePerSecond)
	v.SetDefault("sources.unpaywall.email", "")
	v.SetDefault("sources.unpaywall.enrich_limit", s.Unpaywall.EnrichLimit)
	v.SetDefault("sources.unpaywall.rate_per_second", s.Unpaywall.RatePerSecond)

	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)
	v.SetDefault("schedule.cron", d.Schedule.Cron)
}

// BindEnv wires the RESEARCH_DIGEST_* prefix and the unprefixed aliases.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, alias := range aliases {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, alias); err != nil {
			return fmt.Errorf("binding env for %s: %w", key, err)
		}
	}
	return nil
}

// Load decodes v over the defaults, fills empty contact fields from the
// secrets directory and validates the result. Tables without scalar keys
// (journal tiers, feeds, heuristics) keep their defaults unless the config
// file provides them.
func Load(v *viper.Viper, secretsDir string, log zerolog.Logger) (types.Config, error) {
	cfg := types.DefaultConfig()
	clearOverriddenLists(v, &cfg)
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("%w: decoding: %v", ErrConfigurationInvalid, err)
	}

	set, err := secrets.Load(secretsDir, log)
	if err != nil {
		return types.Config{}, err
	}
	ApplySecrets(&cfg, set)
	if keys := set.Keys(); len(keys) > 0 {
		log.Debug().Strs("secrets", keys).Msg("loaded secrets")
	}

	cfg.Topics = cleanTopics(cfg.Topics)
	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// clearOverriddenLists drops default list values that v will supply, so a
// shorter configured list replaces the default rather than overlaying it.
func clearOverriddenLists(v *viper.Viper, cfg *types.Config) {
	lists := map[string]func(){
		"topics":                        func() { cfg.Topics = nil },
		"scoring.journal_tiers":         func() { cfg.Scoring.JournalTiers = nil },
		"sources.rss.feeds":             func() { cfg.Sources.RSS.Feeds = nil },
		"heuristics.human_hints":        func() { cfg.Heuristics.HumanHints = nil },
		"heuristics.non_human_hints":    func() { cfg.Heuristics.NonHumanHints = nil },
		"heuristics.in_vitro_hints":     func() { cfg.Heuristics.InVitroHints = nil },
		"heuristics.non_clinical_hints": func() { cfg.Heuristics.NonClinicalHints = nil },
		"heuristics.review_hints":       func() { cfg.Heuristics.ReviewHints = nil },
		"heuristics.preprint_hints":     func() { cfg.Heuristics.PreprintHints = nil },
		"heuristics.exclude_hints":      func() { cfg.Heuristics.ExcludeHints = nil },
		"heuristics.design_patterns":    func() { cfg.Heuristics.DesignPatterns = nil },
		"heuristics.quality_patterns":   func() { cfg.Heuristics.QualityPatterns = nil },
	}
	for key, reset := range lists {
		if v.IsSet(key) {
			reset()
		}
	}
}

// ApplySecrets fills contact and key fields still empty after decoding.
func ApplySecrets(cfg *types.Config, set secrets.Set) {
	set.Fill(&cfg.Sources.Unpaywall.Email, secrets.UnpaywallEmail)
	set.Fill(&cfg.Sources.PubMed.Email, secrets.PubMedEmail)
	set.Fill(&cfg.Sources.PubMed.APIKey, secrets.PubMedAPIKey)
	set.Fill(&cfg.Sources.Crossref.Mailto, secrets.CrossrefMailto)
}

func cleanTopics(topics []string) []string {
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct rules and the cross-field constraints the tags
// cannot express. Every failure wraps ErrConfigurationInvalid.
func Validate(cfg types.Config) error {
	var errs []error

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrConfigurationInvalid, err)
		}
		for _, fe := range verrs {
			errs = append(errs, &ValidationError{
				Field:  fe.Namespace(),
				Reason: fmt.Sprintf("failed %q rule (value %v)", fe.Tag(), fe.Value()),
			})
		}
	}

	seen := make(map[string]bool, len(cfg.Topics))
	for _, t := range cfg.Topics {
		key := strings.ToLower(strings.TrimSpace(t))
		if seen[key] {
			errs = append(errs, &ValidationError{Field: "topics", Reason: fmt.Sprintf("duplicate topic %q", t)})
		}
		seen[key] = true
	}

	if cfg.Scoring.Weights.Total() <= 0 {
		errs = append(errs, &ValidationError{Field: "scoring.weights", Reason: "all weights are zero"})
	}

	for _, dp := range cfg.Heuristics.DesignPatterns {
		for _, p := range dp.Patterns {
			if _, err := regexp.Compile(p); err != nil {
				errs = append(errs, &ValidationError{Field: "heuristics.design_patterns." + string(dp.Design), Reason: err.Error()})
			}
		}
	}
	for _, qp := range cfg.Heuristics.QualityPatterns {
		if _, err := regexp.Compile(qp.Pattern); err != nil {
			errs = append(errs, &ValidationError{Field: "heuristics.quality_patterns", Reason: err.Error()})
		}
	}

	if !cfg.Sources.Crossref.Enabled && !cfg.Sources.PubMed.Enabled && !cfg.Sources.RSS.Enabled {
		errs = append(errs, &ValidationError{Field: "sources", Reason: "every source adapter is disabled"})
	}

	return errors.Join(errs...)
}
