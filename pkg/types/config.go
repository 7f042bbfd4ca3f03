package types

import (
	"strings"
	"time"
)

// Config holds every option the weekly pipeline consumes. Field tags carry
// the YAML/env key (mapstructure) and the validation rules enforced at load.
type Config struct {
	// Topics is ordered; declaration order drives round-robin selection.
	Topics []string `mapstructure:"topics" json:"topics" yaml:"topics" validate:"required,min=1,unique,dive,required"`

	TimeWindowDays int `mapstructure:"time_window_days" json:"time_window_days" yaml:"time_window_days" validate:"min=1"`

	HumanStudiesOnly bool `mapstructure:"human_studies_only" json:"human_studies_only" yaml:"human_studies_only"`

	// RequirePeerReview toggles the peer-review-likelihood predicate.
	RequirePeerReview bool `mapstructure:"require_peer_review" json:"require_peer_review" yaml:"require_peer_review"`

	MinPapersPerTopic int `mapstructure:"min_papers_per_topic" json:"min_papers_per_topic" yaml:"min_papers_per_topic" validate:"min=0"`
	MaxPapersPerWeek  int `mapstructure:"max_papers_per_week" json:"max_papers_per_week" yaml:"max_papers_per_week" validate:"min=0"`

	OpenAccessPriority bool `mapstructure:"open_access_priority" json:"open_access_priority" yaml:"open_access_priority"`

	// MinTopicMatch drops candidates whose topic match strength is below it.
	// Zero disables the predicate.
	MinTopicMatch float64 `mapstructure:"min_topic_match" json:"min_topic_match" yaml:"min_topic_match" validate:"min=0,max=1"`

	Scoring    ScoringConfig    `mapstructure:"scoring" json:"scoring" yaml:"scoring"`
	Heuristics HeuristicsConfig `mapstructure:"heuristics" json:"heuristics" yaml:"heuristics"`
	Sources    SourcesConfig    `mapstructure:"sources" json:"sources" yaml:"sources"`

	Store    StoreConfig    `mapstructure:"store" json:"-" yaml:"store"`
	Logging  LoggingConfig  `mapstructure:"logging" json:"-" yaml:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics" json:"-" yaml:"metrics"`
	Schedule ScheduleConfig `mapstructure:"schedule" json:"-" yaml:"schedule"`
}

// Weights are the composite score multipliers. They need not sum to 1.
type Weights struct {
	JournalTier   float64 `mapstructure:"journal_tier" json:"journal_tier" yaml:"journal_tier" validate:"min=0"`
	OpenAccess    float64 `mapstructure:"open_access" json:"open_access" yaml:"open_access" validate:"min=0"`
	TopicMatch    float64 `mapstructure:"topic_match" json:"topic_match" yaml:"topic_match" validate:"min=0"`
	StudyType     float64 `mapstructure:"study_type" json:"study_type" yaml:"study_type" validate:"min=0"`
	Recency       float64 `mapstructure:"recency" json:"recency" yaml:"recency" validate:"min=0"`
	QualitySignal float64 `mapstructure:"quality_signal" json:"quality_signal" yaml:"quality_signal" validate:"min=0"`
}

// Total returns the sum of all weights.
func (w Weights) Total() float64 {
	return w.JournalTier + w.OpenAccess + w.TopicMatch + w.StudyType + w.Recency + w.QualitySignal
}

// JournalTier is one row of the journal tier table.
type JournalTier struct {
	Name     string   `mapstructure:"name" json:"name" yaml:"name" validate:"required"`
	Score    float64  `mapstructure:"score" json:"score" yaml:"score" validate:"gt=0,lte=1"`
	Journals []string `mapstructure:"journals" json:"journals" yaml:"journals"`
}

// ScoringConfig configures the Scorer.
type ScoringConfig struct {
	Weights Weights `mapstructure:"weights" json:"weights" yaml:"weights"`

	// JournalTiers is searched in order; the longest matching journal name wins.
	JournalTiers []JournalTier `mapstructure:"journal_tiers" json:"journal_tiers" yaml:"journal_tiers" validate:"dive"`

	// UnknownJournalScore is the baseline for journals absent from every tier.
	UnknownJournalScore float64 `mapstructure:"unknown_journal_score" json:"unknown_journal_score" yaml:"unknown_journal_score" validate:"gt=0,lte=1"`
}

// DesignPattern maps a set of regular expressions to a study design.
type DesignPattern struct {
	Design   StudyDesign `mapstructure:"design" json:"design" yaml:"design" validate:"required"`
	Patterns []string    `mapstructure:"patterns" json:"patterns" yaml:"patterns" validate:"min=1"`
}

// QualityPattern is a regular expression whose match raises the quality signal.
type QualityPattern struct {
	Pattern string  `mapstructure:"pattern" json:"pattern" yaml:"pattern" validate:"required"`
	Boost   float64 `mapstructure:"boost" json:"boost" yaml:"boost" validate:"gt=0"`
}

// HeuristicsConfig holds the keyword tables behind study-type inference,
// preprint detection and topic matching. All matching is case-insensitive.
type HeuristicsConfig struct {
	HumanHints       []string `mapstructure:"human_hints" json:"human_hints" yaml:"human_hints"`
	NonHumanHints    []string `mapstructure:"non_human_hints" json:"non_human_hints" yaml:"non_human_hints"`
	InVitroHints     []string `mapstructure:"in_vitro_hints" json:"in_vitro_hints" yaml:"in_vitro_hints"`
	NonClinicalHints []string `mapstructure:"non_clinical_hints" json:"non_clinical_hints" yaml:"non_clinical_hints"`
	ReviewHints      []string `mapstructure:"review_hints" json:"review_hints" yaml:"review_hints"`
	PreprintHints    []string `mapstructure:"preprint_hints" json:"preprint_hints" yaml:"preprint_hints"`

	// ExcludeHints drop a paper whose title, journal or abstract mentions
	// one of them, such as conference and meeting abstracts.
	ExcludeHints []string `mapstructure:"exclude_hints" json:"exclude_hints" yaml:"exclude_hints"`

	// DesignPatterns is evaluated in order; the first matching design wins.
	DesignPatterns []DesignPattern `mapstructure:"design_patterns" json:"design_patterns" yaml:"design_patterns" validate:"dive"`

	// DesignPriority is the ordinal priority of each design. Unlisted
	// designs use the "unknown" entry.
	DesignPriority map[StudyDesign]float64 `mapstructure:"design_priority" json:"design_priority" yaml:"design_priority" validate:"dive,min=0"`

	QualityPatterns []QualityPattern `mapstructure:"quality_patterns" json:"quality_patterns" yaml:"quality_patterns" validate:"dive"`

	// QualityCap is the boost total that maps to a quality signal of 1.
	QualityCap float64 `mapstructure:"quality_cap" json:"quality_cap" yaml:"quality_cap" validate:"gt=0"`

	// TopicKeywords is keyed by lowercase topic. Topics without an entry
	// fall back to keywords derived from the topic string.
	TopicKeywords map[string][]string `mapstructure:"topic_keywords" json:"topic_keywords" yaml:"topic_keywords"`
}

// HTTPConfig holds shared HTTP settings used by the source adapters.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout" validate:"gt=0"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `mapstructure:"user_agent" json:"user_agent" yaml:"user_agent"`

	// MaxRetries bounds retries on 429 and 5xx responses.
	MaxRetries int `mapstructure:"max_retries" json:"max_retries" yaml:"max_retries" validate:"min=0"`
}

// FeedConfig describes one RSS or Atom feed.
type FeedConfig struct {
	Name string `mapstructure:"name" json:"name" yaml:"name" validate:"required"`
	URL  string `mapstructure:"url" json:"url" yaml:"url" validate:"required,url"`

	// Journal marks the feed as a journal's table of contents. Entries of
	// feeds without it carry no peer-review signal.
	Journal string `mapstructure:"journal" json:"journal" yaml:"journal"`
}

// CrossrefConfig configures the Crossref adapter.
type CrossrefConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Rows    int  `mapstructure:"rows" json:"rows" yaml:"rows" validate:"min=1,max=1000"`

	// Mailto joins Crossref's polite pool.
	Mailto string `mapstructure:"mailto" json:"-" yaml:"mailto"`

	RatePerSecond float64 `mapstructure:"rate_per_second" json:"rate_per_second" yaml:"rate_per_second" validate:"gt=0"`

	// Backfill looks up papers missing a DOI, journal or abstract by title.
	// It runs even when the Crossref adapter is disabled.
	Backfill      bool `mapstructure:"backfill" json:"backfill" yaml:"backfill"`
	BackfillLimit int  `mapstructure:"backfill_limit" json:"backfill_limit" yaml:"backfill_limit" validate:"min=0"`
}

// PubMedConfig configures the PubMed E-utilities adapter.
type PubMedConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	RetMax  int    `mapstructure:"retmax" json:"retmax" yaml:"retmax" validate:"min=1,max=10000"`
	Tool    string `mapstructure:"tool" json:"tool" yaml:"tool"`
	Email   string `mapstructure:"email" json:"-" yaml:"email"`
	APIKey  string `mapstructure:"api_key" json:"-" yaml:"api_key"`

	RatePerSecond float64 `mapstructure:"rate_per_second" json:"rate_per_second" yaml:"rate_per_second" validate:"gt=0"`
}

// RSSConfig configures the feed adapter.
type RSSConfig struct {
	Enabled bool         `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Feeds   []FeedConfig `mapstructure:"feeds" json:"feeds" yaml:"feeds" validate:"dive"`

	RatePerSecond float64 `mapstructure:"rate_per_second" json:"rate_per_second" yaml:"rate_per_second" validate:"gt=0"`
}

// UnpaywallConfig configures open access enrichment. An empty Email
// disables it.
type UnpaywallConfig struct {
	Email string `mapstructure:"email" json:"-" yaml:"email" validate:"omitempty,email"`

	// EnrichLimit caps lookups per run.
	EnrichLimit int `mapstructure:"enrich_limit" json:"enrich_limit" yaml:"enrich_limit" validate:"min=0"`

	RatePerSecond float64 `mapstructure:"rate_per_second" json:"rate_per_second" yaml:"rate_per_second" validate:"gt=0"`
}

// SourcesConfig groups adapter settings.
type SourcesConfig struct {
	HTTPConfig `mapstructure:",squash" yaml:",inline"`

	// AdapterTimeout bounds one adapter's whole fetch for one topic.
	AdapterTimeout time.Duration `mapstructure:"adapter_timeout" json:"adapter_timeout" yaml:"adapter_timeout" validate:"gt=0"`

	Crossref  CrossrefConfig  `mapstructure:"crossref" json:"crossref" yaml:"crossref"`
	PubMed    PubMedConfig    `mapstructure:"pubmed" json:"pubmed" yaml:"pubmed"`
	RSS       RSSConfig       `mapstructure:"rss" json:"rss" yaml:"rss"`
	Unpaywall UnpaywallConfig `mapstructure:"unpaywall" json:"unpaywall" yaml:"unpaywall"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path" validate:"required"`
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=json console"`
	Output string `mapstructure:"output" yaml:"output" validate:"oneof=stdout stderr"`
}

// MetricsConfig configures the run metrics export.
type MetricsConfig struct {
	// Textfile is written in Prometheus text format after each run.
	// Empty disables the export.
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// ScheduleConfig configures the recurring trigger.
type ScheduleConfig struct {
	Cron string `mapstructure:"cron" yaml:"cron" validate:"required"`
}

// KeywordsFor returns the match keywords of topic: its configured entry, or
// else the whole topic plus each of its tokens longer than two characters.
func (h HeuristicsConfig) KeywordsFor(topic string) []string {
	key := strings.ToLower(strings.TrimSpace(topic))
	if kws, ok := h.TopicKeywords[key]; ok && len(kws) > 0 {
		return kws
	}
	base := strings.ReplaceAll(key, "/", " ")
	out := []string{base}
	seen := map[string]bool{base: true}
	for _, tok := range strings.Fields(base) {
		if len(tok) > 2 && !seen[tok] {
			seen[tok] = true
			out = append(out, tok)
		}
	}
	return out
}
