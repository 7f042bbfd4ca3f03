package types

import "time"

// DefaultTopics is used when no topics are configured.
var DefaultTopics = []string{
	"nutrition",
	"evolutionary psychology",
	"relationship science",
	"personality science",
	"psychology of men and boys",
	"behaviour genetics",
	"intelligence research",
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	return Config{
		Topics:             append([]string(nil), DefaultTopics...),
		TimeWindowDays:     7,
		HumanStudiesOnly:   true,
		RequirePeerReview:  true,
		MinPapersPerTopic:  1,
		MaxPapersPerWeek:   12,
		OpenAccessPriority: true,
		Scoring:            DefaultScoring(),
		Heuristics:         DefaultHeuristics(),
		Sources:            DefaultSources(),
		Store:              StoreConfig{Path: "data/digest.db"},
		Logging:            LoggingConfig{Level: "info", Format: "console", Output: "stderr"},
		Schedule:           ScheduleConfig{Cron: "0 6 * * 1"},
	}
}

// DefaultScoring returns the default rubric weights and journal tiers.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		Weights: Weights{
			JournalTier:   0.30,
			OpenAccess:    0.15,
			TopicMatch:    0.25,
			StudyType:     0.20,
			Recency:       0.10,
			QualitySignal: 0.05,
		},
		JournalTiers: []JournalTier{
			{
				Name:  "tier1",
				Score: 1.0,
				Journals: []string{
					"Nature", "Science", "Cell", "The Lancet", "Lancet",
					"New England Journal of Medicine", "JAMA", "BMJ", "PNAS",
					"Proceedings of the National Academy of Sciences",
					"Nature Human Behaviour",
					"Journal of Personality and Social Psychology",
					"Journal of Experimental Psychology",
					"Evolution and Human Behavior",
				},
			},
			{
				Name:  "tier2",
				Score: 0.65,
				Journals: []string{
					"Nature Medicine", "Nature Metabolism", "Nature Communications",
					"Science Advances", "Psychological Science",
					"Perspectives on Psychological Science", "Psychological Bulletin",
					"Trends in Cognitive Sciences", "Annual Review of Psychology",
					"Annual Review of Nutrition", "JAMA Network Open",
				},
			},
		},
		UnknownJournalScore: 0.35,
	}
}

// DefaultHeuristics returns the built-in keyword tables.
func DefaultHeuristics() HeuristicsConfig {
	return HeuristicsConfig{
		HumanHints: []string{
			"participant", "participants", "patient", "patients", "men and boys",
			"adolescent", "adolescents", "children", "adult", "adults", "pregnant",
			"newborn", "postmenopausal", "trial", "clinical trial",
			"randomized trial", "randomised trial", "cohort", "cross-sectional",
			"longitudinal", "survey", "uk biobank", "genome-wide association",
			"gwas", "mendelian randomization", "mendelian randomisation",
			"student", "students", "case-control",
		},
		NonHumanHints: []string{
			"mouse", "mice", "murine", "rat", "rats", "zebrafish", "drosophila",
			"c. elegans", "canine", "porcine", "ovine", "nonhuman primate",
			"animal model", "rodent", "veterinary", "livestock", "plant",
			"crop", "maize", "wheat",
		},
		InVitroHints: []string{
			"in vitro", "cell line", "organoid", "fibroblast", "neuronal culture",
			"primary culture", "ex vivo", "tissue section",
		},
		NonClinicalHints: []string{
			"battery", "microstrip", "antenna", "x-band", "image classification",
			"federated learning", "signal processing", "electric vehicles",
		},
		ReviewHints: []string{
			"narrative review", "literature review", "scoping review",
			"a review of", "we review", "this review",
		},
		PreprintHints: []string{"biorxiv", "medrxiv", "arxiv", "ssrn", "research square", "preprint"},
		ExcludeHints:  []string{"conference", "congress", "meeting abstract", "abstract only"},
		DesignPatterns: []DesignPattern{
			{Design: DesignSystematicReview, Patterns: []string{`systematic review`, `review and meta`}},
			{Design: DesignMetaAnalysis, Patterns: []string{`meta-analysis`, `meta analysis`, `network meta`}},
			{Design: DesignRCT, Patterns: []string{`randomi[sz]ed`, `double-blind`, `placebo-controlled`, `\brct\b`, `feeding study`}},
			{Design: DesignMendelian, Patterns: []string{`mendelian randomi[sz]ation`}},
			{Design: DesignCohort, Patterns: []string{`prospective cohort`, `\bcohort\b`, `longitudinal`}},
			{Design: DesignCaseControl, Patterns: []string{`case-control`, `case control`}},
			{Design: DesignCrossSectional, Patterns: []string{`cross-sectional`, `cross sectional`}},
			{Design: DesignAnimal, Patterns: []string{`\bmice\b`, `\bmouse\b`, `\brats?\b`, `animal model`, `murine`}},
			{Design: DesignMechanistic, Patterns: []string{`in vitro`, `cell line`, `organoid`, `ex vivo`, `mechanistic`}},
			{Design: DesignTheory, Patterns: []string{`\btheory\b`, `conceptual`, `commentary`, `perspective`}},
		},
		DesignPriority: map[StudyDesign]float64{
			DesignSystematicReview: 4.0,
			DesignMetaAnalysis:     4.0,
			DesignRCT:              3.6,
			DesignMendelian:        3.2,
			DesignCohort:           2.8,
			DesignCaseControl:      2.3,
			DesignCrossSectional:   2.0,
			DesignAnimal:           1.0,
			DesignMechanistic:      1.0,
			DesignTheory:           1.2,
			DesignUnknown:          1.8,
		},
		QualityPatterns: []QualityPattern{
			{Pattern: `preregistered|registered report|pre-registered`, Boost: 6},
			{Pattern: `replicat`, Boost: 5},
			{Pattern: `multi-?site|multi-?cent(?:re|er)`, Boost: 4},
			{Pattern: `within-person|within-subject|dyadic`, Boost: 4},
			{Pattern: `negative control|triangulat|sensitivity anal`, Boost: 3},
			{Pattern: `dose.response`, Boost: 2},
		},
		QualityCap: 10,
		TopicKeywords: map[string][]string{
			"nutrition":                  {"nutrition", "diet", "food", "intake", "feeding", "weight", "obesity", "metabolism"},
			"evolutionary psychology":    {"evolutionary psychology", "sexual selection", "mate choice", "adaptation", "evolved"},
			"relationship science":       {"relationship", "marriage", "partner", "attachment", "intimacy", "couple"},
			"personality science":        {"personality", "trait", "big five", "temperament", "individual differences"},
			"psychology of men and boys": {"men", "boys", "male psychology", "masculinity", "fatherhood"},
			"behaviour genetics":         {"behaviour genetics", "twin", "heritability", "polygenic", "genome-wide", "mendelian randomization"},
			"intelligence research":      {"intelligence", "cognitive ability", "iq", "reasoning", "g factor"},
		},
	}
}

// DefaultSources returns the default adapter settings and feed list.
func DefaultSources() SourcesConfig {
	return SourcesConfig{
		HTTPConfig: HTTPConfig{
			Timeout:    20 * time.Second,
			UserAgent:  "research-digest/0.1",
			MaxRetries: 3,
		},
		AdapterTimeout: 90 * time.Second,
		Crossref:       CrossrefConfig{Enabled: true, Rows: 80, RatePerSecond: 5, Backfill: true, BackfillLimit: 40},
		PubMed:         PubMedConfig{Enabled: true, RetMax: 60, Tool: "research-digest", RatePerSecond: 3},
		RSS: RSSConfig{
			Enabled:       true,
			RatePerSecond: 5,
			Feeds: []FeedConfig{
				{Name: "Nature", URL: "https://www.nature.com/nature.rss", Journal: "Nature"},
				{Name: "Nature Communications", URL: "https://www.nature.com/ncomms.rss", Journal: "Nature Communications"},
				{Name: "PNAS", URL: "https://www.pnas.org/rss/current.xml", Journal: "PNAS"},
				{Name: "BMJ", URL: "https://www.bmj.com/rss/current.xml", Journal: "BMJ"},
				{Name: "JAMA Network Open", URL: "https://jamanetwork.com/rss/site_4/0.xml", Journal: "JAMA Network Open"},
				{Name: "Psychological Science", URL: "https://journals.sagepub.com/action/showFeed?type=etoc&feed=rss&jc=pssa", Journal: "Psychological Science"},
			},
		},
		Unpaywall: UnpaywallConfig{EnrichLimit: 60, RatePerSecond: 8},
	}
}
