// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"math"
	"strings"
	"time"

	"github.com/pdiddy/research-digest/internal/normalize"
	"github.com/pdiddy/research-digest/internal/source"
	"github.com/pdiddy/research-digest/pkg/types"
)

// Open access sub-score levels.
const (
	oaPreferred = 1.0
	oaPlain     = 0.55
	oaUnknown   = 0.22
	oaPaywalled = 0.0
)

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// JournalTierScore looks journal up in the tier table. An exact name match
// wins; otherwise the longest configured name contained in the journal
// decides, so "Nature Medicine" is not scored as "Nature". Journals with no
// match, including an empty journal, get unknown.
func JournalTierScore(journal string, tiers []types.JournalTier, unknown float64) float64 {
	j := normalize.Title(journal)
	if j == "" {
		return clamp01(unknown)
	}
	best, bestLen := -1.0, 0
	for _, tier := range tiers {
		for _, name := range tier.Journals {
			n := normalize.Title(name)
			if n == "" {
				continue
			}
			if n == j {
				return clamp01(tier.Score)
			}
			if len(n) > bestLen && containsWords(j, n) {
				best, bestLen = tier.Score, len(n)
			}
		}
	}
	if best < 0 {
		return clamp01(unknown)
	}
	return clamp01(best)
}

// containsWords reports whether phrase occurs in s on word boundaries. Both
// are normalized titles.
func containsWords(s, phrase string) bool {
	return strings.Contains(" "+s+" ", " "+phrase+" ")
}

// OpenAccessScore rates access status. Unknown status scores above a
// paywall when open access is preferred, so missing data only lowers rank.
func OpenAccessScore(isOA *bool, priority bool) float64 {
	switch {
	case isOA == nil:
		return oaUnknown
	case *isOA && priority:
		return oaPreferred
	case *isOA:
		return oaPlain
	case priority:
		return oaPaywalled
	default:
		return oaUnknown
	}
}

// TopicMatchScore passes the normalized strength through, clamped.
func TopicMatchScore(strength float64) float64 {
	return clamp01(strength)
}

// StudyPriorityScore maps the design's ordinal priority to [0,1] by
// dividing by the table maximum. Designs missing from the table use the
// unknown entry.
func StudyPriorityScore(design types.StudyDesign, table map[types.StudyDesign]float64) float64 {
	maxPriority := 0.0
	for _, v := range table {
		maxPriority = math.Max(maxPriority, v)
	}
	if maxPriority <= 0 {
		return 0
	}
	v, ok := table[design]
	if !ok {
		v = table[types.DesignUnknown]
	}
	return clamp01(v / maxPriority)
}

// RecencyScore is 1 for a paper published today and falls linearly to 0 at
// the start of the window. It never goes negative.
func RecencyScore(published, now time.Time, windowDays int) float64 {
	age := source.Day(now).Sub(source.Day(published)).Hours() / 24
	if age <= 0 {
		return 1
	}
	if windowDays <= 0 {
		return 0
	}
	return clamp01(1 - age/float64(windowDays))
}

// QualitySignalScore passes the normalized quality score through, clamped.
func QualitySignalScore(score float64) float64 {
	return clamp01(score)
}
