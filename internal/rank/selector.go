// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"slices"
	"strings"
)

// Selector picks the weekly set: up to MinPerTopic per topic first, taken
// round-robin in topic order, then the best remaining candidates overall
// until MaxTotal.
type Selector struct {
	Topics      []string
	MinPerTopic int
	MaxTotal    int
}

// Select returns the chosen candidates ordered by Compare. The result is
// never nil; with no candidates or a zero cap it is empty.
func (s Selector) Select(cands []Scored) []Scored {
	selected := make([]Scored, 0, min(len(cands), max(s.MaxTotal, 0)))
	if len(cands) == 0 || s.MaxTotal <= 0 {
		return selected
	}

	ranked := slices.Clone(cands)
	slices.SortStableFunc(ranked, Compare)

	taken := make(map[string]bool, len(ranked))
	take := func(c Scored) bool {
		k := c.Paper.Key().String()
		if taken[k] || len(selected) >= s.MaxTotal {
			return false
		}
		taken[k] = true
		selected = append(selected, c)
		return true
	}

	byTopic := make([][]Scored, len(s.Topics))
	index := make(map[string]int, len(s.Topics))
	for i, t := range s.Topics {
		index[strings.ToLower(strings.TrimSpace(t))] = i
	}
	for _, c := range ranked {
		if i, ok := index[strings.ToLower(strings.TrimSpace(c.Paper.Topic))]; ok {
			byTopic[i] = append(byTopic[i], c)
		}
	}

	next := make([]int, len(s.Topics))
	for round := 0; round < s.MinPerTopic && len(selected) < s.MaxTotal; round++ {
		before := len(selected)
		for i := range s.Topics {
			for next[i] < len(byTopic[i]) {
				c := byTopic[i][next[i]]
				next[i]++
				if take(c) {
					break
				}
			}
			if len(selected) >= s.MaxTotal {
				break
			}
		}
		// Every topic is exhausted.
		if len(selected) == before {
			break
		}
	}

	for _, c := range ranked {
		if len(selected) >= s.MaxTotal {
			break
		}
		take(c)
	}

	slices.SortStableFunc(selected, Compare)
	return selected
}
