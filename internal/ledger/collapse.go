// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import "github.com/pdiddy/research-digest/pkg/types"

// Collapse merges papers of one run that share an identity key. A paper
// without a DOI also merges into a paper with the same normalized title.
// The surviving instance has the higher topic match strength, then the
// higher-priority source, then appeared first. When a DOI-less instance
// survives a merge with a DOI-bearing one it takes over that DOI. Output
// order is the order in which each identity first appeared. The second
// result is the number of papers merged away.
func Collapse(papers []types.Paper) ([]types.Paper, int) {
	out := make([]types.Paper, 0, len(papers))
	byKey := make(map[string]int, len(papers))
	byTitle := make(map[string]int, len(papers))

	register := func(i int) {
		byKey[out[i].Key().String()] = i
		if out[i].NormalizedTitle != "" {
			if _, ok := byTitle[out[i].NormalizedTitle]; !ok {
				byTitle[out[i].NormalizedTitle] = i
			}
		}
	}

	merged := 0
	for _, p := range papers {
		i, ok := byKey[p.Key().String()]
		if !ok && p.NormalizedTitle != "" {
			if j, found := byTitle[p.NormalizedTitle]; found && (p.DOI == "" || out[j].DOI == "") {
				i, ok = j, true
			}
		}
		if !ok {
			out = append(out, p)
			register(len(out) - 1)
			continue
		}

		merged++
		cur := out[i]
		if Better(p, cur) {
			if p.DOI == "" {
				p.DOI = cur.DOI
			}
			out[i] = p
		} else if cur.DOI == "" && p.DOI != "" {
			out[i].DOI = p.DOI
		}
		register(i)
	}
	return out, merged
}

// Better reports whether a should replace b as the kept instance of one
// identity.
func Better(a, b types.Paper) bool {
	if a.TopicMatchStrength != b.TopicMatchStrength {
		return a.TopicMatchStrength > b.TopicMatchStrength
	}
	return a.Source.Priority() < b.Source.Priority()
}
