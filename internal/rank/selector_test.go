// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-digest/pkg/types"
)

func cand(topic string, n int, score float64) Scored {
	return Scored{
		Paper: types.Paper{DOI: fmt.Sprintf("10.1/%s-%d", topic, n), Topic: topic, PublishedDate: scoreNow},
		Score: score,
	}
}

func dois(sel []Scored) []string {
	out := make([]string, 0, len(sel))
	for _, s := range sel {
		out = append(out, s.Paper.DOI)
	}
	return out
}

func TestSelect(t *testing.T) {
	cands := []Scored{
		cand("aging", 1, 0.9),
		cand("aging", 2, 0.8),
		cand("aging", 3, 0.7),
		cand("sleep", 1, 0.3),
		cand("sleep", 2, 0.2),
		cand("diet", 1, 0.1),
	}

	tests := []struct {
		name string
		sel  Selector
		want []string
	}{
		{
			name: "minimums before global fill",
			sel:  Selector{Topics: []string{"aging", "sleep", "diet"}, MinPerTopic: 1, MaxTotal: 4},
			want: []string{"10.1/aging-1", "10.1/aging-2", "10.1/sleep-1", "10.1/diet-1"},
		},
		{
			name: "cap below topic count honors topic order",
			sel:  Selector{Topics: []string{"sleep", "diet", "aging"}, MinPerTopic: 1, MaxTotal: 2},
			want: []string{"10.1/sleep-1", "10.1/diet-1"},
		},
		{
			name: "round robin for two per topic",
			sel:  Selector{Topics: []string{"aging", "sleep"}, MinPerTopic: 2, MaxTotal: 3},
			want: []string{"10.1/aging-1", "10.1/aging-2", "10.1/sleep-1"},
		},
		{
			name: "no minimums is pure score order",
			sel:  Selector{Topics: []string{"aging", "sleep", "diet"}, MinPerTopic: 0, MaxTotal: 3},
			want: []string{"10.1/aging-1", "10.1/aging-2", "10.1/aging-3"},
		},
		{
			name: "fewer candidates than cap selects all",
			sel:  Selector{Topics: []string{"aging", "sleep", "diet"}, MinPerTopic: 1, MaxTotal: 50},
			want: []string{"10.1/aging-1", "10.1/aging-2", "10.1/aging-3", "10.1/sleep-1", "10.1/sleep-2", "10.1/diet-1"},
		},
		{
			name: "zero cap",
			sel:  Selector{Topics: []string{"aging"}, MinPerTopic: 1, MaxTotal: 0},
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.sel.Select(cands)
			assert.Equal(t, tt.want, dois(got))
			assert.LessOrEqual(t, len(got), max(tt.sel.MaxTotal, 0))
		})
	}
}

func TestSelectEmpty(t *testing.T) {
	got := Selector{Topics: []string{"aging"}, MinPerTopic: 1, MaxTotal: 5}.Select(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSelectCoverage(t *testing.T) {
	var cands []Scored
	for i := range 10 {
		cands = append(cands, cand("aging", i, 0.9-float64(i)*0.01))
	}
	cands = append(cands, cand("sleep", 0, 0.1), cand("sleep", 1, 0.05))

	got := Selector{Topics: []string{"aging", "sleep"}, MinPerTopic: 2, MaxTotal: 5}.Select(cands)
	require.Len(t, got, 5)

	perTopic := map[string]int{}
	for _, s := range got {
		perTopic[s.Paper.Topic]++
	}
	assert.Equal(t, 2, perTopic["sleep"])
	assert.Equal(t, 3, perTopic["aging"])
}

func TestSelectHugeMinimumStopsWhenTopicsRunDry(t *testing.T) {
	cands := []Scored{cand("aging", 1, 0.9), cand("sleep", 1, 0.3), cand("aging", 2, 0.2)}
	sel := Selector{Topics: []string{"aging", "sleep", "mood"}, MinPerTopic: 1 << 30, MaxTotal: 1 << 30}

	done := make(chan []Scored, 1)
	go func() { done <- sel.Select(cands) }()
	select {
	case got := <-done:
		assert.Equal(t, []string{"10.1/aging-1", "10.1/sleep-1", "10.1/aging-2"}, dois(got))
	case <-time.After(5 * time.Second):
		t.Fatal("selection did not finish")
	}
}

func TestSelectDoesNotMutateInput(t *testing.T) {
	cands := []Scored{cand("a", 1, 0.1), cand("a", 2, 0.9)}
	Selector{Topics: []string{"a"}, MinPerTopic: 1, MaxTotal: 2}.Select(cands)
	assert.Equal(t, "10.1/a-1", cands[0].Paper.DOI)
}
