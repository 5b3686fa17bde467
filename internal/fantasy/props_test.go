package fantasy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldRecommendRules(t *testing.T) {
	tests := []struct {
		name       string
		projected  float64
		line       float64
		minAbs     float64
		minPct     float64
		rule       string
		want       bool
	}{
		{"abs_or_pct both pass", 52.0, 45.0, 5, 0.10, RuleAbsOrPct, true},
		{"abs_or_pct abs only passes", 52.0, 45.0, 5, 0.50, RuleAbsOrPct, true},
		{"abs_or_pct neither passes", 46.0, 45.0, 5, 0.10, RuleAbsOrPct, false},
		{"abs_only passes", 52.0, 45.0, 5, 0.99, RuleAbsOnly, true},
		{"abs_only fails", 48.0, 45.0, 5, 0.0, RuleAbsOnly, false},
		{"pct_only passes", 52.0, 45.0, 99, 0.10, RulePctOnly, true},
		{"pct_only zero line fails", 3.0, 0.0, 0, 0.10, RulePctOnly, false},
		{"under side counts too", 38.0, 45.0, 5, 0.10, RuleAbsOrPct, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldRecommend(tt.projected, tt.line, tt.minAbs, tt.minPct, tt.rule)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecommendPropsEmitsOver(t *testing.T) {
	lines := []Line{
		{Player: "Josh Allen", Team: "BUF", Pos: "QB", StatCategory: "Passing_Yards", Value: 45.0, Source: "underdog"},
	}
	projections := []Projection{
		{Player: "Josh Allen", Team: "BUF", Pos: "QB", StatCategory: "passing_yards", Value: 52.0},
	}

	recs, stats := RecommendProps(lines, projections, PropOptions{
		StatCategory: "passing_yards",
		MinDiffAbs:   5,
		MinDiffPct:   0.1,
		Rule:         RuleAbsOrPct,
	})

	require.Len(t, recs, 1)
	r := recs[0]
	assert.Equal(t, SideOver, r.Side)
	assert.Equal(t, 7.0, r.Diff)
	assert.InDelta(t, 0.1556, r.DiffPct, 0.0001)
	assert.Equal(t, "underdog", r.Source)
	assert.Equal(t, MatchStats{Total: 1, Matched: 1}, stats)
}

func TestRecommendPropsZeroLineSentinel(t *testing.T) {
	lines := []Line{
		{Player: "Edge Case", StatCategory: "receiving_yards", Value: 0.0},
	}
	projections := []Projection{
		{Player: "Edge Case", StatCategory: "receiving_yards", Value: 3.0},
	}

	recs, stats := RecommendProps(lines, projections, PropOptions{
		StatCategory: "receiving_yards",
		MinDiffPct:   0.1,
		Rule:         RulePctOnly,
	})

	assert.Empty(t, recs, "pct rule fails on zero line even though diff is 3.0")
	assert.Equal(t, 1, stats.Matched)
}

func TestRecommendPropsDropsUnmatchedAndCounts(t *testing.T) {
	lines := []Line{
		{Player: "Known Player", StatCategory: "rushing_yards", Value: 60},
		{Player: "Mystery Man", StatCategory: "rushing_yards", Value: 70},
		{Player: "Wrong Sport", StatCategory: "strikeouts", Value: 7},
	}
	projections := []Projection{
		{Player: "Known Player", StatCategory: "rushing_yards", Value: 80},
	}

	recs, stats := RecommendProps(lines, projections, PropOptions{
		StatCategory: "rushing_yards",
		MinDiffAbs:   10,
		Rule:         RuleAbsOnly,
	})

	require.Len(t, recs, 1)
	assert.Equal(t, "Known Player", recs[0].Player)
	// The strikeouts line never enters the join: category filter comes first.
	assert.Equal(t, MatchStats{Total: 2, Matched: 1, Dropped: 1}, stats)
}

func TestRecommendPropsPreservesInsertionOrder(t *testing.T) {
	lines := []Line{
		{Player: "First", StatCategory: "rushing_yards", Value: 50},
		{Player: "Second", StatCategory: "rushing_yards", Value: 40},
		{Player: "Third", StatCategory: "rushing_yards", Value: 30},
	}
	projections := []Projection{
		{Player: "First", StatCategory: "rushing_yards", Value: 70},
		{Player: "Second", StatCategory: "rushing_yards", Value: 60},
		{Player: "Third", StatCategory: "rushing_yards", Value: 50},
	}

	recs, _ := RecommendProps(lines, projections, PropOptions{
		StatCategory: "rushing_yards",
		MinDiffAbs:   5,
		Rule:         RuleAbsOnly,
	})

	require.Len(t, recs, 3)
	assert.Equal(t, "First", recs[0].Player)
	assert.Equal(t, "Second", recs[1].Player)
	assert.Equal(t, "Third", recs[2].Player)
}

func TestRecommendPropsFillsTeamAndPosFromProjection(t *testing.T) {
	lines := []Line{
		{Player: "Saquon Barkley", StatCategory: "rushing_yards", Value: 80},
	}
	projections := []Projection{
		{Player: "Saquon Barkley", Team: "PHI", Pos: "RB", StatCategory: "rushing_yards", Value: 95},
	}

	recs, _ := RecommendProps(lines, projections, PropOptions{
		StatCategory: "rushing_yards",
		MinDiffAbs:   10,
		Rule:         RuleAbsOnly,
	})

	require.Len(t, recs, 1)
	assert.Equal(t, "PHI", recs[0].Team)
	assert.Equal(t, "RB", recs[0].Pos)
}
