package fantasy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Odell Beckham Jr.", "odell beckham"},
		{"D'Andre Swift", "dandre swift"},
		{"A.J. Brown", "aj brown"},
		{"Patrick Mahomes II", "patrick mahomes"},
		{"  Justin   Jefferson ", "justin jefferson"},
		{"Nick Chubb (IR - 3w)", "nick chubb"},
		{"Mark Andrews (IR)", "mark andrews"},
		{"Ja'Marr Chase (IR - until Wk 10)", "jamarr chase"},
		{"already clean", "already clean"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeNameIdempotent(t *testing.T) {
	names := []string{"Odell Beckham Jr.", "D'Andre Swift", "Nick Chubb (IR - 3w)", "plain name"}
	for _, n := range names {
		once := NormalizeName(n)
		assert.Equal(t, once, NormalizeName(once))
	}
}

func TestProjectionIndexExactLookup(t *testing.T) {
	projections := []Projection{
		{Player: "Saquon Barkley", Team: "PHI", Pos: "RB", StatCategory: "rushing_yards", Value: 88.5},
		{Player: "Bijan Robinson", Team: "ATL", Pos: "RB", StatCategory: "rushing_yards", Value: 72.0},
	}
	idx := IndexProjections(projections, KeyOptions{})

	p, ok := idx.Lookup(Line{Player: "saquon barkley", StatCategory: "rushing_yards", Value: 80.5})
	assert.True(t, ok)
	assert.Equal(t, 88.5, p.Value)

	_, ok = idx.Lookup(Line{Player: "Unknown Player", StatCategory: "rushing_yards"})
	assert.False(t, ok)
}

func TestProjectionIndexRequiredFieldAbsenceIsMiss(t *testing.T) {
	projections := []Projection{
		{Player: "Saquon Barkley", Team: "PHI", Pos: "RB", StatCategory: "rushing_yards", Value: 88.5},
	}
	idx := IndexProjections(projections, KeyOptions{TeamRequired: true})

	// Line carries no team: the projection was keyed with PHI, so this misses.
	_, ok := idx.Lookup(Line{Player: "Saquon Barkley", StatCategory: "rushing_yards"})
	assert.False(t, ok, "absent required field must miss, not wildcard")

	p, ok := idx.Lookup(Line{Player: "Saquon Barkley", Team: "phi", StatCategory: "rushing_yards"})
	assert.True(t, ok, "team comparison is case-insensitive")
	assert.Equal(t, "PHI", p.Team)
}

func TestProjectionIndexBothSidesMissingRequiredField(t *testing.T) {
	// Neither side has a team; both key the field empty and match.
	projections := []Projection{
		{Player: "Saquon Barkley", Pos: "RB", StatCategory: "rushing_yards", Value: 88.5},
	}
	idx := IndexProjections(projections, KeyOptions{TeamRequired: true})

	_, ok := idx.Lookup(Line{Player: "Saquon Barkley", StatCategory: "rushing_yards"})
	assert.True(t, ok)
}

func TestMatchStatsRate(t *testing.T) {
	assert.Equal(t, 0.0, MatchStats{}.Rate())
	assert.InDelta(t, 0.75, MatchStats{Total: 4, Matched: 3, Dropped: 1}.Rate(), 1e-9)
}
