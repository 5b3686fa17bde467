package fantasy

import (
	"regexp"
	"strings"
)

var (
	punctRe = regexp.MustCompile(`[.'` + "`" + `-]`)
	spaceRe = regexp.MustCompile(`\s+`)
	// Trailing injury-reserve annotations: "(IR)", "(IR-3w)", "(IR - until Wk 10)".
	irSuffixRe = regexp.MustCompile(`(?i)\s*\(IR\s*(?:-\s*[^)]*)?\)\s*$`)
)

var nameSuffixes = []string{" jr", " sr", " ii", " iii", " iv"}

// StripIRSuffix removes a trailing "(IR ...)" annotation from a display
// name, e.g. "Nick Chubb (IR - 3w)" -> "Nick Chubb".
func StripIRSuffix(name string) string {
	return strings.TrimSpace(irSuffixRe.ReplaceAllString(name, ""))
}

// NormalizeName lowercases a player name, strips punctuation, collapses
// whitespace, and drops generational suffixes and IR annotations, producing
// the canonical key used to join independently-sourced tables. Idempotent.
func NormalizeName(name string) string {
	s := strings.ToLower(StripIRSuffix(name))
	s = punctRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
	for _, suffix := range nameSuffixes {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
		}
	}
	return s
}

// KeyOptions control which fields participate in the composite match key.
// A required field that is absent on either side is a miss, not a wildcard.
type KeyOptions struct {
	TeamRequired     bool
	PositionRequired bool
}

// MatchKey is the composite lookup key for cross-table joins.
type MatchKey struct {
	Name string
	Team string
	Pos  string
}

func projectionKey(p Projection, opts KeyOptions) MatchKey {
	k := MatchKey{Name: NormalizeName(p.Player)}
	if opts.TeamRequired && p.Team != "" {
		k.Team = strings.ToUpper(p.Team)
	}
	if opts.PositionRequired && p.Pos != "" {
		k.Pos = strings.ToUpper(p.Pos)
	}
	return k
}

func lineKey(l Line, opts KeyOptions) MatchKey {
	k := MatchKey{Name: NormalizeName(l.Player)}
	if opts.TeamRequired && l.Team != "" {
		k.Team = strings.ToUpper(l.Team)
	}
	if opts.PositionRequired && l.Pos != "" {
		k.Pos = strings.ToUpper(l.Pos)
	}
	return k
}

// ProjectionIndex is an exact-key lookup over projections. There is no
// fuzzy or edit-distance fallback; later entries with the same key win.
type ProjectionIndex struct {
	opts KeyOptions
	byKey map[MatchKey]Projection
}

// IndexProjections builds a ProjectionIndex with the given key options.
func IndexProjections(projections []Projection, opts KeyOptions) *ProjectionIndex {
	idx := &ProjectionIndex{
		opts:  opts,
		byKey: make(map[MatchKey]Projection, len(projections)),
	}
	for _, p := range projections {
		idx.byKey[projectionKey(p, opts)] = p
	}
	return idx
}

// Lookup finds the projection matching a line, if any.
func (idx *ProjectionIndex) Lookup(line Line) (Projection, bool) {
	p, ok := idx.byKey[lineKey(line, idx.opts)]
	return p, ok
}

// Len returns the number of distinct keys indexed.
func (idx *ProjectionIndex) Len() int {
	return len(idx.byKey)
}

// NormalizeCategory canonicalizes a stat category for comparison.
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

func isFreeAgentTeam(team string) bool {
	t := strings.TrimSpace(team)
	return t == "" || strings.EqualFold(t, FreeAgentTeam)
}
