package fantasy

import "math"

// Threshold rules for prop recommendations.
const (
	RuleAbsOnly  = "abs_only"
	RulePctOnly  = "pct_only"
	RuleAbsOrPct = "abs_or_pct"
)

// ValidRule reports whether rule is one of the supported threshold rules.
func ValidRule(rule string) bool {
	switch rule {
	case RuleAbsOnly, RulePctOnly, RuleAbsOrPct:
		return true
	}
	return false
}

// PropOptions configure a line-vs-projection comparison run.
type PropOptions struct {
	StatCategory string
	Matching     KeyOptions
	MinDiffAbs   float64
	MinDiffPct   float64
	Rule         string // defaults to abs_or_pct
}

// ShouldRecommend applies the threshold rule to one projected/line pair.
// The percent test is defined as failing when the line is zero.
func ShouldRecommend(projected, line float64, minDiffAbs, minDiffPct float64, rule string) bool {
	diff := projected - line
	absOK := math.Abs(diff) >= minDiffAbs
	pct := 0.0
	if line != 0 {
		pct = math.Abs(diff) / math.Abs(line)
	}
	pctOK := pct >= minDiffPct

	switch rule {
	case RuleAbsOnly:
		return absOK
	case RulePctOnly:
		return pctOK
	default:
		return absOK || pctOK
	}
}

// RecommendProps matches market lines against projections for one stat
// category and emits a recommendation for every pair that clears the
// thresholds. Output preserves line insertion order; each line yields at
// most one recommendation. Lines with no matching projection are dropped
// and counted in the returned MatchStats.
func RecommendProps(lines []Line, projections []Projection, opts PropOptions) ([]Recommendation, MatchStats) {
	category := NormalizeCategory(opts.StatCategory)
	rule := opts.Rule
	if rule == "" {
		rule = RuleAbsOrPct
	}

	var filtered []Line
	for _, ln := range lines {
		if NormalizeCategory(ln.StatCategory) == category {
			filtered = append(filtered, ln)
		}
	}

	idx := IndexProjections(projections, opts.Matching)

	var recs []Recommendation
	stats := MatchStats{Total: len(filtered)}
	for _, ln := range filtered {
		p, ok := idx.Lookup(ln)
		if !ok || NormalizeCategory(p.StatCategory) != category {
			stats.Dropped++
			continue
		}
		stats.Matched++

		if !ShouldRecommend(p.Value, ln.Value, opts.MinDiffAbs, opts.MinDiffPct, rule) {
			continue
		}

		diff := p.Value - ln.Value
		diffPct := 0.0
		if ln.Value != 0 {
			diffPct = diff / ln.Value
		}
		side := SideUnder
		if diff > 0 {
			side = SideOver
		}

		team := ln.Team
		if team == "" {
			team = p.Team
		}
		pos := ln.Pos
		if pos == "" {
			pos = p.Pos
		}

		recs = append(recs, Recommendation{
			Player:       ln.Player,
			Team:         team,
			Pos:          pos,
			StatCategory: category,
			Line:         ln.Value,
			Projection:   p.Value,
			Diff:         diff,
			DiffPct:      diffPct,
			Side:         side,
			Source:       ln.Source,
		})
	}

	return recs, stats
}
