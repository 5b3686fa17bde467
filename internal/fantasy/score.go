package fantasy

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ScorePolicy turns a tagged PlayerMetrics into an integer pickup score.
// The category weights and threshold primitives are shared by every caller
// so the CSV report and the API overlay cannot drift apart.
type ScorePolicy struct {
	WaiverBonus     int
	BuyLowBonus     int
	SellHighPenalty int

	// Free-agent recent-form thresholds (points per game).
	HotRecent  float64
	ColdRecent float64

	// Performance-ratio thresholds, applied only when expectation data exists.
	UndervaluedRatio float64
	OvervaluedRatio  float64

	// IRFlatPenalty applies when reserve status is known but unparseable.
	IRFlatPenalty int

	// RecommendAt is the minimum score considered actionable.
	RecommendAt int
}

// ReportPolicy scores rows for the CSV report (GREEN/RED column).
func ReportPolicy() ScorePolicy {
	return ScorePolicy{
		WaiverBonus:      3,
		BuyLowBonus:      2,
		SellHighPenalty:  3,
		HotRecent:        8,
		ColdRecent:       3,
		UndervaluedRatio: 0.85,
		OvervaluedRatio:  1.2,
		IRFlatPenalty:    2,
		RecommendAt:      2,
	}
}

// OverlayPolicy scores rows for the interactive API surface. Same weights
// today; a separate name so the two call sites stay configurable apart.
func OverlayPolicy() ScorePolicy {
	return ReportPolicy()
}

// IRSeasonWeeks is the stand-in duration for "out for season".
const IRSeasonWeeks = 99

var (
	irWeeksRe   = regexp.MustCompile(`(\d+)\s*w`)
	irUntilWkRe = regexp.MustCompile(`until\s*wk\s*(\d{1,2})`)
)

// ParseIRWeeks extracts the estimated weeks remaining from an IR status
// string such as "IR - 3w", "IR - season" or "IR - until Wk 10". The
// second return is false when the duration cannot be determined ("IR" with
// no detail, or an unknown format). currentWeek anchors "until Wk N";
// pass 0 when unknown.
func ParseIRWeeks(status string, currentWeek int) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(status))
	if s == "" || s == "ir" {
		return 0, false
	}
	if strings.Contains(s, "season") {
		return IRSeasonWeeks, true
	}
	if m := irWeeksRe.FindStringSubmatch(s); m != nil {
		w, err := strconv.Atoi(m[1])
		if err == nil {
			return w, true
		}
	}
	if m := irUntilWkRe.FindStringSubmatch(s); m != nil && currentWeek > 0 {
		wk, err := strconv.Atoi(m[1])
		if err == nil {
			if wk < currentWeek {
				return 0, true
			}
			return wk - currentWeek, true
		}
	}
	return 0, false
}

// Score computes the pickup score and the contributing reasons for one
// player. irStatus is the raw reserve annotation ("" when healthy) and
// currentWeek anchors relative IR durations.
func (p ScorePolicy) Score(m PlayerMetrics, irStatus string, currentWeek int) (int, []string) {
	score := 0
	var reasons []string

	cat := strings.ToLower(m.Category())
	if strings.Contains(cat, "waiver") {
		score += p.WaiverBonus
		reasons = append(reasons, fmt.Sprintf("Waiver (+%d)", p.WaiverBonus))
	}
	if strings.Contains(cat, "buy-low") {
		score += p.BuyLowBonus
		reasons = append(reasons, fmt.Sprintf("Buy-Low (+%d)", p.BuyLowBonus))
	}
	if strings.Contains(cat, "sell-high") {
		score -= p.SellHighPenalty
		reasons = append(reasons, fmt.Sprintf("Sell-High (-%d)", p.SellHighPenalty))
	}

	if m.IsFreeAgent() {
		if m.RecentAvg >= p.HotRecent {
			score++
			reasons = append(reasons, fmt.Sprintf("FA %.1f ppg (+1)", m.RecentAvg))
		} else if m.RecentAvg <= p.ColdRecent {
			score--
			reasons = append(reasons, fmt.Sprintf("FA %.1f ppg (-1)", m.RecentAvg))
		}
	}

	if m.TotalExpected > 0 {
		if m.Ratio < p.UndervaluedRatio {
			score++
			reasons = append(reasons, fmt.Sprintf("Undervalued %.2f (+1)", m.Ratio))
		}
		if m.Ratio > p.OvervaluedRatio {
			score--
			reasons = append(reasons, fmt.Sprintf("Overvalued %.2f (-1)", m.Ratio))
		}
	}

	if weeks, ok := ParseIRWeeks(irStatus, currentWeek); ok {
		switch {
		case weeks >= 4:
			score -= 4
			reasons = append(reasons, fmt.Sprintf("IR ~%dw (-4)", weeks))
		case weeks >= 2:
			score -= 2
			reasons = append(reasons, fmt.Sprintf("IR ~%dw (-2)", weeks))
		case weeks >= 1:
			score--
			reasons = append(reasons, fmt.Sprintf("IR ~%dw (-1)", weeks))
		}
	} else if strings.TrimSpace(irStatus) != "" {
		score -= p.IRFlatPenalty
		reasons = append(reasons, fmt.Sprintf("IR (unspecified) (-%d)", p.IRFlatPenalty))
	}

	return score, reasons
}

// Recommended reports whether the score clears the actionable threshold.
func (p ScorePolicy) Recommended(score int) bool {
	return score >= p.RecommendAt
}
