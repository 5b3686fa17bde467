package csvio

import (
	"strconv"
	"strings"
)

// Candidate header names for the columns the loaders care about. Exports
// from different tools disagree on naming; detection is case-insensitive
// and first-candidate-wins.
var (
	playerCols     = []string{"player_name", "player", "name"}
	actualCols     = []string{"points", "actual", "total_points"}
	expectedCols   = []string{"projected_points", "expected_points", "expected", "projection"}
	weekCols       = []string{"week", "date"}
	byeCols        = []string{"bye_week", "byeWeek"}
	teamCols       = []string{"team_name", "team", "fantasy_team"}
	positionCols   = []string{"position"}
	slotCols       = []string{"lineup_slot", "slot_position"}
	injuryCols     = []string{"injury_status", "injuryStatus"}
	irDurationCols = []string{"ir_duration", "IR_duration"}
)

// findColumn returns the index of the first header matching any candidate,
// or -1 when none is present.
func findColumn(header []string, candidates []string) int {
	lowered := make(map[string]int, len(header))
	for i, h := range header {
		lowered[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range candidates {
		if i, ok := lowered[strings.ToLower(c)]; ok {
			return i
		}
	}
	return -1
}

// field returns the trimmed cell at idx, "" when the column is absent or
// the row is short.
func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// toFloat converts a cell to float64, substituting def for anything that
// does not parse. Malformed numbers are recovered, never propagated.
func toFloat(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

func toInt(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}
