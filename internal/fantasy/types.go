package fantasy

// FreeAgentTeam is the affiliation sentinel for players not on any roster.
const FreeAgentTeam = "Free Agent"

// Observation is one game (row) for a player: actual points scored vs the
// projection for the same period. OrderKey preserves chronological order
// (week number when available, ingestion sequence otherwise).
type Observation struct {
	Actual   float64 `json:"actual"`
	Expected float64 `json:"expected"`
	OrderKey int     `json:"order_key"`
}

// PlayerMetrics is the aggregated result for one player across games.
type PlayerMetrics struct {
	Name          string   `json:"name"`
	Team          string   `json:"team"`
	Position      string   `json:"position,omitempty"`
	Games         int      `json:"games"`
	TotalActual   float64  `json:"total_actual"`
	TotalExpected float64  `json:"total_expected"`
	AvgActual     float64  `json:"avg_actual"`
	RecentAvg     float64  `json:"recent_avg"`
	Stdev         float64  `json:"stdev"`
	Ratio         float64  `json:"ratio"` // 0.0 when TotalExpected <= 0
	Delta         float64  `json:"delta"`
	Categories    []string `json:"categories,omitempty"`
}

// IsFreeAgent reports whether the player has no roster affiliation.
func (m *PlayerMetrics) IsFreeAgent() bool {
	return isFreeAgentTeam(m.Team)
}

// Category returns the semicolon-joined category string used in reports,
// e.g. "Waiver" or "Buy-Low;Sell-High".
func (m *PlayerMetrics) Category() string {
	out := ""
	for _, c := range m.Categories {
		if out != "" {
			out += ";"
		}
		out += c
	}
	return out
}

// Projection is one projected stat value for a player and category.
type Projection struct {
	Player       string  `json:"player_name"`
	Team         string  `json:"team,omitempty"`
	Pos          string  `json:"pos,omitempty"`
	StatCategory string  `json:"stat_category"`
	Value        float64 `json:"projected_value"`
}

// Line is a market-offered over/under threshold for a player stat.
type Line struct {
	Player       string  `json:"player_name"`
	Team         string  `json:"team,omitempty"`
	Pos          string  `json:"pos,omitempty"`
	StatCategory string  `json:"stat_category"`
	Value        float64 `json:"line_value"`
	Source       string  `json:"source"`
}

// Recommendation sides.
const (
	SideOver  = "OVER"
	SideUnder = "UNDER"
)

// Recommendation pairs a market line with a projection that cleared the
// configured edge thresholds.
type Recommendation struct {
	Player       string  `json:"player_name"`
	Team         string  `json:"team,omitempty"`
	Pos          string  `json:"pos,omitempty"`
	StatCategory string  `json:"stat_category"`
	Line         float64 `json:"line_value"`
	Projection   float64 `json:"projection"`
	Diff         float64 `json:"diff"`
	DiffPct      float64 `json:"diff_pct"` // 0.0 when Line == 0
	Side         string  `json:"side"`
	Source       string  `json:"source,omitempty"`
}

// MatchStats counts how a join between two independently-sourced tables
// went. Unmatched rows are dropped, but never invisibly.
type MatchStats struct {
	Total   int `json:"total"`
	Matched int `json:"matched"`
	Dropped int `json:"dropped"`
}

// Rate returns the matched fraction, 0.0 when nothing was considered.
func (s MatchStats) Rate() float64 {
	if s.Total == 0 {
		return 0.0
	}
	return float64(s.Matched) / float64(s.Total)
}
