package fantasy

import (
	"math"
	"sort"
)

// recentWindow is how many of the latest games feed RecentAvg.
const recentWindow = 3

// Aggregate computes per-player summary metrics from a game log. It is a
// pure function: the input slice is not modified, and an empty log yields
// all-zero metrics with Ratio 0.0 rather than an error or NaN.
func Aggregate(name, team string, obs []Observation) PlayerMetrics {
	m := PlayerMetrics{
		Name: name,
		Team: team,
	}
	if m.Team == "" {
		m.Team = FreeAgentTeam
	}
	if len(obs) == 0 {
		return m
	}

	// Sort chronologically; stable so equal order keys keep ingestion order.
	ordered := make([]Observation, len(obs))
	copy(ordered, obs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OrderKey < ordered[j].OrderKey
	})

	m.Games = len(ordered)
	for _, o := range ordered {
		m.TotalActual += o.Actual
		m.TotalExpected += o.Expected
	}
	m.AvgActual = m.TotalActual / float64(m.Games)

	recent := ordered
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}
	var recentSum float64
	for _, o := range recent {
		recentSum += o.Actual
	}
	m.RecentAvg = recentSum / float64(len(recent))

	// Population standard deviation: defined (0.0) for a single game.
	var sq float64
	for _, o := range ordered {
		d := o.Actual - m.AvgActual
		sq += d * d
	}
	m.Stdev = math.Sqrt(sq / float64(m.Games))

	if m.TotalExpected > 0 {
		m.Ratio = m.TotalActual / m.TotalExpected
	}
	m.Delta = m.TotalActual - m.TotalExpected

	return m
}
