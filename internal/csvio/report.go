package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jstittsworth/fantasy-edge/internal/fantasy"
)

// ReportRow is one scored line of the analysis report.
type ReportRow struct {
	Metrics        fantasy.PlayerMetrics
	IRStatus       string
	Score          int
	Recommendation string // "GREEN" or "RED"
}

var reportHeader = []string{
	"player_name",
	"team",
	"position",
	"recommendation",
	"games",
	"total_points",
	"expected_points",
	"avg_points",
	"recent_avg",
	"stdev",
	"ratio",
	"delta",
	"category",
}

// WriteAnalysisReport writes scored player metrics to a CSV report,
// sorted by team then player name. The ratio cell is blank when the
// player has no expectation data.
func WriteAnalysisReport(path string, rows []ReportRow) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	sorted := make([]ReportRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Metrics, sorted[j].Metrics
		if a.Team != b.Team {
			return a.Team < b.Team
		}
		return a.Name < b.Name
	})

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(reportHeader); err != nil {
		return err
	}
	for _, r := range sorted {
		m := r.Metrics
		ratio := ""
		if m.TotalExpected > 0 {
			ratio = fmt.Sprintf("%.3f", m.Ratio)
		}
		record := []string{
			m.Name,
			m.Team,
			m.Position,
			r.Recommendation,
			fmt.Sprintf("%d", m.Games),
			fmt.Sprintf("%.3f", m.TotalActual),
			fmt.Sprintf("%.3f", m.TotalExpected),
			fmt.Sprintf("%.3f", m.AvgActual),
			fmt.Sprintf("%.3f", m.RecentAvg),
			fmt.Sprintf("%.3f", m.Stdev),
			ratio,
			fmt.Sprintf("%.3f", m.Delta),
			m.Category(),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

var recommendationsHeader = []string{
	"Player",
	"Team",
	"Pos",
	"StatCategory",
	"Line",
	"MyProjection",
	"Diff",
	"DiffPct",
	"Recommendation",
	"Source",
}

// WriteRecommendations writes prop recommendations in run order.
func WriteRecommendations(path string, recs []fantasy.Recommendation) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(recommendationsHeader); err != nil {
		return err
	}
	for _, r := range recs {
		record := []string{
			r.Player,
			r.Team,
			r.Pos,
			r.StatCategory,
			fmt.Sprintf("%.1f", r.Line),
			fmt.Sprintf("%.1f", r.Projection),
			fmt.Sprintf("%.1f", r.Diff),
			fmt.Sprintf("%.3f", r.DiffPct),
			r.Side,
			r.Source,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
