package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/fantasy-edge/internal/providers"
)

// LeagueReader is the slice of the ESPN client the exporter needs.
type LeagueReader interface {
	League(ctx context.Context) (*providers.League, error)
	Matchups(ctx context.Context, week int) ([]providers.Matchup, error)
	PlayerStats(ctx context.Context, week int) ([]providers.PlayerWeekStat, error)
	FreeAgents(ctx context.Context, week, size int) ([]providers.FreeAgent, error)
}

// ExportService writes league snapshots to timestamped CSV files under
// one export directory.
type ExportService struct {
	client LeagueReader
	dir    string
	logger *logrus.Logger
	now    func() time.Time
}

func NewExportService(client LeagueReader, dir string, logger *logrus.Logger) *ExportService {
	return &ExportService{
		client: client,
		dir:    dir,
		logger: logger,
		now:    time.Now,
	}
}

// ExportRosters writes every team's roster.
func (s *ExportService) ExportRosters(ctx context.Context) (string, error) {
	league, err := s.client.League(ctx)
	if err != nil {
		return "", err
	}

	records := [][]string{{"team_id", "team_name", "player_name", "position", "lineup_slot", "pro_team", "injury_status"}}
	for _, team := range league.Teams {
		for _, entry := range team.Roster {
			records = append(records, []string{
				fmt.Sprintf("%d", team.ID),
				team.Name,
				entry.Name,
				entry.Position,
				entry.LineupSlot,
				entry.ProTeam,
				entry.InjuryStatus,
			})
		}
	}
	return s.writeCSV("rosters", league.Season, records)
}

// ExportStandings writes the win/loss table ranked by record, points for
// as the tiebreak.
func (s *ExportService) ExportStandings(ctx context.Context) (string, error) {
	league, err := s.client.League(ctx)
	if err != nil {
		return "", err
	}

	teams := make([]providers.Team, len(league.Teams))
	copy(teams, league.Teams)
	sort.SliceStable(teams, func(i, j int) bool {
		if teams[i].Wins != teams[j].Wins {
			return teams[i].Wins > teams[j].Wins
		}
		return teams[i].PointsFor > teams[j].PointsFor
	})

	records := [][]string{{"rank", "team_id", "team_name", "abbrev", "wins", "losses", "ties", "win_pct", "points_for", "points_against"}}
	for i, team := range teams {
		games := team.Wins + team.Losses + team.Ties
		winPct := 0.0
		if games > 0 {
			winPct = (float64(team.Wins) + 0.5*float64(team.Ties)) / float64(games)
		}
		records = append(records, []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", team.ID),
			team.Name,
			team.Abbrev,
			fmt.Sprintf("%d", team.Wins),
			fmt.Sprintf("%d", team.Losses),
			fmt.Sprintf("%d", team.Ties),
			fmt.Sprintf("%.3f", winPct),
			fmt.Sprintf("%.2f", team.PointsFor),
			fmt.Sprintf("%.2f", team.PointsAgainst),
		})
	}
	return s.writeCSV("standings", league.Season, records)
}

// ExportMatchups writes one week's head-to-head scores. Week 0 means the
// league's current week.
func (s *ExportService) ExportMatchups(ctx context.Context, week int) (string, error) {
	league, err := s.client.League(ctx)
	if err != nil {
		return "", err
	}
	if week <= 0 {
		week = league.CurrentWeek
	}
	matchups, err := s.client.Matchups(ctx, week)
	if err != nil {
		return "", err
	}

	records := [][]string{{"week", "home_team", "home_score", "away_team", "away_score"}}
	for _, m := range matchups {
		records = append(records, []string{
			fmt.Sprintf("%d", m.Week),
			m.HomeTeam,
			fmt.Sprintf("%.2f", m.HomeScore),
			m.AwayTeam,
			fmt.Sprintf("%.2f", m.AwayScore),
		})
	}
	return s.writeCSV("matchups", league.Season, records)
}

// ExportPlayerStats writes actual vs projected points per player from
// week 1 through the requested week (current week when 0). The output
// matches the shape the analysis pipeline loads.
func (s *ExportService) ExportPlayerStats(ctx context.Context, throughWeek int) (string, error) {
	league, err := s.client.League(ctx)
	if err != nil {
		return "", err
	}
	if throughWeek <= 0 {
		throughWeek = league.CurrentWeek
	}

	records := [][]string{{"player_name", "team_name", "position", "pro_team", "week", "points", "projected_points", "current_week"}}
	for week := 1; week <= throughWeek; week++ {
		stats, err := s.client.PlayerStats(ctx, week)
		if err != nil {
			return "", fmt.Errorf("failed to fetch week %d stats: %w", week, err)
		}
		for _, st := range stats {
			records = append(records, []string{
				st.Name,
				st.TeamName,
				st.Position,
				st.ProTeam,
				fmt.Sprintf("%d", st.Week),
				fmt.Sprintf("%.2f", st.Actual),
				fmt.Sprintf("%.2f", st.Projected),
				fmt.Sprintf("%d", league.CurrentWeek),
			})
		}
	}
	return s.writeCSV("player_stats", league.Season, records)
}

// ExportFreeAgents writes the most-owned unrostered players.
func (s *ExportService) ExportFreeAgents(ctx context.Context, week int) (string, error) {
	league, err := s.client.League(ctx)
	if err != nil {
		return "", err
	}
	agents, err := s.client.FreeAgents(ctx, week, 200)
	if err != nil {
		return "", err
	}

	records := [][]string{{"player_name", "position", "pro_team", "total_points", "percent_owned"}}
	for _, fa := range agents {
		records = append(records, []string{
			fa.Name,
			fa.Position,
			fa.ProTeam,
			fmt.Sprintf("%.2f", fa.TotalPoints),
			fmt.Sprintf("%.1f", fa.PercentOwned),
		})
	}
	return s.writeCSV("free_agents", league.Season, records)
}

// ExportAll runs every export for one week, returning the written paths.
func (s *ExportService) ExportAll(ctx context.Context, week int) ([]string, error) {
	var paths []string
	exports := []func() (string, error){
		func() (string, error) { return s.ExportRosters(ctx) },
		func() (string, error) { return s.ExportStandings(ctx) },
		func() (string, error) { return s.ExportMatchups(ctx, week) },
		func() (string, error) { return s.ExportPlayerStats(ctx, week) },
		func() (string, error) { return s.ExportFreeAgents(ctx, week) },
	}
	for _, export := range exports {
		path, err := export()
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (s *ExportService) writeCSV(kind string, season int, records [][]string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s_%d_%s.csv", kind, season, s.now().Format("20060102_150405"))
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return "", err
	}

	s.logger.WithFields(logrus.Fields{
		"kind": kind,
		"rows": len(records) - 1,
		"path": path,
	}).Info("Export written")
	return path, nil
}
