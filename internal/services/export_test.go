package services

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/fantasy-edge/internal/providers"
)

type fakeLeagueReader struct{}

func (fakeLeagueReader) League(ctx context.Context) (*providers.League, error) {
	return &providers.League{
		Name:        "Test League",
		Season:      2025,
		CurrentWeek: 2,
		Teams: []providers.Team{
			{
				ID: 2, Name: "End Zone Elite", Abbrev: "EZE",
				Wins: 1, Losses: 1, PointsFor: 210.0, PointsAgainst: 215.4,
			},
			{
				ID: 1, Name: "Gridiron Geeks", Abbrev: "GG",
				Wins: 2, Losses: 0, PointsFor: 240.5, PointsAgainst: 199.1,
				Roster: []providers.RosterEntry{
					{Name: "Justin Jefferson", Position: "WR", LineupSlot: "WR", ProTeam: "MIN", InjuryStatus: "ACTIVE"},
				},
			},
		},
	}, nil
}

func (fakeLeagueReader) Matchups(ctx context.Context, week int) ([]providers.Matchup, error) {
	return []providers.Matchup{
		{Week: week, HomeTeam: "Gridiron Geeks", HomeScore: 120.5, AwayTeam: "End Zone Elite", AwayScore: 99.0},
	}, nil
}

func (fakeLeagueReader) PlayerStats(ctx context.Context, week int) ([]providers.PlayerWeekStat, error) {
	return []providers.PlayerWeekStat{
		{Name: "Justin Jefferson", TeamName: "Gridiron Geeks", Position: "WR", ProTeam: "MIN", Week: week, Actual: 22.5, Projected: 18.0},
	}, nil
}

func (fakeLeagueReader) FreeAgents(ctx context.Context, week, size int) ([]providers.FreeAgent, error) {
	return []providers.FreeAgent{
		{Name: "Streaming Defense", Position: "D/ST", ProTeam: "PHI", TotalPoints: 61.0, PercentOwned: 42.5},
	}, nil
}

func newTestExportService(t *testing.T) (*ExportService, string) {
	t.Helper()
	dir := t.TempDir()
	svc := NewExportService(fakeLeagueReader{}, dir, logrus.New())
	svc.now = func() time.Time {
		return time.Date(2025, 10, 14, 9, 30, 0, 0, time.UTC)
	}
	return svc, dir
}

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportRosters(t *testing.T) {
	svc, dir := newTestExportService(t)

	path, err := svc.ExportRosters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "rosters_2025_20251014_093000.csv"), path)

	records := readCSVFile(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"team_id", "team_name", "player_name", "position", "lineup_slot", "pro_team", "injury_status"}, records[0])
	assert.Equal(t, []string{"1", "Gridiron Geeks", "Justin Jefferson", "WR", "WR", "MIN", "ACTIVE"}, records[1])
}

func TestExportStandings(t *testing.T) {
	svc, _ := newTestExportService(t)

	path, err := svc.ExportStandings(context.Background())
	require.NoError(t, err)

	records := readCSVFile(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"rank", "team_id", "team_name", "abbrev", "wins", "losses", "ties", "win_pct", "points_for", "points_against"}, records[0])
	assert.Equal(t, []string{"1", "1", "Gridiron Geeks", "GG", "2", "0", "0", "1.000", "240.50", "199.10"}, records[1], "best record ranks first")
	assert.Equal(t, []string{"2", "2", "End Zone Elite", "EZE", "1", "1", "0", "0.500", "210.00", "215.40"}, records[2])
}

func TestExportMatchupsDefaultsToCurrentWeek(t *testing.T) {
	svc, _ := newTestExportService(t)

	path, err := svc.ExportMatchups(context.Background(), 0)
	require.NoError(t, err)

	records := readCSVFile(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, "2", records[1][0], "week 0 resolves to the league's current week")
	assert.Equal(t, "120.50", records[1][2])
}

func TestExportPlayerStatsCoversAllWeeks(t *testing.T) {
	svc, _ := newTestExportService(t)

	path, err := svc.ExportPlayerStats(context.Background(), 0)
	require.NoError(t, err)

	records := readCSVFile(t, path)
	require.Len(t, records, 3, "header plus one row per week through week 2")
	assert.Equal(t, "1", records[1][4])
	assert.Equal(t, "2", records[2][4])
	assert.Equal(t, "2", records[1][7], "current_week column carried on every row")
}

func TestExportAll(t *testing.T) {
	svc, _ := newTestExportService(t)

	paths, err := svc.ExportAll(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, paths, 5)

	for _, path := range paths {
		_, err := os.Stat(path)
		assert.NoError(t, err, path)
	}
}
