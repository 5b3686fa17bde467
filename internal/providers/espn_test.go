package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const leagueFixture = `{
	"scoringPeriodId": 5,
	"settings": {"name": "Test League"},
	"teams": [
		{
			"id": 1,
			"name": "Gridiron Geeks",
			"abbrev": "GG",
			"record": {"overall": {"wins": 3, "losses": 1, "ties": 0, "pointsFor": 480.2, "pointsAgainst": 432.1}},
			"roster": {"entries": [
				{
					"playerId": 4262921,
					"lineupSlotId": 4,
					"playerPoolEntry": {"player": {
						"id": 4262921,
						"fullName": "Justin Jefferson",
						"defaultPositionId": 3,
						"proTeamId": 16,
						"injuryStatus": "ACTIVE",
						"stats": [
							{"scoringPeriodId": 5, "statSourceId": 0, "appliedTotal": 22.5},
							{"scoringPeriodId": 5, "statSourceId": 1, "appliedTotal": 18.0},
							{"scoringPeriodId": 4, "statSourceId": 0, "appliedTotal": 9.1}
						]
					}}
				}
			]}
		},
		{
			"id": 2,
			"location": "End Zone",
			"nickname": "Elite",
			"abbrev": "EZE",
			"record": {"overall": {"wins": 1, "losses": 3, "ties": 0, "pointsFor": 390.0, "pointsAgainst": 445.7}},
			"roster": {"entries": []}
		}
	],
	"schedule": [
		{"matchupPeriodId": 5, "home": {"teamId": 1, "totalPoints": 112.4}, "away": {"teamId": 2, "totalPoints": 98.6}},
		{"matchupPeriodId": 4, "home": {"teamId": 2, "totalPoints": 101.0}, "away": {"teamId": 1, "totalPoints": 95.5}}
	]
}`

func newTestESPNClient(t *testing.T, handler http.HandlerFunc) (*ESPNFantasyClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewESPNFantasyClient(12345, 2025, "s2-cookie", "{swid}", logrus.New())
	client.baseURL = server.URL
	return client, server
}

func TestLeague(t *testing.T) {
	client, _ := newTestESPNClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/seasons/2025/segments/0/leagues/12345")
		cookies := r.Cookies()
		require.Len(t, cookies, 2, "private league cookies attached")
		w.Write([]byte(leagueFixture))
	})

	league, err := client.League(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Test League", league.Name)
	assert.Equal(t, 5, league.CurrentWeek)
	assert.Equal(t, 2025, league.Season)
	require.Len(t, league.Teams, 2)

	gg := league.Teams[0]
	assert.Equal(t, "Gridiron Geeks", gg.Name)
	assert.Equal(t, 3, gg.Wins)
	require.Len(t, gg.Roster, 1)
	assert.Equal(t, "Justin Jefferson", gg.Roster[0].Name)
	assert.Equal(t, "WR", gg.Roster[0].Position)
	assert.Equal(t, "WR", gg.Roster[0].LineupSlot)
	assert.Equal(t, "MIN", gg.Roster[0].ProTeam)

	assert.Equal(t, "End Zone Elite", league.Teams[1].Name, "location+nickname fallback")
}

func TestMatchups(t *testing.T) {
	client, _ := newTestESPNClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("scoringPeriodId"))
		w.Write([]byte(leagueFixture))
	})

	matchups, err := client.Matchups(context.Background(), 5)
	require.NoError(t, err)

	require.Len(t, matchups, 1, "other weeks filtered out")
	m := matchups[0]
	assert.Equal(t, "Gridiron Geeks", m.HomeTeam)
	assert.Equal(t, 112.4, m.HomeScore)
	assert.Equal(t, "End Zone Elite", m.AwayTeam)
	assert.Equal(t, 98.6, m.AwayScore)
}

func TestPlayerStats(t *testing.T) {
	client, _ := newTestESPNClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(leagueFixture))
	})

	stats, err := client.PlayerStats(context.Background(), 5)
	require.NoError(t, err)

	require.Len(t, stats, 1)
	s := stats[0]
	assert.Equal(t, "Justin Jefferson", s.Name)
	assert.Equal(t, "Gridiron Geeks", s.TeamName)
	assert.Equal(t, 5, s.Week)
	assert.Equal(t, 22.5, s.Actual, "week-5 actual, not the week-4 entry")
	assert.Equal(t, 18.0, s.Projected)
}

func TestFreeAgents(t *testing.T) {
	client, _ := newTestESPNClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("X-Fantasy-Filter"))
		w.Write([]byte(`{"players": [
			{"player": {
				"id": 99,
				"fullName": "Streaming Defense",
				"defaultPositionId": 16,
				"proTeamId": 21,
				"ownership": {"percentOwned": 42.5},
				"stats": [{"scoringPeriodId": 0, "statSourceId": 0, "appliedTotal": 61.0}]
			}}
		]}`))
	})

	agents, err := client.FreeAgents(context.Background(), 5, 50)
	require.NoError(t, err)

	require.Len(t, agents, 1)
	fa := agents[0]
	assert.Equal(t, "Streaming Defense", fa.Name)
	assert.Equal(t, "D/ST", fa.Position)
	assert.Equal(t, "PHI", fa.ProTeam)
	assert.Equal(t, 61.0, fa.TotalPoints)
	assert.Equal(t, 42.5, fa.PercentOwned)
}

func TestProTeamNameUnknown(t *testing.T) {
	assert.Equal(t, "FA", proTeamName(0))
	assert.Equal(t, "TM77", proTeamName(77))
}
