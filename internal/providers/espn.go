package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ESPNFantasyClient reads a fantasy football league from the ESPN v3 API.
// Every endpoint has exactly one typed response struct and one mapping
// function, so upstream schema drift stays isolated here instead of
// leaking into the export logic.
type ESPNFantasyClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logrus.Logger
	baseURL    string

	leagueID int
	season   int
	espnS2   string
	swid     string
}

const espnFantasyBaseURL = "https://lm-api-reads.fantasy.espn.com/apis/v3/games/ffl"

// NewESPNFantasyClient creates a client for one league and season.
// espnS2/swid are the private-league cookies; leave both empty for
// public leagues.
func NewESPNFantasyClient(leagueID, season int, espnS2, swid string, logger *logrus.Logger) *ESPNFantasyClient {
	if espnS2 == "" || swid == "" {
		logger.Warn("ESPN_S2/SWID not set, only public leagues will be readable")
	}
	return &ESPNFantasyClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter:  rate.NewLimiter(rate.Limit(2), 4),
		logger:   logger,
		baseURL:  espnFantasyBaseURL,
		leagueID: leagueID,
		season:   season,
		espnS2:   espnS2,
		swid:     swid,
	}
}

// League is the league snapshot the exporter consumes.
type League struct {
	Name        string
	Season      int
	CurrentWeek int
	Teams       []Team
}

// Team is one fantasy team with its standings line and roster.
type Team struct {
	ID            int
	Name          string
	Abbrev        string
	Wins          int
	Losses        int
	Ties          int
	PointsFor     float64
	PointsAgainst float64
	Roster        []RosterEntry
}

// RosterEntry is one rostered player.
type RosterEntry struct {
	PlayerID     int
	Name         string
	Position     string
	LineupSlot   string
	ProTeam      string
	InjuryStatus string
}

// Matchup is one head-to-head pairing for a week.
type Matchup struct {
	Week      int
	HomeTeam  string
	HomeScore float64
	AwayTeam  string
	AwayScore float64
}

// PlayerWeekStat is one player's actual and projected points for a week.
type PlayerWeekStat struct {
	PlayerID  int
	Name      string
	Position  string
	ProTeam   string
	TeamName  string
	Week      int
	Actual    float64
	Projected float64
}

// FreeAgent is one unrostered player with season totals.
type FreeAgent struct {
	PlayerID     int
	Name         string
	Position     string
	ProTeam      string
	TotalPoints  float64
	PercentOwned float64
}

// ESPN v3 response structures
type espnLeagueResponse struct {
	ScoringPeriodID int `json:"scoringPeriodId"`
	Settings        struct {
		Name string `json:"name"`
	} `json:"settings"`
	Teams    []espnLeagueTeam  `json:"teams"`
	Schedule []espnMatchupItem `json:"schedule"`
}

type espnLeagueTeam struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Abbrev   string `json:"abbrev"`
	Location string `json:"location"`
	Nickname string `json:"nickname"`
	Record   struct {
		Overall struct {
			Wins          int     `json:"wins"`
			Losses        int     `json:"losses"`
			Ties          int     `json:"ties"`
			PointsFor     float64 `json:"pointsFor"`
			PointsAgainst float64 `json:"pointsAgainst"`
		} `json:"overall"`
	} `json:"record"`
	Roster struct {
		Entries []espnRosterEntry `json:"entries"`
	} `json:"roster"`
}

type espnRosterEntry struct {
	PlayerID        int `json:"playerId"`
	LineupSlotID    int `json:"lineupSlotId"`
	PlayerPoolEntry struct {
		Player espnPlayer `json:"player"`
	} `json:"playerPoolEntry"`
}

type espnPlayer struct {
	ID                int    `json:"id"`
	FullName          string `json:"fullName"`
	DefaultPositionID int    `json:"defaultPositionId"`
	ProTeamID         int    `json:"proTeamId"`
	InjuryStatus      string `json:"injuryStatus"`
	Ownership         struct {
		PercentOwned float64 `json:"percentOwned"`
	} `json:"ownership"`
	Stats []espnPlayerStat `json:"stats"`
}

type espnPlayerStat struct {
	ScoringPeriodID int     `json:"scoringPeriodId"`
	StatSourceID    int     `json:"statSourceId"`
	AppliedTotal    float64 `json:"appliedTotal"`
}

type espnMatchupItem struct {
	MatchupPeriodID int `json:"matchupPeriodId"`
	Home            struct {
		TeamID      int     `json:"teamId"`
		TotalPoints float64 `json:"totalPoints"`
	} `json:"home"`
	Away struct {
		TeamID      int     `json:"teamId"`
		TotalPoints float64 `json:"totalPoints"`
	} `json:"away"`
}

type espnPlayersResponse struct {
	Players []struct {
		Player espnPlayer `json:"player"`
	} `json:"players"`
}

// statSourceId values in the v3 stats array.
const (
	statSourceActual    = 0
	statSourceProjected = 1
)

var positionByID = map[int]string{
	1: "QB", 2: "RB", 3: "WR", 4: "TE", 5: "K", 16: "D/ST",
}

var lineupSlotByID = map[int]string{
	0: "QB", 2: "RB", 4: "WR", 6: "TE", 7: "OP",
	16: "D/ST", 17: "K", 20: "BE", 21: "IR", 23: "FLEX",
}

var proTeamByID = map[int]string{
	1: "ATL", 2: "BUF", 3: "CHI", 4: "CIN", 5: "CLE", 6: "DAL", 7: "DEN",
	8: "DET", 9: "GB", 10: "TEN", 11: "IND", 12: "KC", 13: "LV", 14: "LAR",
	15: "MIA", 16: "MIN", 17: "NE", 18: "NO", 19: "NYG", 20: "NYJ",
	21: "PHI", 22: "ARI", 23: "PIT", 24: "LAC", 25: "SF", 26: "SEA",
	27: "TB", 28: "WSH", 29: "CAR", 30: "JAX", 33: "BAL", 34: "HOU",
}

func positionName(id int) string {
	return positionByID[id]
}

func proTeamName(id int) string {
	if t, ok := proTeamByID[id]; ok {
		return t
	}
	if id == 0 {
		return "FA"
	}
	return fmt.Sprintf("TM%d", id)
}

// League fetches the league snapshot: settings, standings and rosters.
func (c *ESPNFantasyClient) League(ctx context.Context) (*League, error) {
	url := c.leagueURL() + "?view=mTeam&view=mRoster&view=mSettings"
	var resp espnLeagueResponse
	if err := c.makeRequest(ctx, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch league: %w", err)
	}
	return mapLeague(&resp, c.season), nil
}

// Matchups fetches the head-to-head pairings for one week.
func (c *ESPNFantasyClient) Matchups(ctx context.Context, week int) ([]Matchup, error) {
	url := fmt.Sprintf("%s?view=mMatchup&view=mTeam&scoringPeriodId=%d", c.leagueURL(), week)
	var resp espnLeagueResponse
	if err := c.makeRequest(ctx, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch matchups: %w", err)
	}
	return mapMatchups(&resp, week), nil
}

// PlayerStats fetches every rostered player's actual and projected
// points for one scoring period.
func (c *ESPNFantasyClient) PlayerStats(ctx context.Context, week int) ([]PlayerWeekStat, error) {
	url := fmt.Sprintf("%s?view=mRoster&view=mTeam&scoringPeriodId=%d", c.leagueURL(), week)
	var resp espnLeagueResponse
	if err := c.makeRequest(ctx, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch player stats: %w", err)
	}
	return mapPlayerStats(&resp, week), nil
}

// FreeAgents fetches the most-owned unrostered players.
func (c *ESPNFantasyClient) FreeAgents(ctx context.Context, week, size int) ([]FreeAgent, error) {
	if size <= 0 {
		size = 200
	}
	url := c.leagueURL() + "?view=kona_player_info"
	if week > 0 {
		url = fmt.Sprintf("%s&scoringPeriodId=%d", url, week)
	}
	filter := fmt.Sprintf(`{"players":{"filterStatus":{"value":["FREEAGENT","WAIVERS"]},"limit":%d,"sortPercOwned":{"sortAsc":false,"sortPriority":1}}}`, size)

	var resp espnPlayersResponse
	headers := map[string]string{"X-Fantasy-Filter": filter}
	if err := c.makeRequest(ctx, url, headers, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch free agents: %w", err)
	}
	return mapFreeAgents(&resp), nil
}

func (c *ESPNFantasyClient) leagueURL() string {
	return fmt.Sprintf("%s/seasons/%d/segments/0/leagues/%d", c.baseURL, c.season, c.leagueID)
}

// makeRequest performs a GET with rate limiting and exponential backoff.
func (c *ESPNFantasyClient) makeRequest(ctx context.Context, url string, headers map[string]string, target interface{}) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		if c.espnS2 != "" && c.swid != "" {
			req.AddCookie(&http.Cookie{Name: "espn_s2", Value: c.espnS2})
			req.AddCookie(&http.Cookie{Name: "SWID", Value: c.swid})
		}

		resp, err := c.httpClient.Do(req)
		if err == nil && resp.StatusCode == http.StatusOK {
			defer resp.Body.Close()
			return json.NewDecoder(resp.Body).Decode(target)
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			resp.Body.Close()
		}

		waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
		c.logger.Warnf("ESPN request failed (attempt %d), waiting %v: %v", attempt+1, waitTime, lastErr)
		select {
		case <-time.After(waitTime):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("request failed after retries: %w", lastErr)
}

func mapLeague(resp *espnLeagueResponse, season int) *League {
	league := &League{
		Name:        resp.Settings.Name,
		Season:      season,
		CurrentWeek: resp.ScoringPeriodID,
	}
	for _, t := range resp.Teams {
		league.Teams = append(league.Teams, mapTeam(t))
	}
	return league
}

func mapTeam(t espnLeagueTeam) Team {
	name := t.Name
	if name == "" {
		// Older seasons split the name into location + nickname.
		name = t.Location
		if t.Nickname != "" {
			if name != "" {
				name += " "
			}
			name += t.Nickname
		}
	}
	team := Team{
		ID:            t.ID,
		Name:          name,
		Abbrev:        t.Abbrev,
		Wins:          t.Record.Overall.Wins,
		Losses:        t.Record.Overall.Losses,
		Ties:          t.Record.Overall.Ties,
		PointsFor:     t.Record.Overall.PointsFor,
		PointsAgainst: t.Record.Overall.PointsAgainst,
	}
	for _, e := range t.Roster.Entries {
		p := e.PlayerPoolEntry.Player
		team.Roster = append(team.Roster, RosterEntry{
			PlayerID:     p.ID,
			Name:         p.FullName,
			Position:     positionName(p.DefaultPositionID),
			LineupSlot:   lineupSlotByID[e.LineupSlotID],
			ProTeam:      proTeamName(p.ProTeamID),
			InjuryStatus: p.InjuryStatus,
		})
	}
	return team
}

func mapMatchups(resp *espnLeagueResponse, week int) []Matchup {
	teamNames := make(map[int]string, len(resp.Teams))
	for _, t := range resp.Teams {
		teamNames[t.ID] = mapTeam(t).Name
	}

	var out []Matchup
	for _, m := range resp.Schedule {
		if m.MatchupPeriodID != week {
			continue
		}
		out = append(out, Matchup{
			Week:      week,
			HomeTeam:  teamNames[m.Home.TeamID],
			HomeScore: m.Home.TotalPoints,
			AwayTeam:  teamNames[m.Away.TeamID],
			AwayScore: m.Away.TotalPoints,
		})
	}
	return out
}

func mapPlayerStats(resp *espnLeagueResponse, week int) []PlayerWeekStat {
	var out []PlayerWeekStat
	for _, t := range resp.Teams {
		teamName := mapTeam(t).Name
		for _, e := range t.Roster.Entries {
			p := e.PlayerPoolEntry.Player
			stat := PlayerWeekStat{
				PlayerID: p.ID,
				Name:     p.FullName,
				Position: positionName(p.DefaultPositionID),
				ProTeam:  proTeamName(p.ProTeamID),
				TeamName: teamName,
				Week:     week,
			}
			for _, s := range p.Stats {
				if s.ScoringPeriodID != week {
					continue
				}
				switch s.StatSourceID {
				case statSourceActual:
					stat.Actual = s.AppliedTotal
				case statSourceProjected:
					stat.Projected = s.AppliedTotal
				}
			}
			out = append(out, stat)
		}
	}
	return out
}

func mapFreeAgents(resp *espnPlayersResponse) []FreeAgent {
	var out []FreeAgent
	for _, entry := range resp.Players {
		p := entry.Player
		fa := FreeAgent{
			PlayerID:     p.ID,
			Name:         p.FullName,
			Position:     positionName(p.DefaultPositionID),
			ProTeam:      proTeamName(p.ProTeamID),
			PercentOwned: p.Ownership.PercentOwned,
		}
		for _, s := range p.Stats {
			// ScoringPeriodId 0 carries the season aggregate.
			if s.StatSourceID == statSourceActual && s.ScoringPeriodID == 0 {
				fa.TotalPoints = s.AppliedTotal
			}
		}
		out = append(out, fa)
	}
	return out
}
