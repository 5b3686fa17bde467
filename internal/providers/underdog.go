package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/jstittsworth/fantasy-edge/internal/fantasy"
)

// UnderdogClient fetches prop lines from an Underdog-style endpoint.
// The vendor payload shape is not stable, so everything funnels through
// NormalizeLinesPayload which tolerates the shapes seen in the wild.
type UnderdogClient struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
	logger     *logrus.Logger

	endpointURL string
	headers     map[string]string
}

// NewUnderdogClient creates a lines client for one endpoint. Extra
// headers (API keys etc.) are sent on every request.
func NewUnderdogClient(endpointURL string, headers map[string]string, logger *logrus.Logger) *UnderdogClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "underdog",
		MaxRequests: 2,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"component": "circuit_breaker",
				"service":   name,
				"from":      from.String(),
				"to":        to.String(),
			}).Info("Circuit breaker state changed")
		},
	})

	return &UnderdogClient{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		breaker:     cb,
		limiter:     rate.NewLimiter(rate.Limit(1), 2),
		logger:      logger,
		endpointURL: endpointURL,
		headers:     headers,
	}
}

// FetchLines pulls the current board and normalizes it.
func (c *UnderdogClient) FetchLines(ctx context.Context) ([]fantasy.Line, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpointURL, nil)
		if err != nil {
			return nil, err
		}
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		var payload interface{}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("failed to decode lines payload: %w", err)
		}
		return payload, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lines: %w", err)
	}

	lines := NormalizeLinesPayload(result)
	c.logger.WithFields(logrus.Fields{
		"source": "underdog",
		"lines":  len(lines),
	}).Info("Fetched prop lines")
	return lines, nil
}

// NormalizeLinesPayload converts a vendor payload of unknown shape into
// lines. Three shapes are handled: an already-normalized list, a dict
// with a top-level over/under list (with optional id-indexed players and
// teams arrays), and a dict of groups with nested line lists. Items that
// cannot yield a player name and stat category are dropped silently.
func NormalizeLinesPayload(data interface{}) []fantasy.Line {
	if lines := ExtractNormalizedLines(data); len(lines) > 0 {
		return lines
	}

	root, ok := data.(map[string]interface{})
	if !ok {
		return nil
	}

	var playersIdx, teamsIdx map[string]map[string]interface{}
	for _, pk := range []string{"players", "included_players", "player_list"} {
		if items, ok := root[pk].([]interface{}); ok {
			playersIdx = indexByID(items, "id", "player_id")
			break
		}
	}
	for _, tk := range []string{"teams", "included_teams", "team_list"} {
		if items, ok := root[tk].([]interface{}); ok {
			teamsIdx = indexByID(items, "id", "team_id")
			break
		}
	}

	var out []fantasy.Line
	for _, key := range []string{"over_under_lines", "over_unders", "ou_lines", "lines"} {
		if items, ok := root[key].([]interface{}); ok {
			out = append(out, normalizeItems(items, playersIdx, teamsIdx)...)
			break
		}
	}

	for _, gk := range []string{"over_under_groups", "ou_groups", "groups"} {
		groups, ok := root[gk].([]interface{})
		if !ok {
			continue
		}
		for _, g := range groups {
			group, ok := g.(map[string]interface{})
			if !ok {
				continue
			}
			for _, lk := range []string{"over_under_lines", "lines", "ou_lines"} {
				if inner, ok := group[lk].([]interface{}); ok {
					out = append(out, normalizeItems(inner, playersIdx, teamsIdx)...)
				}
			}
		}
		break
	}
	return out
}

// ExtractNormalizedLines reads the canonical list shape:
// [{player_name, team, pos, stat_category, line_value, source}, ...].
func ExtractNormalizedLines(data interface{}) []fantasy.Line {
	items, ok := data.([]interface{})
	if !ok {
		return nil
	}
	var out []fantasy.Line
	for _, it := range items {
		item, ok := it.(map[string]interface{})
		if !ok {
			continue
		}
		player := strings.TrimSpace(stringField(item, "player_name"))
		if player == "" {
			continue
		}
		category := fantasy.NormalizeCategory(stringField(item, "stat_category"))
		if category == "" {
			continue
		}
		value, ok := floatField(item, "line_value")
		if !ok {
			continue
		}
		source := stringField(item, "source")
		if source == "" {
			source = "underdog"
		}
		out = append(out, fantasy.Line{
			Player:       player,
			Team:         stringField(item, "team"),
			Pos:          stringField(item, "pos"),
			StatCategory: category,
			Value:        value,
			Source:       source,
		})
	}
	return out
}

func normalizeItems(items []interface{}, playersIdx, teamsIdx map[string]map[string]interface{}) []fantasy.Line {
	var out []fantasy.Line
	for _, it := range items {
		item, ok := it.(map[string]interface{})
		if !ok {
			continue
		}
		overUnder, _ := item["over_under"].(map[string]interface{})

		value, ok := firstFloat(item, "line", "value", "stat_value")
		if !ok && overUnder != nil {
			value, ok = floatField(overUnder, "value")
		}
		if !ok {
			continue
		}

		statLabel := ""
		if overUnder != nil {
			statLabel = firstString(overUnder, "stat_type", "title")
		}
		if statLabel == "" {
			statLabel = firstString(item, "stat_type", "category", "type")
		}
		category := mapStatToCategory(statLabel)
		if category == "" {
			category = fantasy.NormalizeCategory(statLabel)
		}

		var playerName, team, pos string
		if playerObj, ok := item["player"].(map[string]interface{}); ok {
			playerName = joinName(playerObj)
		}

		if playerName == "" {
			pid := idField(item, "player_id")
			if pid == "" && overUnder != nil {
				pid = idField(overUnder, "player_id")
			}
			if p, ok := playersIdx[pid]; ok {
				playerName = joinName(p)
				pos = firstString(p, "position", "pos")
				if teamObj, ok := p["team"].(map[string]interface{}); ok {
					team = stringField(teamObj, "abbr")
				} else {
					team = firstString(p, "team_abbr", "team")
				}
			}
		}

		if team == "" {
			tid := idField(item, "team_id")
			if tid == "" && overUnder != nil {
				tid = idField(overUnder, "team_id")
			}
			if t, ok := teamsIdx[tid]; ok {
				team = firstString(t, "abbr", "code", "name")
			}
		}

		if playerName == "" {
			playerName = firstString(item, "player_name", "name")
		}
		if pos == "" {
			pos = firstString(item, "position", "pos")
		}
		if team == "" {
			team = firstString(item, "team", "team_abbr")
		}

		if playerName == "" || category == "" {
			continue
		}
		out = append(out, fantasy.Line{
			Player:       playerName,
			Team:         team,
			Pos:          pos,
			StatCategory: category,
			Value:        value,
			Source:       "underdog",
		})
	}
	return out
}

// mapStatToCategory maps the vendor's free-form stat labels onto the
// canonical categories. Unknown labels return "".
func mapStatToCategory(raw string) string {
	s := strings.ToLower(raw)
	if s == "" {
		return ""
	}
	hasYard := strings.Contains(s, "yard") || strings.Contains(s, "yds")
	switch {
	case strings.Contains(s, "rush") && hasYard:
		return "rushing_yards"
	case strings.Contains(s, "receiv") && hasYard:
		return "receiving_yards"
	case (strings.Contains(s, "pass") || strings.Contains(s, "throw")) && hasYard:
		return "passing_yards"
	}
	return ""
}

// joinName resolves a player object's display name from whichever name
// fields it carries.
func joinName(player map[string]interface{}) string {
	for _, k := range []string{"name", "full_name", "player_name"} {
		if v := stringField(player, k); v != "" {
			return v
		}
	}
	first := stringField(player, "first_name")
	last := stringField(player, "last_name")
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

func indexByID(items []interface{}, keys ...string) map[string]map[string]interface{} {
	idx := make(map[string]map[string]interface{})
	for _, it := range items {
		item, ok := it.(map[string]interface{})
		if !ok {
			continue
		}
		for _, key := range keys {
			if id := idField(item, key); id != "" {
				idx[id] = item
				break
			}
		}
	}
	return idx
}

// idField stringifies an id so numeric and string ids compare equal.
func idField(m map[string]interface{}, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	}
	return ""
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v := stringField(m, k); v != "" {
			return v
		}
	}
	return ""
}

func floatField(m map[string]interface{}, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func firstFloat(m map[string]interface{}, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := floatField(m, k); ok {
			return v, true
		}
	}
	return 0, false
}
