package csvio

import (
	"encoding/csv"
	"os"
	"sort"
	"strings"

	"github.com/jstittsworth/fantasy-edge/internal/fantasy"
)

// GameLog is the per-player observation table loaded from a performance CSV.
type GameLog struct {
	// Games groups observations by the player's display name, each slice
	// sorted chronologically.
	Games map[string][]fantasy.Observation
	// Positions maps normalized name -> observed positions (with repeats).
	Positions map[string][]string
	// IRStatus maps normalized name -> reserve annotation, when derivable.
	IRStatus map[string]string
	// CurrentWeek is the league's current week if the export carried it, 0
	// otherwise.
	CurrentWeek int
}

// PrimaryPosition returns the most frequently observed position for a
// player, ties broken alphabetically, "" when unknown.
func (g *GameLog) PrimaryPosition(player string) string {
	observed := g.Positions[fantasy.NormalizeName(player)]
	if len(observed) == 0 {
		return ""
	}
	counts := make(map[string]int)
	for _, p := range observed {
		p = strings.TrimSpace(p)
		if p != "" {
			counts[p]++
		}
	}
	best := ""
	for pos, n := range counts {
		if best == "" || n > counts[best] || (n == counts[best] && pos > best) {
			best = pos
		}
	}
	return best
}

// lineupSlotPositions are the lineup slots that double as positions.
// IR/Bench/Flex slots never determine a primary position.
var lineupSlotPositions = map[string]string{
	"QB": "QB", "RB": "RB", "WR": "WR", "TE": "TE", "K": "K",
	"D/ST": "D/ST", "DST": "D/ST",
}

// LoadPlayerGames reads a player performance CSV and groups rows into
// per-player observation sequences. The week column (when present) becomes
// the chronological order key; otherwise file order is preserved. Rows
// where week equals the player's bye week are excluded from aggregation.
// Rows with no player name are skipped; unparseable points become zero.
func LoadPlayerGames(path string) (*GameLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	log := &GameLog{
		Games:     make(map[string][]fantasy.Observation),
		Positions: make(map[string][]string),
		IRStatus:  make(map[string]string),
	}

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return log, nil
	}

	pIdx := findColumn(header, playerCols)
	aIdx := findColumn(header, actualCols)
	eIdx := findColumn(header, expectedCols)
	wIdx := findColumn(header, weekCols)
	byeIdx := findColumn(header, byeCols)
	posIdx := findColumn(header, positionCols)
	slotIdx := findColumn(header, slotCols)
	injIdx := findColumn(header, injuryCols)
	durIdx := findColumn(header, irDurationCols)
	cwIdx := findColumn(header, []string{"current_week"})
	if pIdx < 0 {
		return log, nil
	}

	orderCounter := 0
	for {
		row, err := reader.Read()
		if err != nil {
			break
		}
		name := field(row, pIdx)
		if name == "" {
			continue
		}
		key := fantasy.NormalizeName(name)

		if log.CurrentWeek == 0 && cwIdx >= 0 {
			if cw := toInt(field(row, cwIdx), 0); cw > 0 {
				log.CurrentWeek = cw
			}
		}

		// Positions are collected even from bye rows.
		if pos := positionFromRow(field(row, posIdx), field(row, slotIdx)); pos != "" {
			log.Positions[key] = append(log.Positions[key], pos)
		}
		if status := irStatusFromRow(name, field(row, injIdx), field(row, durIdx)); status != "" {
			if _, seen := log.IRStatus[key]; !seen {
				log.IRStatus[key] = status
			}
		}
		if slot := strings.ToUpper(field(row, slotIdx)); strings.HasPrefix(slot, "IR") {
			if _, seen := log.IRStatus[key]; !seen {
				log.IRStatus[key] = "IR"
			}
		}

		weekStr := field(row, wIdx)
		byeStr := field(row, byeIdx)
		if weekStr != "" && byeStr != "" && toInt(weekStr, -1) == toInt(byeStr, -2) {
			continue // bye week, no game played
		}

		orderKey := 0
		if weekStr != "" {
			orderKey = toInt(weekStr, orderCounter)
		} else {
			orderCounter++
			orderKey = orderCounter
		}

		log.Games[name] = append(log.Games[name], fantasy.Observation{
			Actual:   toFloat(field(row, aIdx), 0.0),
			Expected: toFloat(field(row, eIdx), 0.0),
			OrderKey: orderKey,
		})
	}

	for name := range log.Games {
		obs := log.Games[name]
		sort.SliceStable(obs, func(i, j int) bool { return obs[i].OrderKey < obs[j].OrderKey })
	}
	return log, nil
}

func positionFromRow(position, slot string) string {
	pos := position
	// Multi-eligible strings like "RB/WR/TE": take the first token.
	if i := strings.Index(pos, "/"); i > 0 && pos != "D/ST" {
		pos = strings.TrimSpace(pos[:i])
	}
	if pos != "" {
		return pos
	}
	return lineupSlotPositions[strings.ToUpper(slot)]
}
