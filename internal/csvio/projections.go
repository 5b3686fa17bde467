package csvio

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/jstittsworth/fantasy-edge/internal/fantasy"
)

// ProjectionColumns names the projections CSV columns. Zero values fall
// back to the conventional headers.
type ProjectionColumns struct {
	Player string
	Team   string
	Pos    string
	Value  string
}

func (c ProjectionColumns) withDefaults() ProjectionColumns {
	if c.Player == "" {
		c.Player = "Player"
	}
	if c.Team == "" {
		c.Team = "Team"
	}
	if c.Pos == "" {
		c.Pos = "Pos"
	}
	if c.Value == "" {
		c.Value = "ProjYards"
	}
	return c
}

// DefaultPositionsForStat returns the position filter conventionally
// applied for a stat category, nil when the category has no convention.
func DefaultPositionsForStat(statCategory string) []string {
	switch fantasy.NormalizeCategory(statCategory) {
	case "rushing_yards":
		return []string{"RB"}
	case "receiving_yards":
		return []string{"WR", "TE"}
	case "passing_yards":
		return []string{"QB"}
	}
	return nil
}

// LoadProjections reads a projections CSV into fantasy.Projection values
// for one stat category. Rows with a blank player or value cell, an
// unparseable value, or a position outside the filter are skipped.
func LoadProjections(path, statCategory string, cols ProjectionColumns, filterPositions []string) ([]fantasy.Projection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cols = cols.withDefaults()
	category := fantasy.NormalizeCategory(statCategory)

	posFilter := make(map[string]struct{}, len(filterPositions))
	for _, p := range filterPositions {
		posFilter[strings.ToUpper(strings.TrimSpace(p))] = struct{}{}
	}

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, nil
	}

	pIdx := findColumn(header, []string{cols.Player})
	tIdx := findColumn(header, []string{cols.Team})
	posIdx := findColumn(header, []string{cols.Pos})
	vIdx := findColumn(header, []string{cols.Value})
	if pIdx < 0 || vIdx < 0 {
		return nil, nil
	}

	var out []fantasy.Projection
	for {
		row, err := reader.Read()
		if err != nil {
			break
		}
		player := field(row, pIdx)
		if player == "" {
			continue
		}
		pos := strings.ToUpper(field(row, posIdx))
		if len(posFilter) > 0 && pos != "" {
			if _, ok := posFilter[pos]; !ok {
				continue
			}
		}
		raw := field(row, vIdx)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue // malformed rows are skipped, not fatal
		}

		out = append(out, fantasy.Projection{
			Player:       player,
			Team:         field(row, tIdx),
			Pos:          pos,
			StatCategory: category,
			Value:        value,
		})
	}
	return out, nil
}
