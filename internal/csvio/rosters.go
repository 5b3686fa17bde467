package csvio

import (
	"encoding/csv"
	"os"
	"sort"
	"strings"

	"github.com/jstittsworth/fantasy-edge/internal/fantasy"
)

// RosterTable is the ownership view loaded from a rosters CSV. Keys are
// normalized player names.
type RosterTable struct {
	// Ownership maps player -> fantasy team name (FreeAgentTeam when blank).
	Ownership map[string]string
	// IRStatus maps player -> reserve annotation ("IR", "IR - 3w", ...).
	IRStatus map[string]string
	// Teams lists the distinct fantasy team names seen, sorted.
	Teams []string
}

// Lookup returns the owning team for a player name (raw or normalized),
// defaulting to the free-agent sentinel.
func (r *RosterTable) Lookup(player string) string {
	if team, ok := r.Ownership[fantasy.NormalizeName(player)]; ok && team != "" {
		return team
	}
	return fantasy.FreeAgentTeam
}

// LoadRosters reads a rosters CSV mapping players to fantasy teams.
// Rows without a player name are skipped; a missing team cell means free
// agent. Reserve status is collected from injury_status/ir_duration
// columns and trailing "(IR ...)" name annotations when present.
func LoadRosters(path string) (*RosterTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table := &RosterTable{
		Ownership: make(map[string]string),
		IRStatus:  make(map[string]string),
	}

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return table, nil // empty or headerless file: empty table, not an error
	}

	pIdx := findColumn(header, playerCols)
	tIdx := findColumn(header, teamCols)
	injIdx := findColumn(header, injuryCols)
	durIdx := findColumn(header, irDurationCols)
	if pIdx < 0 {
		return table, nil
	}

	teamSet := make(map[string]struct{})
	for {
		row, err := reader.Read()
		if err != nil {
			break
		}
		raw := field(row, pIdx)
		if raw == "" {
			continue
		}
		key := fantasy.NormalizeName(raw)

		team := field(row, tIdx)
		if team == "" {
			team = fantasy.FreeAgentTeam
		} else {
			teamSet[team] = struct{}{}
		}
		table.Ownership[key] = team

		if status := irStatusFromRow(raw, field(row, injIdx), field(row, durIdx)); status != "" {
			if _, seen := table.IRStatus[key]; !seen {
				table.IRStatus[key] = status
			}
		}
	}

	for t := range teamSet {
		table.Teams = append(table.Teams, t)
	}
	sort.Strings(table.Teams)
	return table, nil
}

// irStatusFromRow derives the reserve annotation for one roster row from
// the injury column, falling back to a "(IR ...)" suffix on the name.
func irStatusFromRow(rawName, injury, duration string) string {
	inj := strings.ToUpper(injury)
	onIR := strings.Contains(inj, "IR") ||
		strings.Contains(inj, "INJURY_RESERVE") ||
		strings.Contains(inj, "INJURED_RESERVE")
	if !onIR && fantasy.StripIRSuffix(rawName) != strings.TrimSpace(rawName) {
		onIR = true
		if duration == "" {
			// Recover the duration from the annotation itself, e.g. "(IR - 3w)".
			open := strings.LastIndex(rawName, "(")
			if open >= 0 {
				inner := strings.Trim(rawName[open:], "() ")
				if dash := strings.Index(inner, "-"); dash >= 0 {
					duration = strings.TrimSpace(inner[dash+1:])
				}
			}
		}
	}
	if !onIR {
		return ""
	}
	if duration != "" {
		return "IR - " + duration
	}
	return "IR"
}
