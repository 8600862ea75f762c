package engine

import (
	"sort"
	"strconv"
	"strings"

	"example/fair-chess-api/app/models"
)

// infoUpdate holds the fields of one "info" line we care about.
type infoUpdate struct {
	MultiPV *int
	Depth   *int
	ScoreCP *int
	Mate    *int
	PV      []string
}

func (u infoUpdate) hasLineData() bool {
	return u.ScoreCP != nil || u.Mate != nil || len(u.PV) > 0
}

// Examples we parse:
// info depth 18 seldepth 24 multipv 2 score cp 34 nodes 1234 pv e2e4 e7e5 g1f3
// info depth 20 multipv 1 score mate -3 pv h7h8q
func parseInfoLine(line string) (infoUpdate, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "info" {
		return infoUpdate{}, false
	}

	update := infoUpdate{}
	for i := 1; i < len(fields); i++ {
		switch fields[i] {
		case "string":
			// free text until end of line
			return infoUpdate{}, false
		case "multipv":
			if i+1 < len(fields) {
				if multiPV, err := strconv.Atoi(fields[i+1]); err == nil {
					update.MultiPV = intPtr(multiPV)
				}
				i++
			}
		case "depth":
			if i+1 < len(fields) {
				if depth, err := strconv.Atoi(fields[i+1]); err == nil {
					update.Depth = intPtr(depth)
				}
				i++
			}
		case "score":
			if i+2 < len(fields) {
				value, err := strconv.Atoi(fields[i+2])
				if err == nil {
					switch fields[i+1] {
					case "cp":
						update.ScoreCP = intPtr(value)
					case "mate":
						update.Mate = intPtr(value)
					}
				}
				i += 2
			}
		case "pv":
			if i+1 < len(fields) {
				update.PV = append([]string(nil), fields[i+1:]...)
			}
			return update, true
		}
	}

	return update, true
}

func parseBestMoveLine(line string) (bestMove string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "bestmove" {
		return "", false
	}
	return fields[1], true
}

// mergeInfo folds an update into the per-slot lines, keeping the latest
// score and PV reported for each slot.
func mergeInfo(linesByPV map[int]models.PVLine, update infoUpdate, multiPV int) {
	if !update.hasLineData() {
		return
	}
	lineID := 1
	if update.MultiPV != nil && *update.MultiPV > 0 {
		lineID = *update.MultiPV
	}
	if lineID > multiPV {
		return
	}

	current := linesByPV[lineID]
	current.MultiPV = lineID
	if update.Depth != nil {
		current.Depth = *update.Depth
	}
	if update.ScoreCP != nil {
		current.Score = &models.UCIScore{CP: update.ScoreCP}
	}
	if update.Mate != nil {
		current.Score = &models.UCIScore{Mate: update.Mate}
	}
	if len(update.PV) > 0 {
		current.Moves = update.PV
	}
	linesByPV[lineID] = current
}

func sortedLines(linesByPV map[int]models.PVLine) []models.PVLine {
	lines := make([]models.PVLine, 0, len(linesByPV))
	for _, line := range linesByPV {
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].MultiPV < lines[j].MultiPV
	})
	return lines
}

func intPtr(value int) *int {
	return &value
}
