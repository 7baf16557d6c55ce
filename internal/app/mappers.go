package app

import (
	"fmt"
	"math"
	"strings"

	"brooklyn_demand/internal/domain"
)

/********** tiny helpers **********/

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

// setOf builds a lookup set. A nil selection means all of fallback; an
// empty one selects nothing.
func setOf(selected, fallback []string) (set map[string]struct{}, list []string) {
	list = selected
	if list == nil {
		list = fallback
	}
	set = make(map[string]struct{}, len(list))
	for _, s := range list {
		set[s] = struct{}{}
	}
	return set, list
}

/********** score alignment **********/

// AlignScores pairs the score column with ZIP labels by position; the
// warehouse stores both in the same row order.
func AlignScores(labels []domain.ZipCodeLabel, values []float64) ([]domain.DemandScore, error) {
	if len(labels) != len(values) {
		return nil, fmt.Errorf("%w: %d zip labels but %d demand scores",
			domain.ErrMalformedDataset, len(labels), len(values))
	}
	out := make([]domain.DemandScore, len(labels))
	for i, l := range labels {
		out[i] = domain.DemandScore{Zipcode: strings.TrimSpace(l.Zipcode), Score: values[i]}
	}
	return out, nil
}

// ScoreIndex keys scores by ZIP code. The first row wins on duplicates.
func ScoreIndex(scores []domain.DemandScore) map[string]float64 {
	idx := make(map[string]float64, len(scores))
	for _, s := range scores {
		if _, dup := idx[s.Zipcode]; dup {
			continue
		}
		idx[s.Zipcode] = s.Score
	}
	return idx
}

/********** detail table **********/

const (
	ColZipcode     = "ZIPCODE"
	ColDemandScore = "DEMAND_SCORE"
)

// BuildTable prepends the raw demand score to every detail row and indexes
// rows by ZIP code. Detail rows must line up with the scores.
func BuildTable(pct int, table string, scores []domain.DemandScore, detail domain.DetailRows) (domain.DetailTable, error) {
	if len(detail.Rows) != len(scores) {
		return domain.DetailTable{}, fmt.Errorf("%w: %s has %d rows but %d demand scores",
			domain.ErrMalformedDataset, table, len(detail.Rows), len(scores))
	}

	cols := make([]string, 0, len(detail.Columns)+2)
	cols = append(cols, ColZipcode, ColDemandScore)
	for _, c := range detail.Columns {
		if strings.EqualFold(c, ColDemandScore) || strings.EqualFold(c, ColZipcode) {
			continue
		}
		cols = append(cols, c)
	}

	rows := make([][]any, len(scores))
	for i, s := range scores {
		row := make([]any, 0, len(cols))
		row = append(row, s.Zipcode, jsonScore(s.Score))
		for j, c := range detail.Columns {
			if strings.EqualFold(c, ColDemandScore) || strings.EqualFold(c, ColZipcode) {
				continue
			}
			var v any
			if j < len(detail.Rows[i]) {
				v = detail.Rows[i][j]
			}
			row = append(row, v)
		}
		rows[i] = row
	}
	return domain.DetailTable{Scenario: pct, Table: table, Columns: cols, Rows: rows}, nil
}

// jsonScore keeps NaN out of JSON payloads.
func jsonScore(f float64) any {
	if !finite(f) {
		return nil
	}
	return f
}
