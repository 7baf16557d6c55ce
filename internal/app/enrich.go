package app

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"brooklyn_demand/internal/domain"
)

const (
	featureTooltip     = "<b>ZIP Code:</b> %s<br><b>Demand:</b> %s"
	unavailableTooltip = "N/A"
)

// Enrich joins features with demand scores keyed by ZIP code. The result has
// one entry per input feature, in input order; geometry is untouched.
func Enrich(features []domain.ZipPolygonFeature, scores map[string]float64) []domain.EnrichedFeature {
	out := make([]domain.EnrichedFeature, 0, len(features))
	for _, f := range features {
		postal := f.PostalCode()
		ef := domain.EnrichedFeature{ZipPolygonFeature: f}

		score, ok := scores[postal]
		if ok && postal != "" && !math.IsNaN(score) && !math.IsInf(score, 0) {
			rounded := RoundSig(score, 2)
			ef.DemandScore = &rounded
			ef.FillColor = EncodeScore(rounded)
			ef.Tooltip = fmt.Sprintf(featureTooltip, html.EscapeString(postal), formatScore(rounded))
		} else {
			ef.FillColor = UnavailableColor
			ef.Tooltip = fmt.Sprintf(featureTooltip, html.EscapeString(postal), unavailableTooltip)
		}
		out = append(out, ef)
	}
	return out
}

// RoundSig rounds x to n significant figures, the same way %.{n}g does.
func RoundSig(x float64, n int) float64 {
	if x == 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'g', n, 64), 64)
	if err != nil {
		return x
	}
	return r
}

// formatScore prints a score the way the dashboard tooltips always have:
// shortest round-trip digits, exponent form below 1e-4 or from 1e16 up, and
// a trailing ".0" on whole numbers.
func formatScore(x float64) string {
	e := strconv.FormatFloat(x, 'e', -1, 64)
	if i := strings.IndexByte(e, 'e'); i >= 0 {
		if exp, err := strconv.Atoi(e[i+1:]); err == nil && (exp < -4 || exp >= 16) {
			return e
		}
	}
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Unmatched counts features left without a score.
func Unmatched(features []domain.EnrichedFeature) int {
	n := 0
	for _, f := range features {
		if f.DemandScore == nil {
			n++
		}
	}
	return n
}
