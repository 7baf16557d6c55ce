package app

import (
	"math"

	"brooklyn_demand/internal/domain"
)

const scoreAlpha = 180

// viridis-like anchors, lowest demand first.
var scoreAnchors = [5][3]float64{
	{68, 1, 84},
	{59, 82, 139},
	{33, 144, 140},
	{94, 201, 98},
	{253, 231, 37},
}

var demandLegendLabels = [5]string{"Very Low", "Low", "Medium", "High", "Very High"}

// UnavailableColor fills ZIP polygons that have no demand score.
var UnavailableColor = domain.RGBA{200, 200, 200, 50}

// EncodeScore maps a demand score to its fill color. Callers round the score
// to two significant figures first so the color agrees with the tooltip.
// Scores outside [0,1] are clamped and NaN is treated as 0.
func EncodeScore(score float64) domain.RGBA {
	s := clampUnit(score)

	var seg int
	switch {
	case s < 0.25:
		seg = 0
	case s < 0.5:
		seg = 1
	case s < 0.75:
		seg = 2
	default:
		seg = 3
	}
	t := (s - float64(seg)*0.25) * 4

	from, to := scoreAnchors[seg], scoreAnchors[seg+1]
	var c domain.RGBA
	for i := 0; i < 3; i++ {
		c[i] = channel(from[i], to[i], t)
	}
	c[3] = scoreAlpha
	return c
}

// channel truncates toward zero, never rounds. The explicit conversion keeps
// the product from being fused into a multiply-add.
func channel(start, end, t float64) uint8 {
	v := int(start + float64((end-start)*t))
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clampUnit(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}

// DemandLegend lists the five palette anchors from Very Low to Very High.
func DemandLegend() []domain.LegendEntry {
	out := make([]domain.LegendEntry, len(scoreAnchors))
	for i, a := range scoreAnchors {
		out[i] = domain.LegendEntry{
			Key:   slug(demandLegendLabels[i]),
			Label: demandLegendLabels[i],
			Color: domain.RGBA{uint8(a[0]), uint8(a[1]), uint8(a[2]), 255},
		}
	}
	return out
}
