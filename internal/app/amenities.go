package app

import (
	"fmt"
	"html"
	"sort"

	"brooklyn_demand/internal/domain"
)

// FallbackAmenityColor marks categories outside the fixed palette.
var FallbackAmenityColor = domain.RGBA{128, 128, 128, 200}

type amenityStyle struct {
	category string
	label    string
	color    domain.RGBA
}

// Legend order.
var amenityStyles = [...]amenityStyle{
	{"parking", "Parking", domain.RGBA{255, 69, 0, 255}},
	{"bicycle_parking", "Bike Parking", domain.RGBA{0, 191, 255, 255}},
	{"parking_entrance", "Parking Entrance", domain.RGBA{139, 0, 139, 255}},
	{"fuel", "Fuel", domain.RGBA{255, 215, 0, 255}},
	{"bicycle_rental", "Bike Rental", domain.RGBA{0, 255, 127, 255}},
	{"charging_station", "Charging Station", domain.RGBA{138, 43, 226, 255}},
	{"car_wash", "Car Wash", domain.RGBA{0, 255, 255, 255}},
	{"parking_space", "Parking Space", domain.RGBA{255, 20, 147, 255}},
	{"taxi", "Taxi", domain.RGBA{255, 255, 0, 255}},
	{"car_rental", "Car Rental", domain.RGBA{178, 34, 34, 255}},
	{"bicycle_repair_station", "Bike Repair", domain.RGBA{124, 252, 0, 255}},
	{"car_sharing", "Car Sharing", domain.RGBA{255, 0, 255, 255}},
	{"bus_station", "Bus Station", domain.RGBA{255, 140, 0, 255}},
}

const amenityTooltip = "<b>Amenity:</b> %s<br><b>ZIP Code:</b> %s"

// ColorFor returns the marker color of a category. Unknown categories get
// FallbackAmenityColor, so every point stays renderable.
func ColorFor(category string) domain.RGBA {
	for _, s := range amenityStyles {
		if s.category == category {
			return s.color
		}
	}
	return FallbackAmenityColor
}

func AmenityLegend() []domain.LegendEntry {
	out := make([]domain.LegendEntry, len(amenityStyles))
	for i, s := range amenityStyles {
		out[i] = domain.LegendEntry{Key: s.category, Label: s.label, Color: s.color}
	}
	return out
}

// FilterAmenities keeps the points whose category is allowed, in order.
func FilterAmenities(points []domain.AmenityPoint, allowed map[string]struct{}) []domain.AmenityPoint {
	out := make([]domain.AmenityPoint, 0, len(points))
	for _, p := range points {
		if _, ok := allowed[p.Category]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Plottable reports whether both coordinates survived coercion.
func Plottable(p domain.AmenityPoint) bool {
	return p.Lat != nil && p.Lon != nil && finite(*p.Lat) && finite(*p.Lon)
}

// Markers drops unplottable points and resolves colors and tooltips.
func Markers(points []domain.AmenityPoint) (markers []domain.AmenityMarker, dropped int) {
	markers = make([]domain.AmenityMarker, 0, len(points))
	for _, p := range points {
		if !Plottable(p) {
			dropped++
			continue
		}
		markers = append(markers, domain.AmenityMarker{
			Category: p.Category,
			Zipcode:  p.Zipcode,
			Position: [2]float64{*p.Lon, *p.Lat},
			Color:    ColorFor(p.Category),
			Tooltip:  fmt.Sprintf(amenityTooltip, html.EscapeString(p.Category), html.EscapeString(p.Zipcode)),
		})
	}
	return markers, dropped
}

// Categories returns the sorted distinct categories present in points.
func Categories(points []domain.AmenityPoint) []string {
	seen := make(map[string]struct{}, len(amenityStyles))
	out := make([]string, 0, len(amenityStyles))
	for _, p := range points {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}
