package app_test

import (
	"math"
	"testing"

	"brooklyn_demand/internal/app"
	"brooklyn_demand/internal/domain"
)

func ptr(f float64) *float64 { return &f }

func TestColorFor(t *testing.T) {
	if got := app.ColorFor("bus_station"); got != (domain.RGBA{255, 140, 0, 255}) {
		t.Fatalf("bus_station = %v", got)
	}
	if got := app.ColorFor("taxi"); got != (domain.RGBA{255, 255, 0, 255}) {
		t.Fatalf("taxi = %v", got)
	}
	if got := app.ColorFor("helipad"); got != app.FallbackAmenityColor {
		t.Fatalf("unknown = %v", got)
	}
}

func TestAmenityLegend_CoversPalette(t *testing.T) {
	l := app.AmenityLegend()
	if len(l) != 13 {
		t.Fatalf("len = %d", len(l))
	}
	if l[0].Key != "parking" || l[12].Key != "bus_station" {
		t.Fatalf("order: %s .. %s", l[0].Key, l[12].Key)
	}
	for _, e := range l {
		if e.Color != app.ColorFor(e.Key) {
			t.Fatalf("%s legend color %v != marker color %v", e.Key, e.Color, app.ColorFor(e.Key))
		}
	}
}

func TestFilterAmenities(t *testing.T) {
	pts := []domain.AmenityPoint{
		{Category: "taxi", Zipcode: "1"},
		{Category: "fuel", Zipcode: "2"},
		{Category: "taxi", Zipcode: "3"},
	}
	allowed := map[string]struct{}{"taxi": {}}

	out := app.FilterAmenities(pts, allowed)
	if len(out) != 2 || out[0].Zipcode != "1" || out[1].Zipcode != "3" {
		t.Fatalf("unexpected: %+v", out)
	}
	if again := app.FilterAmenities(out, allowed); len(again) != len(out) {
		t.Fatalf("filter should be idempotent")
	}
	if none := app.FilterAmenities(pts, map[string]struct{}{}); len(none) != 0 {
		t.Fatalf("empty allowed set should drop everything")
	}
}

func TestMarkers_DropsUnplottable(t *testing.T) {
	pts := []domain.AmenityPoint{
		{Category: "taxi", Zipcode: "11201", Lat: ptr(40.69), Lon: ptr(-73.99)},
		{Category: "taxi", Zipcode: "11201", Lat: nil, Lon: ptr(-73.99)},
		{Category: "fuel", Zipcode: "11215", Lat: ptr(math.NaN()), Lon: ptr(-73.99)},
		{Category: "<x>", Zipcode: "11215", Lat: ptr(40.6), Lon: ptr(-73.9)},
	}
	m, dropped := app.Markers(pts)
	if dropped != 2 || len(m) != 2 {
		t.Fatalf("markers=%d dropped=%d", len(m), dropped)
	}
	if m[0].Position != [2]float64{-73.99, 40.69} {
		t.Fatalf("position is lon,lat: %v", m[0].Position)
	}
	if m[0].Tooltip != "<b>Amenity:</b> taxi<br><b>ZIP Code:</b> 11201" {
		t.Fatalf("tooltip: %q", m[0].Tooltip)
	}
	if m[1].Tooltip != "<b>Amenity:</b> &lt;x&gt;<br><b>ZIP Code:</b> 11215" {
		t.Fatalf("tooltip not escaped: %q", m[1].Tooltip)
	}
}

func TestCategories(t *testing.T) {
	pts := []domain.AmenityPoint{{Category: "taxi"}, {Category: "fuel"}, {Category: "taxi"}, {Category: "bus_station"}}
	got := app.Categories(pts)
	want := []string{"bus_station", "fuel", "taxi"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v", got)
		}
	}
}
