package domain

import (
	"context"
	"time"
)

// Warehouse is the read-only data store behind the dashboard. Every method
// returns already-typed records; no positional header promotion happens above it.
type Warehouse interface {
	ZipLabels(ctx context.Context) ([]ZipCodeLabel, error)
	Amenities(ctx context.Context) ([]AmenityPoint, error)
	PolygonDocument(ctx context.Context) ([]byte, error)

	// ScoreColumn returns the single demand score column of a scenario table,
	// one value per ZIP label in label order. NULL scores come back as NaN.
	ScoreColumn(ctx context.Context, table string) ([]float64, error)
	DetailTable(ctx context.Context, table string) (DetailRows, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Datasets names the two warehouse tables backing one scenario.
type Datasets struct {
	ScoreTable  string `json:"score_table"`
	DetailTable string `json:"detail_table"`
}

type ViewState struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      float64 `json:"zoom"`
}

// BBox is [minLon, minLat, maxLon, maxLat].
type BBox [4]float64

type MapView struct {
	Scenario  int               `json:"scenario"`
	Datasets  Datasets          `json:"datasets"`
	View      ViewState         `json:"view"`
	Bounds    *BBox             `json:"bounds,omitempty"`
	Unmatched int               `json:"unmatched"`
	Features  FeatureCollection `json:"features"`
	Amenities *AmenityLayer     `json:"amenities,omitempty"`
}

type LegendEntry struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Color RGBA   `json:"color"`
}

type Legend struct {
	Demand    []LegendEntry `json:"demand"`
	Amenities []LegendEntry `json:"amenities"`
}
