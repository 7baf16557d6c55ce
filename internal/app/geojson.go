package app

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"brooklyn_demand/internal/domain"
)

const (
	brooklyn = "Brooklyn"
	// Rockaway peninsula ZIP that the municipal collection tags as Brooklyn.
	excludedPostalCode = "11693"
)

// ParseFeatureCollection decodes the warehouse polygon document. The document
// may also arrive double encoded as a JSON string.
func ParseFeatureCollection(doc []byte) ([]domain.ZipPolygonFeature, error) {
	doc = bytes.TrimSpace(doc)
	if len(doc) > 0 && doc[0] == '"' {
		var inner string
		if err := json.Unmarshal(doc, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedGeoJSON, err)
		}
		doc = []byte(inner)
	}

	var fc struct {
		Type     string             `json:"type"`
		Features *[]json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(doc, &fc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedGeoJSON, err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("%w: type %q is not FeatureCollection", domain.ErrMalformedGeoJSON, fc.Type)
	}
	if fc.Features == nil {
		return nil, fmt.Errorf("%w: missing features", domain.ErrMalformedGeoJSON)
	}

	out := make([]domain.ZipPolygonFeature, 0, len(*fc.Features))
	for i, raw := range *fc.Features {
		var f domain.ZipPolygonFeature
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("%w: feature %d: %v", domain.ErrMalformedGeoJSON, i, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// FilterBrooklyn keeps Brooklyn features and drops the mis-tagged 11693.
func FilterBrooklyn(features []domain.ZipPolygonFeature) []domain.ZipPolygonFeature {
	out := make([]domain.ZipPolygonFeature, 0, len(features))
	for _, f := range features {
		if f.Borough() == brooklyn && f.PostalCode() != excludedPostalCode {
			out = append(out, f)
		}
	}
	return out
}

// Bounds returns the union bounding box of every decodable geometry.
// ok is false when no feature has a usable geometry.
func Bounds(features []domain.EnrichedFeature) (bbox domain.BBox, ok bool) {
	b := geom.NewBounds(geom.XY)
	for _, f := range features {
		if len(f.Geometry) == 0 || bytes.Equal(f.Geometry, []byte("null")) {
			continue
		}
		var g geom.T
		if err := geojson.Unmarshal(f.Geometry, &g); err != nil {
			log.Warn().Err(err).Str("postal_code", f.PostalCode()).Msg("undecodable geometry")
			continue
		}
		if g == nil || len(g.FlatCoords()) == 0 {
			continue
		}
		b.Extend(g)
		ok = true
	}
	if !ok {
		return domain.BBox{}, false
	}
	return domain.BBox{b.Min(0), b.Min(1), b.Max(0), b.Max(1)}, true
}
