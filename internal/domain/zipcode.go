package domain

import "encoding/json"

// RGBA marshals as a JSON array of four numbers, the shape the map layers read.
type RGBA [4]uint8

type ZipCodeLabel struct {
	Zipcode string `json:"zipcode"`
}

type DemandScore struct {
	Zipcode string  `json:"zipcode"`
	Score   float64 `json:"demand_score"`
}

// ZipPolygonFeature is one GeoJSON feature of the municipal ZIP boundary
// collection. Geometry is kept as raw JSON and never rewritten.
type ZipPolygonFeature struct {
	Type       string          `json:"type"`
	ID         json.RawMessage `json:"id,omitempty"`
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

func (f ZipPolygonFeature) PostalCode() string { return f.stringProp("postalCode") }
func (f ZipPolygonFeature) Borough() string    { return f.stringProp("borough") }

func (f ZipPolygonFeature) stringProp(k string) string {
	s, _ := f.Properties[k].(string)
	return s
}

// Property keys added by enrichment.
const (
	PropDemandScore = "demand_score"
	PropFillColor   = "fill_color"
	PropTooltip     = "tooltip"
)

// EnrichedFeature is a ZIP polygon joined with its demand score.
// DemandScore is nil iff no score row matched the postal code.
type EnrichedFeature struct {
	ZipPolygonFeature
	DemandScore *float64
	FillColor   RGBA
	Tooltip     string
}

// MarshalJSON emits a plain GeoJSON feature with the derived fields merged
// into its properties.
func (e EnrichedFeature) MarshalJSON() ([]byte, error) {
	props := make(map[string]any, len(e.Properties)+3)
	for k, v := range e.Properties {
		props[k] = v
	}
	props[PropDemandScore] = e.DemandScore
	props[PropFillColor] = e.FillColor
	props[PropTooltip] = e.Tooltip

	typ := e.Type
	if typ == "" {
		typ = "Feature"
	}
	return json.Marshal(ZipPolygonFeature{
		Type:       typ,
		ID:         e.ID,
		Properties: props,
		Geometry:   e.Geometry,
	})
}

func (e *EnrichedFeature) UnmarshalJSON(b []byte) error {
	var f ZipPolygonFeature
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	var derived struct {
		Properties struct {
			DemandScore *float64 `json:"demand_score"`
			FillColor   RGBA     `json:"fill_color"`
			Tooltip     string   `json:"tooltip"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(b, &derived); err != nil {
		return err
	}
	if f.Properties == nil {
		f.Properties = map[string]any{}
	}
	delete(f.Properties, PropDemandScore)
	delete(f.Properties, PropFillColor)
	delete(f.Properties, PropTooltip)

	*e = EnrichedFeature{
		ZipPolygonFeature: f,
		DemandScore:       derived.Properties.DemandScore,
		FillColor:         derived.Properties.FillColor,
		Tooltip:           derived.Properties.Tooltip,
	}
	return nil
}

type FeatureCollection struct {
	Type     string            `json:"type"`
	Features []EnrichedFeature `json:"features"`
}
