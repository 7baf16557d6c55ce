package domain

// AmenityPoint is one transportation point of interest. Lat and Lon are nil
// when the warehouse value could not be coerced to a number.
type AmenityPoint struct {
	Category string   `json:"amenity"`
	Zipcode  string   `json:"zipcode"`
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`
}

// AmenityMarker is a plottable point with its resolved marker color.
type AmenityMarker struct {
	Category string     `json:"amenity"`
	Zipcode  string     `json:"zipcode"`
	Position [2]float64 `json:"position"` // lon, lat
	Color    RGBA       `json:"color"`
	Tooltip  string     `json:"tooltip"`
}

type AmenityLayer struct {
	Categories []string        `json:"categories"`
	Selected   []string        `json:"selected"`
	Dropped    int             `json:"dropped"`
	Points     []AmenityMarker `json:"points"`
}
