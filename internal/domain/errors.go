package domain

import "errors"

var (
	// ErrDatasetNotFound is returned when the warehouse has no table for the
	// selected scenario. It fails the whole pass.
	ErrDatasetNotFound = errors.New("dataset not found")

	ErrInvalidScenario  = errors.New("invalid scenario")
	ErrMalformedGeoJSON = errors.New("malformed geojson")
	ErrMalformedDataset = errors.New("malformed dataset")
)
