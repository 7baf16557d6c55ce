package mysql

const zipLabelsSQL = `
SELECT zipcode
FROM zipcode_labels
ORDER BY ord
`

// Coordinates are stored as text upstream; coercion happens in Go.
const amenitiesSQL = `
SELECT amenity, zipcode, lat, lon
FROM transportation_amenities
ORDER BY id
`

const polygonDocumentSQL = `
SELECT doc
FROM zipcode_polygons
ORDER BY id
LIMIT 1
`

// Scenario tables are named at runtime; %s is a quoted identifier.
const scoreColumnSQL = "SELECT demand_score FROM %s ORDER BY ord"

const detailTableSQL = "SELECT * FROM %s ORDER BY ord"

// ordColumn only orders rows; it is never shown.
const ordColumn = "ord"
