package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"

	"brooklyn_demand/internal/adapters/observability"
	"brooklyn_demand/internal/domain"
)

// ER_NO_SUCH_TABLE
const errNoSuchTable = 1146

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) ZipLabels(ctx context.Context) (out []domain.ZipCodeLabel, err error) {
	defer observe("zip_labels", time.Now(), &err)

	rows, err := r.db.QueryContext(ctx, zipLabelsSQL)
	if err != nil {
		return nil, mapErr("zipcode_labels", err)
	}
	defer rows.Close()

	for rows.Next() {
		var zip sql.NullString
		if err := rows.Scan(&zip); err != nil {
			return nil, err
		}
		out = append(out, domain.ZipCodeLabel{Zipcode: strings.TrimSpace(zip.String)})
	}
	return out, rows.Err()
}

func (r *Repo) Amenities(ctx context.Context) (out []domain.AmenityPoint, err error) {
	defer observe("amenities", time.Now(), &err)

	rows, err := r.db.QueryContext(ctx, amenitiesSQL)
	if err != nil {
		return nil, mapErr("transportation_amenities", err)
	}
	defer rows.Close()

	for rows.Next() {
		var amenity, zip, lat, lon sql.NullString
		if err := rows.Scan(&amenity, &zip, &lat, &lon); err != nil {
			return nil, err
		}
		out = append(out, domain.AmenityPoint{
			Category: strings.TrimSpace(amenity.String),
			Zipcode:  strings.TrimSpace(zip.String),
			Lat:      parseCoord(lat.String),
			Lon:      parseCoord(lon.String),
		})
	}
	return out, rows.Err()
}

func (r *Repo) PolygonDocument(ctx context.Context) (doc []byte, err error) {
	defer observe("zip_polygons", time.Now(), &err)

	var s sql.NullString
	if err := r.db.QueryRowContext(ctx, polygonDocumentSQL).Scan(&s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: zipcode_polygons is empty", domain.ErrDatasetNotFound)
		}
		return nil, mapErr("zipcode_polygons", err)
	}
	if !s.Valid {
		return nil, fmt.Errorf("%w: zipcode_polygons doc is NULL", domain.ErrMalformedGeoJSON)
	}
	return []byte(s.String), nil
}

func (r *Repo) ScoreColumn(ctx context.Context, table string) (out []float64, err error) {
	defer observe("demand_scores", time.Now(), &err)

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(scoreColumnSQL, quoteIdent(table)))
	if err != nil {
		return nil, mapErr(table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var f sql.NullFloat64
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedDataset, table, err)
		}
		if !f.Valid {
			out = append(out, math.NaN())
			continue
		}
		out = append(out, f.Float64)
	}
	return out, rows.Err()
}

func (r *Repo) DetailTable(ctx context.Context, table string) (out domain.DetailRows, err error) {
	defer observe("transport_data", time.Now(), &err)

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(detailTableSQL, quoteIdent(table)))
	if err != nil {
		return domain.DetailRows{}, mapErr(table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return domain.DetailRows{}, err
	}
	skip := -1
	for i, c := range cols {
		if strings.EqualFold(c, ordColumn) {
			skip = i
			continue
		}
		out.Columns = append(out.Columns, c)
	}

	raw := make([]sql.RawBytes, len(cols))
	dest := make([]any, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return domain.DetailRows{}, err
		}
		row := make([]any, 0, len(out.Columns))
		for i, b := range raw {
			if i == skip {
				continue
			}
			row = append(row, cell(b))
		}
		out.Rows = append(out.Rows, row)
	}
	return out, rows.Err()
}

// parseCoord coerces a text coordinate. Anything that is not a finite
// number becomes nil so the point is dropped from the map, not the pass.
func parseCoord(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// cell turns a text-protocol value into int64, float64, string or nil.
func cell(b sql.RawBytes) any {
	if b == nil {
		return nil
	}
	s := string(b)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return s
}

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func mapErr(table string, err error) error {
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) && me.Number == errNoSuchTable {
		return fmt.Errorf("%w: %s", domain.ErrDatasetNotFound, table)
	}
	return fmt.Errorf("query %s: %w", table, err)
}

func observe(dataset string, start time.Time, err *error) {
	observability.ObserveWarehouse(dataset, *err, time.Since(start))
}
