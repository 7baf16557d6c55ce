//go:build integration || !unit

package integration

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	httpserver "brooklyn_demand/internal/adapters/http_server"
	redisad "brooklyn_demand/internal/adapters/redis"
	"brooklyn_demand/internal/app"
	"brooklyn_demand/internal/domain"
	mysqlrepo "brooklyn_demand/internal/storage/mysql"
)

// ---------- helpers ----------

func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir()

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(b)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

const polygonDoc = `{"type":"FeatureCollection","features":[` +
	`{"type":"Feature","properties":{"borough":"Brooklyn","postalCode":"11201"},"geometry":{"type":"Polygon","coordinates":[[[-74.0,40.69],[-73.98,40.69],[-73.98,40.70],[-74.0,40.69]]]}},` +
	`{"type":"Feature","properties":{"borough":"Queens","postalCode":"11101"},"geometry":{"type":"Polygon","coordinates":[[[-73.95,40.74],[-73.93,40.74],[-73.93,40.76],[-73.95,40.74]]]}},` +
	`{"type":"Feature","properties":{"borough":"Brooklyn","postalCode":"11215"},"geometry":{"type":"Polygon","coordinates":[[[-73.99,40.66],[-73.97,40.66],[-73.97,40.68],[-73.99,40.66]]]}},` +
	`{"type":"Feature","properties":{"borough":"Brooklyn","postalCode":"11693"},"geometry":{"type":"Polygon","coordinates":[[[-73.83,40.58],[-73.80,40.58],[-73.80,40.60],[-73.83,40.58]]]}}` +
	`]}`

func seed(t *testing.T, db *sql.DB) {
	t.Helper()
	stmts := []string{
		`INSERT INTO zipcode_labels (ord, zipcode) VALUES (1, '11201'), (2, '11215'), (3, '11693')`,
		`INSERT INTO transportation_amenities (amenity, zipcode, lat, lon) VALUES
		   ('taxi', '11201', '40.6955', '-73.9903'),
		   ('bus_station', '11215', '40.6700', '-73.9800'),
		   ('fuel', '11215', 'n/a', '-73.98')`,
		`INSERT INTO DEMAND_SCORES_10PCT (ord, demand_score) VALUES (1, 0.1234), (2, NULL), (3, 0.9)`,
		`INSERT INTO TRANSPORT_DATA_10PCT (ord, POPULATION, BUS_STOPS, SUBWAY_STATIONS, AVG_COMMUTE_MIN) VALUES
		   (1, 53041, 48, 9, 31.5), (2, 70150, 61, 6, NULL), (3, 1200, 2, 0, 55.0)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if _, err := db.Exec(`INSERT INTO zipcode_polygons (id, doc) VALUES (1, ?)`, polygonDoc); err != nil {
		t.Fatalf("seed polygons: %v", err)
	}
}

func startStack(t *testing.T) *httptest.Server {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=brooklyn",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/brooklyn?multiStatements=true&charset=utf8mb4&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	seed(t, db)

	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = cache.Close() })

	dash := app.NewDashboardService(mysqlrepo.New(db), cache, time.Minute,
		domain.ViewState{Latitude: 40.65, Longitude: -73.95, Zoom: 10.5})

	srv := httpserver.New(httpserver.Options{Timeout: 10 * time.Second})
	srv.MountHandlers(&httpserver.Handlers{D: dash})

	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

// ---------- the tests ----------

func TestHTTP_EndToEnd_Map(t *testing.T) {
	ts := startStack(t)

	res, err := http.Get(ts.URL + "/v1/map?pct=10&show_amenities=true&categories=taxi")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	etag := res.Header.Get("ETag")

	var mv domain.MapView
	if err := json.NewDecoder(res.Body).Decode(&mv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	fs := mv.Features.Features
	if len(fs) != 2 || fs[0].PostalCode() != "11201" || fs[1].PostalCode() != "11215" {
		t.Fatalf("unexpected features: %+v", fs)
	}
	if fs[0].DemandScore == nil || *fs[0].DemandScore != 0.12 {
		t.Fatalf("11201 score: %v", fs[0].DemandScore)
	}
	if fs[0].FillColor != (domain.RGBA{63, 39, 110, 180}) {
		t.Fatalf("11201 color: %v", fs[0].FillColor)
	}
	if fs[1].DemandScore != nil || fs[1].FillColor != app.UnavailableColor {
		t.Fatalf("NULL score should be unavailable: %+v", fs[1])
	}
	if mv.Amenities == nil || len(mv.Amenities.Points) != 1 || mv.Amenities.Points[0].Category != "taxi" {
		t.Fatalf("amenity layer: %+v", mv.Amenities)
	}

	// served from cache the second time, byte-identical so the ETag matches
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/map?pct=10&show_amenities=true&categories=taxi", nil)
	req.Header.Set("If-None-Match", etag)
	res2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	res2.Body.Close()
	if res2.StatusCode != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", res2.StatusCode)
	}
}

func TestHTTP_EndToEnd_Errors(t *testing.T) {
	ts := startStack(t)

	cases := map[string]int{
		"/v1/map?pct=25":   http.StatusNotFound,
		"/v1/map?pct=7":    http.StatusBadRequest,
		"/v1/table?pct=25": http.StatusNotFound,
	}
	for path, want := range cases {
		res, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		res.Body.Close()
		if res.StatusCode != want {
			t.Errorf("%s: status = %d, want %d", path, res.StatusCode, want)
		}
	}
}

func TestHTTP_EndToEnd_TableExport(t *testing.T) {
	ts := startStack(t)

	res, err := http.Get(ts.URL + "/v1/table?pct=10")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	var tbl domain.DetailTable
	if err := json.NewDecoder(res.Body).Decode(&tbl); err != nil {
		t.Fatalf("decode: %v", err)
	}
	res.Body.Close()
	if len(tbl.Rows) != 3 || tbl.Columns[1] != "DEMAND_SCORE" || tbl.Rows[1][1] != nil {
		t.Fatalf("unexpected table: %+v", tbl)
	}

	res, err = http.Get(ts.URL + "/v1/table.xlsx?pct=10")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("content type = %q", ct)
	}
}
