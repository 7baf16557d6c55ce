package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"brooklyn_demand/internal/adapters/observability"
	"brooklyn_demand/internal/domain"
)

const amenitiesKey = "amenities:all"

// DashboardService runs one full pass per request. Every stage gets its
// inputs explicitly; nothing is shared between passes except the cache.
type DashboardService struct {
	repo     domain.Warehouse
	cache    domain.Cache
	cacheTTL time.Duration
	view     domain.ViewState
}

func NewDashboardService(r domain.Warehouse, c domain.Cache, ttl time.Duration, view domain.ViewState) *DashboardService {
	return &DashboardService{repo: r, cache: c, cacheTTL: ttl, view: view}
}

func (s *DashboardService) Map(ctx context.Context, pct int) (domain.MapView, error) {
	key := fmt.Sprintf("map:%d", pct)
	var mv domain.MapView
	if s.cacheGet(ctx, key, &mv) {
		return mv, nil
	}

	start := time.Now()
	mv, err := s.buildMap(ctx, pct)
	observability.ObservePass("map", err, time.Since(start))
	if err != nil {
		return domain.MapView{}, err
	}
	observability.SetUnmatched(pct, mv.Unmatched)
	log.Info().
		Int("pct", pct).
		Int("features", len(mv.Features.Features)).
		Int("unmatched", mv.Unmatched).
		Dur("duration", time.Since(start)).
		Msg("map pass complete")

	s.cacheSet(ctx, key, mv)
	return mv, nil
}

func (s *DashboardService) buildMap(ctx context.Context, pct int) (domain.MapView, error) {
	ds := ResolveDatasets(pct)

	var (
		labels []domain.ZipCodeLabel
		doc    []byte
		values []float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { labels, err = s.repo.ZipLabels(gctx); return })
	g.Go(func() (err error) { doc, err = s.repo.PolygonDocument(gctx); return })
	g.Go(func() (err error) { values, err = s.repo.ScoreColumn(gctx, ds.ScoreTable); return })
	if err := g.Wait(); err != nil {
		return domain.MapView{}, err
	}

	// A bad document aborts before any join work.
	features, err := ParseFeatureCollection(doc)
	if err != nil {
		return domain.MapView{}, err
	}
	scores, err := AlignScores(labels, values)
	if err != nil {
		return domain.MapView{}, err
	}

	enriched := Enrich(FilterBrooklyn(features), ScoreIndex(scores))
	mv := domain.MapView{
		Scenario:  pct,
		Datasets:  ds,
		View:      s.view,
		Unmatched: Unmatched(enriched),
		Features:  domain.FeatureCollection{Type: "FeatureCollection", Features: enriched},
	}
	if bbox, ok := Bounds(enriched); ok {
		mv.Bounds = &bbox
	}
	return mv, nil
}

// Amenities returns the marker layer for the selected categories. A nil
// selection selects every category present; an empty one plots nothing.
func (s *DashboardService) Amenities(ctx context.Context, categories []string) (domain.AmenityLayer, error) {
	var points []domain.AmenityPoint
	if !s.cacheGet(ctx, amenitiesKey, &points) {
		start := time.Now()
		var err error
		points, err = s.repo.Amenities(ctx)
		observability.ObservePass("amenities", err, time.Since(start))
		if err != nil {
			return domain.AmenityLayer{}, err
		}
		s.cacheSet(ctx, amenitiesKey, points)
	}

	all := Categories(points)
	allowed, selected := setOf(categories, all)
	markers, dropped := Markers(FilterAmenities(points, allowed))
	if dropped > 0 {
		log.Debug().Int("dropped", dropped).Msg("amenities without usable coordinates")
	}
	return domain.AmenityLayer{
		Categories: all,
		Selected:   selected,
		Dropped:    dropped,
		Points:     markers,
	}, nil
}

// Table builds the side table for a scenario. It is not cached; the detail
// tables are small and the export must reflect the warehouse.
func (s *DashboardService) Table(ctx context.Context, pct int) (domain.DetailTable, error) {
	ds := ResolveDatasets(pct)
	start := time.Now()

	var (
		labels []domain.ZipCodeLabel
		values []float64
		detail domain.DetailRows
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { labels, err = s.repo.ZipLabels(gctx); return })
	g.Go(func() (err error) { values, err = s.repo.ScoreColumn(gctx, ds.ScoreTable); return })
	g.Go(func() (err error) { detail, err = s.repo.DetailTable(gctx, ds.DetailTable); return })
	err := g.Wait()

	var t domain.DetailTable
	if err == nil {
		var scores []domain.DemandScore
		if scores, err = AlignScores(labels, values); err == nil {
			t, err = BuildTable(pct, ds.DetailTable, scores, detail)
		}
	}
	observability.ObservePass("table", err, time.Since(start))
	return t, err
}

// Legend is static; it lives here so handlers have a single entry point.
func (s *DashboardService) Legend() domain.Legend {
	return domain.Legend{Demand: DemandLegend(), Amenities: AmenityLegend()}
}

// Invalidate drops cached passes, e.g. after the warehouse was reloaded.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, pct := range Scenarios() {
		_ = s.cache.Del(ctx, fmt.Sprintf("map:%d", pct))
	}
	_ = s.cache.Del(ctx, amenitiesKey)
}

func (s *DashboardService) cacheGet(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		return false
	}
	return ok
}

func (s *DashboardService) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, v, s.cacheTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}
