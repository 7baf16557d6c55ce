package shared_test

import (
	"testing"
	"time"

	"brooklyn_demand/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("HTTP_ADDR", "")
	c := shared.Load()
	if c.HTTPAddr != ":8080" || c.AppEnv != "prod" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.CacheTTL != 15*time.Minute {
		t.Fatalf("cache ttl: %v", c.CacheTTL)
	}
	if c.ViewLat != 40.65 || c.ViewLon != -73.95 || c.ViewZoom != 10.5 {
		t.Fatalf("view defaults: %+v", c)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("CACHE_TTL_SECONDS", "60")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	c := shared.Load()
	if c.HTTPAddr != ":9999" {
		t.Fatalf("HTTP_ADDR not applied: %s", c.HTTPAddr)
	}
	if c.CacheTTL != time.Minute {
		t.Fatalf("CACHE_TTL_SECONDS not applied: %v", c.CacheTTL)
	}
	if len(c.CORSOrigins) != 2 || c.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("CORS_ORIGINS: %v", c.CORSOrigins)
	}
	if c.RateLimitRPS != 2.5 {
		t.Fatalf("RATE_LIMIT_RPS: %v", c.RateLimitRPS)
	}
}
