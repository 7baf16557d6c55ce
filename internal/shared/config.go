package shared

import (
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv         string
	LogLevel       string
	HTTPAddr       string
	MetricsAddr    string
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	CacheTTL       time.Duration
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
	ViewLat        float64
	ViewLon        float64
	ViewZoom       float64
}

// Load reads an optional ./config.yaml, then lets environment variables
// (APP_ENV, HTTP_ADDR, MYSQL_DSN, ...) override it.
func Load() Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("app_env", "prod")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("mysql_dsn", "root:root@tcp(localhost:3306)/brooklyn?charset=utf8mb4&loc=UTC")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("cache_ttl_seconds", 900)
	v.SetDefault("request_timeout_seconds", 15)
	v.SetDefault("rate_limit_rps", 50)
	v.SetDefault("rate_limit_burst", 100)
	v.SetDefault("cors_origins", "*")
	// Default framing of Brooklyn.
	v.SetDefault("view_lat", 40.65)
	v.SetDefault("view_lon", -73.95)
	v.SetDefault("view_zoom", 10.5)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn().Err(err).Msg("config.yaml unreadable, using env and defaults")
		}
	}

	c := Config{
		AppEnv:         v.GetString("app_env"),
		LogLevel:       v.GetString("log_level"),
		HTTPAddr:       v.GetString("http_addr"),
		MetricsAddr:    v.GetString("metrics_addr"),
		MySQLDSN:       v.GetString("mysql_dsn"),
		RedisAddr:      v.GetString("redis_addr"),
		RedisPass:      v.GetString("redis_password"),
		RedisDB:        v.GetInt("redis_db"),
		CacheTTL:       time.Duration(v.GetInt("cache_ttl_seconds")) * time.Second,
		RequestTimeout: time.Duration(v.GetInt("request_timeout_seconds")) * time.Second,
		RateLimitRPS:   v.GetFloat64("rate_limit_rps"),
		RateLimitBurst: v.GetInt("rate_limit_burst"),
		CORSOrigins:    splitCSV(v.GetString("cors_origins")),
		ViewLat:        v.GetFloat64("view_lat"),
		ViewLon:        v.GetFloat64("view_lon"),
		ViewZoom:       v.GetFloat64("view_zoom"),
	}
	if c.RedisAddr == "" {
		log.Warn().Msg("REDIS_ADDR is empty, passes will not be cached")
	}
	return c
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
