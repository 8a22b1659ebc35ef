package shared

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	CORSOrigins []string

	Store    string // mysql|memory
	MySQLDSN string
	SeedFile string

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration
	GeoCache  string // memory|redis

	NominatimBase      string
	NominatimUserAgent string
	NominatimRPS       float64
	GeocodeTimeout     time.Duration
	DefaultCountry     string

	BackfillWorkers int
	BackfillBatch   int
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "prod")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("METRICS_ADDR", "")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("STORE", "mysql")
	v.SetDefault("MYSQL_DSN", "root:root@tcp(localhost:3306)/eventhour?parseTime=true&charset=utf8mb4,utf8&loc=UTC")
	v.SetDefault("SEED_FILE", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL_SECONDS", 900)
	v.SetDefault("GEO_CACHE", "memory")
	v.SetDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("NOMINATIM_USER_AGENT", "eventhour-search/1.0")
	v.SetDefault("NOMINATIM_RPS", 1.0)
	v.SetDefault("GEOCODE_TIMEOUT_MS", 5000)
	v.SetDefault("DEFAULT_COUNTRY", "DE")
	v.SetDefault("BACKFILL_WORKERS", 4)
	v.SetDefault("BACKFILL_BATCH", 200)
}

// Load reads defaults, then config/config.<APP_ENV>.yaml when present, then the environment.
func Load() Config {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	if path, ok := configFile(v.GetString("APP_ENV")); ok {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("config file unreadable, using env only")
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) Config {
	c := Config{
		AppEnv:             v.GetString("APP_ENV"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		HTTPAddr:           v.GetString("HTTP_ADDR"),
		MetricsAddr:        v.GetString("METRICS_ADDR"),
		CORSOrigins:        splitList(v.GetString("CORS_ORIGINS")),
		Store:              strings.ToLower(v.GetString("STORE")),
		MySQLDSN:           v.GetString("MYSQL_DSN"),
		SeedFile:           v.GetString("SEED_FILE"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisPass:          v.GetString("REDIS_PASSWORD"),
		RedisDB:            v.GetInt("REDIS_DB"),
		CacheTTL:           time.Duration(v.GetInt("CACHE_TTL_SECONDS")) * time.Second,
		GeoCache:           strings.ToLower(v.GetString("GEO_CACHE")),
		NominatimBase:      v.GetString("NOMINATIM_BASE_URL"),
		NominatimUserAgent: v.GetString("NOMINATIM_USER_AGENT"),
		NominatimRPS:       v.GetFloat64("NOMINATIM_RPS"),
		GeocodeTimeout:     time.Duration(v.GetInt("GEOCODE_TIMEOUT_MS")) * time.Millisecond,
		DefaultCountry:     strings.ToUpper(v.GetString("DEFAULT_COUNTRY")),
		BackfillWorkers:    v.GetInt("BACKFILL_WORKERS"),
		BackfillBatch:      v.GetInt("BACKFILL_BATCH"),
	}
	if c.Store == "memory" && c.SeedFile == "" {
		log.Warn().Msg("STORE=memory without SEED_FILE serves an empty catalogue")
	}
	return c
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// configFile looks for config/config.<env>.yaml from the working directory upwards.
func configFile(env string) (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	name := fmt.Sprintf("config.%s.yaml", env)
	for {
		p := filepath.Join(dir, "config", name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
