package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"eventhour/internal/adapters/geocache"
	server "eventhour/internal/adapters/http_server"
	"eventhour/internal/adapters/nominatim"
	"eventhour/internal/adapters/observability"
	redisad "eventhour/internal/adapters/redis"
	"eventhour/internal/app"
	"eventhour/internal/domain"
	"eventhour/internal/shared"
	"eventhour/internal/storage/memory"
	mysqlrepo "eventhour/internal/storage/mysql"
)

func main() {
	_ = godotenv.Load()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "eventhour-api", cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	repo := openRepository(cfg)

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cache.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; caches degrade to misses")
	}
	cancel()

	var geoCache domain.GeoCache = geocache.NewMemory()
	if cfg.GeoCache == "redis" {
		geoCache = redisad.NewGeoCache(cache)
	}

	provider, err := nominatim.New(cfg.NominatimBase, cfg.NominatimUserAgent, cfg.NominatimRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize geocoding client")
	}

	geocoder := app.NewGeocoder(provider, geoCache, app.GermanPostalCodes(), cfg.GeocodeTimeout)
	search := app.NewSearchService(app.NewQueryPlanner(repo), geocoder, app.NewFacetAggregator(repo), cfg.DefaultCountry)
	suggest := app.NewSuggestionService(repo, cache, cfg.CacheTTL)

	// http
	srv := server.New(cfg.CORSOrigins)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Search:         search,
		Suggest:        suggest,
		Geocoder:       geocoder,
		DefaultCountry: cfg.DefaultCountry,
	})

	log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.Store).Str("geo_cache", cfg.GeoCache).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

func openRepository(cfg shared.Config) domain.ExperienceRepository {
	if cfg.Store == "memory" {
		if cfg.SeedFile == "" {
			return memory.New(nil, nil)
		}
		repo, err := memory.Load(cfg.SeedFile)
		if err != nil {
			log.Fatal().Err(err).Str("seed", cfg.SeedFile).Msg("failed to load seed file")
		}
		log.Info().Str("seed", cfg.SeedFile).Msg("serving in-memory catalogue")
		return repo
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")
	return mysqlrepo.New(db)
}
