package main

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"eventhour/internal/adapters/geocache"
	"eventhour/internal/adapters/nominatim"
	"eventhour/internal/adapters/observability"
	"eventhour/internal/app"
	"eventhour/internal/domain"
	"eventhour/internal/shared"
	mysqlrepo "eventhour/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	_ = godotenv.Load()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv, "eventhour-geobackfill", cfg.LogLevel)

	log.Info().
		Str("provider", cfg.NominatimBase).
		Int("workers", cfg.BackfillWorkers).
		Int("batch", cfg.BackfillBatch).
		Msg("geocode backfill starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	provider, err := nominatim.New(cfg.NominatimBase, cfg.NominatimUserAgent, cfg.NominatimRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize geocoding client")
	}
	geocoder := app.NewGeocoder(provider, geocache.NewMemory(), app.GermanPostalCodes(), cfg.GeocodeTimeout)
	svc := app.NewBackfillService(repo, geocoder, cfg.DefaultCountry)

	sem := semaphore.NewWeighted(int64(max(cfg.BackfillWorkers, 1)))
	var wg sync.WaitGroup
	var updated, unresolved atomic.Int64

	after := ""
	for {
		batch, err := svc.NextBatch(ctx, after, cfg.BackfillBatch)
		if err != nil {
			log.Fatal().Err(err).Msg("listing experiences failed")
		}
		if len(batch) == 0 {
			break
		}
		after = batch[len(batch)-1].ID

		for _, e := range batch {
			// acquire before launching the goroutine; release inside it
			if err := sem.Acquire(ctx, 1); err != nil {
				log.Fatal().Err(err).Msg("semaphore acquire failed")
			}

			wg.Add(1)
			go func(e domain.Experience) {
				defer wg.Done()
				defer sem.Release(1)

				ok, err := svc.BackfillExperience(ctx, e)
				switch {
				case err != nil:
					log.Warn().Str("id", e.ID).Err(err).Msg("backfill failed")
				case !ok:
					unresolved.Add(1)
					log.Info().Str("id", e.ID).Str("city", e.City).Str("postal_code", e.PostalCode).Msg("location unresolved")
				default:
					updated.Add(1)
				}
			}(e)
		}
	}

	wg.Wait()
	log.Info().Int64("updated", updated.Load()).Int64("unresolved", unresolved.Load()).Msg("geocode backfill completed")
}
