package main

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/adapters/firecrawl"
	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/adapters/observability"
	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/adapters/openai"
	redisad "github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/adapters/redis"
	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/app"
	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/domain"
	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/shared"
	mysqlrepo "github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/storage/mysql"
)

// Batch refresher: runs the same pipeline the admin endpoint uses across
// every configured listing, for cron-driven review refreshes.
func main() {
	ctx := context.Background()
	_ = godotenv.Load()
	cfg := shared.Load()

	runID := uuid.NewString()
	log.Logger = observability.NewLogger(cfg.AppEnv).With().Str("run", runID).Logger()

	log.Info().
		Int("workers", cfg.Workers).
		Int("listings", len(cfg.ListingURLs)).
		Msg("review refresh starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	scraper, err := firecrawl.New(cfg.FirecrawlBase, cfg.FirecrawlKey, 2)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Firecrawl client")
	}

	var extractor domain.Extractor
	if cl, eerr := openai.New(cfg.OpenAIBase, cfg.OpenAIKey, cfg.Model); eerr == nil {
		extractor = cl
	} else {
		log.Warn().Msg("no completion credentials; using the regex fallback extractor")
	}

	ing := app.NewIngestionService(scraper, extractor, repo, cache, cfg.SearchResults)

	targets := make([]app.Target, 0, len(cfg.ListingURLs))
	for _, u := range cfg.ListingURLs {
		targets = append(targets, app.Target{
			URL:   u,
			Query: cfg.PropertyName + " guest reviews",
		})
	}

	app.RunBatch(ctx, ing, targets, cfg.Workers)
	log.Info().Msg("review refresh completed")
}
