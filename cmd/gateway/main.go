package main

import (
	"database/sql"
	"errors"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/adapters/daraja"
	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/adapters/firecrawl"
	server "github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/adapters/http_server"
	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/adapters/jwtauth"
	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/adapters/observability"
	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/adapters/openai"
	redisad "github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/adapters/redis"
	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/app"
	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/domain"
	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/shared"
	mysqlrepo "github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/storage/mysql"
)

func main() {
	_ = godotenv.Load()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// provider clients; a missing credential leaves the client nil and the
	// corresponding endpoint returns a configuration error
	var paymentClient domain.PaymentClient
	if cl, err := daraja.New(cfg.DarajaBase, cfg.ConsumerKey, cfg.ConsumerSecret, cfg.Passkey, cfg.Shortcode, cfg.CallbackURL); err == nil {
		paymentClient = cl
	} else if errors.Is(err, domain.ErrMissingCredentials) {
		log.Warn().Msg("M-Pesa credentials not configured; STK push disabled")
	} else {
		log.Fatal().Err(err).Msg("daraja client init failed")
	}

	var scraper domain.Scraper
	if cl, err := firecrawl.New(cfg.FirecrawlBase, cfg.FirecrawlKey, 2); err == nil {
		scraper = cl
	} else {
		log.Warn().Msg("Firecrawl credentials not configured; review ingestion disabled")
	}

	var extractor domain.Extractor
	if cl, err := openai.New(cfg.OpenAIBase, cfg.OpenAIKey, cfg.Model); err == nil {
		extractor = cl
	} else {
		log.Warn().Msg("completion credentials not configured; ingestion will use the regex fallback")
	}

	payments := app.NewPaymentService(paymentClient)
	ingest := app.NewIngestionService(scraper, extractor, repo, cache, cfg.SearchResults)
	q := app.NewQueryService(repo, cache, cfg.CacheTTL)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Payments: payments,
		Ingest:   ingest,
		Q:        q,
		Target: app.Target{
			URL:   cfg.ListingURL,
			Query: cfg.PropertyName + " guest reviews",
		},
	}, server.RequireAdmin(jwtauth.New(cfg.JWTSecret), repo))

	log.Info().Str("addr", cfg.HTTPAddr).Msg("gateway listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
