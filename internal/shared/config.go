package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	// M-Pesa Daraja
	DarajaBase     string
	ConsumerKey    string
	ConsumerSecret string
	Passkey        string
	Shortcode      string
	CallbackURL    string

	// Firecrawl
	FirecrawlBase string
	FirecrawlKey  string

	// Completion provider (optional; absence triggers the regex fallback)
	OpenAIBase string
	OpenAIKey  string
	Model      string

	// Ingestion targets
	ListingURL    string
	ListingURLs   []string // extra listings for the batch refresher
	PropertyName  string
	SearchResults int

	JWTSecret string

	Workers  int
	CacheTTL time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/rafiki?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),

		DarajaBase:     env("DARAJA_BASE_URL", "https://sandbox.safaricom.co.ke"),
		ConsumerKey:    env("MPESA_CONSUMER_KEY", ""),
		ConsumerSecret: env("MPESA_CONSUMER_SECRET", ""),
		Passkey:        env("MPESA_PASSKEY", ""),
		Shortcode:      env("MPESA_SHORTCODE", "174379"),
		CallbackURL:    env("MPESA_CALLBACK_URL", "https://api.rafikihousestays.com/v1/payments/callback"),

		FirecrawlBase: env("FIRECRAWL_BASE_URL", "https://api.firecrawl.dev"),
		FirecrawlKey:  env("FIRECRAWL_API_KEY", ""),

		OpenAIBase: env("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIKey:  env("OPENAI_API_KEY", ""),
		Model:      env("OPENAI_MODEL", "gpt-4o-mini"),

		ListingURL:    env("LISTING_URL", "https://www.booking.com/hotel/ke/rafiki-house-diani.html"),
		PropertyName:  env("PROPERTY_NAME", "Rafiki House Diani"),
		SearchResults: atoi("SEARCH_RESULT_COUNT", 5),

		JWTSecret: env("JWT_SECRET", ""),

		Workers:  atoi("INGEST_WORKERS", 4),
		CacheTTL: time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	if urls := os.Getenv("LISTING_URLS"); urls != "" {
		for _, u := range strings.Split(urls, ",") {
			if u = strings.TrimSpace(u); u != "" {
				c.ListingURLs = append(c.ListingURLs, u)
			}
		}
	}
	if len(c.ListingURLs) == 0 {
		c.ListingURLs = []string{c.ListingURL}
	}
	if c.FirecrawlKey == "" {
		log.Warn().Msg("FIRECRAWL_API_KEY is empty")
	}
	if c.OpenAIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is empty; ingestion will use the regex fallback extractor")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
