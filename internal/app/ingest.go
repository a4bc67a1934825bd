package app

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/adapters/observability"
	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/domain"
)

// minUsableContent is the shortest scraped text we consider worth sending
// to extraction. Target sites may block scrapers or return stubs.
const minUsableContent = 200

// Target identifies one property listing to ingest reviews for.
type Target struct {
	URL   string // listing page to scrape directly
	Query string // web-search query for the fallback
}

// ContentError reports that neither the direct scrape nor the search
// fallback produced usable text. It carries a preview of whatever was
// retrieved so the admin can judge what went wrong.
type ContentError struct {
	Preview string
}

func (e *ContentError) Error() string { return domain.ErrInsufficientContent.Error() }

func (e *ContentError) Unwrap() error { return domain.ErrInsufficientContent }

// IngestionService refreshes the reviews store from a third-party listing
// page: scrape, search fallback, model extraction, regex fallback, then a
// name-keyed upsert.
type IngestionService struct {
	scraper     domain.Scraper   // nil when the scraping credential is absent
	extractor   domain.Extractor // nil when the completion credential is absent
	repo        domain.ReviewRepository
	cache       domain.Cache
	searchLimit int
}

func NewIngestionService(sc domain.Scraper, ex domain.Extractor, repo domain.ReviewRepository, cache domain.Cache, searchLimit int) *IngestionService {
	if searchLimit <= 0 {
		searchLimit = 5
	}
	return &IngestionService{scraper: sc, extractor: ex, repo: repo, cache: cache, searchLimit: searchLimit}
}

// Ingest runs the full pipeline for one target. Re-running is safe for
// already-seen reviewer names (updated in place, not duplicated), but two
// distinct guests sharing a name will overwrite each other.
func (s *IngestionService) Ingest(ctx context.Context, t Target) (domain.IngestReport, error) {
	if s.scraper == nil {
		return domain.IngestReport{}, domain.ErrMissingCredentials
	}

	raw, source, err := s.retrieve(ctx, t)
	if err != nil {
		observability.ObserveIngest("none", "no_content")
		return domain.IngestReport{}, err
	}

	records := s.extract(ctx, raw)

	added, wrote := s.persist(ctx, records)
	if wrote {
		s.invalidateReviews(ctx)
	}

	observability.ObserveIngest(source, "ok")
	return domain.IngestReport{Added: added, Source: source}, nil
}

// retrieve tries the direct scrape first and falls back to a web search
// when the scrape fails or returns too little text.
func (s *IngestionService) retrieve(ctx context.Context, t Target) (string, string, error) {
	raw, err := s.scraper.Scrape(ctx, t.URL)
	if err == nil && len(raw) >= minUsableContent {
		return raw, domain.SourceDirectScrape, nil
	}
	if err != nil {
		log.Warn().Err(err).Str("url", t.URL).Msg("direct scrape failed; falling back to search")
	} else {
		log.Warn().Int("len", len(raw)).Str("url", t.URL).Msg("scraped content too short; falling back to search")
	}

	found, serr := s.scraper.Search(ctx, t.Query, s.searchLimit)
	if serr != nil {
		log.Warn().Err(serr).Str("query", t.Query).Msg("search fallback failed")
		return "", "", &ContentError{Preview: preview(raw)}
	}
	if len(found) < minUsableContent {
		return "", "", &ContentError{Preview: preview(found)}
	}
	return found, domain.SourceSearch, nil
}

// extract prefers the model; on any extraction failure it degrades to the
// deterministic fallback, which may legitimately find nothing.
func (s *IngestionService) extract(ctx context.Context, raw string) []domain.Review {
	if s.extractor != nil {
		records, err := s.extractor.ExtractReviews(ctx, raw)
		if err == nil {
			return records
		}
		log.Warn().Err(err).Msg("model extraction failed; using fallback extractor")
	}
	return FallbackExtract(raw)
}

// persist upserts each named record. Only fresh inserts count toward the
// caller-visible figure; individual failures are logged and skipped, so
// a partially saved batch is possible.
func (s *IngestionService) persist(ctx context.Context, records []domain.Review) (added int, wrote bool) {
	for _, rec := range records {
		name := strings.TrimSpace(rec.ReviewerName)
		if name == "" {
			continue
		}
		rec.ReviewerName = name

		_, err := s.repo.GetReviewByName(ctx, name)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			if ierr := s.repo.InsertReview(ctx, rec); ierr != nil {
				log.Warn().Err(ierr).Str("reviewer", name).Msg("insert review failed")
				continue
			}
			added++
			wrote = true
		case err != nil:
			log.Warn().Err(err).Str("reviewer", name).Msg("review lookup failed")
		default:
			if uerr := s.repo.UpdateReview(ctx, rec); uerr != nil {
				log.Warn().Err(uerr).Str("reviewer", name).Msg("update review failed")
				continue
			}
			wrote = true
		}
	}
	return added, wrote
}

// invalidateReviews drops the cache generation key, orphaning every
// cached page regardless of its limit. The next read seeds a fresh
// generation.
func (s *IngestionService) invalidateReviews(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, reviewsGenKey)
}

func preview(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 300 {
		return s[:300]
	}
	return s
}
