package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/domain"
)

// reviewsGenKey versions the review list cache. Writers bump the
// generation instead of enumerating per-limit keys; orphaned pages
// expire with their TTL.
const reviewsGenKey = "reviews:gen"

type QueryService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) ListReviews(ctx context.Context, pg domain.PageQuery) (domain.ReviewsPage, error) {
	key := fmt.Sprintf("reviews:%d:%d:%s", s.generation(ctx), pg.Limit, pg.Sort)
	var out domain.ReviewsPage
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	rs, err := s.repo.ListReviews(ctx, pg)
	if err != nil {
		return domain.ReviewsPage{}, err
	}

	// copy slice to avoid aliasing the repo's backing array (prevents callers from mutating cached value)
	copyRS := deepCopyReviewsPage(rs)

	// optional size guard
	if b, _ := json.Marshal(copyRS); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, copyRS, int(s.cacheTTL.Seconds()))
	}
	return copyRS, nil
}

// generation reads the current cache generation, seeding one when absent.
func (s *QueryService) generation(ctx context.Context) int64 {
	var gen int64
	if ok, _ := s.cache.Get(ctx, reviewsGenKey, &gen); ok && gen != 0 {
		return gen
	}
	gen = time.Now().UnixNano()
	_ = s.cache.Set(ctx, reviewsGenKey, gen, 0)
	return gen
}

func deepCopyReviewsPage(in domain.ReviewsPage) domain.ReviewsPage {
	out := domain.ReviewsPage{NextCursor: in.NextCursor}
	if n := len(in.Items); n > 0 {
		out.Items = make([]domain.Review, n)
		copy(out.Items, in.Items)
	}
	return out
}
