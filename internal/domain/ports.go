package domain

import "context"

type ReviewRepository interface {
	// Write paths
	GetReviewByName(ctx context.Context, name string) (*Review, error)
	InsertReview(ctx context.Context, r Review) error
	UpdateReview(ctx context.Context, r Review) error

	// Read paths
	ListReviews(ctx context.Context, pg PageQuery) (ReviewsPage, error)
}

type RoleStore interface {
	HasRole(ctx context.Context, userID, role string) (bool, error)
}

// PaymentClient performs the provider's two-call STK push choreography:
// OAuth token fetch, then the push submission itself.
type PaymentClient interface {
	InitiateSTKPush(ctx context.Context, phone string, amount float64) (STKResult, error)
}

// Scraper retrieves raw page text from the content provider.
type Scraper interface {
	Scrape(ctx context.Context, url string) (string, error)
	Search(ctx context.Context, query string, limit int) (string, error)
}

// Extractor turns raw scraped text into structured review records.
type Extractor interface {
	ExtractReviews(ctx context.Context, raw string) ([]Review, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// TokenVerifier resolves a bearer credential to a user id.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

type PageQuery struct {
	Limit  int
	Cursor *string
	Sort   string
}

type ReviewsPage struct {
	Items      []Review
	NextCursor *string
}
