package mysql

import (
	"context"
	"database/sql"

	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) GetReviewByName(ctx context.Context, name string) (*domain.Review, error) {
	row := r.db.QueryRowContext(ctx, getReviewByNameSQL, name)
	rv, err := scanReview(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rv, nil
}

func (r *Repo) InsertReview(ctx context.Context, rv domain.Review) error {
	_, err := r.db.ExecContext(ctx, insertReviewSQL,
		rv.ReviewerName,
		valStr(rv.ReviewerCountry),
		valStr(rv.ReviewTitle),
		valStr(rv.PositiveText),
		valStr(rv.NegativeText),
		valF64(rv.Score),
		valStr(rv.StayDate),
		valStr(rv.RoomType),
		valStr(rv.TravelerType),
	)
	return err
}

func (r *Repo) UpdateReview(ctx context.Context, rv domain.Review) error {
	_, err := r.db.ExecContext(ctx, updateReviewSQL,
		valStr(rv.ReviewerCountry),
		valStr(rv.ReviewTitle),
		valStr(rv.PositiveText),
		valStr(rv.NegativeText),
		valF64(rv.Score),
		valStr(rv.StayDate),
		valStr(rv.RoomType),
		valStr(rv.TravelerType),
		rv.ReviewerName,
	)
	return err
}

func (r *Repo) ListReviews(ctx context.Context, pg domain.PageQuery) (domain.ReviewsPage, error) {
	limit := pg.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, listReviewsSQL, limit)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return domain.ReviewsPage{}, err
		}
		out = append(out, *rv)
	}
	if err := rows.Err(); err != nil {
		return domain.ReviewsPage{}, err
	}
	return domain.ReviewsPage{Items: out}, nil
}

func (r *Repo) HasRole(ctx context.Context, userID, role string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, hasRoleSQL, userID, role).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanReview(row rowScanner) (*domain.Review, error) {
	var rv domain.Review
	var country, title, pos, neg, stay, room, traveler sql.NullString
	var score sql.NullFloat64

	if err := row.Scan(
		&rv.ID,
		&rv.ReviewerName,
		&country,
		&title,
		&pos,
		&neg,
		&score,
		&stay,
		&room,
		&traveler,
	); err != nil {
		return nil, err
	}

	if country.Valid {
		s := country.String
		rv.ReviewerCountry = &s
	}
	if title.Valid {
		s := title.String
		rv.ReviewTitle = &s
	}
	if pos.Valid {
		s := pos.String
		rv.PositiveText = &s
	}
	if neg.Valid {
		s := neg.String
		rv.NegativeText = &s
	}
	if score.Valid {
		f := score.Float64
		rv.Score = &f
	}
	if stay.Valid {
		s := stay.String
		rv.StayDate = &s
	}
	if room.Valid {
		s := room.String
		rv.RoomType = &s
	}
	if traveler.Valid {
		s := traveler.String
		rv.TravelerType = &s
	}
	return &rv, nil
}
