package jwtauth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/domain"
)

// Verifier validates HS256 bearer tokens and extracts the user id from the
// subject claim.
type Verifier struct {
	secret []byte
}

func New(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(token string) (string, error) {
	if len(v.secret) == 0 {
		return "", domain.ErrMissingCredentials
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}
	return sub, nil
}
