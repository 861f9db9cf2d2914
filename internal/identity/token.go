package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type SessionClaims struct {
	jwt.RegisteredClaims

	Role      string `json:"role"`
	SubjectID string `json:"subjectId,omitempty"`
}

// SignSessionToken mints an HS256 session token for an actor.
func SignSessionToken(a Actor, secret string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("missing session secret")
	}
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:      string(a.Role),
		SubjectID: a.SubjectID,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(secret))
}

// VerifySessionToken verifies a session token (JWT, HS256) and returns the
// actor it was issued for.
func VerifySessionToken(tokenString string, secret string, now time.Time) (*Actor, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("missing token")
	}
	if secret == "" {
		return nil, fmt.Errorf("missing session secret")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	claims := &SessionClaims{}
	tok, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(now) {
		return nil, fmt.Errorf("token expired")
	}

	role, err := ParseRole(claims.Role)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("missing subject in token")
	}
	if (role == RoleResident || role == RoleDriver) && claims.SubjectID == "" {
		return nil, fmt.Errorf("%s token missing subjectId", role)
	}

	return &Actor{ID: claims.Subject, Role: role, SubjectID: claims.SubjectID}, nil
}
