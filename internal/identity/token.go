// Package identity issues and verifies the bearer tokens that carry the
// authenticated user on every request.
package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/internal/shared"
	"github.com/taskdeck/taskdeck/internal/users"
)

// ErrInvalidToken covers every token verification failure: malformed,
// expired, bad signature or unexpected claims.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload. Besides the registered claims it carries the
// fields the platform needs to rebuild an AuthenticatedUser without a
// database lookup.
type Claims struct {
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Role           shared.Role `json:"role"`
	OrganizationID int64       `json:"organizationId"`
	TeamID         *int64      `json:"teamId,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer constructs an Issuer.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Token is an issued bearer token with its expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Issue signs a token for the given user account.
func (i *Issuer) Issue(user users.User) (Token, error) {
	now := i.now()
	expiresAt := now.Add(i.ttl)
	claims := Claims{
		Name:           user.Name,
		Email:          user.Email,
		Role:           user.Role,
		OrganizationID: user.OrganizationID,
		TeamID:         user.TeamID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, ExpiresAt: expiresAt}, nil
}

// Verify parses and validates a token, returning the embedded identity
// together with the token id and expiry for revocation checks.
func (i *Issuer) Verify(tokenValue string) (shared.AuthenticatedUser, Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenValue, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !token.Valid {
		return shared.AuthenticatedUser{}, Claims{}, ErrInvalidToken
	}

	var userID int64
	if _, err := fmt.Sscanf(claims.Subject, "%d", &userID); err != nil || userID <= 0 {
		return shared.AuthenticatedUser{}, Claims{}, ErrInvalidToken
	}
	if !claims.Role.Valid() {
		return shared.AuthenticatedUser{}, Claims{}, ErrInvalidToken
	}

	user := shared.AuthenticatedUser{
		ID:             userID,
		Name:           claims.Name,
		Email:          claims.Email,
		Role:           claims.Role,
		OrganizationID: claims.OrganizationID,
		TeamID:         claims.TeamID,
	}
	return user, claims, nil
}
