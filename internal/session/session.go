// Package session verifies access tokens issued by the hosted auth service
// and exposes the current session of a request.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/omar3814/baeed-wa-qareeb-store/pkg/middleware"
)

// Session is an authenticated visitor.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Claims are the access token claims. The user ID is the subject; older
// tokens carry it in user_id instead.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 access tokens.
type Verifier struct {
	secret   []byte
	audience string
	leeway   time.Duration
}

// NewVerifier creates a verifier for tokens signed with secret. An empty
// audience disables the audience check.
func NewVerifier(secret, audience string, leeway time.Duration) *Verifier {
	return &Verifier{secret: []byte(secret), audience: audience, leeway: leeway}
}

// Verify parses and validates token.
func (v *Verifier) Verify(token string) (*Session, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid access token claims")
	}

	userID := claims.Subject
	if userID == "" {
		userID = claims.UserID
	}
	if userID == "" {
		return nil, errors.New("access token has no subject")
	}

	s := &Session{UserID: userID, Email: claims.Email, Role: claims.Role}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return s, nil
}

// TokenValidator adapts the verifier to middleware.OptionalAuth.
func (v *Verifier) TokenValidator() middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		s, err := v.Verify(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID:    s.UserID,
			Email:     s.Email,
			Role:      s.Role,
			ExpiresAt: s.ExpiresAt,
		}, nil
	}
}

// FromContext returns the session attached to ctx, or nil for anonymous
// requests.
func FromContext(ctx context.Context) *Session {
	c := middleware.ClaimsFromContext(ctx)
	if c == nil {
		return nil
	}
	return &Session{UserID: c.UserID, Email: c.Email, Role: c.Role, ExpiresAt: c.ExpiresAt}
}
