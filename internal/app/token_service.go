package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"paperarchive/internal/pkg/jwtutil"
)

const (
	RoleAdmin       = "admin"
	DefaultTokenTTL = 24 * time.Hour
)

// TokenDenylist remembers revoked token ids until they would have expired.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Claims struct {
	Identity  string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

type TokenService struct {
	secret   string
	ttl      time.Duration
	denylist TokenDenylist
	now      func() time.Time
}

type TokenOption func(*TokenService)

// WithDenylist enables server-side revocation on logout.
func WithDenylist(d TokenDenylist) TokenOption {
	return func(s *TokenService) { s.denylist = d }
}

func WithTokenClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(secret string, ttl time.Duration, opts ...TokenOption) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is not configured")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	s := &TokenService{secret: secret, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

func (s *TokenService) Issue(identity, role string) (string, time.Time, error) {
	token, claims, err := jwtutil.GenerateToken(s.secret, s.ttl, s.now(), identity, role)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, claims.ExpiresAt.Time, nil
}

// Validate returns ErrInvalidToken for expired, malformed, forged and revoked
// tokens alike. Other errors mean the denylist could not be consulted.
func (s *TokenService) Validate(ctx context.Context, token string) (*Claims, error) {
	parsed, err := jwtutil.ParseToken(s.secret, token, s.now())
	if err != nil {
		return nil, ErrInvalidToken
	}
	if s.denylist != nil && parsed.ID != "" {
		revoked, err := s.denylist.IsRevoked(ctx, parsed.ID)
		if err != nil {
			return nil, fmt.Errorf("check token revocation failed: %w", err)
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}
	claims := &Claims{
		Identity: parsed.Identity,
		Role:     parsed.Role,
		TokenID:  parsed.ID,
	}
	if parsed.ExpiresAt != nil {
		claims.ExpiresAt = parsed.ExpiresAt.Time
	}
	return claims, nil
}

// Revoke is a no-op without a denylist; a stateless token then stays valid
// until it expires.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	if s.denylist == nil || token == "" {
		return nil
	}
	claims, err := s.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil
		}
		return err
	}
	remaining := claims.ExpiresAt.Sub(s.now())
	if remaining <= 0 {
		return nil
	}
	if err := s.denylist.Revoke(ctx, claims.TokenID, remaining); err != nil {
		return fmt.Errorf("revoke token failed: %w", err)
	}
	logrus.WithField("identity", claims.Identity).Info("session token revoked")
	return nil
}
