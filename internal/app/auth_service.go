package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type AuthService struct {
	verifier *CredentialVerifier
	tokens   *TokenService
}

type LoginInput struct {
	Identity string
	Secret   string
}

type LoginResult struct {
	Token     string
	Identity  string
	Role      string
	ExpiresAt time.Time
}

func NewAuthService(verifier *CredentialVerifier, tokens *TokenService) *AuthService {
	return &AuthService{
		verifier: verifier,
		tokens:   tokens,
	}
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

func (s *AuthService) Login(input LoginInput) (*LoginResult, error) {
	identity := strings.TrimSpace(input.Identity)
	if identity == "" || input.Secret == "" {
		return nil, fmt.Errorf("%w: identity and secret are required", ErrValidation)
	}

	if !s.verifier.Verify(identity, input.Secret) {
		logrus.WithField("identity", identity).Warn("admin login rejected")
		return nil, ErrInvalidCredential
	}

	token, expiresAt, err := s.tokens.Issue(s.verifier.Identity(), RoleAdmin)
	if err != nil {
		return nil, err
	}
	logrus.WithField("identity", s.verifier.Identity()).Info("admin logged in")
	return &LoginResult{
		Token:     token,
		Identity:  s.verifier.Identity(),
		Role:      RoleAdmin,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *AuthService) Authenticate(ctx context.Context, token string) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrInvalidToken
	}
	return s.tokens.Validate(ctx, token)
}

// Logout only has a server-side effect when revocation is enabled.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}
