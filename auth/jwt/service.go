// Package jwt is the token codec: stateless, signed, time-limited bearer
// tokens binding a login identifier. Verification needs no database
// round-trip; callers resolve authorization attributes afterwards.
package jwt

import (
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/stockwatch/stockwatch/logger"
)

// Service issues and verifies bearer tokens.
type Service struct {
	cfg Config
	log *logger.Logger
}

// NewService creates the token codec. Configuration errors are fatal here,
// at startup, so Issue cannot fail on a per-request basis.
func NewService(cfg Config, log *logger.Logger) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{cfg: cfg, log: log.WithComponent("jwt")}, nil
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration { return s.cfg.TTL }

// Issue creates a signed token with the login as subject and expiry set to
// now plus the configured TTL.
func (s *Service) Issue(login string) (string, error) {
	now := time.Now()
	claims := gojwt.RegisteredClaims{
		Subject:   login,
		Issuer:    s.cfg.Issuer,
		IssuedAt:  gojwt.NewNumericDate(now),
		ExpiresAt: gojwt.NewNumericDate(now.Add(s.cfg.TTL)),
	}
	signed, err := gojwt.NewWithClaims(s.cfg.signingMethod(), claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// Verify reports whether the token parses, carries a valid signature and
// has not expired. Failure reasons are logged, never returned; the caller
// treats any false as anonymous.
func (s *Service) Verify(token string) bool {
	_, err := s.parse(token)
	if err != nil {
		s.log.Debug("Token rejected", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}
	return true
}

// Subject returns the login embedded in the token if and only if the token
// parses and signature-validates. Callers must Verify first; Subject does
// not re-check expiry beyond what parsing enforces.
func (s *Service) Subject(token string) (string, bool) {
	claims, err := s.parse(token)
	if err != nil || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

func (s *Service) parse(token string) (*gojwt.RegisteredClaims, error) {
	claims := &gojwt.RegisteredClaims{}
	parsed, err := gojwt.ParseWithClaims(token, claims, s.keyFunc,
		gojwt.WithValidMethods([]string{s.cfg.signingMethod().Alg()}))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("jwt: invalid token")
	}
	return claims, nil
}

func (s *Service) keyFunc(token *gojwt.Token) (interface{}, error) {
	if token.Method.Alg() != s.cfg.signingMethod().Alg() {
		return nil, fmt.Errorf("jwt: unexpected signing method: %s", token.Method.Alg())
	}
	return []byte(s.cfg.Secret), nil
}
