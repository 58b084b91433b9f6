// Package auth implements the authentication service: credential lookup
// plus password verification minting a bearer token. Login failures are
// indistinguishable between unknown logins and wrong passwords, in both
// response and timing.
package auth

import (
	"context"

	"github.com/stockwatch/stockwatch/auth/authctx"
	"github.com/stockwatch/stockwatch/auth/jwt"
	"github.com/stockwatch/stockwatch/auth/password"
	"github.com/stockwatch/stockwatch/errors"
	"github.com/stockwatch/stockwatch/logger"
	"github.com/stockwatch/stockwatch/model"
)

// CredentialStore is the persistence contract the auth core consumes.
type CredentialStore interface {
	// FindByLogin resolves a credential by username or email, excluding
	// soft-deleted users.
	FindByLogin(ctx context.Context, identifier string) (*model.SecurityInfo, error)
}

// Service orchestrates credential lookup and password verification.
type Service struct {
	store  CredentialStore
	hasher password.Hasher
	tokens *jwt.Service
	log    *logger.Logger

	// dummyHash is compared against on unknown-login paths so that timing
	// does not reveal whether the login exists.
	dummyHash string
}

// NewService creates the authentication service.
func NewService(store CredentialStore, hasher password.Hasher, tokens *jwt.Service, log *logger.Logger) (*Service, error) {
	dummy, err := hasher.Hash("stockwatch-dummy-credential")
	if err != nil {
		return nil, err
	}
	return &Service{
		store:     store,
		hasher:    hasher,
		tokens:    tokens,
		log:       log.WithComponent("auth"),
		dummyHash: dummy,
	}, nil
}

// Login verifies the identifier/password pair and mints a token bound to
// the stored username. Any failure yields the same Unauthorized error.
func (s *Service) Login(ctx context.Context, identifier, plaintext string) (string, error) {
	info, err := s.store.FindByLogin(ctx, identifier)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			s.hasher.Verify(plaintext, s.dummyHash)
			return "", errors.Unauthorized()
		}
		return "", err
	}

	if !s.hasher.Verify(plaintext, info.PasswordHash) {
		s.log.Debug("Login rejected", logger.Fields(logger.FieldLogin, info.Username))
		return "", errors.Unauthorized()
	}

	token, err := s.tokens.Issue(info.Username)
	if err != nil {
		return "", errors.Internal(err)
	}
	s.log.Info("Login succeeded", logger.Fields(logger.FieldLogin, info.Username))
	return token, nil
}

// Resolve loads the full principal for a login extracted from a verified
// token. Unknown logins resolve to an error, leaving the request anonymous.
func (s *Service) Resolve(ctx context.Context, login string) (authctx.Principal, error) {
	info, err := s.store.FindByLogin(ctx, login)
	if err != nil {
		return authctx.Principal{}, err
	}
	return authctx.Principal{
		UserID: info.UserID,
		Login:  info.Username,
		Role:   info.Role,
	}, nil
}

// Tokens exposes the token codec for the request authentication filter.
func (s *Service) Tokens() *jwt.Service { return s.tokens }
