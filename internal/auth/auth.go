// Package auth implements the access control layer for plasticwatcha.
// It verifies OIDC bearer tokens, resolves the caller's role from token
// claims, and exposes the resulting Principal to handlers through the
// request context. Role checks here are the outer gate; the review engine
// re-checks admin capability on every write as a second, redundant gate.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"

	"github.com/Mranger2024/plasticwatcha/pkg/lifecycle"
)

// Role identifies a caller's capability level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Principal identifies an authenticated caller.
type Principal struct {
	ID      uuid.UUID
	Subject string
	Role    Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Anonymous reports whether the principal represents an unauthenticated caller.
func (p Principal) Anonymous() bool {
	return p.ID == uuid.Nil
}

// System verifies bearer tokens and produces Principals.
type System interface {
	// Start registers a startup hook that performs OIDC provider discovery.
	Start(lc *lifecycle.Coordinator) error
	// Verify validates a raw bearer token and resolves its Principal.
	Verify(ctx context.Context, rawToken string) (Principal, error)
}

type system struct {
	cfg    *Config
	logger *slog.Logger

	mu       sync.RWMutex
	verifier *oidc.IDTokenVerifier
}

// New creates an auth system from the given configuration.
// Provider discovery is deferred until Start.
func New(cfg *Config, logger *slog.Logger) System {
	return &system{
		cfg:    cfg,
		logger: logger.With("system", "auth"),
	}
}

func (s *system) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting auth system")

	lc.OnStartup(func() {
		provider, err := oidc.NewProvider(lc.Context(), s.cfg.Issuer)
		if err != nil {
			s.logger.Error("oidc provider discovery failed", "issuer", s.cfg.Issuer, "error", err)
			return
		}

		verifier := provider.Verifier(&oidc.Config{ClientID: s.cfg.ClientID})

		s.mu.Lock()
		s.verifier = verifier
		s.mu.Unlock()

		s.logger.Info("auth provider ready", "issuer", s.cfg.Issuer)
	})

	return nil
}

func (s *system) Verify(ctx context.Context, rawToken string) (Principal, error) {
	s.mu.RLock()
	verifier := s.verifier
	s.mu.RUnlock()

	if verifier == nil {
		return Principal{}, ErrNotReady
	}

	token, err := verifier.Verify(ctx, rawToken)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	var claims tokenClaims
	if err := token.Claims(&claims); err != nil {
		return Principal{}, fmt.Errorf("%w: parse claims: %w", ErrInvalidToken, err)
	}

	id, err := uuid.Parse(token.Subject)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: subject is not a uuid: %w", ErrInvalidToken, err)
	}

	return Principal{
		ID:      id,
		Subject: token.Subject,
		Role:    resolveRole(claims),
	}, nil
}
