// Package auth resolves the caller of a request from bearer tokens, local
// account sessions or federated login sessions.
package auth

import (
	"context"
	"fmt"

	"github.com/skillswap/skillswap/internal/config"
	"github.com/skillswap/skillswap/internal/database"
)

// Provider bundles the middleware and the enabled login flows.
type Provider struct {
	Middleware *Middleware
	Local      *LocalProvider
	OIDC       *OIDCProvider
}

// NewProvider builds the verifiers and login flows enabled in cfg.
func NewProvider(ctx context.Context, cfg *config.Config, db database.DB) (*Provider, error) {
	if cfg == nil || cfg.Auth == nil {
		return nil, fmt.Errorf("auth config is required")
	}

	p := &Provider{}

	verifier, err := NewVerifier(ctx, cfg.Auth.Bearer)
	if err != nil {
		return nil, err
	}

	var adminGroup string
	if o := cfg.Auth.OIDC; o != nil && o.Enabled {
		p.OIDC, err = NewOIDCProvider(ctx, o, "/api/v1/users/me")
		if err != nil {
			return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
		}
		adminGroup = o.AdminGroup
	}

	if cfg.Auth.Local != nil && cfg.Auth.Local.Enabled {
		p.Local = NewLocalProvider(db)
	}

	if verifier == nil && p.OIDC == nil && p.Local == nil {
		return nil, fmt.Errorf("no authentication provider is enabled")
	}

	p.Middleware = NewMiddleware(NewResolver(adminGroup), verifier)
	return p, nil
}

// NewVerifier returns the bearer token verifier for cfg, or nil when bearer
// tokens are disabled.
func NewVerifier(ctx context.Context, cfg *config.BearerConfig) (TokenVerifier, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}
	switch cfg.Mode {
	case config.BearerModeHMAC, "":
		if cfg.Secret == "" {
			return nil, fmt.Errorf("bearer secret is required in hmac mode")
		}
		return NewHMACVerifier(cfg.Secret, cfg.Issuer, cfg.Audience), nil
	case config.BearerModeJWKS:
		if cfg.JWKSURL == "" {
			return nil, fmt.Errorf("bearer JWKS URL is required in jwks mode")
		}
		return NewJWKSVerifier(ctx, cfg.JWKSURL, cfg.Issuer, cfg.Audience), nil
	default:
		return nil, fmt.Errorf("unknown bearer mode %q", cfg.Mode)
	}
}
