package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/skillswap/skillswap/internal/apperr"
	"github.com/skillswap/skillswap/internal/config"
	"golang.org/x/oauth2"
)

// OIDCProvider runs the authorization code flow against an OpenID Connect issuer.
type OIDCProvider struct {
	verifier    *oidc.IDTokenVerifier
	config      *oauth2.Config
	cfg         *config.OIDCConfig
	redirectURL string
}

// NewOIDCProvider discovers the issuer and returns a provider.
func NewOIDCProvider(ctx context.Context, cfg *config.OIDCConfig, afterLogin string) (*OIDCProvider, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, err
	}

	return &OIDCProvider{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email", "groups"},
		},
		cfg:         cfg,
		redirectURL: afterLogin,
	}, nil
}

// Login redirects to the issuer.
func (p *OIDCProvider) Login(c *gin.Context) {
	state := uuid.New().String()
	session := sessions.Default(c)
	session.Set(sessionOIDCState, state)

	opts := []oauth2.AuthCodeOption{}
	if p.cfg.UsePKCE {
		verifier := oauth2.GenerateVerifier()
		session.Set(sessionOIDCVerifier, verifier)
		opts = append(opts, oauth2.S256ChallengeOption(verifier))
	}
	if err := session.Save(); err != nil {
		_ = c.Error(fmt.Errorf("failed to save session: %w", err))
		return
	}
	c.Redirect(http.StatusFound, p.config.AuthCodeURL(state, opts...))
}

// Callback completes the flow and stores the federated identity in the session.
func (p *OIDCProvider) Callback(c *gin.Context) {
	ctx := c.Request.Context()
	session := sessions.Default(c)

	state := getSessionString(session, sessionOIDCState)
	if state == "" || c.Query("state") != state {
		_ = c.Error(apperr.New(apperr.ErrUnauthenticated, "Invalid login state."))
		return
	}

	opts := []oauth2.AuthCodeOption{}
	if verifier := getSessionString(session, sessionOIDCVerifier); verifier != "" {
		opts = append(opts, oauth2.VerifierOption(verifier))
	}
	oauth2Token, err := p.config.Exchange(ctx, c.Query("code"), opts...)
	if err != nil {
		log.Warn("oidc code exchange failed", "error", err)
		_ = c.Error(apperr.New(apperr.ErrUnauthenticated, "Login failed."))
		return
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		_ = c.Error(fmt.Errorf("oidc token response has no id_token"))
		return
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		log.Warn("oidc id token rejected", "error", err)
		_ = c.Error(apperr.New(apperr.ErrUnauthenticated, "Login failed."))
		return
	}

	var claims struct {
		Sub               string   `json:"sub"`
		ID                string   `json:"id"`
		Email             string   `json:"email"`
		Name              string   `json:"name"`
		PreferredUsername string   `json:"preferred_username"`
		Groups            []string `json:"groups"`
	}
	if err := idToken.Claims(&claims); err != nil {
		_ = c.Error(fmt.Errorf("failed to decode oidc claims: %w", err))
		return
	}

	name := claims.Name
	if claims.PreferredUsername != "" {
		name = claims.PreferredUsername
	}

	session.Clear()
	session.Set(sessionFederatedSub, claims.Sub)
	session.Set(sessionFederatedID, claims.ID)
	session.Set(sessionFederatedName, name)
	session.Set(sessionFederatedEmail, claims.Email) // needed for provisioning
	session.Set(sessionFederatedGroups, joinList(claims.Groups))
	if err := session.Save(); err != nil {
		_ = c.Error(fmt.Errorf("failed to save session: %w", err))
		return
	}

	log.Info("federated login", "sub", claims.Sub, "name", name)
	c.Redirect(http.StatusFound, p.redirectURL)
}
