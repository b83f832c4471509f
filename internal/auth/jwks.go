package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// JWKSVerifier verifies asymmetric tokens against a remote JSON Web Key Set.
type JWKSVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewJWKSVerifier returns a verifier that fetches keys from jwksURL.
func NewJWKSVerifier(ctx context.Context, jwksURL, issuer, audience string) *JWKSVerifier {
	keySet := oidc.NewRemoteKeySet(ctx, jwksURL)
	return &JWKSVerifier{
		verifier: oidc.NewVerifier(issuer, keySet, &oidc.Config{
			ClientID:          audience,
			SkipClientIDCheck: audience == "",
			SkipIssuerCheck:   issuer == "",
		}),
	}
}

func (v *JWKSVerifier) Verify(ctx context.Context, raw string) (*Token, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims := map[string]any{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if idToken.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return NewToken(idToken.Subject, claims), nil
}
