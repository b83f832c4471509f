package auth

import (
	"context"
	"errors"
)

// ErrInvalidToken is returned by verifiers for tokens that fail validation.
var ErrInvalidToken = errors.New("invalid token")

// RolePrefix is prepended to every role read from an identity.
const RolePrefix = "ROLE_"

// TokenVerifier validates a raw bearer token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*Token, error)
}

// Token is a verified identity token.
type Token struct {
	Subject string
	claims  map[string]any
}

// NewToken returns a Token for subject with the given claims.
func NewToken(subject string, claims map[string]any) *Token {
	if claims == nil {
		claims = map[string]any{}
	}
	return &Token{Subject: subject, claims: claims}
}

// Claim returns the named top-level claim.
func (t *Token) Claim(name string) (any, bool) {
	v, ok := t.claims[name]
	return v, ok
}

// Email returns the email claim, or "" when it is absent or not a string.
func (t *Token) Email() string {
	v, _ := t.Claim("email")
	email, _ := v.(string)
	return email
}

// RoleClaimKind tags the shape of the app_metadata.roles claim.
type RoleClaimKind int

const (
	RoleClaimAbsent RoleClaimKind = iota
	RoleClaimList
	RoleClaimMalformed
)

func (k RoleClaimKind) String() string {
	switch k {
	case RoleClaimList:
		return "list"
	case RoleClaimMalformed:
		return "malformed"
	default:
		return "absent"
	}
}

// RoleClaim is the result of reading app_metadata.roles.
// Roles is only set when Kind is RoleClaimList.
type RoleClaim struct {
	Kind  RoleClaimKind
	Roles []string
}

// RoleClaim reads app_metadata.roles. A list containing anything other than
// strings is malformed.
func (t *Token) RoleClaim() RoleClaim {
	meta, ok := t.Claim("app_metadata")
	if !ok || meta == nil {
		return RoleClaim{Kind: RoleClaimAbsent}
	}
	obj, ok := meta.(map[string]any)
	if !ok {
		return RoleClaim{Kind: RoleClaimMalformed}
	}
	raw, ok := obj["roles"]
	if !ok || raw == nil {
		return RoleClaim{Kind: RoleClaimAbsent}
	}

	switch list := raw.(type) {
	case []string:
		return RoleClaim{Kind: RoleClaimList, Roles: list}
	case []any:
		roles := make([]string, 0, len(list))
		for _, r := range list {
			s, ok := r.(string)
			if !ok {
				return RoleClaim{Kind: RoleClaimMalformed}
			}
			roles = append(roles, s)
		}
		return RoleClaim{Kind: RoleClaimList, Roles: roles}
	default:
		return RoleClaim{Kind: RoleClaimMalformed}
	}
}

// Roles returns the token's roles with RolePrefix applied. Absent and
// malformed claims both yield no roles.
func (t *Token) Roles() []string {
	claim := t.RoleClaim()
	if claim.Kind != RoleClaimList {
		return []string{}
	}
	return prefixRoles(claim.Roles)
}
