package auth

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/skillswap/skillswap/internal/apperr"
	"github.com/skillswap/skillswap/internal/policy"
)

// Source names the representation a principal was resolved from.
type Source string

const (
	SourceBearer    Source = "bearer"
	SourceSession   Source = "session"
	SourceFederated Source = "federated"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID string
	Email  string
	Roles  []string
	Source Source
}

// HasRole reports whether the principal carries role.
func (p *Principal) HasRole(role string) bool {
	return p != nil && slices.Contains(p.Roles, role)
}

// IsAdmin reports whether the principal is an administrator.
func (p *Principal) IsAdmin() bool {
	return p.HasRole(policy.RoleAdmin)
}

// BearerCredential carries a verified bearer token.
type BearerCredential struct {
	Token *Token
}

// SessionCredential carries a local account restored from the session.
type SessionCredential struct {
	Username string
	Email    string
	Roles    []string
}

// FederatedCredential carries the attributes of a federated login.
type FederatedCredential struct {
	Sub    string
	ID     string
	Name   string
	Email  string
	Groups []string
}

// Credentials holds every authentication representation present on a request.
// Any member may be nil.
type Credentials struct {
	Bearer    *BearerCredential
	Session   *SessionCredential
	Federated *FederatedCredential
}

// Resolver turns credentials into a principal.
type Resolver struct {
	adminGroup string
}

// NewResolver returns a Resolver. Federated principals in adminGroup are
// administrators; an empty adminGroup grants nobody admin that way.
func NewResolver(adminGroup string) *Resolver {
	return &Resolver{adminGroup: adminGroup}
}

// Resolve tries bearer, session and federated credentials in that order and
// returns the first match. It fails with apperr.ErrUnauthenticated when
// nothing matches.
func (r *Resolver) Resolve(creds *Credentials) (*Principal, error) {
	if creds == nil {
		return nil, apperr.ErrUnauthenticated
	}
	for _, resolve := range []func(*Credentials) *Principal{
		r.fromBearer,
		r.fromSession,
		r.fromFederated,
	} {
		if p := resolve(creds); p != nil {
			return p, nil
		}
	}
	return nil, apperr.ErrUnauthenticated
}

func (r *Resolver) fromBearer(creds *Credentials) *Principal {
	if creds.Bearer == nil || creds.Bearer.Token == nil {
		return nil
	}
	tok := creds.Bearer.Token
	if _, err := uuid.Parse(tok.Subject); err != nil {
		return nil
	}
	return &Principal{
		UserID: tok.Subject,
		Email:  tok.Email(),
		Roles:  tok.Roles(),
		Source: SourceBearer,
	}
}

func (r *Resolver) fromSession(creds *Credentials) *Principal {
	s := creds.Session
	if s == nil || strings.TrimSpace(s.Username) == "" {
		return nil
	}
	return &Principal{
		UserID: s.Username,
		Email:  s.Email,
		Roles:  prefixRoles(normalizeRoles(s.Roles)),
		Source: SourceSession,
	}
}

func (r *Resolver) fromFederated(creds *Credentials) *Principal {
	f := creds.Federated
	if f == nil {
		return nil
	}
	id, _ := lo.Find([]string{f.Sub, f.ID, f.Name}, func(v string) bool { return v != "" })
	if id == "" {
		return nil
	}
	roles := []string{}
	if r.adminGroup != "" && slices.Contains(f.Groups, r.adminGroup) {
		roles = append(roles, policy.RoleAdmin)
	}
	return &Principal{
		UserID: id,
		Email:  f.Email,
		Roles:  roles,
		Source: SourceFederated,
	}
}

func prefixRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, RolePrefix+r)
		}
	}
	return lo.Uniq(out)
}

// normalizeRoles upper-cases local account roles and strips any ROLE_
// prefix regardless of case, so that prefixRoles adds it exactly once.
func normalizeRoles(roles []string) []string {
	return lo.Uniq(lo.FilterMap(roles, func(r string, _ int) (string, bool) {
		r = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(r)), RolePrefix)
		return r, r != ""
	}))
}
