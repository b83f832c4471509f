package auth

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/skillswap/skillswap/internal/apperr"
)

const principalKey = "principal"

// Middleware authenticates requests.
type Middleware struct {
	resolver *Resolver
	verifier TokenVerifier
}

// NewMiddleware returns a Middleware. A nil verifier ignores bearer tokens.
func NewMiddleware(resolver *Resolver, verifier TokenVerifier) *Middleware {
	return &Middleware{resolver: resolver, verifier: verifier}
}

// Authenticate resolves the principal of every request and stores it in the
// context. Requests without credentials pass through anonymously.
func (m *Middleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := m.resolver.Resolve(m.credentials(c))
		if err == nil {
			c.Set(principalKey, p)
		}
		c.Next()
	}
}

// RequireAuth aborts requests without a principal with apperr.ErrUnauthenticated.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := PrincipalFrom(c); !ok {
			_ = c.Error(apperr.ErrUnauthenticated)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole aborts requests whose principal lacks role with apperr.ErrForbidden.
func (m *Middleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			_ = c.Error(apperr.ErrUnauthenticated)
			c.Abort()
			return
		}
		if !p.HasRole(role) {
			_ = c.Error(apperr.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by Authenticate.
func PrincipalFrom(c *gin.Context) (*Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*Principal)
	return p, ok && p != nil
}

// MustPrincipal returns the principal and panics if there is none.
// Only use it behind RequireAuth.
func MustPrincipal(c *gin.Context) *Principal {
	return c.MustGet(principalKey).(*Principal)
}

func (m *Middleware) credentials(c *gin.Context) *Credentials {
	creds := &Credentials{}

	if raw, ok := bearerToken(c.GetHeader("Authorization")); ok && m.verifier != nil {
		tok, err := m.verifier.Verify(c.Request.Context(), raw)
		if err != nil {
			log.Debug("ignoring invalid bearer token", "error", err)
		} else {
			creds.Bearer = &BearerCredential{Token: tok}
		}
	}

	if _, ok := c.Get(sessions.DefaultKey); ok {
		session := sessions.Default(c)
		creds.Session = sessionCredential(session)
		creds.Federated = federatedCredential(session)
	}
	return creds
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
