package auth

import (
	"testing"

	"github.com/skillswap/skillswap/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSubject = "11111111-1111-1111-1111-111111111111"

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver("skillswap-admins")

	bearer := &BearerCredential{Token: NewToken(testSubject, map[string]any{
		"email":        "jane.doe@example.com",
		"app_metadata": map[string]any{"roles": []any{"ADMIN"}},
	})}
	session := &SessionCredential{Username: "local-bob", Email: "bob@example.com", Roles: []string{"MENTOR"}}
	federated := &FederatedCredential{Sub: "google-123", ID: "id-1", Name: "Carol", Groups: []string{"skillswap-admins"}}

	tests := []struct {
		name   string
		creds  *Credentials
		userID string
		roles  []string
		source Source
	}{
		{
			name:   "bearer wins over everything",
			creds:  &Credentials{Bearer: bearer, Session: session, Federated: federated},
			userID: testSubject,
			roles:  []string{"ROLE_ADMIN"},
			source: SourceBearer,
		},
		{
			name:   "session before federated",
			creds:  &Credentials{Session: session, Federated: federated},
			userID: "local-bob",
			roles:  []string{"ROLE_MENTOR"},
			source: SourceSession,
		},
		{
			name:   "non uuid subject falls through",
			creds:  &Credentials{Bearer: &BearerCredential{Token: NewToken("not-a-uuid", nil)}, Session: session},
			userID: "local-bob",
			roles:  []string{"ROLE_MENTOR"},
			source: SourceSession,
		},
		{
			name:   "federated sub with admin group",
			creds:  &Credentials{Federated: federated},
			userID: "google-123",
			roles:  []string{"ROLE_ADMIN"},
			source: SourceFederated,
		},
		{
			name:   "federated falls back to id",
			creds:  &Credentials{Federated: &FederatedCredential{ID: "id-1", Name: "Carol"}},
			userID: "id-1",
			roles:  []string{},
			source: SourceFederated,
		},
		{
			name:   "federated falls back to name",
			creds:  &Credentials{Federated: &FederatedCredential{Name: "Carol"}},
			userID: "Carol",
			roles:  []string{},
			source: SourceFederated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := r.Resolve(tt.creds)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, p.UserID)
			assert.Equal(t, tt.roles, p.Roles)
			assert.Equal(t, tt.source, p.Source)
		})
	}
}

func TestResolver_Unauthenticated(t *testing.T) {
	r := NewResolver("")

	for name, creds := range map[string]*Credentials{
		"nil":             nil,
		"empty":           {},
		"bad subject":     {Bearer: &BearerCredential{Token: NewToken("abc", nil)}},
		"nil token":       {Bearer: &BearerCredential{}},
		"blank username":  {Session: &SessionCredential{Username: "  "}},
		"empty federated": {Federated: &FederatedCredential{Email: "x@example.com"}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := r.Resolve(creds)
			assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
		})
	}
}

func TestResolver_NoAdminGroupConfigured(t *testing.T) {
	p, err := NewResolver("").Resolve(&Credentials{Federated: &FederatedCredential{Sub: "s", Groups: []string{""}}})
	require.NoError(t, err)
	assert.False(t, p.IsAdmin())
}

func TestPrincipal_HasRole(t *testing.T) {
	var nilPrincipal *Principal
	assert.False(t, nilPrincipal.HasRole("ROLE_ADMIN"))

	p := &Principal{Roles: []string{"ROLE_ADMIN"}}
	assert.True(t, p.IsAdmin())
	assert.False(t, p.HasRole("ADMIN"))
}

func TestResolver_SessionRoleSpellings(t *testing.T) {
	r := NewResolver("")

	for _, role := range []string{"ADMIN", "admin", "ROLE_ADMIN", "role_admin", "Role_Admin", " role_ADMIN "} {
		t.Run(role, func(t *testing.T) {
			p, err := r.Resolve(&Credentials{Session: &SessionCredential{Username: "bob", Roles: []string{role}}})
			require.NoError(t, err)
			assert.Equal(t, []string{"ROLE_ADMIN"}, p.Roles)
			assert.True(t, p.IsAdmin())
		})
	}
}

func TestNormalizeRoles(t *testing.T) {
	assert.Equal(t, []string{"ADMIN", "MENTOR"}, normalizeRoles([]string{"role_admin", "Role_Admin", "", "  ", "mentor", "ROLE_MENTOR"}))
	assert.Empty(t, normalizeRoles(nil))
}
