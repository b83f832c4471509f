package auth

import (
	"strings"

	"github.com/gin-contrib/sessions"
)

// Session keys.
const (
	sessionAccountUsername = "account_username"
	sessionAccountEmail    = "account_email"
	sessionAccountRoles    = "account_roles"

	sessionFederatedSub    = "federated_sub"
	sessionFederatedID     = "federated_id"
	sessionFederatedName   = "federated_name"
	sessionFederatedEmail  = "federated_email"
	sessionFederatedGroups = "federated_groups"

	sessionOIDCState    = "oidc_state"
	sessionOIDCVerifier = "oidc_verifier"
)

func sessionCredential(session sessions.Session) *SessionCredential {
	username := getSessionString(session, sessionAccountUsername)
	if username == "" {
		return nil
	}
	return &SessionCredential{
		Username: username,
		Email:    getSessionString(session, sessionAccountEmail),
		Roles:    splitList(getSessionString(session, sessionAccountRoles)),
	}
}

func federatedCredential(session sessions.Session) *FederatedCredential {
	f := &FederatedCredential{
		Sub:    getSessionString(session, sessionFederatedSub),
		ID:     getSessionString(session, sessionFederatedID),
		Name:   getSessionString(session, sessionFederatedName),
		Email:  getSessionString(session, sessionFederatedEmail),
		Groups: splitList(getSessionString(session, sessionFederatedGroups)),
	}
	if f.Sub == "" && f.ID == "" && f.Name == "" {
		return nil
	}
	return f
}

// Helper function to safely get session values.
func getSessionString(session sessions.Session, key string) string {
	if val := session.Get(key); val != nil {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func joinList(values []string) string {
	return strings.Join(values, ",")
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, ",")
}
