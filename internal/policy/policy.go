// Package policy decides whether a requester may mutate a resource.
package policy

import "slices"

// RoleAdmin is the role that may mutate any resource.
const RoleAdmin = "ROLE_ADMIN"

// ReasonNotOwner is the reason given for every denial.
const ReasonNotOwner = "not owner and not administrator"

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the positive decision.
var Allow = Decision{Allowed: true}

// AuthorizeMutation allows administrators and the owner of a resource.
// Owner comparison is exact string equality.
func AuthorizeMutation(requesterID string, roles []string, ownerID string) Decision {
	if slices.Contains(roles, RoleAdmin) {
		return Allow
	}
	if requesterID == ownerID {
		return Allow
	}
	return Decision{Reason: ReasonNotOwner}
}
