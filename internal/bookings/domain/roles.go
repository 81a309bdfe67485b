package domain

import "github.com/google/uuid"

// ResolveRole decides how userID relates to b. Admins act as admin even when
// they are also a participant. ok is false for outsiders.
func ResolveRole(b Booking, userID uuid.UUID, isAdmin bool) (role Role, ok bool) {
	switch {
	case isAdmin:
		return RoleAdmin, true
	case userID != uuid.Nil && userID == b.ClientID:
		return RoleClient, true
	case userID != uuid.Nil && userID == b.ProviderID:
		return RoleProvider, true
	default:
		return "", false
	}
}

// CounterParty returns the participant on the other side from role.
func CounterParty(b Booking, role Role) (uuid.UUID, bool) {
	var id uuid.UUID
	switch role {
	case RoleClient:
		id = b.ProviderID
	case RoleProvider:
		id = b.ClientID
	}
	return id, id != uuid.Nil
}
