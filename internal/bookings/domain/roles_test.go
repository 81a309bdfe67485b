package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestResolveRole(t *testing.T) {
	b := booking(BookingPending)

	role, ok := ResolveRole(b, b.ClientID, false)
	assert.True(t, ok)
	assert.Equal(t, RoleClient, role)

	role, ok = ResolveRole(b, b.ProviderID, false)
	assert.True(t, ok)
	assert.Equal(t, RoleProvider, role)

	role, ok = ResolveRole(b, b.ClientID, true)
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, role)

	_, ok = ResolveRole(b, uuid.New(), false)
	assert.False(t, ok)

	_, ok = ResolveRole(Booking{}, uuid.Nil, false)
	assert.False(t, ok)
}

func TestCounterParty(t *testing.T) {
	b := booking(BookingInProgress)

	id, ok := CounterParty(b, RoleClient)
	assert.True(t, ok)
	assert.Equal(t, b.ProviderID, id)

	id, ok = CounterParty(b, RoleProvider)
	assert.True(t, ok)
	assert.Equal(t, b.ClientID, id)

	_, ok = CounterParty(b, RoleAdmin)
	assert.False(t, ok)

	_, ok = CounterParty(Booking{ClientID: uuid.New()}, RoleClient)
	assert.False(t, ok)
}
