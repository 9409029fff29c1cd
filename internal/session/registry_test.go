package session

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterDefaults(t *testing.T) {
	r := NewRegistry(clockwork.NewFakeClock())

	client := r.Register(&fakeSink{})
	assert.Equal(t, TypeDisplay, client.Type)
	assert.Equal(t, RoleViewer, client.Role)
	assert.NotEmpty(t, client.ID)

	got, ok := r.Get(client.ID)
	require.True(t, ok)
	assert.Same(t, client, got)
}

func TestRegistry_IDsAreUnique(t *testing.T) {
	r := NewRegistry(clockwork.NewFakeClock())

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		client := r.Register(&fakeSink{})
		assert.False(t, seen[client.ID])
		seen[client.ID] = true
	}
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry(clockwork.NewFakeClock())

	client := r.Register(&fakeSink{})
	removed, ok := r.Remove(client.ID)
	require.True(t, ok)
	assert.Same(t, client, removed)

	_, ok = r.Get(client.ID)
	assert.False(t, ok)

	_, ok = r.Remove(client.ID)
	assert.False(t, ok)
}

func TestRegistry_SlavesOldestFirst(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r := NewRegistry(clock)

	oldest := r.Register(&fakeSink{})
	oldest.Type = TypeController
	oldest.Role = RoleSlave

	clock.Advance(time.Second)
	middle := r.Register(&fakeSink{})
	middle.Type = TypeController
	middle.Role = RoleSlave

	clock.Advance(time.Second)
	newest := r.Register(&fakeSink{})
	newest.Type = TypeController
	newest.Role = RoleSlave

	// Non-candidates must not appear.
	viewer := r.Register(&fakeSink{})
	viewer.Role = RoleViewer
	master := r.Register(&fakeSink{})
	master.Type = TypeController
	master.Role = RoleMaster

	slaves := r.Slaves("")
	require.Len(t, slaves, 3)
	assert.Equal(t, oldest.ID, slaves[0].ID)
	assert.Equal(t, middle.ID, slaves[1].ID)
	assert.Equal(t, newest.ID, slaves[2].ID)
}

func TestRegistry_SlavesTieBreakByRegistrationOrder(t *testing.T) {
	// Same connect timestamp: registration sequence decides.
	r := NewRegistry(clockwork.NewFakeClock())

	first := r.Register(&fakeSink{})
	first.Type = TypeController
	first.Role = RoleSlave

	second := r.Register(&fakeSink{})
	second.Type = TypeController
	second.Role = RoleSlave

	slaves := r.Slaves("")
	require.Len(t, slaves, 2)
	assert.Equal(t, first.ID, slaves[0].ID)
}

func TestRegistry_SlavesExcludesID(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r := NewRegistry(clock)

	excluded := r.Register(&fakeSink{})
	excluded.Type = TypeController
	excluded.Role = RoleSlave

	clock.Advance(time.Second)
	candidate := r.Register(&fakeSink{})
	candidate.Type = TypeController
	candidate.Role = RoleSlave

	slaves := r.Slaves(excluded.ID)
	require.Len(t, slaves, 1)
	assert.Equal(t, candidate.ID, slaves[0].ID)
}

func TestRegistry_AllInRegistrationOrder(t *testing.T) {
	r := NewRegistry(clockwork.NewFakeClock())

	a := r.Register(&fakeSink{})
	b := r.Register(&fakeSink{})
	c := r.Register(&fakeSink{})

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, []string{all[0].ID, all[1].ID, all[2].ID})
}
