package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAssignsIdentity(t *testing.T) {
	cr := NewConnRegistry()
	cfg := DefaultConfig()

	c1 := newConn(nil, "10.0.0.1:1", cfg)
	c2 := newConn(nil, "10.0.0.2:2", cfg)

	id1 := cr.Register(c1)
	id2 := cr.Register(c2)

	require.NotEmpty(t, id1)
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, id1, c1.ID())

	got, ok := cr.Get(id1)
	require.True(t, ok)
	assert.Same(t, c1, got)
	assert.Equal(t, 2, cr.Len())
}

// TestUnregisterIdempotent verifies double-unregister is a no-op, which the
// disconnect path relies on when cleanups race.
func TestUnregisterIdempotent(t *testing.T) {
	cr := NewConnRegistry()
	c := newConn(nil, "10.0.0.1:1", DefaultConfig())
	id := cr.Register(c)

	cr.Unregister(id)
	cr.Unregister(id)

	_, ok := cr.Get(id)
	assert.False(t, ok)
	assert.Equal(t, 0, cr.Len())
}

func TestSnapshot(t *testing.T) {
	cr := NewConnRegistry()
	c1 := newConn(nil, "a", DefaultConfig())
	c2 := newConn(nil, "b", DefaultConfig())
	cr.Register(c1)
	cr.Register(c2)

	assert.ElementsMatch(t, []*Conn{c1, c2}, cr.Snapshot())
}
