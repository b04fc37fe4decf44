package engine

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := gen.Generate()
		require.Len(t, id, 36)

		parsed, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())

		assert.False(t, seen[id], "id %s generated twice", id)
		seen[id] = true
	}
}

func TestFixedGenerator(t *testing.T) {
	gen := NewFixedGenerator("char-1", "evt-1")
	assert.Equal(t, "char-1", gen.Generate())
	assert.Equal(t, "evt-1", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}

func TestEngine_UsesIDGenerator(t *testing.T) {
	e := New(nil, WithIDGenerator(NewFixedGenerator("char-1")))
	c, err := e.NewCharacter(context.Background(), "Aru", "", "")
	require.NoError(t, err)
	assert.Equal(t, "char-1", c.ID)
}

func TestEngine_DefaultIDsAreUUIDv7(t *testing.T) {
	c, err := New(nil).NewCharacter(context.Background(), "Aru", "", "")
	require.NoError(t, err)

	parsed, err := uuid.Parse(c.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}
