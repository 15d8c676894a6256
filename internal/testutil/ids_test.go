package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceGenerator(t *testing.T) {
	g := NewSequenceGenerator()
	first := g.Generate()
	assert.Equal(t, "00000000-0000-7000-8000-000000000001", first)
	assert.Equal(t, "00000000-0000-7000-8000-000000000002", g.Generate())

	parsed, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}
