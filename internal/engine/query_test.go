package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCidFromKeyIsDeterministic(t *testing.T) {
	a, err := cidFromKey([]byte("hello"))
	require.NoError(t, err)
	b, err := cidFromKey([]byte("hello"))
	require.NoError(t, err)
	assert.True(t, a.Equals(b))
}

func TestCidFromKeyDiffersByKey(t *testing.T) {
	a, err := cidFromKey([]byte("hello"))
	require.NoError(t, err)
	b, err := cidFromKey([]byte("world"))
	require.NoError(t, err)
	assert.False(t, a.Equals(b))
}
