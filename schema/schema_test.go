package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKeyBytesUniqueUnderLoad(t *testing.T) {
	seen := make(map[string]struct{}, 200)
	for i := 0; i < 200; i++ {
		k := GenerateKeyBytes()
		s := string(k)
		_, dup := seen[s]
		assert.False(t, dup, "generated key collided on iteration %d", i)
		seen[s] = struct{}{}
	}
}

func TestJoinKeyParts(t *testing.T) {
	got := JoinKeyParts("user", "::", []byte("alice"))
	assert.Equal(t, "user::alice", string(got))

	got = JoinKeyParts("", "::", []byte("a"), []byte("b"))
	assert.Equal(t, "a::b", string(got))
}

func TestHashStableForEqualBytes(t *testing.T) {
	a := []byte("same-key")
	b := []byte("same-key")
	assert.Equal(t, Hash(a), Hash(b))
}
