// Package schema is the runtime support library for types produced by
// cmd/netabase-gen. Go has no compile-time macros, so the validation
// rules and conversions the specification describes as generated code
// (§4.3) are split in two: cmd/netabase-gen performs the struct/enum
// analysis and emits <type>_netabase.go files ahead of build, and this
// package supplies the small amount of runtime machinery those emitted
// files call into (key construction, opaque key generation, the marker
// interfaces a registry's variants must satisfy).
package schema

import (
	"encoding/binary"
	"fmt"
	"time"

	"lukechampine.com/blake3"
)

// Key is satisfied by every generated <Type>Key. Two keys are equal
// iff their byte sequences are equal (§3 Schema key).
type Key interface {
	fmt.Stringer
	Bytes() []byte
}

// Value is satisfied by every generated schema type: it reports the
// schema's name. Key derivation and payload encoding are not part of
// this interface; they live on the generated <Type>.Key() method and
// the Codec. It exists so the event loop and registries can deal with
// a schema value without reflecting on the concrete type.
type Value interface {
	SchemaName() string
}

// Registry is the marker interface every generated registry enum
// wrapper type implements (§3 Registry): a single concrete sum type
// the event loop and store can pass around without type erasure.
type Registry interface {
	Value
	isRegistryMember()
}

// RegistryKey is the key-registry analogue of Registry.
type RegistryKey interface {
	Key
	isRegistryKeyMember()
}

// GenerateKeyBytes produces a fresh 32-byte opaque key: a big-endian
// nanosecond timestamp (8 bytes), a big-endian monotonic per-process
// counter (8 bytes), and the first 16 bytes of a blake3 digest of
// those 16 bytes. The counter guarantees uniqueness
// across rapid successive calls from the same process (§4.3 Emitted
// artifacts: generate_key(), §8 uniqueness across 100+ rapid
// invocations). Every generated Generate<S>Key constructor calls this
// and wraps the result in its own <S>Key type.
func GenerateKeyBytes() []byte {
	ts := uint64(time.Now().UnixNano())
	seq := nextSeq()

	var salt [16]byte
	binary.BigEndian.PutUint64(salt[0:8], ts)
	binary.BigEndian.PutUint64(salt[8:16], seq)
	sum := blake3.Sum256(salt[:])

	out := make([]byte, 0, 24)
	out = append(out, salt[:]...)
	out = append(out, sum[:16]...)
	return out
}

// JoinKeyParts prepends prefix (if any) to parts, separated by sep,
// for schemas declaring `schema(prefix = "…")` (§4.3 Input grammar).
func JoinKeyParts(prefix, sep string, parts ...[]byte) []byte {
	var out []byte
	if prefix != "" {
		out = append(out, []byte(prefix)...)
		out = append(out, []byte(sep)...)
	}
	for i, p := range parts {
		if i > 0 {
			out = append(out, []byte(sep)...)
		}
		out = append(out, p...)
	}
	return out
}
