package schema

import (
	"encoding/binary"
	"fmt"
	"hash/maphash"
)

// hashSeed is shared by every Hash call so that equal byte sequences
// produced in the same process hash equally, matching the "equality
// implies equal hash" requirement on generated key types (§3 Schema
// key).
var hashSeed = maphash.MakeSeed()

// Hash returns a process-stable hash of b, used by generated <S>Key.Hash
// methods.
func Hash(b []byte) uint64 {
	var h maphash.Hash
	h.SetSeed(hashSeed)
	h.Write(b)
	return h.Sum64()
}

// KeyCodec encodes the primitive key-field types the specification
// permits (§4.3 rule 6: integer widths 8-64 signed/unsigned, bool,
// string) into the byte form embedded in a generated key: integers and
// bool as fixed-width big-endian bytes, strings with a uvarint length
// prefix. Every Encode is infallible; Decode fails if b is short.

func EncodeUint(v uint64, width int) []byte {
	b := make([]byte, width)
	switch width {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.BigEndian.PutUint16(b, uint16(v))
	case 4:
		binary.BigEndian.PutUint32(b, uint32(v))
	case 8:
		binary.BigEndian.PutUint64(b, v)
	}
	return b
}

func DecodeUint(b []byte, width int) (uint64, error) {
	if len(b) < width {
		return 0, fmt.Errorf("schema: short key field: want %d bytes, got %d", width, len(b))
	}
	switch width {
	case 1:
		return uint64(b[0]), nil
	case 2:
		return uint64(binary.BigEndian.Uint16(b)), nil
	case 4:
		return uint64(binary.BigEndian.Uint32(b)), nil
	case 8:
		return binary.BigEndian.Uint64(b), nil
	}
	return 0, fmt.Errorf("schema: unsupported integer width %d", width)
}

func EncodeBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

func DecodeBool(b []byte) (bool, error) {
	if len(b) < 1 {
		return false, fmt.Errorf("schema: short bool key field")
	}
	return b[0] != 0, nil
}

// EncodeString length-prefixes s so string-typed keys can be embedded
// alongside other key parts without ambiguity about where they end.
func EncodeString(s string) []byte {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(s)))
	out := make([]byte, 0, n+len(s))
	out = append(out, lenBuf[:n]...)
	return append(out, s...)
}

func DecodeString(b []byte) (string, []byte, error) {
	n, nread := binary.Uvarint(b)
	if nread <= 0 {
		return "", nil, fmt.Errorf("schema: truncated string key length")
	}
	b = b[nread:]
	if uint64(len(b)) < n {
		return "", nil, fmt.Errorf("schema: truncated string key")
	}
	return string(b[:n]), b[n:], nil
}
