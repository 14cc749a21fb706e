// Package codec provides the pluggable user-payload serializer (§4.1)
// plus the fixed internal wire format for the record and provider
// wrappers persisted by the store package (§4.1/§6).
//
// The two are deliberately independent: Codec governs how a schema's
// Go value becomes the bytes stored in a Record's value field; the
// wrapper format in wire.go governs how that Record (key, value,
// publisher, expiry) is laid out on disk. Swapping the user's Codec
// never touches the wrapper format, and a future engine migration
// never touches user payloads.
package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/netabase/netabase/errs"
)

// Codec encodes and decodes a schema value to and from bytes. Encode
// is expected to be infallible for any value that fits in memory;
// Decode fails with a wrapped errs.ErrSerialization on malformed
// input.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(b []byte, v any) error
}

// CBOR is the default Codec, used unless a caller supplies another.
type CBOR struct{}

func (CBOR) Encode(v any) ([]byte, error) {
	return cbor.Marshal(v)
}

func (CBOR) Decode(b []byte, v any) error {
	if err := cbor.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrSerialization, err)
	}
	return nil
}

// Default is the process-wide default codec, overridable by embedding
// applications that construct their own Codec (e.g. one covered by an
// explicit byte-sequence-convertible bound per schema §4.3 rule 4).
var Default Codec = CBOR{}
