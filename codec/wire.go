package codec

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/netabase/netabase/errs"
)

// RecordWrapper is the tuple persisted for a DHT record (§3/§6):
// opaque key and value byte sequences, an optional publisher, and an
// optional expiry deadline.
type RecordWrapper struct {
	Key       []byte
	Value     []byte
	Publisher []byte // nil when absent
	HasExpiry bool
	Expires   time.Time
}

// ProviderWrapper is the tuple persisted for one provider announcement
// on a key: the provider's identity and its ordered address list.
type ProviderWrapper struct {
	Key      []byte
	Provider []byte
	Addrs    [][]byte
	Expires  time.Time
}

func putBytes(buf []byte, b []byte) []byte {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(b)))
	buf = append(buf, lenBuf[:n]...)
	return append(buf, b...)
}

func getBytes(buf []byte) (b []byte, rest []byte, err error) {
	n, nread := binary.Uvarint(buf)
	if nread <= 0 {
		return nil, nil, fmt.Errorf("%w: truncated length prefix", errs.ErrSerialization)
	}
	buf = buf[nread:]
	if uint64(len(buf)) < n {
		return nil, nil, fmt.Errorf("%w: truncated byte field", errs.ErrSerialization)
	}
	return buf[:n], buf[n:], nil
}

// EncodeRecordWrapper serializes a RecordWrapper to the on-disk
// format described in spec §6: length-prefixed key, length-prefixed
// value, a 1-byte publisher presence tag plus optional length-prefixed
// publisher, and a 1-byte expiry presence tag plus optional 8-byte
// big-endian Unix-nanosecond deadline.
func EncodeRecordWrapper(r RecordWrapper) []byte {
	buf := make([]byte, 0, len(r.Key)+len(r.Value)+len(r.Publisher)+24)
	buf = putBytes(buf, r.Key)
	buf = putBytes(buf, r.Value)
	if r.Publisher != nil {
		buf = append(buf, 1)
		buf = putBytes(buf, r.Publisher)
	} else {
		buf = append(buf, 0)
	}
	if r.HasExpiry {
		buf = append(buf, 1)
		var tsBuf [8]byte
		binary.BigEndian.PutUint64(tsBuf[:], uint64(r.Expires.UnixNano()))
		buf = append(buf, tsBuf[:]...)
	} else {
		buf = append(buf, 0)
	}
	return buf
}

// DecodeRecordWrapper is the inverse of EncodeRecordWrapper. It fails
// with errs.ErrSerialization when b is not a valid encoding.
func DecodeRecordWrapper(b []byte) (RecordWrapper, error) {
	var r RecordWrapper
	var err error

	r.Key, b, err = getBytes(b)
	if err != nil {
		return RecordWrapper{}, err
	}
	r.Value, b, err = getBytes(b)
	if err != nil {
		return RecordWrapper{}, err
	}
	if len(b) < 1 {
		return RecordWrapper{}, fmt.Errorf("%w: missing publisher tag", errs.ErrSerialization)
	}
	hasPublisher := b[0] == 1
	b = b[1:]
	if hasPublisher {
		r.Publisher, b, err = getBytes(b)
		if err != nil {
			return RecordWrapper{}, err
		}
	}
	if len(b) < 1 {
		return RecordWrapper{}, fmt.Errorf("%w: missing expiry tag", errs.ErrSerialization)
	}
	hasExpiry := b[0] == 1
	b = b[1:]
	if hasExpiry {
		if len(b) < 8 {
			return RecordWrapper{}, fmt.Errorf("%w: truncated expiry", errs.ErrSerialization)
		}
		ns := binary.BigEndian.Uint64(b[:8])
		r.HasExpiry = true
		r.Expires = time.Unix(0, int64(ns))
		b = b[8:]
	}
	if len(b) != 0 {
		return RecordWrapper{}, fmt.Errorf("%w: trailing bytes", errs.ErrSerialization)
	}
	return r, nil
}

// EncodeProviderWrapper serializes a ProviderWrapper: length-prefixed
// key, length-prefixed provider identity, a length-prefixed list of
// length-prefixed address byte sequences, and an 8-byte big-endian
// Unix-nanosecond expiry.
func EncodeProviderWrapper(p ProviderWrapper) []byte {
	buf := make([]byte, 0, len(p.Key)+len(p.Provider)+32)
	buf = putBytes(buf, p.Key)
	buf = putBytes(buf, p.Provider)

	var countBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(countBuf[:], uint64(len(p.Addrs)))
	buf = append(buf, countBuf[:n]...)
	for _, a := range p.Addrs {
		buf = putBytes(buf, a)
	}

	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], uint64(p.Expires.UnixNano()))
	return append(buf, tsBuf[:]...)
}

// DecodeProviderWrapper is the inverse of EncodeProviderWrapper.
func DecodeProviderWrapper(b []byte) (ProviderWrapper, error) {
	var p ProviderWrapper
	var err error

	p.Key, b, err = getBytes(b)
	if err != nil {
		return ProviderWrapper{}, err
	}
	p.Provider, b, err = getBytes(b)
	if err != nil {
		return ProviderWrapper{}, err
	}

	count, nread := binary.Uvarint(b)
	if nread <= 0 {
		return ProviderWrapper{}, fmt.Errorf("%w: truncated address count", errs.ErrSerialization)
	}
	b = b[nread:]

	p.Addrs = make([][]byte, 0, count)
	for i := uint64(0); i < count; i++ {
		var addr []byte
		addr, b, err = getBytes(b)
		if err != nil {
			return ProviderWrapper{}, err
		}
		p.Addrs = append(p.Addrs, addr)
	}

	if len(b) != 8 {
		return ProviderWrapper{}, fmt.Errorf("%w: bad expiry trailer", errs.ErrSerialization)
	}
	ns := binary.BigEndian.Uint64(b[:8])
	p.Expires = time.Unix(0, int64(ns))
	return p, nil
}

// EncodeProviderList serializes an ordered, K-bounded list of provider
// wrappers sharing a key into a single value for the providers
// partition (§4.2 backing structure).
func EncodeProviderList(list []ProviderWrapper) []byte {
	var countBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(countBuf[:], uint64(len(list)))
	buf := append([]byte(nil), countBuf[:n]...)
	for _, p := range list {
		entry := EncodeProviderWrapper(p)
		buf = putBytes(buf, entry)
	}
	return buf
}

// DecodeProviderList is the inverse of EncodeProviderList.
func DecodeProviderList(b []byte) ([]ProviderWrapper, error) {
	count, nread := binary.Uvarint(b)
	if nread <= 0 {
		return nil, fmt.Errorf("%w: truncated provider list count", errs.ErrSerialization)
	}
	b = b[nread:]

	list := make([]ProviderWrapper, 0, count)
	for i := uint64(0); i < count; i++ {
		var entry []byte
		var err error
		entry, b, err = getBytes(b)
		if err != nil {
			return nil, err
		}
		p, err := DecodeProviderWrapper(entry)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	if len(b) != 0 {
		return nil, fmt.Errorf("%w: trailing bytes in provider list", errs.ErrSerialization)
	}
	return list, nil
}
