package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netabase/netabase/errs"
)

func TestRecordWrapperRoundTrip(t *testing.T) {
	now := time.Unix(0, time.Now().UnixNano())

	cases := []RecordWrapper{
		{Key: []byte("k"), Value: []byte("v")},
		{Key: []byte("k"), Value: []byte("v"), Publisher: []byte("peer-1")},
		{Key: []byte("k"), Value: []byte("v"), Publisher: []byte("peer-1"), HasExpiry: true, Expires: now},
		{Key: []byte("k"), Value: []byte{}, HasExpiry: true, Expires: now},
	}

	for _, c := range cases {
		encoded := EncodeRecordWrapper(c)
		decoded, err := DecodeRecordWrapper(encoded)
		require.NoError(t, err)
		assert.Equal(t, c.Key, decoded.Key)
		assert.Equal(t, c.Value, decoded.Value)
		assert.Equal(t, c.Publisher, decoded.Publisher)
		assert.Equal(t, c.HasExpiry, decoded.HasExpiry)
		if c.HasExpiry {
			assert.Equal(t, c.Expires.UnixNano(), decoded.Expires.UnixNano())
		}
	}
}

func TestDecodeRecordWrapperCorrupt(t *testing.T) {
	_, err := DecodeRecordWrapper([]byte{0xff})
	assert.ErrorIs(t, err, errs.ErrSerialization)

	_, err = DecodeRecordWrapper(nil)
	assert.ErrorIs(t, err, errs.ErrSerialization)
}

func TestProviderWrapperRoundTrip(t *testing.T) {
	now := time.Unix(0, time.Now().UnixNano())
	p := ProviderWrapper{
		Key:      []byte("k"),
		Provider: []byte("peer-1"),
		Addrs:    [][]byte{[]byte("addr-1"), []byte("addr-2")},
		Expires:  now,
	}

	encoded := EncodeProviderWrapper(p)
	decoded, err := DecodeProviderWrapper(encoded)
	require.NoError(t, err)
	assert.Equal(t, p.Key, decoded.Key)
	assert.Equal(t, p.Provider, decoded.Provider)
	assert.Equal(t, p.Addrs, decoded.Addrs)
	assert.Equal(t, p.Expires.UnixNano(), decoded.Expires.UnixNano())
}

func TestProviderListRoundTrip(t *testing.T) {
	now := time.Unix(0, time.Now().UnixNano())
	list := []ProviderWrapper{
		{Key: []byte("k"), Provider: []byte("peer-1"), Addrs: [][]byte{[]byte("a")}, Expires: now},
		{Key: []byte("k"), Provider: []byte("peer-2"), Addrs: nil, Expires: now},
	}

	encoded := EncodeProviderList(list)
	decoded, err := DecodeProviderList(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, list[0].Provider, decoded[0].Provider)
	assert.Equal(t, list[1].Provider, decoded[1].Provider)
}

func TestProviderListRoundTripEmpty(t *testing.T) {
	encoded := EncodeProviderList(nil)
	decoded, err := DecodeProviderList(encoded)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}
