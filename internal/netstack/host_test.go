package netstack

import (
	"testing"

	dht "github.com/libp2p/go-libp2p-kad-dht"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netabase/netabase/config"
)

func TestRecordValidatorRejectsEmptyValue(t *testing.T) {
	v := recordValidator{}
	assert.Error(t, v.Validate("any-key", nil))
	assert.Error(t, v.Validate("any-key", []byte{}))
	assert.NoError(t, v.Validate("any-key", []byte("value")))
}

func TestRecordValidatorSelectPrefersLastWriter(t *testing.T) {
	v := recordValidator{}
	i, err := v.Select("k", [][]byte{[]byte("old"), []byte("newer"), []byte("newest")})
	require.NoError(t, err)
	assert.Equal(t, 2, i)
}

func TestDhtModeOption(t *testing.T) {
	cases := []struct {
		mode config.DHTMode
		want dht.ModeOpt
	}{
		{config.DHTModeAuto, dht.ModeAuto},
		{config.DHTModeServer, dht.ModeServer},
		{config.DHTModeClient, dht.ModeClient},
	}
	for _, c := range cases {
		got, err := dhtModeOption(c.mode)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}

	_, err := dhtModeOption(config.DHTMode(99))
	assert.Error(t, err)
}

func TestParseMultiaddrs(t *testing.T) {
	addrs, err := parseMultiaddrs([]string{"/ip4/127.0.0.1/tcp/4001"})
	require.NoError(t, err)
	require.Len(t, addrs, 1)

	_, err = parseMultiaddrs([]string{"not-a-multiaddr"})
	assert.Error(t, err)
}

func TestParseAddrInfos(t *testing.T) {
	addr := "/ip4/127.0.0.1/tcp/4001/p2p/QmWjEDjeEM6MGZFiD57WEunANAHftZk9D8BUnFjWVk8Gts"
	infos, err := parseAddrInfos([]string{addr})
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "QmWjEDjeEM6MGZFiD57WEunANAHftZk9D8BUnFjWVk8Gts", infos[0].ID.String())

	_, err = parseAddrInfos([]string{"/ip4/127.0.0.1/tcp/4001"})
	assert.Error(t, err, "a multiaddr with no /p2p component has no peer ID to extract")
}
