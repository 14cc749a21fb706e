package netstack

import (
	"testing"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifeeDedupesRepeatedPeers(t *testing.T) {
	id := mustPeerID(t)
	ch := make(chan peer.AddrInfo, 4)
	n := &notifee{seen: make(map[peer.ID]struct{}), discover: ch}

	info := peer.AddrInfo{ID: id}
	n.HandlePeerFound(info)
	n.HandlePeerFound(info)
	n.HandlePeerFound(info)

	assert.Len(t, ch, 1, "a repeated peer should only be delivered once")
}

func TestNotifeeDeliversDistinctPeers(t *testing.T) {
	ch := make(chan peer.AddrInfo, 4)
	n := &notifee{seen: make(map[peer.ID]struct{}), discover: ch}

	n.HandlePeerFound(peer.AddrInfo{ID: mustPeerID(t)})
	n.HandlePeerFound(peer.AddrInfo{ID: mustPeerID(t)})

	assert.Len(t, ch, 2)
}

func TestNotifeeDropsWhenChannelFull(t *testing.T) {
	ch := make(chan peer.AddrInfo) // unbuffered: any send without a reader drops
	n := &notifee{seen: make(map[peer.ID]struct{}), discover: ch}

	assert.NotPanics(t, func() {
		n.HandlePeerFound(peer.AddrInfo{ID: mustPeerID(t)})
	})
}

func mustPeerID(t *testing.T) peer.ID {
	t.Helper()
	id, err := test.RandPeerID()
	require.NoError(t, err)
	return id
}
