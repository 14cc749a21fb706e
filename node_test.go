package netabase

import (
	"context"
	"testing"
	"time"

	"github.com/multiformats/go-multiaddr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netabase/netabase/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.Path = t.TempDir()
	// mDNS uses multicast UDP, which isn't guaranteed reachable in a
	// sandboxed test environment; every other facade behaviour is
	// independent of it.
	cfg.Discovery.MDNSEnabled = false
	return cfg
}

func TestNewStartsAndCloseStops(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	node, err := New(ctx, testConfig(t))
	require.NoError(t, err)
	require.NotNil(t, node)

	assert.NoError(t, node.Close())
}

func TestListenAddrsPopulatedAfterConstruction(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	node, err := New(ctx, testConfig(t))
	require.NoError(t, err)
	defer node.Close()

	assert.NotEmpty(t, node.ListenAddrs(), "libp2p.New binds its listen addresses synchronously")
}

func TestStartSwarmTwiceErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	node, err := New(ctx, testConfig(t))
	require.NoError(t, err)
	defer node.Close()

	require.NoError(t, node.StartSwarm(ctx))
	assert.ErrorIs(t, node.StartSwarm(ctx), errAlreadyRunning)
}

func TestStateReturnsASnapshot(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	node, err := New(ctx, testConfig(t))
	require.NoError(t, err)
	defer node.Close()

	state, err := node.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, node.ListenAddrs(), state.ListenAddrs)
}

func TestConnectPeerRejectsAddrWithoutPeerID(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	node, err := New(ctx, testConfig(t))
	require.NoError(t, err)
	defer node.Close()

	addr, err := multiaddr.NewMultiaddr("/ip4/127.0.0.1/tcp/4001")
	require.NoError(t, err)

	err = node.ConnectPeer(ctx, addr)
	assert.Error(t, err)
}

func TestConnectedPeersEmptyOnFreshNode(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	node, err := New(ctx, testConfig(t))
	require.NoError(t, err)
	defer node.Close()

	assert.Empty(t, node.ConnectedPeers())
}
