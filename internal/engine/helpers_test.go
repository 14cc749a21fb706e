package engine

import (
	"context"
	"testing"
	"time"

	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/test"
	"github.com/stretchr/testify/require"

	"github.com/netabase/netabase/command"
	"github.com/netabase/netabase/config"
	"github.com/netabase/netabase/internal/netstack"
	"github.com/netabase/netabase/internal/storageengine"
	"github.com/netabase/netabase/store"
)

const testTimeout = 5 * time.Second

// newTestLoop builds a Loop wired to a real, temp-directory-backed
// store and a real config, but with no netstack.Stack at all. It
// exercises every handler that never touches the DHT/host
// (Database.Contains, Configuration.*, most of System).
func newTestLoop(t *testing.T) *Loop {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.Path = t.TempDir()

	eng, err := storageengine.Open(cfg.Storage)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	id, err := test.RandPeerID()
	require.NoError(t, err)

	st, err := store.Open(eng, id, store.LimitsFromConfig(cfg.Storage, cfg.DHT))
	require.NoError(t, err)

	return New(cfg, nil, st)
}

// newHostBackedLoop additionally attaches a real, listen-address-free
// libp2p host (no DHT) for handlers that read l.stack.Host but never
// issue a DHT query (System.QueryState, Network.PeerInfo).
func newHostBackedLoop(t *testing.T) *Loop {
	t.Helper()
	l := newTestLoop(t)

	h, err := libp2p.New(libp2p.NoListenAddrs)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	l.stack = &netstack.Stack{Host: h}
	return l
}

// do posts cmd (built by build, which receives a fresh reply channel)
// through l.handle and returns the response, failing the test if none
// arrives within testTimeout.
func do(t *testing.T, l *Loop, build func(chan<- command.Response) command.Command) command.Response {
	t.Helper()
	reply := make(chan command.Response, 1)
	cmd := build(reply)
	l.handle(context.Background(), cmd)
	select {
	case resp := <-reply:
		return resp
	case <-time.After(testTimeout):
		t.Fatalf("no reply received for %T within %s", cmd, testTimeout)
		return command.Response{}
	}
}
