package netabase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"
	"go.uber.org/fx"

	"github.com/netabase/netabase/command"
	"github.com/netabase/netabase/config"
	"github.com/netabase/netabase/errs"
	"github.com/netabase/netabase/internal/engine"
	"github.com/netabase/netabase/internal/log"
	"github.com/netabase/netabase/internal/netstack"
)

var logger = log.Logger("netabase")

var (
	errNotRunning     = errors.New("node not running")
	errAlreadyRunning = errs.ErrAlreadyRunning
)

// Node is the user-facing handle onto a running (or not-yet-started)
// swarm participant. All state-changing operations funnel through the
// command channel into internal/engine.Loop; Node itself holds no
// mutable DHT or store state (§5.6).
type Node struct {
	config *config.Config
	opts   *options

	app *fx.App

	mu       sync.RWMutex
	loop     *engine.Loop
	stack    *netstack.Stack
	commands chan<- command.Command
	running  bool

	mdnsCloser io.Closer
}

// StartSwarm marks the node running and dials any configured bootstrap
// peers. Listening and mDNS (if enabled) have already started in New.
// Calling it twice returns an error wrapping errs.ErrAlreadyRunning.
func (n *Node) StartSwarm(ctx context.Context) error {
	n.mu.Lock()
	if n.running {
		n.mu.Unlock()
		return fmt.Errorf("netabase: %w", errAlreadyRunning)
	}
	n.running = true
	stack := n.stack
	n.mu.Unlock()

	if len(n.config.Network.BootstrapAddresses) > 0 {
		if err := stack.Bootstrap(ctx, n.config.Network.BootstrapAddresses); err != nil {
			logger.Warn("bootstrap failed", "error", err)
		}
	}
	return nil
}

// CloseSwarm stops the event loop, mDNS service, DHT, and host, then
// tears down the fx app. Idempotent.
func (n *Node) CloseSwarm(ctx context.Context) error {
	n.mu.Lock()
	closer := n.mdnsCloser
	n.mu.Unlock()

	if closer != nil {
		_ = closer.Close()
	}
	return n.app.Stop(ctx)
}

// Close is an alias for CloseSwarm using context.Background, matching
// the teacher's defer-friendly Close() convention.
func (n *Node) Close() error {
	return n.CloseSwarm(context.Background())
}

var _ io.Closer = (*Node)(nil)

// ListenAddrs returns the host's currently bound multiaddresses.
func (n *Node) ListenAddrs() []multiaddr.Multiaddr {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.stack == nil {
		return nil
	}
	return n.stack.Host.Addrs()
}

// ConnectedPeers returns the peer IDs the host currently holds an open
// connection to.
func (n *Node) ConnectedPeers() []peer.ID {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.stack == nil {
		return nil
	}
	return n.stack.Host.Network().Peers()
}

// Events returns a lossy receiver of network events (peer discovery,
// connect/disconnect, bootstrap completion). Observability only; never
// required for correctness (§5 Shared resources).
func (n *Node) Events() <-chan engine.NetworkEvent {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.loop.SubscribeEvents()
}

// Put stores value under key through the DHT, waiting for quorum
// acknowledgements (0 uses the DHT's configured default).
func (n *Node) Put(ctx context.Context, key, value []byte, quorum int) error {
	_, err := send[any](ctx, n, func(reply chan<- command.Response) command.Command {
		return command.Put{ReplyChan: command.ReplyChan{Reply: reply}, Key: key, Value: value, Quorum: quorum}
	})
	return err
}

// Get retrieves the value stored under key. found is false if no
// record could be located anywhere in the swarm.
func (n *Node) Get(ctx context.Context, key []byte) (value []byte, found bool, err error) {
	res, err := send[command.GetResult](ctx, n, func(reply chan<- command.Response) command.Command {
		return command.Get{ReplyChan: command.ReplyChan{Reply: reply}, Key: key}
	})
	if err != nil {
		return nil, false, err
	}
	return res.Value, res.Found, nil
}

// Delete writes an empty-value tombstone for key; it does not remove
// the record network-wide, since Kademlia has no delete primitive —
// the tombstone ages out via the record's own expiry (spec §9).
func (n *Node) Delete(ctx context.Context, key []byte) error {
	_, err := send[any](ctx, n, func(reply chan<- command.Response) command.Command {
		return command.Delete{ReplyChan: command.ReplyChan{Reply: reply}, Key: key}
	})
	return err
}

// Contains reports whether key is present in the local record store,
// without a network round trip.
func (n *Node) Contains(ctx context.Context, key []byte) (bool, error) {
	return send[bool](ctx, n, func(reply chan<- command.Response) command.Command {
		return command.Contains{ReplyChan: command.ReplyChan{Reply: reply}, Key: key}
	})
}

// ConnectPeer dials addr and adds the resulting peer to the routing
// table.
func (n *Node) ConnectPeer(ctx context.Context, addr multiaddr.Multiaddr) error {
	_, err := send[any](ctx, n, func(reply chan<- command.Response) command.Command {
		return command.ConnectPeer{ReplyChan: command.ReplyChan{Reply: reply}, Addr: addr}
	})
	return err
}

// Bootstrap re-runs the DHT's routing-table refresh against the
// configured bootstrap peers.
func (n *Node) Bootstrap(ctx context.Context) error {
	_, err := send[any](ctx, n, func(reply chan<- command.Response) command.Command {
		return command.Bootstrap{ReplyChan: command.ReplyChan{Reply: reply}}
	})
	return err
}

// ClosestPeers returns the DHT's closest known peers to key.
func (n *Node) ClosestPeers(ctx context.Context, key []byte) ([]peer.ID, error) {
	return send[[]peer.ID](ctx, n, func(reply chan<- command.Response) command.Command {
		return command.DHTClosestPeers{ReplyChan: command.ReplyChan{Reply: reply}, Key: key}
	})
}

// Providers returns the peers currently advertising themselves as
// providers of key.
func (n *Node) Providers(ctx context.Context, key []byte) ([]peer.AddrInfo, error) {
	return send[[]peer.AddrInfo](ctx, n, func(reply chan<- command.Response) command.Command {
		return command.DHTProviders{ReplyChan: command.ReplyChan{Reply: reply}, Key: key}
	})
}

// State returns a snapshot of the node's running state, listen
// addresses, and connected peers.
func (n *Node) State(ctx context.Context) (command.NodeState, error) {
	return send[command.NodeState](ctx, n, func(reply chan<- command.Response) command.Command {
		return command.QueryState{ReplyChan: command.ReplyChan{Reply: reply}}
	})
}
