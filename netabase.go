// Package netabase provides a peer-to-peer, schema-typed key-value
// store built on a Kademlia DHT.
//
// A Node wraps a libp2p host, a kad-dht instance backed by an embedded
// BadgerDB record store, and the single-goroutine event loop
// (internal/engine) that owns both. Values are put and retrieved
// through the DHT, so any node in the swarm holding a replica can
// answer a Get; records are schema-typed via the schema package and
// cmd/netabase-gen, which derive a *Key type's opaque bytes and a
// record/value marshaling pair from a plain Go struct.
//
// Quick start:
//
//	cfg := config.DefaultConfig()
//	node, err := netabase.New(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer node.Close()
//
//	if err := node.StartSwarm(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := node.Put(ctx, key.Bytes(), value, 1); err != nil {
//	    log.Fatal(err)
//	}
package netabase

import (
	"context"
	"fmt"

	"github.com/netabase/netabase/command"
	"github.com/netabase/netabase/config"
)

// New constructs a Node from cfg and wires its libp2p host, DHT,
// record store, and event loop; the host binds its listen addresses
// and mDNS (if enabled) starts here. Bootstrap peers are not dialed
// until StartSwarm.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Node, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("netabase: invalid config: %w", err)
	}

	o := newOptions()
	for _, opt := range opts {
		opt(o)
	}

	node := &Node{config: cfg, opts: o}
	app, err := buildFxApp(cfg, o, node)
	if err != nil {
		return nil, fmt.Errorf("netabase: build fx app: %w", err)
	}
	node.app = app

	if err := node.app.Start(ctx); err != nil {
		return nil, fmt.Errorf("netabase: starting fx app: %w", err)
	}

	return node, nil
}

// send is the shared request/reply primitive every facade method uses:
// build a command carrying a one-shot reply channel, submit it to the
// loop, and unwrap the Response (§5.6).
func send[T any](ctx context.Context, n *Node, build func(chan<- command.Response) command.Command) (T, error) {
	var zero T
	reply := make(chan command.Response, 1)
	n.mu.RLock()
	commands := n.commands
	n.mu.RUnlock()
	if commands == nil {
		return zero, fmt.Errorf("netabase: %w", errNotRunning)
	}

	select {
	case commands <- build(reply):
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	select {
	case resp := <-reply:
		if resp.Err != nil {
			return zero, resp.Err
		}
		if resp.Ok == nil {
			return zero, nil
		}
		v, ok := resp.Ok.(T)
		if !ok {
			return zero, fmt.Errorf("netabase: unexpected reply payload %T", resp.Ok)
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
