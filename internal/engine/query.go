package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ipfs/go-cid"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/routing"
	mh "github.com/multiformats/go-multihash"
)

// queryTimeout bounds every worker-goroutine DHT call with the
// configured per-query deadline (config.DHTConfig.QueryTimeout); it is
// the Go-idiomatic substitute for the original's per-query deadline on
// a polled future (§4.5 Suspension points).
func (l *Loop) queryTimeout() time.Duration {
	return l.cfg.DHT.QueryTimeout.Duration()
}

// cidFromKey derives a content identifier from an opaque record key so
// it can be used with go-libp2p-kad-dht's provider-record API, which
// is keyed by cid.Cid rather than by raw bytes the way PutValue/
// GetValue are (§4.1 Key space).
func cidFromKey(key []byte) (cid.Cid, error) {
	digest, err := mh.Sum(key, mh.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, digest), nil
}

// dispatchPut runs a PutValue in its own goroutine and posts the
// outcome back onto l.results, tagged with id so resolve can route it.
func (l *Loop) dispatchPut(ctx context.Context, id uuid.UUID, key, value []byte, quorum int) {
	timeout := l.queryTimeout()
	go func() {
		qctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var opts []routing.Option
		if quorum > 0 {
			opts = append(opts, dht.Quorum(quorum))
		}
		err := l.stack.DHT.PutValue(qctx, string(key), value, opts...)
		l.results <- queryResult{id: id, err: err}
	}()
}

func (l *Loop) dispatchGet(ctx context.Context, id uuid.UUID, key []byte) {
	timeout := l.queryTimeout()
	go func() {
		qctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		value, err := l.stack.DHT.GetValue(qctx, string(key))
		l.results <- queryResult{id: id, value: value, err: err}
	}()
}

func (l *Loop) dispatchClosestPeers(ctx context.Context, id uuid.UUID, key []byte) {
	timeout := l.queryTimeout()
	go func() {
		qctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		peers, err := l.stack.DHT.GetClosestPeers(qctx, string(key))
		l.results <- queryResult{id: id, value: peers, err: err}
	}()
}

// dispatchProviders collects FindProvidersAsync's channel into a slice
// bounded by the configured replication factor, since the command
// protocol returns one Response rather than a stream (§4.4 DHTProviders).
func (l *Loop) dispatchProviders(ctx context.Context, id uuid.UUID, key []byte) {
	timeout := l.queryTimeout()
	go func() {
		qctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		c, err := cidFromKey(key)
		if err != nil {
			l.results <- queryResult{id: id, err: err}
			return
		}

		limit := l.cfg.DHT.ReplicationFactor
		if limit <= 0 {
			limit = 20
		}
		ch := l.stack.DHT.FindProvidersAsync(qctx, c, limit)

		var providers []peer.AddrInfo
		for info := range ch {
			providers = append(providers, info)
		}
		l.results <- queryResult{id: id, value: providers}
	}()
}
