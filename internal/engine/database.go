package engine

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/netabase/netabase/command"
	"github.com/netabase/netabase/errs"
)

// handleDatabase implements the Database category (§4.4): Put, Get,
// Delete, and the batch variants resolve through the DHT so a value put
// locally is retrievable from any replica, while Contains answers from
// the local store (see handleContains); Delete
// writes an empty-value tombstone rather than removing the record,
// since go-libp2p-kad-dht (like the original) has no network-wide
// delete primitive and relies on record expiry to age tombstones out
// (spec §9 "Delete semantics use an empty-value tombstone").
func (l *Loop) handleDatabase(ctx context.Context, cmd command.Command) {
	switch c := cmd.(type) {
	case command.Put:
		l.handlePut(ctx, c.Key, c.Value, c.Quorum, c.Reply)

	case command.Get:
		l.handleGet(ctx, c.Key, c.Reply)

	case command.Delete:
		l.handlePut(ctx, c.Key, []byte{}, 0, c.Reply)

	case command.Contains:
		l.handleContains(c.Key, c.Reply)

	case command.PutBatch:
		l.handlePutBatch(ctx, c.Entries, c.Reply)

	case command.GetBatch:
		l.handleGetBatch(ctx, c.Keys, c.Reply)

	case command.Transaction:
		sendReply(c.Reply, command.Err(errs.ErrNotImplemented))

	case command.RangeQuery:
		sendReply(c.Reply, command.Err(errs.ErrNotImplemented))
	}
}

func (l *Loop) handlePut(ctx context.Context, key, value []byte, quorum int, reply chan<- command.Response) {
	if len(key) == 0 {
		sendReply(reply, command.Err(errs.ErrInvalidCommand))
		return
	}
	id := l.newQuery(opPut, reply)
	l.dispatchPut(ctx, id, key, value, quorum)
}

func (l *Loop) handleGet(ctx context.Context, key []byte, reply chan<- command.Response) {
	if len(key) == 0 {
		sendReply(reply, command.Err(errs.ErrInvalidCommand))
		return
	}
	id := l.newQuery(opGet, reply)
	l.dispatchGet(ctx, id, key)
}

// handleContains answers from the local store only: there is no
// network-wide existence check in Kademlia short of a full Get, and a
// local-first answer matches the original's "does my cache have it"
// reading of contains() in the absence of a dedicated lookup op.
func (l *Loop) handleContains(key []byte, reply chan<- command.Response) {
	if len(key) == 0 {
		sendReply(reply, command.Err(errs.ErrInvalidCommand))
		return
	}
	_, err := l.store.Get(key)
	switch {
	case err == nil:
		sendReply(reply, command.Ok(true))
	case errors.Is(err, errs.ErrNotFound):
		sendReply(reply, command.Ok(false))
	default:
		sendReply(reply, command.Err(err))
	}
}

// handlePutBatch fans every entry out to its own PutValue call via
// errgroup, the same fan-out-with-first-error idiom the pack's
// other concurrent subsystems use in place of hand-rolled channel
// plumbing.
func (l *Loop) handlePutBatch(ctx context.Context, entries []command.Put, reply chan<- command.Response) {
	for _, e := range entries {
		if len(e.Key) == 0 {
			sendReply(reply, command.Err(errs.ErrInvalidCommand))
			return
		}
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, e := range entries {
		e := e
		g.Go(func() error {
			return l.stack.DHT.PutValue(gctx, string(e.Key), e.Value)
		})
	}
	if err := g.Wait(); err != nil {
		sendReply(reply, command.Err(translateDHTError(opPut, err)))
		return
	}
	sendReply(reply, command.Ok(nil))
}

// handleGetBatch fans out per key and always succeeds at the batch
// level: a per-key miss or DHT error surfaces as Found: false in that
// slot rather than failing the whole batch, since callers reading N
// keys typically want the N-1 hits even when one key is absent.
func (l *Loop) handleGetBatch(ctx context.Context, keys [][]byte, reply chan<- command.Response) {
	out := make([]command.GetResult, len(keys))
	var g errgroup.Group
	for i, k := range keys {
		i, k := i, k
		g.Go(func() error {
			v, err := l.stack.DHT.GetValue(ctx, string(k))
			if err != nil {
				out[i] = command.GetResult{Found: false}
				return nil
			}
			out[i] = command.GetResult{Value: v, Found: true}
			return nil
		})
	}
	g.Wait()
	sendReply(reply, command.Ok(out))
}
