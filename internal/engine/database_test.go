package engine

import (
	"context"
	"testing"

	ds "github.com/ipfs/go-datastore"
	"github.com/multiformats/go-base32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netabase/netabase/command"
	"github.com/netabase/netabase/errs"
	"github.com/netabase/netabase/store"
)

func TestHandleContainsReflectsStoreState(t *testing.T) {
	l := newTestLoop(t)

	resp := do(t, l, func(reply chan<- command.Response) command.Command {
		return command.Contains{ReplyChan: command.ReplyChan{Reply: reply}, Key: []byte("k")}
	})
	require.NoError(t, resp.Err)
	assert.Equal(t, false, resp.Ok)

	require.NoError(t, l.store.Put(store.Record{Key: []byte("k"), Value: []byte("v")}))

	resp = do(t, l, func(reply chan<- command.Response) command.Command {
		return command.Contains{ReplyChan: command.ReplyChan{Reply: reply}, Key: []byte("k")}
	})
	require.NoError(t, resp.Err)
	assert.Equal(t, true, resp.Ok)
}

// TestHandleContainsReflectsRealDHTWrite writes through store.Datastore
// the way go-libp2p-kad-dht's PutValue does (keyed by its own base32
// ds.Key), not through l.store.Put directly, to confirm Contains sees
// records the real DHT write path produces.
func TestHandleContainsReflectsRealDHTWrite(t *testing.T) {
	l := newTestLoop(t)
	key := []byte("real-dht-key")
	dsKey := ds.NewKey(base32.RawStdEncoding.EncodeToString(key))

	require.NoError(t, l.store.AsDatastore().Put(context.Background(), dsKey, []byte("v")))

	resp := do(t, l, func(reply chan<- command.Response) command.Command {
		return command.Contains{ReplyChan: command.ReplyChan{Reply: reply}, Key: key}
	})
	require.NoError(t, resp.Err)
	assert.Equal(t, true, resp.Ok)
}

func TestHandleContainsRejectsEmptyKey(t *testing.T) {
	l := newTestLoop(t)
	resp := do(t, l, func(reply chan<- command.Response) command.Command {
		return command.Contains{ReplyChan: command.ReplyChan{Reply: reply}, Key: nil}
	})
	assert.ErrorIs(t, resp.Err, errs.ErrInvalidCommand)
}

func TestHandlePutRejectsEmptyKey(t *testing.T) {
	l := newTestLoop(t)
	resp := do(t, l, func(reply chan<- command.Response) command.Command {
		return command.Put{ReplyChan: command.ReplyChan{Reply: reply}, Key: nil, Value: []byte("v")}
	})
	assert.ErrorIs(t, resp.Err, errs.ErrInvalidCommand)
}

func TestHandleGetRejectsEmptyKey(t *testing.T) {
	l := newTestLoop(t)
	resp := do(t, l, func(reply chan<- command.Response) command.Command {
		return command.Get{ReplyChan: command.ReplyChan{Reply: reply}, Key: nil}
	})
	assert.ErrorIs(t, resp.Err, errs.ErrInvalidCommand)
}

func TestHandlePutBatchRejectsAnyEmptyKey(t *testing.T) {
	l := newTestLoop(t)
	resp := do(t, l, func(reply chan<- command.Response) command.Command {
		return command.PutBatch{
			ReplyChan: command.ReplyChan{Reply: reply},
			Entries: []command.Put{
				{Key: []byte("ok"), Value: []byte("v")},
				{Key: nil, Value: []byte("v")},
			},
		}
	})
	assert.ErrorIs(t, resp.Err, errs.ErrInvalidCommand)
}

func TestTransactionAndRangeQueryAreNotImplemented(t *testing.T) {
	l := newTestLoop(t)

	resp := do(t, l, func(reply chan<- command.Response) command.Command {
		return command.Transaction{ReplyChan: command.ReplyChan{Reply: reply}}
	})
	assert.ErrorIs(t, resp.Err, errs.ErrNotImplemented)

	resp = do(t, l, func(reply chan<- command.Response) command.Command {
		return command.RangeQuery{ReplyChan: command.ReplyChan{Reply: reply}}
	})
	assert.ErrorIs(t, resp.Err, errs.ErrNotImplemented)
}

func TestDeleteDispatchesAsEmptyValuePut(t *testing.T) {
	// Delete never reaches handlePut's store.Put path directly (that's
	// the DHT's job), but it must route through the same validation as
	// Put rather than skip it.
	l := newTestLoop(t)
	resp := do(t, l, func(reply chan<- command.Response) command.Command {
		return command.Delete{ReplyChan: command.ReplyChan{Reply: reply}, Key: nil}
	})
	assert.ErrorIs(t, resp.Err, errs.ErrInvalidCommand)
}
