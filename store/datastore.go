package store

import (
	"context"
	"errors"
	"fmt"

	ds "github.com/ipfs/go-datastore"
	dsq "github.com/ipfs/go-datastore/query"
	"github.com/multiformats/go-base32"

	"github.com/netabase/netabase/errs"
)

// Datastore adapts a Store to ds.Batching (github.com/ipfs/go-datastore)
// so it can be passed directly to go-libp2p-kad-dht's Datastore
// option. It is a distinct type from Store (rather than Store itself
// implementing the interface) because ds.Datastore's method names
// collide with Store's own Get/Put/Has operation-table methods, which
// take Netabase's Record/ProviderRecord types rather than raw bytes.
//
// go-libp2p-kad-dht's PutValue/GetValue address records by their own
// mkDsKey(key) = ds.NewKey(base32.RawStdEncoding.EncodeToString(key)),
// not by the raw key bytes callers pass in. Every method here decodes
// that base32 form straight back to the original key and delegates to
// Store's own Get/Put/Remove, so a record written through the DHT and
// one read through Store.Get (as internal/engine.handleContains does)
// land on the exact same record, cache included. Provider records no
// longer flow through here at all now that the DHT is handed a
// dedicated providers.ProviderStore (providers_adapter.go).
type Datastore struct {
	s *Store
}

// AsDatastore returns the ds.Batching view of s.
func (s *Store) AsDatastore() *Datastore {
	return &Datastore{s: s}
}

// decodeDsKey recovers the raw key bytes go-libp2p-kad-dht base32-
// encoded via mkDsKey before handing k to this datastore.
func decodeDsKey(k ds.Key) ([]byte, error) {
	raw, err := base32.RawStdEncoding.DecodeString(k.BaseNamespace())
	if err != nil {
		return nil, fmt.Errorf("%w: decoding datastore key %q: %v", errs.ErrInvalidCommand, k, err)
	}
	return raw, nil
}

// Get implements ds.Datastore.
func (d *Datastore) Get(ctx context.Context, k ds.Key) ([]byte, error) {
	key, err := decodeDsKey(k)
	if err != nil {
		return nil, err
	}
	r, err := d.s.Get(key)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ds.ErrNotFound
		}
		return nil, err
	}
	return r.Value, nil
}

// Has implements ds.Datastore.
func (d *Datastore) Has(ctx context.Context, k ds.Key) (bool, error) {
	_, err := d.Get(ctx, k)
	if err != nil {
		if errors.Is(err, ds.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetSize implements ds.Datastore.
func (d *Datastore) GetSize(ctx context.Context, k ds.Key) (int, error) {
	v, err := d.Get(ctx, k)
	if err != nil {
		return -1, err
	}
	return len(v), nil
}

// Put implements ds.Datastore.
func (d *Datastore) Put(ctx context.Context, k ds.Key, value []byte) error {
	key, err := decodeDsKey(k)
	if err != nil {
		return err
	}
	return d.s.Put(Record{Key: key, Value: value})
}

// Delete implements ds.Datastore.
func (d *Datastore) Delete(ctx context.Context, k ds.Key) error {
	key, err := decodeDsKey(k)
	if err != nil {
		return err
	}
	return d.s.Remove(key)
}

// Sync implements ds.Datastore. BadgerDB commits synchronously per
// transaction and storageengine exposes no partial-flush knob, so this
// is a no-op kept only to satisfy the interface.
func (d *Datastore) Sync(ctx context.Context, prefix ds.Key) error {
	return nil
}

// Query implements ds.Datastore by scanning every stored record and
// applying go-datastore's own naive filter/order/limit/offset pass.
// Every key is re-encoded through the same mkDsKey base32 scheme
// decodeDsKey reverses, so a round trip through Query sees the same
// key strings PutValue/GetValue would have produced.
func (d *Datastore) Query(ctx context.Context, q dsq.Query) (dsq.Results, error) {
	var entries []dsq.Entry
	err := d.s.Records(func(r Record) error {
		e := dsq.Entry{Key: ds.NewKey(base32.RawStdEncoding.EncodeToString(r.Key)).String(), Size: len(r.Value)}
		if !q.KeysOnly {
			e.Value = r.Value
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStorage, err)
	}

	r := dsq.ResultsWithEntries(q, entries)
	return dsq.NaiveQueryApply(q, r), nil
}

// Close implements io.Closer. The engine's lifetime is owned by the
// node, not by this adapter, so this is a no-op.
func (d *Datastore) Close() error { return nil }

// dsBatch accumulates writes for Datastore.Batch.
type dsBatch struct {
	d       *Datastore
	entries []dsBatchEntry
}

type dsBatchEntry struct {
	key    ds.Key
	value  []byte
	delete bool
}

// Batch implements ds.Batching.
func (d *Datastore) Batch(ctx context.Context) (ds.Batch, error) {
	return &dsBatch{d: d}, nil
}

func (b *dsBatch) Put(ctx context.Context, k ds.Key, value []byte) error {
	b.entries = append(b.entries, dsBatchEntry{key: k, value: value})
	return nil
}

func (b *dsBatch) Delete(ctx context.Context, k ds.Key) error {
	b.entries = append(b.entries, dsBatchEntry{key: k, delete: true})
	return nil
}

// Commit applies each buffered write through Put/Delete rather than a
// raw engine batch, so every entry still passes through Store's own
// bookkeeping (record count, LRU cache) instead of bypassing it.
func (b *dsBatch) Commit(ctx context.Context) error {
	for _, e := range b.entries {
		if e.delete {
			if err := b.d.Delete(ctx, e.key); err != nil {
				return err
			}
			continue
		}
		if err := b.d.Put(ctx, e.key, e.value); err != nil {
			return err
		}
	}
	return nil
}

var (
	_ ds.Datastore = (*Datastore)(nil)
	_ ds.Batching  = (*Datastore)(nil)
)
