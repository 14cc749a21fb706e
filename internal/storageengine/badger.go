// Package storageengine wraps BadgerDB (github.com/dgraph-io/badger/v4)
// as Netabase's embedded LSM-tree storage engine. It is the layer the
// store package builds its record/provider partitions on top of, and
// the only package in the module that imports badger directly.
package storageengine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/netabase/netabase/config"
	"github.com/netabase/netabase/errs"
	"github.com/netabase/netabase/internal/log"
)

var logger = log.Logger("storageengine")

// gcInterval is how often a value-log GC pass runs. BadgerDB's own
// advice is "run it periodically, ignore ErrNoRewrite" — there is no
// config knob for this in StorageConfig because embedding applications
// have no reason to tune it.
const gcInterval = 10 * time.Minute

const gcDiscardRatio = 0.5

// Engine is a BadgerDB-backed key-value engine. It is safe for
// concurrent use.
type Engine struct {
	db     *badger.DB
	closed atomic.Bool

	gcCtx    context.Context
	gcCancel context.CancelFunc
	gcWg     sync.WaitGroup
}

// Open opens (creating if necessary) a BadgerDB instance at
// cfg.Path and starts its background GC loop.
func Open(cfg config.StorageConfig) (*Engine, error) {
	opts := badger.DefaultOptions(cfg.Path).WithLogger(&badgerLogger{})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: opening badger at %q: %v", errs.ErrStorage, cfg.Path, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{db: db, gcCtx: ctx, gcCancel: cancel}
	e.startGC()
	return e, nil
}

func (e *Engine) startGC() {
	e.gcWg.Add(1)
	go func() {
		defer e.gcWg.Done()
		ticker := time.NewTicker(gcInterval)
		defer ticker.Stop()
		for {
			select {
			case <-e.gcCtx.Done():
				return
			case <-ticker.C:
				e.runGC()
			}
		}
	}()
}

func (e *Engine) runGC() {
	for {
		if err := e.db.RunValueLogGC(gcDiscardRatio); err != nil {
			return
		}
	}
}

// Get returns a copy of the value stored at key, or errs.ErrNotFound.
func (e *Engine) Get(key []byte) ([]byte, error) {
	if e.closed.Load() {
		return nil, errs.ErrNotInitialized
	}
	var value []byte
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return errs.ErrNotFound
			}
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if err == errs.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", errs.ErrStorage, err)
	}
	return value, nil
}

// Put writes key to value, overwriting any prior value.
func (e *Engine) Put(key, value []byte) error {
	if e.closed.Load() {
		return errs.ErrNotInitialized
	}
	err := e.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrStorage, err)
	}
	return nil
}

// Delete removes key. It is not an error for key to be absent.
func (e *Engine) Delete(key []byte) error {
	if e.closed.Load() {
		return errs.ErrNotInitialized
	}
	err := e.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrStorage, err)
	}
	return nil
}

// Has reports whether key exists.
func (e *Engine) Has(key []byte) (bool, error) {
	if e.closed.Load() {
		return false, errs.ErrNotInitialized
	}
	var exists bool
	err := e.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		switch err {
		case nil:
			exists = true
			return nil
		case badger.ErrKeyNotFound:
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", errs.ErrStorage, err)
	}
	return exists, nil
}

// GetSize returns the size of the value stored at key without copying
// it, or errs.ErrNotFound.
func (e *Engine) GetSize(key []byte) (int, error) {
	if e.closed.Load() {
		return 0, errs.ErrNotInitialized
	}
	var size int
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return errs.ErrNotFound
			}
			return err
		}
		size = int(item.ValueSize())
		return nil
	})
	if err != nil {
		if err == errs.ErrNotFound {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", errs.ErrStorage, err)
	}
	return size, nil
}

// IterateKeys calls fn for every key with the given prefix, in
// lexicographic order, stopping early if fn returns an error. It is
// used for the store's startup recovery scan (§4.2/§5.2) and for
// query-style operations (Records).
func (e *Engine) IterateKeys(prefix []byte, fn func(key, value []byte) error) error {
	if e.closed.Load() {
		return errs.ErrNotInitialized
	}
	return e.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(item.KeyCopy(nil), value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Batch accumulates writes for an atomic commit via Flush.
type Batch struct {
	wb *badger.WriteBatch
}

// NewBatch returns a Batch bound to this engine.
func (e *Engine) NewBatch() *Batch {
	return &Batch{wb: e.db.NewWriteBatch()}
}

func (b *Batch) Put(key, value []byte) error {
	return b.wb.Set(key, value)
}

func (b *Batch) Delete(key []byte) error {
	return b.wb.Delete(key)
}

// Flush commits the batch and releases its resources.
func (b *Batch) Flush() error {
	err := b.wb.Flush()
	b.wb.Cancel()
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrStorage, err)
	}
	return nil
}

// Close stops the GC loop and closes the underlying database.
func (e *Engine) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	e.gcCancel()
	e.gcWg.Wait()
	if err := e.db.Close(); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrStorage, err)
	}
	return nil
}

type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{})   { logger.Error(fmt.Sprintf(format, args...)) }
func (badgerLogger) Warningf(format string, args ...interface{}) { logger.Warn(fmt.Sprintf(format, args...)) }
func (badgerLogger) Infof(format string, args ...interface{})    { logger.Debug(fmt.Sprintf(format, args...)) }
func (badgerLogger) Debugf(format string, args ...interface{})   { logger.Debug(fmt.Sprintf(format, args...)) }
