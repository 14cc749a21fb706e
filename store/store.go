// Package store implements Netabase's persistent record store: the
// storage interface the DHT event loop requires (§4.2), backed by
// two keyspace partitions inside internal/storageengine's BadgerDB
// engine. It is adapted from the teacher's
// internal/discovery/dht.PersistentProviderStore, generalized from a
// provider-only cache to the full record+provider operation table the
// specification names, and additionally exposes a ds.Datastore/
// ds.Batching adapter (store/datastore.go) so the same instance can be
// handed to go-libp2p-kad-dht's Datastore option.
package store

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"

	"github.com/netabase/netabase/codec"
	"github.com/netabase/netabase/config"
	"github.com/netabase/netabase/errs"
	"github.com/netabase/netabase/internal/log"
	"github.com/netabase/netabase/internal/storageengine"
)

var logger = log.Logger("store")

const (
	recordsPartition   = "records/"
	providersPartition = "providers/"

	// recordCacheSize bounds the in-memory LRU of recently read/written
	// records that sits in front of the BadgerDB records partition,
	// trading a small fixed amount of memory for avoiding a disk read
	// on repeat Get calls against hot keys.
	recordCacheSize = 4096
)

// Record is the opaque ⟨key, value, publisher?, expires?⟩ tuple the
// store persists (§3).
type Record struct {
	Key       []byte
	Value     []byte
	Publisher *peer.ID
	Expires   *time.Time
}

// ProviderRecord is the ⟨key, provider, addresses, expires?⟩ tuple
// announcing that a peer serves a key (§3).
type ProviderRecord struct {
	Key      []byte
	Provider peer.ID
	Addrs    []multiaddr.Multiaddr
	Expires  time.Time
}

// Limits carries the advisory capacity bounds checked at put time
// (§4.2 Capacity).
type Limits struct {
	MaxRecords         int
	MaxValueBytes      int
	MaxProvidersPerKey int // K
	MaxProvidedKeys    int
}

// LimitsFromConfig builds Limits from the storage and DHT configs,
// letting the DHT's replication factor govern the per-key provider
// bound.
func LimitsFromConfig(sc config.StorageConfig, dc config.DHTConfig) Limits {
	k := sc.MaxProvidersPerKey
	if dc.ReplicationFactor > 0 {
		k = dc.ReplicationFactor
	}
	return Limits{
		MaxRecords:         sc.MaxRecords,
		MaxValueBytes:      sc.MaxValueBytes,
		MaxProvidersPerKey: k,
		MaxProvidedKeys:    sc.MaxProvidedKeys,
	}
}

// ErrStopIteration lets a Records/Provided callback stop the scan
// early without that being reported as a failure.
var ErrStopIteration = errors.New("store: stop iteration")

// Store is a persistent, capacity-bounded record and provider store.
// The zero value is not usable; construct with Open.
type Store struct {
	engine *storageengine.Engine
	limits Limits
	local  peer.ID

	mu       sync.RWMutex
	provided map[string]struct{} // record key string -> present

	recordCount atomic.Int64
	cache       *lru.Cache[string, Record]
}

// Open constructs a Store over eng, recovering the "provided" set by
// scanning the providers partition for entries whose provider is
// local (§4.2 Startup recovery).
func Open(eng *storageengine.Engine, local peer.ID, limits Limits) (*Store, error) {
	cache, err := lru.New[string, Record](recordCacheSize)
	if err != nil {
		return nil, fmt.Errorf("%w: allocating record cache: %v", errs.ErrStorage, err)
	}

	s := &Store{
		engine:   eng,
		limits:   limits,
		local:    local,
		provided: make(map[string]struct{}),
		cache:    cache,
	}

	var recCount int64
	if err := eng.IterateKeys([]byte(recordsPartition), func(key, value []byte) error {
		recCount++
		return nil
	}); err != nil {
		return nil, fmt.Errorf("%w: scanning records partition: %v", errs.ErrStorage, err)
	}
	s.recordCount.Store(recCount)

	if err := eng.IterateKeys([]byte(providersPartition), func(key, value []byte) error {
		list, err := codec.DecodeProviderList(value)
		if err != nil {
			logger.Warn("skipping corrupt provider list during recovery", "error", err)
			return nil
		}
		for _, p := range list {
			if string(p.Provider) == string(local) {
				recordKey := key[len(providersPartition):]
				s.provided[string(recordKey)] = struct{}{}
			}
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("%w: scanning providers partition: %v", errs.ErrStorage, err)
	}

	logger.Info("store recovered", "records", recCount, "provided_keys", len(s.provided))
	return s, nil
}

func recordKey(key []byte) []byte {
	return append([]byte(recordsPartition), key...)
}

func providerKey(key []byte) []byte {
	return append([]byte(providersPartition), key...)
}

// Get returns the record stored at key, or errs.ErrNotFound.
func (s *Store) Get(key []byte) (Record, error) {
	if r, ok := s.cache.Get(string(key)); ok {
		return r, nil
	}

	raw, err := s.engine.Get(recordKey(key))
	if err != nil {
		return Record{}, err
	}
	w, err := codec.DecodeRecordWrapper(raw)
	if err != nil {
		return Record{}, err
	}
	r := wrapperToRecord(w)
	s.cache.Add(string(key), r)
	return r, nil
}

// Put stores r, replacing any existing record at the same key. It
// returns errs.ErrStoreFull if a capacity bound configured in Limits
// would be exceeded by a brand new key; exceeding bounds on data
// already stored is permitted (§4.2 Capacity).
func (s *Store) Put(r Record) error {
	if len(r.Key) == 0 {
		return fmt.Errorf("%w: empty record key", errs.ErrInvalidCommand)
	}
	if s.limits.MaxValueBytes > 0 && len(r.Value) > s.limits.MaxValueBytes {
		return fmt.Errorf("%w: value exceeds max_value_bytes", errs.ErrStoreFull)
	}

	dk := recordKey(r.Key)
	existed, err := s.engine.Has(dk)
	if err != nil {
		logger.Warn("put: existence check failed, degrading to insert", "error", err)
	}
	if !existed && s.limits.MaxRecords > 0 && s.recordCount.Load() >= int64(s.limits.MaxRecords) {
		return fmt.Errorf("%w: max_records reached", errs.ErrStoreFull)
	}

	w := recordToWrapper(r)
	if err := s.engine.Put(dk, codec.EncodeRecordWrapper(w)); err != nil {
		// §4.2 Failure semantics: disk errors during put degrade to a
		// logged warning; the DHT's interface has no channel to
		// propagate them.
		logger.Warn("put: storage write failed", "error", err)
		return nil
	}
	if !existed {
		s.recordCount.Add(1)
	}
	s.cache.Add(string(r.Key), r)
	return nil
}

// Remove deletes the record at key, if present.
func (s *Store) Remove(key []byte) error {
	dk := recordKey(key)
	existed, _ := s.engine.Has(dk)
	if err := s.engine.Delete(dk); err != nil {
		return err
	}
	if existed {
		s.recordCount.Add(-1)
	}
	s.cache.Remove(string(key))
	return nil
}

// Records lazily visits every stored record, stopping when fn returns
// a non-nil error. Returning ErrStopIteration stops the scan without
// propagating a failure.
func (s *Store) Records(fn func(Record) error) error {
	err := s.engine.IterateKeys([]byte(recordsPartition), func(key, value []byte) error {
		w, err := codec.DecodeRecordWrapper(value)
		if err != nil {
			logger.Warn("skipping corrupt record", "error", err)
			return nil
		}
		return fn(wrapperToRecord(w))
	})
	if errors.Is(err, ErrStopIteration) {
		return nil
	}
	return err
}

// AddProvider records that pr.Provider serves pr.Key, replacing any
// existing entry for the same provider. If the local peer is
// providing a key it has not previously provided, the global
// max_provided_keys bound is checked first (§4.2 Algorithms).
func (s *Store) AddProvider(pr ProviderRecord) error {
	pk := providerKey(pr.Key)
	list, err := s.loadProviderList(pk)
	if err != nil {
		return err
	}

	isLocal := pr.Provider == s.local
	keyStr := string(pr.Key)

	if isLocal {
		s.mu.RLock()
		_, alreadyProvided := s.provided[keyStr]
		s.mu.RUnlock()
		if !alreadyProvided && s.limits.MaxProvidedKeys > 0 {
			s.mu.RLock()
			n := len(s.provided)
			s.mu.RUnlock()
			if n >= s.limits.MaxProvidedKeys {
				return errs.ErrMaxProvidedKeys
			}
		}
	}

	w := providerToWrapper(pr)
	replaced := false
	for i, existing := range list {
		if string(existing.Provider) == string(pr.Provider) {
			list[i] = w
			replaced = true
			break
		}
	}
	if !replaced {
		if s.limits.MaxProvidersPerKey > 0 && len(list) >= s.limits.MaxProvidersPerKey {
			// §4.2: silently drop once K is reached.
			return nil
		}
		list = append(list, w)
	}

	if err := s.engine.Put(pk, codec.EncodeProviderList(list)); err != nil {
		logger.Warn("add_provider: storage write failed", "error", err)
		return nil
	}

	if isLocal {
		s.mu.Lock()
		s.provided[keyStr] = struct{}{}
		s.mu.Unlock()
	}
	return nil
}

// Providers returns every non-expired provider record for key.
func (s *Store) Providers(key []byte) ([]ProviderRecord, error) {
	list, err := s.loadProviderList(providerKey(key))
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]ProviderRecord, 0, len(list))
	for _, w := range list {
		pr := wrapperToProvider(w)
		if !pr.Expires.IsZero() && pr.Expires.Before(now) {
			continue
		}
		out = append(out, pr)
	}
	return out, nil
}

// Provided lazily visits every record locally provided by this node.
func (s *Store) Provided(fn func(key []byte) error) error {
	s.mu.RLock()
	keys := make([]string, 0, len(s.provided))
	for k := range s.provided {
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	for _, k := range keys {
		if err := fn([]byte(k)); err != nil {
			if errors.Is(err, ErrStopIteration) {
				return nil
			}
			return err
		}
	}
	return nil
}

// RemoveProvider drops p's entry for key, deleting the provider list
// entirely once it empties.
func (s *Store) RemoveProvider(key []byte, p peer.ID) error {
	pk := providerKey(key)
	list, err := s.loadProviderList(pk)
	if err != nil {
		return err
	}

	out := list[:0]
	for _, w := range list {
		if string(w.Provider) != string(p) {
			out = append(out, w)
		}
	}

	if p == s.local {
		s.mu.Lock()
		delete(s.provided, string(key))
		s.mu.Unlock()
	}

	if len(out) == 0 {
		return s.engine.Delete(pk)
	}
	return s.engine.Put(pk, codec.EncodeProviderList(out))
}

// Close is a no-op: every write is committed by its own engine call,
// so there is no pending state to flush. The underlying engine is
// closed by its owner (the node lifecycle), not by the store.
func (s *Store) Close() error {
	return nil
}

func (s *Store) loadProviderList(pk []byte) ([]codec.ProviderWrapper, error) {
	raw, err := s.engine.Get(pk)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return codec.DecodeProviderList(raw)
}

func recordToWrapper(r Record) codec.RecordWrapper {
	w := codec.RecordWrapper{Key: r.Key, Value: r.Value}
	if r.Publisher != nil {
		w.Publisher = []byte(*r.Publisher)
	}
	if r.Expires != nil {
		w.HasExpiry = true
		w.Expires = *r.Expires
	}
	return w
}

func wrapperToRecord(w codec.RecordWrapper) Record {
	r := Record{Key: w.Key, Value: w.Value}
	if w.Publisher != nil {
		pid := peer.ID(w.Publisher)
		r.Publisher = &pid
	}
	if w.HasExpiry {
		t := w.Expires
		r.Expires = &t
	}
	return r
}

func providerToWrapper(pr ProviderRecord) codec.ProviderWrapper {
	addrs := make([][]byte, len(pr.Addrs))
	for i, a := range pr.Addrs {
		addrs[i] = a.Bytes()
	}
	return codec.ProviderWrapper{
		Key:      pr.Key,
		Provider: []byte(pr.Provider),
		Addrs:    addrs,
		Expires:  pr.Expires,
	}
}

func wrapperToProvider(w codec.ProviderWrapper) ProviderRecord {
	addrs := make([]multiaddr.Multiaddr, 0, len(w.Addrs))
	for _, a := range w.Addrs {
		ma, err := multiaddr.NewMultiaddrBytes(a)
		if err != nil {
			continue
		}
		addrs = append(addrs, ma)
	}
	return ProviderRecord{
		Key:      w.Key,
		Provider: peer.ID(w.Provider),
		Addrs:    addrs,
		Expires:  w.Expires,
	}
}
