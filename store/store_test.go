package store

import (
	"testing"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netabase/netabase/config"
	"github.com/netabase/netabase/errs"
	"github.com/netabase/netabase/internal/storageengine"
)

func newTestStore(t *testing.T, local peer.ID, limits Limits) *Store {
	t.Helper()
	eng, err := storageengine.Open(testStorageConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	s, err := Open(eng, local, limits)
	require.NoError(t, err)
	return s
}

func testStorageConfig(t *testing.T) config.StorageConfig {
	t.Helper()
	cfg := config.DefaultStorageConfig()
	cfg.Path = t.TempDir()
	return cfg
}

func TestStorePutGetRemove(t *testing.T) {
	local := mustPeerID(t)
	s := newTestStore(t, local, Limits{MaxProvidersPerKey: 20, MaxProvidedKeys: 1024})

	require.NoError(t, s.Put(Record{Key: []byte("k1"), Value: []byte("v1")}))

	got, err := s.Get([]byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got.Value)

	_, err = s.Get([]byte("missing"))
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, s.Remove([]byte("k1")))
	_, err = s.Get([]byte("k1"))
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestStorePutReplacesExistingRecord(t *testing.T) {
	local := mustPeerID(t)
	s := newTestStore(t, local, Limits{MaxProvidersPerKey: 20})

	require.NoError(t, s.Put(Record{Key: []byte("k"), Value: []byte("v1")}))
	require.NoError(t, s.Put(Record{Key: []byte("k"), Value: []byte("v2")}))

	got, err := s.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got.Value)
}

func TestStorePutEnforcesMaxRecords(t *testing.T) {
	local := mustPeerID(t)
	s := newTestStore(t, local, Limits{MaxRecords: 1, MaxProvidersPerKey: 20})

	require.NoError(t, s.Put(Record{Key: []byte("k1"), Value: []byte("v1")}))
	err := s.Put(Record{Key: []byte("k2"), Value: []byte("v2")})
	assert.ErrorIs(t, err, errs.ErrStoreFull)

	// Replacing the already-stored key must still succeed.
	assert.NoError(t, s.Put(Record{Key: []byte("k1"), Value: []byte("v1-updated")}))
}

func TestAddProviderDeduplicatesByIdentity(t *testing.T) {
	local := mustPeerID(t)
	other := mustPeerID(t)
	s := newTestStore(t, local, Limits{MaxProvidersPerKey: 20, MaxProvidedKeys: 1024})

	key := []byte("shared-key")
	require.NoError(t, s.AddProvider(ProviderRecord{Key: key, Provider: other, Expires: time.Now().Add(time.Hour)}))
	require.NoError(t, s.AddProvider(ProviderRecord{Key: key, Provider: other, Expires: time.Now().Add(2 * time.Hour)}))

	providers, err := s.Providers(key)
	require.NoError(t, err)
	require.Len(t, providers, 1)
}

func TestAddProviderBoundedByK(t *testing.T) {
	local := mustPeerID(t)
	s := newTestStore(t, local, Limits{MaxProvidersPerKey: 2, MaxProvidedKeys: 1024})

	key := []byte("k")
	for i := 0; i < 5; i++ {
		p := mustPeerID(t)
		require.NoError(t, s.AddProvider(ProviderRecord{Key: key, Provider: p, Expires: time.Now().Add(time.Hour)}))
	}

	providers, err := s.Providers(key)
	require.NoError(t, err)
	assert.Len(t, providers, 2)
}

func TestLocalProvidedSetBoundedByMaxProvidedKeys(t *testing.T) {
	local := mustPeerID(t)
	s := newTestStore(t, local, Limits{MaxProvidersPerKey: 20, MaxProvidedKeys: 1})

	require.NoError(t, s.AddProvider(ProviderRecord{Key: []byte("k1"), Provider: local, Expires: time.Now().Add(time.Hour)}))
	err := s.AddProvider(ProviderRecord{Key: []byte("k2"), Provider: local, Expires: time.Now().Add(time.Hour)})
	assert.ErrorIs(t, err, errs.ErrMaxProvidedKeys)
}

func TestProvidedIteratesOnlyLocalKeys(t *testing.T) {
	local := mustPeerID(t)
	other := mustPeerID(t)
	s := newTestStore(t, local, Limits{MaxProvidersPerKey: 20, MaxProvidedKeys: 1024})

	require.NoError(t, s.AddProvider(ProviderRecord{Key: []byte("mine"), Provider: local, Expires: time.Now().Add(time.Hour)}))
	require.NoError(t, s.AddProvider(ProviderRecord{Key: []byte("theirs"), Provider: other, Expires: time.Now().Add(time.Hour)}))

	var seen []string
	require.NoError(t, s.Provided(func(key []byte) error {
		seen = append(seen, string(key))
		return nil
	}))

	assert.ElementsMatch(t, []string{"mine"}, seen)
}

func TestRemoveProviderDropsEmptyList(t *testing.T) {
	local := mustPeerID(t)
	s := newTestStore(t, local, Limits{MaxProvidersPerKey: 20, MaxProvidedKeys: 1024})

	key := []byte("k")
	require.NoError(t, s.AddProvider(ProviderRecord{Key: key, Provider: local, Expires: time.Now().Add(time.Hour)}))
	require.NoError(t, s.RemoveProvider(key, local))

	providers, err := s.Providers(key)
	require.NoError(t, err)
	assert.Empty(t, providers)
}

func TestRecoveryRebuildsProvidedSet(t *testing.T) {
	local := mustPeerID(t)
	cfg := testStorageConfig(t)
	eng, err := storageengine.Open(cfg)
	require.NoError(t, err)

	s, err := Open(eng, local, Limits{MaxProvidersPerKey: 20, MaxProvidedKeys: 1024})
	require.NoError(t, err)
	require.NoError(t, s.AddProvider(ProviderRecord{Key: []byte("k"), Provider: local, Expires: time.Now().Add(time.Hour)}))
	require.NoError(t, eng.Close())

	reopened, err := storageengine.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	recovered, err := Open(reopened, local, Limits{MaxProvidersPerKey: 20, MaxProvidedKeys: 1024})
	require.NoError(t, err)

	var seen []string
	require.NoError(t, recovered.Provided(func(key []byte) error {
		seen = append(seen, string(key))
		return nil
	}))
	assert.Equal(t, []string{"k"}, seen)
}

func mustPeerID(t *testing.T) peer.ID {
	t.Helper()
	id, err := test.RandPeerID()
	require.NoError(t, err)
	return id
}
