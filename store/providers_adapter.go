package store

import (
	"context"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
)

// providerRecordTTL mirrors go-libp2p-kad-dht's own default provider
// record validity (amino.DefaultProvideValidity, 48h at the time of
// writing); Netabase has no separate config knob for it since the DHT
// itself re-provides on its own schedule well inside that window.
const providerRecordTTL = 48 * time.Hour

// ProviderStoreAdapter adapts Store to go-libp2p-kad-dht's
// providers.ProviderStore interface (AddProvider/GetProviders/Close),
// so the DHT's ProviderManager persists announcements through Store's
// own AddProvider/Providers instead of writing raw bytes straight
// through the generic ds.Datastore (which would bypass the K-per-key
// bound, dedup-by-identity, and "provided" set bookkeeping Store
// already implements, §4.2 Algorithms).
type ProviderStoreAdapter struct {
	s *Store
}

// AsProviderStore returns the providers.ProviderStore view of s, for
// passing to go-libp2p-kad-dht's ProviderStore option.
func (s *Store) AsProviderStore() *ProviderStoreAdapter {
	return &ProviderStoreAdapter{s: s}
}

// AddProvider implements providers.ProviderStore.
func (p *ProviderStoreAdapter) AddProvider(ctx context.Context, key []byte, prov peer.AddrInfo) error {
	return p.s.AddProvider(ProviderRecord{
		Key:      key,
		Provider: prov.ID,
		Addrs:    prov.Addrs,
		Expires:  time.Now().Add(providerRecordTTL),
	})
}

// GetProviders implements providers.ProviderStore.
func (p *ProviderStoreAdapter) GetProviders(ctx context.Context, key []byte) ([]peer.AddrInfo, error) {
	recs, err := p.s.Providers(key)
	if err != nil {
		return nil, err
	}
	infos := make([]peer.AddrInfo, len(recs))
	for i, r := range recs {
		infos[i] = peer.AddrInfo{ID: r.Provider, Addrs: r.Addrs}
	}
	return infos, nil
}

// Close implements io.Closer. Store's lifetime is owned by the node,
// not by this adapter view, so this is a no-op.
func (p *ProviderStoreAdapter) Close() error { return nil }
