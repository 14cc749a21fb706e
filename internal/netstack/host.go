// Package netstack builds the libp2p host, Kademlia DHT, and mDNS
// discovery service that internal/engine.Loop drives. It is adapted
// from the teacher's internal/core/host construction pattern,
// generalized to wire the real go-libp2p-kad-dht module (learned from
// the pack's reference go-libp2p-kad-dht forks, since the teacher
// implements its own DHT rather than depending on one) instead of a
// hand-rolled routing table.
package netstack

import (
	"context"
	"fmt"

	"github.com/libp2p/go-libp2p"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	record "github.com/libp2p/go-libp2p-record"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"
	"go.uber.org/multierr"

	"github.com/netabase/netabase/config"
	"github.com/netabase/netabase/errs"
	"github.com/netabase/netabase/internal/log"
	"github.com/netabase/netabase/store"
)

var logger = log.Logger("netstack")

// Stack bundles the constructed libp2p host and Kademlia DHT a Node
// needs. Close releases both in dependency order (DHT, then host).
type Stack struct {
	Host host.Host
	DHT  *dht.IpfsDHT
}

// recordValidator is the record.Validator go-libp2p-record requires:
// any record namespaced "netabase" is accepted verbatim, since
// authenticity here is enforced by the record wrapper's publisher
// field rather than a signature scheme (§4.1/§6).
type recordValidator struct{}

func (recordValidator) Validate(key string, value []byte) error {
	if len(value) == 0 {
		return fmt.Errorf("%w: empty record value", errs.ErrSerialization)
	}
	return nil
}

func (recordValidator) Select(key string, values [][]byte) (int, error) {
	// Last-writer-wins: without a signed sequence number to compare,
	// the most recently seen candidate (the final slot) is preferred,
	// matching store.Store's own put-replaces-by-key semantics (§3).
	return len(values) - 1, nil
}

// New constructs the libp2p host and DHT described by cfg, identified
// by priv, handing dhStore (already opened) to kad-dht as both its
// backing value datastore and its provider store, so provider
// announcements go through Store's own K-bound/dedup bookkeeping
// instead of the ProviderManager's default raw-bytes-over-Datastore
// path (§4.2 Algorithms).
func New(ctx context.Context, cfg *config.Config, priv crypto.PrivKey, dhStore *store.Store) (*Stack, error) {
	listenAddrs, err := parseMultiaddrs(cfg.Network.ListenAddresses)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidCommand, err)
	}

	h, err := libp2p.New(
		libp2p.Identity(priv),
		libp2p.ListenAddrs(listenAddrs...),
		libp2p.UserAgent(cfg.Identify.AgentVersion),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: constructing libp2p host: %v", errs.ErrNotInitialized, err)
	}

	mode, err := dhtModeOption(cfg.DHT.Mode)
	if err != nil {
		h.Close()
		return nil, err
	}

	kad, err := dht.New(ctx, h,
		dht.Mode(mode),
		dht.Datastore(dhStore.AsDatastore()),
		dht.ProviderStore(dhStore.AsProviderStore()),
		dht.Validator(record.NamespacedValidator{"netabase": recordValidator{}}),
		dht.ProtocolPrefix("/netabase"),
	)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("%w: constructing dht: %v", errs.ErrNotInitialized, err)
	}

	return &Stack{Host: h, DHT: kad}, nil
}

// Close tears down the DHT then the host, combining both failures
// (rather than discarding the second) the way the teacher's own
// multi-component shutdown paths do with multierr.
func (s *Stack) Close() error {
	return multierr.Append(s.DHT.Close(), s.Host.Close())
}

// Bootstrap dials every configured bootstrap address and runs the
// DHT's own routing-table refresh bootstrap.
func (s *Stack) Bootstrap(ctx context.Context, addrs []string) error {
	infos, err := parseAddrInfos(addrs)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidCommand, err)
	}
	for _, info := range infos {
		if err := s.Host.Connect(ctx, info); err != nil {
			logger.Warn("bootstrap dial failed", "peer", info.ID, "error", err)
		}
	}
	return s.DHT.Bootstrap(ctx)
}

func dhtModeOption(m config.DHTMode) (dht.ModeOpt, error) {
	switch m {
	case config.DHTModeAuto:
		return dht.ModeAuto, nil
	case config.DHTModeServer:
		return dht.ModeServer, nil
	case config.DHTModeClient:
		return dht.ModeClient, nil
	default:
		return 0, fmt.Errorf("%w: unknown dht mode %v", errs.ErrInvalidCommand, m)
	}
}

func parseMultiaddrs(addrs []string) ([]multiaddr.Multiaddr, error) {
	out := make([]multiaddr.Multiaddr, 0, len(addrs))
	for _, a := range addrs {
		ma, err := multiaddr.NewMultiaddr(a)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", a, err)
		}
		out = append(out, ma)
	}
	return out, nil
}

func parseAddrInfos(addrs []string) ([]peer.AddrInfo, error) {
	mas, err := parseMultiaddrs(addrs)
	if err != nil {
		return nil, err
	}
	infos := make([]peer.AddrInfo, 0, len(mas))
	for _, ma := range mas {
		info, err := peer.AddrInfoFromP2pAddr(ma)
		if err != nil {
			return nil, err
		}
		infos = append(infos, *info)
	}
	return infos, nil
}
