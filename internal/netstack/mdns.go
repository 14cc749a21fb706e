package netstack

import (
	"io"
	"sync"

	p2pmdns "github.com/libp2p/go-libp2p/p2p/discovery/mdns"

	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
)

// serviceTag namespaces the mDNS broadcast so Netabase nodes don't
// answer discovery queries from unrelated libp2p applications on the
// same LAN.
const serviceTag = "netabase-discovery"

// notifee adapts go-libp2p's mDNS service (which only reports
// discovery, never expiry) to a channel, deduplicating repeated
// broadcasts the way the teacher's peerNotifee does for its own
// zeroconf-backed service.
type notifee struct {
	mu       sync.Mutex
	seen     map[peer.ID]struct{}
	discover chan<- peer.AddrInfo
}

func (n *notifee) HandlePeerFound(info peer.AddrInfo) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, dup := n.seen[info.ID]; dup {
		return
	}
	select {
	case n.discover <- info:
		n.seen[info.ID] = struct{}{}
	default:
		// Lossy by design (§5 Shared resources): a full channel means
		// the loop is behind and will catch this peer on its next
		// broadcast.
	}
}

// StartMDNS starts LAN discovery on h, delivering each newly seen peer
// on discover.
func StartMDNS(h host.Host, discover chan<- peer.AddrInfo) (io.Closer, error) {
	n := &notifee{seen: make(map[peer.ID]struct{}), discover: discover}
	svc := p2pmdns.NewMdnsService(h, serviceTag, n)
	if err := svc.Start(); err != nil {
		return nil, err
	}
	return svc, nil
}
