package engine

import (
	"sync"

	"github.com/libp2p/go-libp2p/core/peer"
)

// EventKind discriminates the network events the loop broadcasts to
// observers (§5.6 Node's chan NetworkEvent).
type EventKind int

const (
	EventPeerDiscovered EventKind = iota
	EventPeerConnected
	EventPeerDisconnected
	EventBootstrapComplete
)

// NetworkEvent is one item on the broadcast event stream.
type NetworkEvent struct {
	Kind EventKind
	Peer peer.ID
}

// broadcaster is a many-receiver, lossy fan-out: a slow subscriber's
// buffer can fill and starts dropping events rather than blocking the
// loop (§5 Shared resources: "broadcast event channel... lossy by
// design, for observability").
type broadcaster struct {
	mu   sync.Mutex
	subs map[chan NetworkEvent]struct{}
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[chan NetworkEvent]struct{})}
}

// Subscribe returns a new receiver channel with a small buffer.
func (b *broadcaster) Subscribe() <-chan NetworkEvent {
	ch := make(chan NetworkEvent, 32)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *broadcaster) Unsubscribe(ch <-chan NetworkEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.subs {
		if c == ch {
			delete(b.subs, c)
			close(c)
			return
		}
	}
}

func (b *broadcaster) Publish(ev NetworkEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Drop: the subscriber is behind.
		}
	}
}

func (b *broadcaster) CloseAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		close(ch)
		delete(b.subs, ch)
	}
}
