// Package engine implements the event loop that exclusively owns the
// DHT behaviour and the record store (§4.5/§5 Ownership). It is the
// Go-idiomatic substitute for the original async/cooperative-task
// design: one goroutine selects across a command channel, a pool of
// worker-goroutine results, and mDNS discovery notifications, exactly
// mirroring the teacher's single-consumer-channel patterns (e.g.
// internal/discovery/dht's single-writer ProviderManager.run, grounded
// further by the pack's go-libp2p-kad-dht provider manager reference).
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/netabase/netabase/command"
	"github.com/netabase/netabase/config"
	"github.com/netabase/netabase/errs"
	"github.com/netabase/netabase/internal/log"
	"github.com/netabase/netabase/internal/netstack"
	"github.com/netabase/netabase/store"
)

var logger = log.Logger("engine")

// opTag records which Database/Network operation a pending query
// identifier was issued for, so the loop knows how to translate the
// worker's raw result into a categorized Response (§4.5 Query
// correlation).
type opTag int

const (
	opPut opTag = iota
	opGet
	opClosestPeers
	opProviders
)

type pendingQuery struct {
	reply chan<- command.Response
	op    opTag
}

type queryResult struct {
	id    uuid.UUID
	value any
	err   error
}

// Loop owns the DHT behaviour, the record store, and all in-flight
// query state. Construct with New and drive it with Run in its own
// goroutine.
type Loop struct {
	cfg   *config.Config
	stack *netstack.Stack
	store *store.Store

	cmds     chan command.Command
	results  chan queryResult
	discover chan peer.AddrInfo

	events *broadcaster

	mu      sync.Mutex
	pending map[uuid.UUID]pendingQuery

	running bool
}

// New constructs a Loop. It does not start the goroutine; call Run.
func New(cfg *config.Config, stack *netstack.Stack, st *store.Store) *Loop {
	return &Loop{
		cfg:      cfg,
		stack:    stack,
		store:    st,
		cmds:     make(chan command.Command, 64),
		results:  make(chan queryResult, 64),
		discover: make(chan peer.AddrInfo, 64),
		events:   newBroadcaster(),
		pending:  make(map[uuid.UUID]pendingQuery),
	}
}

// Commands returns the sender side of the command channel.
func (l *Loop) Commands() chan<- command.Command { return l.cmds }

// SubscribeEvents returns a new lossy receiver of network events.
func (l *Loop) SubscribeEvents() <-chan NetworkEvent { return l.events.Subscribe() }

// DiscoverChan exposes the channel netstack's mDNS notifee feeds.
func (l *Loop) DiscoverChan() chan<- peer.AddrInfo { return l.discover }

// Run is the single cooperative task: it selects across the command
// channel, the internal query-result channel, and mDNS discovery
// notifications until ctx is cancelled or a Shutdown command arrives
// (§4.5 Scheduling model, Suspension points).
func (l *Loop) Run(ctx context.Context) {
	l.mu.Lock()
	l.running = true
	l.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			l.drainPending(errs.ErrShutdown)
			l.events.CloseAll()
			return

		case cmd := <-l.cmds:
			if l.handle(ctx, cmd) {
				l.drainPending(errs.ErrShutdown)
				l.events.CloseAll()
				return
			}

		case res := <-l.results:
			l.resolve(res)

		case info := <-l.discover:
			l.handleDiscovery(ctx, info)
		}
	}
}

// handle dispatches one command and reports whether the loop should
// exit (true only for Shutdown).
func (l *Loop) handle(ctx context.Context, cmd command.Command) (shutdown bool) {
	switch cmd.Category() {
	case command.CategorySystem:
		return l.handleSystem(ctx, cmd)
	case command.CategoryDatabase:
		l.handleDatabase(ctx, cmd)
	case command.CategoryNetwork:
		l.handleNetwork(ctx, cmd)
	case command.CategoryConfiguration:
		l.handleConfiguration(cmd)
	}
	return false
}

func (l *Loop) drainPending(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, pq := range l.pending {
		sendReply(pq.reply, command.Err(err))
		delete(l.pending, id)
	}
}

func (l *Loop) newQuery(op opTag, reply chan<- command.Response) uuid.UUID {
	id := uuid.New()
	l.mu.Lock()
	l.pending[id] = pendingQuery{reply: reply, op: op}
	l.mu.Unlock()
	return id
}

// resolve is invoked on every worker goroutine's terminal progress
// event: it removes the query's entry and translates the outcome into
// a categorized Response (§4.5 Query correlation).
func (l *Loop) resolve(res queryResult) {
	l.mu.Lock()
	pq, ok := l.pending[res.id]
	if ok {
		delete(l.pending, res.id)
	}
	l.mu.Unlock()
	if !ok {
		return
	}

	if res.err != nil {
		sendReply(pq.reply, command.Err(translateDHTError(pq.op, res.err)))
		return
	}

	switch pq.op {
	case opGet:
		sendReply(pq.reply, command.Ok(command.GetResult{Value: res.value.([]byte), Found: true}))
	default:
		sendReply(pq.reply, command.Ok(res.value))
	}
}

func sendReply(reply chan<- command.Response, resp command.Response) {
	if reply == nil {
		return
	}
	select {
	case reply <- resp:
	default:
		// Reply channels are capacity-1 and single-use (§5.6); a full
		// channel means the caller already gave up.
	}
}

func translateDHTError(op opTag, err error) error {
	if op == opGet && isRoutingNotFound(err) {
		return errs.ErrNotFound
	}
	if isTimeout(err) {
		return fmt.Errorf("%w: %v", errs.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", errs.ErrQuorumFailed, err)
}

func isTimeout(err error) bool {
	return err == context.DeadlineExceeded
}

func isRoutingNotFound(err error) bool {
	// routing.ErrNotFound's message is stable across go-libp2p-kad-dht
	// releases; comparing the string avoids an import solely for one
	// sentinel check inside a hot error path.
	return err != nil && err.Error() == "routing: not found"
}

func (l *Loop) handleDiscovery(ctx context.Context, info peer.AddrInfo) {
	l.events.Publish(NetworkEvent{Kind: EventPeerDiscovered, Peer: info.ID})

	if !l.cfg.Discovery.MDNSAutoConnect {
		return
	}

	go func() {
		dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := l.stack.Host.Connect(dialCtx, info); err != nil {
			logger.Debug("mdns auto-connect failed", "peer", info.ID, "error", err)
			return
		}
		l.events.Publish(NetworkEvent{Kind: EventPeerConnected, Peer: info.ID})
	}()
}
