package netabase

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/peer"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/netabase/netabase/config"
	"github.com/netabase/netabase/internal/engine"
	"github.com/netabase/netabase/internal/identity"
	"github.com/netabase/netabase/internal/log"
	"github.com/netabase/netabase/internal/netstack"
	"github.com/netabase/netabase/internal/storageengine"
	"github.com/netabase/netabase/store"
)

var fxLogger = log.Logger("netabase/fx")

// buildFxApp assembles the component graph the way the teacher's own
// buildFxApp does: fx.Supply for the user's config, one fx.Provide per
// layer (storage engine → record store → libp2p/DHT stack → event
// loop), and a final fx.Invoke that wires the result into node and
// starts the background goroutines. Unlike the teacher's dozens of
// conditionally-loaded modules, Netabase's graph has one always-on
// path; mDNS is the only optional leaf, gated on cfg.Discovery.MDNSEnabled.
// Callers may splice additional fx.Option values in via WithFxOption,
// appended last so they can override any of the defaults above.
func buildFxApp(cfg *config.Config, o *options, node *Node) (*fx.App, error) {
	fxOpts := []fx.Option{
		fx.Supply(cfg),
		fx.Provide(provideIdentity),
		fx.Provide(provideStorageEngine),
		fx.Provide(provideStore),
		fx.Provide(provideNetstack),
		fx.Provide(provideLoop),
		fx.Invoke(wireNode(node, cfg)),
		fx.WithLogger(func() fxevent.Logger { return fxEventAdapter{} }),
	}
	fxOpts = append(fxOpts, o.extraFxOptions...)

	return fx.New(fxOpts...), nil
}

// fxEventAdapter bridges fx's structured lifecycle events to
// internal/log rather than fx's own stdlib-logger default or the
// teacher's zap.NewNop sink, since Netabase's ambient logging goes
// through internal/log (go-log/zap) throughout.
type fxEventAdapter struct{}

func (fxEventAdapter) LogEvent(event fxevent.Event) {
	switch e := event.(type) {
	case *fxevent.OnStartExecuting:
		fxLogger.Debug("starting", "callee", e.FunctionName)
	case *fxevent.OnStartExecuted:
		if e.Err != nil {
			fxLogger.Error("start failed", "callee", e.FunctionName, "error", e.Err)
		}
	case *fxevent.OnStopExecuting:
		fxLogger.Debug("stopping", "callee", e.FunctionName)
	case *fxevent.OnStopExecuted:
		if e.Err != nil {
			fxLogger.Error("stop failed", "callee", e.FunctionName, "error", e.Err)
		}
	case *fxevent.Started:
		if e.Err != nil {
			fxLogger.Error("app start failed", "error", e.Err)
		}
	case *fxevent.Stopped:
		if e.Err != nil {
			fxLogger.Error("app stop failed", "error", e.Err)
		}
	}
}

// provideIdentity loads or generates the node's libp2p keypair ahead
// of the store and the host: store.Open needs the resulting peer.ID,
// and the host needs the key itself, but neither can derive it from
// the other (the host would normally mint one internally, and nothing
// else in the graph has a peer.ID to hand store.Open).
func provideIdentity(cfg *config.Config) (crypto.PrivKey, peer.ID, error) {
	priv, err := identity.LoadOrGenerate(filepath.Join(cfg.Storage.Path, "identity.key"))
	if err != nil {
		return nil, "", err
	}
	id, err := peer.IDFromPrivateKey(priv)
	if err != nil {
		return nil, "", err
	}
	return priv, id, nil
}

func provideStorageEngine(lc fx.Lifecycle, cfg *config.Config) (*storageengine.Engine, error) {
	eng, err := storageengine.Open(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("opening storage engine: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return eng.Close() },
	})
	return eng, nil
}

func provideStore(cfg *config.Config, eng *storageengine.Engine, local peer.ID) (*store.Store, error) {
	limits := store.LimitsFromConfig(cfg.Storage, cfg.DHT)
	return store.Open(eng, local, limits)
}

func provideNetstack(lc fx.Lifecycle, cfg *config.Config, priv crypto.PrivKey, st *store.Store) (*netstack.Stack, error) {
	ctx := context.Background()
	stack, err := netstack.New(ctx, cfg, priv, st)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return stack.Close() },
	})
	return stack, nil
}

func provideLoop(lc fx.Lifecycle, cfg *config.Config, stack *netstack.Stack, st *store.Store) *engine.Loop {
	loop := engine.New(cfg, stack, st)
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go loop.Run(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
	return loop
}

func wireNode(node *Node, cfg *config.Config) func(fx.Lifecycle, *netstack.Stack, *engine.Loop) error {
	return func(lc fx.Lifecycle, stack *netstack.Stack, loop *engine.Loop) error {
		node.mu.Lock()
		node.stack = stack
		node.loop = loop
		node.commands = loop.Commands()
		node.mu.Unlock()

		if !cfg.Discovery.MDNSEnabled {
			return nil
		}
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				closer, err := netstack.StartMDNS(stack.Host, loop.DiscoverChan())
				if err != nil {
					fxLogger.Warn("mdns start failed", "error", err)
					return nil
				}
				node.mu.Lock()
				node.mdnsCloser = closer
				node.mu.Unlock()
				return nil
			},
		})
		return nil
	}
}
