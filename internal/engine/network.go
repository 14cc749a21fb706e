package engine

import (
	"context"
	"fmt"

	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/netabase/netabase/command"
	"github.com/netabase/netabase/errs"
)

// handleNetwork implements the Network category (§4.4): connection
// management and the raw DHT primitives DHTPut/DHTGet/DHTClosestPeers/
// DHTProviders expose the same worker-dispatch machinery Database uses,
// but surface the quorum/closest-peers/providers shapes Database
// intentionally hides behind a simpler put/get/delete/contains API.
func (l *Loop) handleNetwork(ctx context.Context, cmd command.Command) {
	switch c := cmd.(type) {
	case command.ConnectPeer:
		l.handleConnectPeer(ctx, c)

	case command.DisconnectPeer:
		l.handleDisconnectPeer(c)

	case command.Bootstrap:
		go func() {
			err := l.stack.DHT.Bootstrap(ctx)
			if err == nil {
				l.events.Publish(NetworkEvent{Kind: EventBootstrapComplete})
			}
			sendReply(c.Reply, replyFromErr(err))
		}()

	case command.DHTPut:
		if len(c.Key) == 0 {
			sendReply(c.Reply, command.Err(errs.ErrInvalidCommand))
			return
		}
		id := l.newQuery(opPut, c.Reply)
		l.dispatchPut(ctx, id, c.Key, c.Value, c.Quorum)

	case command.DHTGet:
		if len(c.Key) == 0 {
			sendReply(c.Reply, command.Err(errs.ErrInvalidCommand))
			return
		}
		id := l.newQuery(opGet, c.Reply)
		l.dispatchGet(ctx, id, c.Key)

	case command.DHTClosestPeers:
		id := l.newQuery(opClosestPeers, c.Reply)
		l.dispatchClosestPeers(ctx, id, c.Key)

	case command.DHTProviders:
		id := l.newQuery(opProviders, c.Reply)
		l.dispatchProviders(ctx, id, c.Key)

	case command.ConfigureDHTMode:
		// go-libp2p-kad-dht's mode is fixed at construction time; there
		// is no runtime switch hook to call here (DESIGN.md Open
		// Questions), so this is declared but answers NotImplemented.
		sendReply(c.Reply, command.Err(errs.ErrNotImplemented))

	case command.PeerInfo:
		l.handlePeerInfo(c)

	case command.SubscribeTopic:
		sendReply(c.Reply, command.Err(errs.ErrNotImplemented))

	case command.PublishTopic:
		sendReply(c.Reply, command.Err(errs.ErrNotImplemented))
	}
}

func (l *Loop) handleConnectPeer(ctx context.Context, c command.ConnectPeer) {
	info, err := peer.AddrInfoFromP2pAddr(c.Addr)
	if err != nil {
		sendReply(c.Reply, command.Err(fmt.Errorf("%w: %v", errs.ErrInvalidCommand, err)))
		return
	}
	go func() {
		err := l.stack.Host.Connect(ctx, *info)
		if err == nil {
			l.events.Publish(NetworkEvent{Kind: EventPeerConnected, Peer: info.ID})
		}
		sendReply(c.Reply, replyFromErr(translateDialError(err)))
	}()
}

func (l *Loop) handleDisconnectPeer(c command.DisconnectPeer) {
	err := l.stack.Host.Network().ClosePeer(c.Peer)
	if err == nil {
		l.events.Publish(NetworkEvent{Kind: EventPeerDisconnected, Peer: c.Peer})
	}
	sendReply(c.Reply, replyFromErr(err))
}

func (l *Loop) handlePeerInfo(c command.PeerInfo) {
	if len(l.stack.Host.Network().ConnsToPeer(c.Peer)) == 0 {
		sendReply(c.Reply, command.Err(errs.ErrPeerNotFound))
		return
	}
	sendReply(c.Reply, command.Ok(l.stack.Host.Peerstore().PeerInfo(c.Peer)))
}

func translateDialError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", errs.ErrDialError, err)
}

func replyFromErr(err error) command.Response {
	if err != nil {
		return command.Err(err)
	}
	return command.Ok(nil)
}
