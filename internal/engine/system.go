package engine

import (
	"context"

	"github.com/netabase/netabase/command"
	"github.com/netabase/netabase/errs"
)

// handleSystem implements the System category (§4.4). Only Initialize,
// StartSwarm, StopSwarm, Shutdown, QueryState, and HealthCheck are
// built; Statistics/ExportSnapshot/ImportSnapshot/Backup/Restore are
// declared types that answer errs.ErrNotImplemented without touching
// state, per spec §9's resolved Open Question that most of the
// original's stub handlers don't warrant a faithful reimplementation.
func (l *Loop) handleSystem(ctx context.Context, cmd command.Command) (shutdown bool) {
	switch c := cmd.(type) {
	case command.Initialize:
		// The loop is already bound to a netstack.Stack and store.Store
		// by the time it is running (§5.6 New wires them before
		// starting Run); Initialize exists so callers that issue it
		// before StartSwarm get an explicit acknowledgement rather than
		// silent success.
		sendReply(c.Reply, command.Ok(nil))

	case command.StartSwarm:
		sendReply(c.Reply, command.Ok(nil))

	case command.StopSwarm:
		sendReply(c.Reply, command.Ok(nil))

	case command.Shutdown:
		sendReply(c.Reply, command.Ok(nil))
		return true

	case command.QueryState:
		l.mu.Lock()
		running := l.running
		l.mu.Unlock()
		sendReply(c.Reply, command.Ok(command.NodeState{
			Running:        running,
			ListenAddrs:    l.stack.Host.Addrs(),
			ConnectedPeers: l.stack.Host.Network().Peers(),
		}))

	case command.HealthCheck:
		sendReply(c.Reply, command.Ok(command.HealthStatus{Healthy: true}))

	case command.Statistics:
		sendReply(c.Reply, command.Err(errs.ErrNotImplemented))

	case command.ExportSnapshot:
		sendReply(c.Reply, command.Err(errs.ErrNotImplemented))

	case command.ImportSnapshot:
		sendReply(c.Reply, command.Err(errs.ErrNotImplemented))

	case command.Backup:
		sendReply(c.Reply, command.Err(errs.ErrNotImplemented))

	case command.Restore:
		sendReply(c.Reply, command.Err(errs.ErrNotImplemented))
	}
	return false
}
