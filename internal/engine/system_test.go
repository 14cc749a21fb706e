package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netabase/netabase/command"
	"github.com/netabase/netabase/errs"
)

func TestSystemLifecycleAcks(t *testing.T) {
	l := newTestLoop(t)

	for _, build := range []func(chan<- command.Response) command.Command{
		func(reply chan<- command.Response) command.Command {
			return command.Initialize{ReplyChan: command.ReplyChan{Reply: reply}, Config: l.cfg}
		},
		func(reply chan<- command.Response) command.Command {
			return command.StartSwarm{ReplyChan: command.ReplyChan{Reply: reply}}
		},
		func(reply chan<- command.Response) command.Command {
			return command.StopSwarm{ReplyChan: command.ReplyChan{Reply: reply}}
		},
	} {
		resp := do(t, l, build)
		assert.NoError(t, resp.Err)
	}
}

func TestShutdownSignalsLoopExit(t *testing.T) {
	l := newTestLoop(t)
	reply := make(chan command.Response, 1)
	shutdown := l.handle(context.Background(), command.Shutdown{ReplyChan: command.ReplyChan{Reply: reply}})
	assert.True(t, shutdown)

	select {
	case resp := <-reply:
		assert.NoError(t, resp.Err)
	default:
		t.Fatal("expected an immediate ack on Shutdown")
	}
}

func TestHealthCheck(t *testing.T) {
	l := newTestLoop(t)
	resp := do(t, l, func(reply chan<- command.Response) command.Command {
		return command.HealthCheck{ReplyChan: command.ReplyChan{Reply: reply}}
	})
	require.NoError(t, resp.Err)
	status, ok := resp.Ok.(command.HealthStatus)
	require.True(t, ok)
	assert.True(t, status.Healthy)
}

func TestQueryState(t *testing.T) {
	l := newHostBackedLoop(t)
	resp := do(t, l, func(reply chan<- command.Response) command.Command {
		return command.QueryState{ReplyChan: command.ReplyChan{Reply: reply}}
	})
	require.NoError(t, resp.Err)
	state, ok := resp.Ok.(command.NodeState)
	require.True(t, ok)
	assert.False(t, state.Running, "running flips true only once Run's select loop has started")
}

func TestSystemNotImplementedCommands(t *testing.T) {
	l := newTestLoop(t)

	for _, build := range []func(chan<- command.Response) command.Command{
		func(reply chan<- command.Response) command.Command {
			return command.Statistics{ReplyChan: command.ReplyChan{Reply: reply}}
		},
		func(reply chan<- command.Response) command.Command {
			return command.ExportSnapshot{ReplyChan: command.ReplyChan{Reply: reply}}
		},
		func(reply chan<- command.Response) command.Command {
			return command.ImportSnapshot{ReplyChan: command.ReplyChan{Reply: reply}}
		},
		func(reply chan<- command.Response) command.Command {
			return command.Backup{ReplyChan: command.ReplyChan{Reply: reply}}
		},
		func(reply chan<- command.Response) command.Command {
			return command.Restore{ReplyChan: command.ReplyChan{Reply: reply}}
		},
	} {
		resp := do(t, l, build)
		assert.ErrorIs(t, resp.Err, errs.ErrNotImplemented)
	}
}
