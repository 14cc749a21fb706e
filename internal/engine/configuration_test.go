package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netabase/netabase/command"
	"github.com/netabase/netabase/errs"
)

func TestGetSettingWalksDottedPath(t *testing.T) {
	l := newTestLoop(t)

	resp := do(t, l, func(reply chan<- command.Response) command.Command {
		return command.GetSetting{ReplyChan: command.ReplyChan{Reply: reply}, Path: "dht.replication_factor"}
	})
	require.NoError(t, resp.Err)
	assert.EqualValues(t, l.cfg.DHT.ReplicationFactor, resp.Ok)
}

func TestGetSettingUnknownPathErrors(t *testing.T) {
	l := newTestLoop(t)
	resp := do(t, l, func(reply chan<- command.Response) command.Command {
		return command.GetSetting{ReplyChan: command.ReplyChan{Reply: reply}, Path: "dht.no_such_field"}
	})
	assert.ErrorIs(t, resp.Err, errs.ErrInvalidCommand)
}

func TestSetSettingRoundTrips(t *testing.T) {
	l := newTestLoop(t)

	resp := do(t, l, func(reply chan<- command.Response) command.Command {
		return command.SetSetting{ReplyChan: command.ReplyChan{Reply: reply}, Path: "dht.replication_factor", Value: 7}
	})
	require.NoError(t, resp.Err)

	resp = do(t, l, func(reply chan<- command.Response) command.Command {
		return command.GetSetting{ReplyChan: command.ReplyChan{Reply: reply}, Path: "dht.replication_factor"}
	})
	require.NoError(t, resp.Err)
	assert.EqualValues(t, 7, resp.Ok)
}

func TestSetSettingRejectsUnknownPath(t *testing.T) {
	l := newTestLoop(t)
	resp := do(t, l, func(reply chan<- command.Response) command.Command {
		return command.SetSetting{ReplyChan: command.ReplyChan{Reply: reply}, Path: "dht.nope", Value: 1}
	})
	assert.ErrorIs(t, resp.Err, errs.ErrInvalidCommand)
}

func TestReloadValidatesBeforeSwapping(t *testing.T) {
	l := newTestLoop(t)
	bad := l.cfg.Clone()
	bad.DHT.ReplicationFactor = -1

	resp := do(t, l, func(reply chan<- command.Response) command.Command {
		return command.Reload{ReplyChan: command.ReplyChan{Reply: reply}, Config: bad}
	})
	assert.ErrorIs(t, resp.Err, errs.ErrInvalidCommand)
}

func TestReloadSwapsValidConfig(t *testing.T) {
	l := newTestLoop(t)
	next := l.cfg.Clone()
	next.Network.BootstrapAddresses = []string{"/ip4/127.0.0.1/tcp/4001/p2p/QmWjEDjeEM6MGZFiD57WEunANAHftZk9D8BUnFjWVk8Gts"}

	resp := do(t, l, func(reply chan<- command.Response) command.Command {
		return command.Reload{ReplyChan: command.ReplyChan{Reply: reply}, Config: next}
	})
	require.NoError(t, resp.Err)
	assert.Equal(t, next.Network.BootstrapAddresses, l.cfg.Network.BootstrapAddresses)
}

func TestValidateConfig(t *testing.T) {
	l := newTestLoop(t)
	resp := do(t, l, func(reply chan<- command.Response) command.Command {
		return command.ValidateConfig{ReplyChan: command.ReplyChan{Reply: reply}}
	})
	assert.NoError(t, resp.Err)
}

func TestConfigurationNotImplementedCommands(t *testing.T) {
	l := newTestLoop(t)

	resp := do(t, l, func(reply chan<- command.Response) command.Command {
		return command.Merge{ReplyChan: command.ReplyChan{Reply: reply}}
	})
	assert.ErrorIs(t, resp.Err, errs.ErrNotImplemented)

	resp = do(t, l, func(reply chan<- command.Response) command.Command {
		return command.Watch{ReplyChan: command.ReplyChan{Reply: reply}}
	})
	assert.ErrorIs(t, resp.Err, errs.ErrNotImplemented)

	resp = do(t, l, func(reply chan<- command.Response) command.Command {
		return command.LoadFrom{ReplyChan: command.ReplyChan{Reply: reply}}
	})
	assert.ErrorIs(t, resp.Err, errs.ErrNotImplemented)
}

func TestWalkPathRejectsNonObjectIntermediate(t *testing.T) {
	_, err := walkPath(map[string]any{"a": 1}, []string{"a", "b"})
	assert.ErrorIs(t, err, errs.ErrInvalidCommand)
}

func TestSetPathRejectsEmptyPath(t *testing.T) {
	err := setPath(map[string]any{}, nil, 1)
	assert.ErrorIs(t, err, errs.ErrInvalidCommand)
}
