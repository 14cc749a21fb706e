// Package log provides Netabase's unified logging surface: a thin
// wrapper over ipfs/go-log (itself backed by zap), the logging idiom
// every libp2p-facing subsystem in the stack already speaks, so a
// node's logs interleave cleanly with go-libp2p's and go-libp2p-kad-
// dht's own output under the same level/encoder configuration.
package log

import (
	"context"

	logging "github.com/ipfs/go-log/v2"
	"go.uber.org/zap"
)

// SetDefault rebuilds every go-log subsystem's level, matching the
// process-wide "-vv" style verbosity knob a cmd/ binary would expose.
func SetDefault(level zap.AtomicLevel) {
	logging.SetAllLoggers(logging.LogLevel(level.Level().String()))
}

// SetLevel parses level (e.g. "debug", "info", "warn", "error") and
// applies it to every component logger handed out so far.
func SetLevel(level string) error {
	return logging.SetLogLevel("*", level)
}

// Component is a component-scoped logger backed by go-log's
// ZapEventLogger, which already does what internal/log needs: a
// Sugared-style Infow/Debugw/Warnw/Errorw surface taking alternating
// key/value pairs.
type Component struct {
	z *logging.ZapEventLogger
}

// Logger returns a logger scoped to the named component. go-log
// interns loggers by name, so repeated calls with the same name share
// one underlying level and sink.
func Logger(name string) *Component {
	return &Component{z: logging.Logger(name)}
}

func (c *Component) Debug(msg string, args ...any) { c.z.Debugw(msg, args...) }
func (c *Component) Info(msg string, args ...any)  { c.z.Infow(msg, args...) }
func (c *Component) Warn(msg string, args ...any)  { c.z.Warnw(msg, args...) }
func (c *Component) Error(msg string, args ...any) { c.z.Errorw(msg, args...) }

func (c *Component) DebugContext(_ context.Context, msg string, args ...any) { c.Debug(msg, args...) }
func (c *Component) InfoContext(_ context.Context, msg string, args ...any)  { c.Info(msg, args...) }
func (c *Component) WarnContext(_ context.Context, msg string, args ...any)  { c.Warn(msg, args...) }
func (c *Component) ErrorContext(_ context.Context, msg string, args ...any) { c.Error(msg, args...) }

// With returns a zap.SugaredLogger with extra attributes attached, for
// call sites that want to build up a structured line in one shot.
func (c *Component) With(args ...any) *zap.SugaredLogger {
	return c.z.With(args...)
}
