package netabase

import "go.uber.org/fx"

// Option customizes the fx graph New builds, mirroring the teacher's
// own "user extension" fx.Option slot (fx.go §11 "用户扩展").
type Option func(*options)

type options struct {
	extraFxOptions []fx.Option
}

func newOptions() *options {
	return &options{}
}

// WithFxOption splices an additional fx.Option into the graph, for
// tests that want to override a provider (e.g. swap in an in-memory
// storage engine) without changing New's signature.
func WithFxOption(opt fx.Option) Option {
	return func(o *options) { o.extraFxOptions = append(o.extraFxOptions, opt) }
}
