package assembler

import "go.uber.org/zap"

// Option configures an assembly engine.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger attaches a logger whose debug level traces state transitions.
// Tracing never changes the order of converter notifications.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func newOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
