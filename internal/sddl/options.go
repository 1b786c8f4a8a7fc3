package sddl

import "log/slog"

type options struct {
	failFast bool
	logger   *slog.Logger
}

// Option configures Parse and its variants.
type Option func(*options)

// WithFailFast controls whether the first failing declaration aborts the
// parse (the default) or is skipped so later declarations still get
// checked and reported.
func WithFailFast(on bool) Option {
	return func(o *options) { o.failFast = on }
}

// WithLogger sets the logger used for build diagnostics. Nothing is logged
// by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		failFast: true,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, fn := range opts {
		fn(o)
	}
	return o
}
