package genchat

import "go.uber.org/zap"

const DefaultVerbose = false

type Option func(o *Options)

type Options struct {
	logger       *zap.Logger
	imageEncoder ImageEncoder
	verbose      bool
}

func defaultOptions() Options {
	return Options{
		logger:       zap.NewNop(),
		imageEncoder: DefaultImageEncoder,
		verbose:      DefaultVerbose,
	}
}

// NewOptions applies opts over the defaults.
func NewOptions(opts ...Option) Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithImageEncoder replaces the encoder used for images that carry an
// explicit MIME type.
func WithImageEncoder(enc ImageEncoder) Option {
	return func(o *Options) {
		if enc != nil {
			o.imageEncoder = enc
		}
	}
}

func WithVerbose() Option {
	return func(o *Options) {
		o.verbose = true
	}
}

func (o Options) Logger() *zap.Logger {
	return o.logger
}

func (o Options) ImageEncoder() ImageEncoder {
	return o.imageEncoder
}

func (o Options) Verbose() bool {
	return o.verbose
}
