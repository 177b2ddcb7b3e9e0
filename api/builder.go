package api

import (
	"log/slog"

	"github.com/sarchlab/arconv/config"
)

// ConverterBuilder creates a new instance of Converter.
type ConverterBuilder struct {
	opts   *config.Options
	sink   Sink
	logger *slog.Logger
}

// WithOptions sets the conversion options. Without it, config.Default() is
// used.
func (b ConverterBuilder) WithOptions(opts config.Options) ConverterBuilder {
	b.opts = &opts
	return b
}

// WithSink sets where diagnostics are reported.
func (b ConverterBuilder) WithSink(sink Sink) ConverterBuilder {
	b.sink = sink
	return b
}

// WithLogger sets the logger used for per-line trace records, the tree dump and
// the default sink. Without it, slog.Default() is used.
func (b ConverterBuilder) WithLogger(logger *slog.Logger) ConverterBuilder {
	b.logger = logger
	return b
}

// Build creates a converter.
func (b ConverterBuilder) Build() Converter {
	c := &converterImpl{
		opts:   config.Default(),
		sink:   b.sink,
		logger: b.logger,
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	if b.opts != nil {
		c.opts = *b.opts
	}

	if c.sink == nil {
		c.sink = SlogSink{Logger: c.logger}
	}

	return c
}
