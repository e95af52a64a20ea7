package kernel

import (
	"github.com/xaionaro-go/avtimestamp/logger"
	"github.com/xaionaro-go/avtimestamp/packet"
)

type TimestamperConfig struct {
	// Silent disables the diagnostic output; it never changes data flow.
	Silent bool

	Clock     Clock
	Allocator packet.Allocator

	// Logger overrides the logger from the context.
	Logger logger.Logger
}

func defaultTimestamperConfig() TimestamperConfig {
	return TimestamperConfig{
		Clock:     SystemClock{},
		Allocator: packet.DefaultPool,
	}
}

type TimestamperOption interface {
	apply(*TimestamperConfig)
}

type TimestamperOptions []TimestamperOption

func (opts TimestamperOptions) apply(cfg *TimestamperConfig) {
	for _, opt := range opts {
		opt.apply(cfg)
	}
}

func (opts TimestamperOptions) config() TimestamperConfig {
	cfg := defaultTimestamperConfig()
	opts.apply(&cfg)
	return cfg
}

type OptionSilent bool

func (o OptionSilent) apply(cfg *TimestamperConfig) {
	cfg.Silent = bool(o)
}

type OptionClockValue struct {
	Clock
}

func (o OptionClockValue) apply(cfg *TimestamperConfig) {
	cfg.Clock = o.Clock
}

func OptionClock(clock Clock) OptionClockValue {
	return OptionClockValue{clock}
}

type OptionAllocatorValue struct {
	packet.Allocator
}

func (o OptionAllocatorValue) apply(cfg *TimestamperConfig) {
	cfg.Allocator = o.Allocator
}

func OptionAllocator(allocator packet.Allocator) OptionAllocatorValue {
	return OptionAllocatorValue{allocator}
}

type OptionLoggerValue struct {
	logger.Logger
}

func (o OptionLoggerValue) apply(cfg *TimestamperConfig) {
	cfg.Logger = o.Logger
}

func OptionLogger(l logger.Logger) OptionLoggerValue {
	return OptionLoggerValue{l}
}
