// option.go defines configuration options for nodes.

package node

import (
	"github.com/google/uuid"
)

type Config struct {
	Name string
}

func defaultConfig() Config {
	return Config{
		Name: "timestamp-" + uuid.NewString()[:8],
	}
}

type Option interface {
	apply(*Config)
}
type Options []Option

func (opts Options) apply(cfg *Config) {
	for _, opt := range opts {
		opt.apply(cfg)
	}
}

func (opts Options) config() Config {
	cfg := defaultConfig()
	opts.apply(&cfg)
	return cfg
}

type OptionName string

func (o OptionName) apply(cfg *Config) {
	cfg.Name = string(o)
}
