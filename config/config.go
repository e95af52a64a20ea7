// Package config describes the avtimestamp command configuration: a YAML
// file overlaid by command line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xaionaro-go/avtimestamp/logger"
)

type SourceType string

const (
	SourceTypeGenerator = SourceType("generator")
	SourceTypeAV        = SourceType("av")
	SourceTypeGst       = SourceType("gst")
)

func (t SourceType) IsValid() bool {
	switch t {
	case SourceTypeGenerator, SourceTypeAV, SourceTypeGst:
		return true
	}
	return false
}

// OutputStdout and OutputDiscard are the special values of the output
// paths.
const (
	OutputStdout  = "-"
	OutputDiscard = ""
)

type Gst struct {
	// Upstream replaces the default videotestsrc/uridecodebin description.
	Upstream        string `yaml:"upstream,omitempty"`
	VideoDownstream string `yaml:"video_downstream,omitempty"`
	TextDownstream  string `yaml:"text_downstream,omitempty"`
}

type Config struct {
	LogLevel     logger.Level `yaml:"-"`
	LogLevelName string       `yaml:"log_level,omitempty"`
	Silent       bool         `yaml:"silent"`

	Source SourceType `yaml:"source"`
	Input  string     `yaml:"input,omitempty"`

	// Frames limits the generator; zero means unbounded.
	Frames    uint64  `yaml:"frames"`
	FPS       float64 `yaml:"fps"`
	FrameSize int     `yaml:"frame_size"`
	RealTime  bool    `yaml:"realtime"`

	TextOutput  string `yaml:"text_output"`
	VideoOutput string `yaml:"video_output"`

	StatsInterval time.Duration `yaml:"stats_interval"`

	Gst Gst `yaml:"gst,omitempty"`
}

func Default() Config {
	return Config{
		LogLevel:    logger.LevelWarning,
		Source:      SourceTypeGenerator,
		Frames:      300,
		FPS:         30,
		FrameSize:   64,
		TextOutput:  OutputStdout,
		VideoOutput: OutputDiscard,
	}
}

// Load reads the YAML file at path on top of Default().
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read '%s': %w", path, err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return Config{}, fmt.Errorf("unable to parse '%s': %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default(); unknown keys are an error.
func Parse(b []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	if cfg.LogLevelName != "" {
		if err := cfg.LogLevel.Set(cfg.LogLevelName); err != nil {
			return Config{}, fmt.Errorf("invalid log level '%s': %w", cfg.LogLevelName, err)
		}
	}
	return cfg, cfg.Validate()
}

func (cfg Config) Validate() error {
	var errs []error
	if !cfg.Source.IsValid() {
		errs = append(errs, fmt.Errorf("unknown source type '%s'", cfg.Source))
	}
	if cfg.Source == SourceTypeAV && cfg.Input == "" {
		errs = append(errs, fmt.Errorf("source '%s' requires an input URL", cfg.Source))
	}
	if cfg.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %g", cfg.FPS))
	}
	if cfg.FrameSize <= 0 {
		errs = append(errs, fmt.Errorf("frame size must be positive, got %d", cfg.FrameSize))
	}
	if cfg.StatsInterval < 0 {
		errs = append(errs, fmt.Errorf("stats interval must not be negative, got %v", cfg.StatsInterval))
	}
	return errors.Join(errs...)
}

// Bytes renders the config as YAML.
func (cfg Config) Bytes() []byte {
	cfg.LogLevelName = cfg.LogLevel.String()
	b, err := yaml.Marshal(cfg)
	if err != nil {
		panic(err)
	}
	return b
}
