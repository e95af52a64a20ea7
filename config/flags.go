package config

import (
	"github.com/spf13/pflag"
)

const (
	FlagLogLevel      = "log-level"
	FlagSilent        = "silent"
	FlagConfig        = "config"
	FlagSource        = "source"
	FlagInput         = "input"
	FlagFrames        = "frames"
	FlagFPS           = "fps"
	FlagFrameSize     = "frame-size"
	FlagRealTime      = "realtime"
	FlagTextOutput    = "text-output"
	FlagVideoOutput   = "video-output"
	FlagStatsInterval = "stats-interval"
	FlagGstUpstream   = "gst-upstream"
	FlagVerify        = "verify"
)

// Flags binds the command line to a Config; only the flags the user
// actually set override the file values.
type Flags struct {
	FlagSet    *pflag.FlagSet
	ConfigPath string

	// VerifyPath switches the command to checking a previously written
	// record file instead of running a pipeline.
	VerifyPath string

	values Config
	source string
}

func NewFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{
		FlagSet: fs,
		values:  Default(),
	}
	v := &f.values
	f.source = string(v.Source)
	fs.Var(&v.LogLevel, FlagLogLevel, "Log level")
	fs.BoolVar(&v.Silent, FlagSilent, v.Silent, "do not log events and flow errors of the timestamp element")
	fs.StringVar(&f.ConfigPath, FlagConfig, "", "path to a YAML config file")
	fs.StringVar(&f.VerifyPath, FlagVerify, "", "check a record file ('-' is stdin) and exit")
	fs.StringVar(&f.source, FlagSource, f.source, "video source: generator, av or gst")
	fs.StringVar(&v.Input, FlagInput, v.Input, "input URL for the av and gst sources")
	fs.Uint64Var(&v.Frames, FlagFrames, v.Frames, "amount of frames to generate, 0 is unbounded")
	fs.Float64Var(&v.FPS, FlagFPS, v.FPS, "frame rate of the generator")
	fs.IntVar(&v.FrameSize, FlagFrameSize, v.FrameSize, "payload size of a generated frame")
	fs.BoolVar(&v.RealTime, FlagRealTime, v.RealTime, "pace the generator with the wall clock")
	fs.StringVar(&v.TextOutput, FlagTextOutput, v.TextOutput, "where to write the timestamp records ('-' is stdout, '' discards)")
	fs.StringVar(&v.VideoOutput, FlagVideoOutput, v.VideoOutput, "where to write the video payloads ('-' is stdout, '' discards)")
	fs.DurationVar(&v.StatsInterval, FlagStatsInterval, v.StatsInterval, "print statistics this often, 0 disables")
	fs.StringVar(&v.Gst.Upstream, FlagGstUpstream, v.Gst.Upstream, "gst-launch description of the upstream for the gst source")
	return f
}

// Apply overrides cfg with the flags that were set explicitly.
func (f *Flags) Apply(cfg Config) Config {
	v := f.values
	for name, apply := range map[string]func(){
		FlagLogLevel:      func() { cfg.LogLevel = v.LogLevel },
		FlagSilent:        func() { cfg.Silent = v.Silent },
		FlagSource:        func() { cfg.Source = SourceType(f.source) },
		FlagInput:         func() { cfg.Input = v.Input },
		FlagFrames:        func() { cfg.Frames = v.Frames },
		FlagFPS:           func() { cfg.FPS = v.FPS },
		FlagFrameSize:     func() { cfg.FrameSize = v.FrameSize },
		FlagRealTime:      func() { cfg.RealTime = v.RealTime },
		FlagTextOutput:    func() { cfg.TextOutput = v.TextOutput },
		FlagVideoOutput:   func() { cfg.VideoOutput = v.VideoOutput },
		FlagStatsInterval: func() { cfg.StatsInterval = v.StatsInterval },
		FlagGstUpstream:   func() { cfg.Gst.Upstream = v.Gst.Upstream },
	} {
		if f.FlagSet.Changed(name) {
			apply()
		}
	}
	return cfg
}

// Resolve loads the config file (if any) and applies the flags on top.
func (f *Flags) Resolve() (Config, error) {
	cfg := Default()
	if f.ConfigPath != "" {
		var err error
		cfg, err = Load(f.ConfigPath)
		if err != nil {
			return Config{}, err
		}
	}
	cfg = f.Apply(cfg)
	return cfg, cfg.Validate()
}
