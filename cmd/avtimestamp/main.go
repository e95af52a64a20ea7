package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/pkg/runtime"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/typing"
	"golang.org/x/sync/errgroup"

	"github.com/xaionaro-go/avtimestamp/config"
	"github.com/xaionaro-go/avtimestamp/gsthost"
	"github.com/xaionaro-go/avtimestamp/kernel"
	"github.com/xaionaro-go/avtimestamp/logger"
	"github.com/xaionaro-go/avtimestamp/node"
	"github.com/xaionaro-go/avtimestamp/source"
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "syntax: %s [flags]\n", os.Args[0])
		pflag.PrintDefaults()
	}
	flags := config.NewFlags(pflag.CommandLine)
	pflag.Parse()
	if pflag.NArg() != 0 {
		pflag.Usage()
		os.Exit(1)
	}
	cfg, err := flags.Resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	runtime.DefaultCallerPCFilter = observability.CallerPCFilter(runtime.DefaultCallerPCFilter)
	l := logger.New(cfg.LogLevel)
	ctx := logger.Install(context.Background(), l)
	defer belt.Flush(ctx)
	logger.Debugf(ctx, "config:\n%s", cfg.Bytes())

	if flags.VerifyPath != "" {
		if err := verify(ctx, flags.VerifyPath); err != nil {
			logger.Fatalf(ctx, "%v", err)
		}
		return
	}

	ctx, cancelFn := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancelFn()

	n := node.NewTimestamper(ctx, []kernel.TimestamperOption{
		kernel.OptionSilent(cfg.Silent),
	})
	defer func() {
		if err := n.Kernel.Close(ctx); err != nil {
			logger.Errorf(ctx, "unable to close %s: %v", n, err)
		}
	}()

	if cfg.StatsInterval > 0 {
		observability.Go(ctx, func(ctx context.Context) {
			printStatsLoop(ctx, n, cfg.StatsInterval)
		})
	}

	startTS := time.Now()
	switch cfg.Source {
	case config.SourceTypeGst:
		err = runGst(ctx, cfg, n)
	default:
		err = runInProcess(ctx, cfg, n)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf(ctx, "%v", err)
	}

	stats := n.GetStatistics()
	fmt.Fprintf(os.Stderr,
		"processed %d frames (%s) in %v; text: %s\n",
		n.Kernel.FrameCount(),
		humanize.Bytes(stats.Input.Buffers.Received.Video.Bytes+stats.Input.Buffers.Received.Unknown.Bytes),
		time.Since(startTS).Round(time.Millisecond),
		humanize.Bytes(stats.Pads[kernel.PadNameTextSrc].Sent.Text.Bytes),
	)
}

func verify(ctx context.Context, path string) error {
	r := io.Reader(os.Stdin)
	if path != config.OutputStdout {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("unable to open '%s': %w", path, err)
		}
		defer f.Close()
		r = f
	}
	count, err := kernel.VerifyRecords(r)
	if err != nil {
		return fmt.Errorf("'%s' is invalid after %d records: %w", path, count, err)
	}
	logger.Debugf(ctx, "'%s' is valid", path)
	fmt.Printf("%d records OK\n", count)
	return nil
}

func newSource(cfg config.Config) source.Abstract {
	switch cfg.Source {
	case config.SourceTypeAV:
		return source.NewAVDemuxer(cfg.Input)
	default:
		genCfg := source.GeneratorConfig{
			FPS:       cfg.FPS,
			FrameSize: cfg.FrameSize,
			RealTime:  cfg.RealTime,
		}
		if cfg.Frames > 0 {
			genCfg.Frames = typing.Opt(cfg.Frames)
		}
		return source.NewGenerator(genCfg)
	}
}

// runInProcess drives the node from a Go source into Go sinks.
func runInProcess(
	ctx context.Context,
	cfg config.Config,
	n *node.Node[*kernel.Timestamper],
) (_err error) {
	logger.Debugf(ctx, "runInProcess")
	defer func() { logger.Debugf(ctx, "/runInProcess: %v", _err) }()

	if cfg.Source == config.SourceTypeAV {
		source.RedirectAVLogs(ctx, cfg.LogLevel)
	}

	outputs, err := openOutputs(ctx, cfg, n)
	if err != nil {
		return err
	}
	defer outputs.Close(ctx)

	src := newSource(cfg)
	logger.Debugf(ctx, "source: %s", src)

	itemCh := make(chan node.Item, 16)
	errCh := make(chan node.Error, 16)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer close(itemCh)
		return src.Generate(egCtx, itemCh)
	})
	eg.Go(func() error {
		return n.Serve(egCtx, node.ServeConfig{}, itemCh, errCh)
	})
	observability.Go(ctx, func(ctx context.Context) {
		for {
			select {
			case <-egCtx.Done():
				return
			case err := <-errCh:
				logger.Warnf(ctx, "%v", err)
			}
		}
	})
	return eg.Wait()
}

// runGst lets GStreamer do both the source and the sinks.
func runGst(
	ctx context.Context,
	cfg config.Config,
	n *node.Node[*kernel.Timestamper],
) error {
	gstCfg := gsthost.Config{
		Upstream:        cfg.Gst.Upstream,
		VideoDownstream: cfg.Gst.VideoDownstream,
		TextDownstream:  cfg.Gst.TextDownstream,
	}
	if gstCfg.Upstream == "" {
		gstCfg.Upstream = gstUpstream(cfg)
	}
	if gstCfg.VideoDownstream == "" {
		gstCfg.VideoDownstream = gstDownstream(cfg.VideoOutput)
	}
	if gstCfg.TextDownstream == "" {
		gstCfg.TextDownstream = gstDownstream(cfg.TextOutput)
	}
	r, err := gsthost.New(ctx, gstCfg, n)
	if err != nil {
		return err
	}
	return r.Run(ctx)
}

func gstUpstream(cfg config.Config) string {
	if cfg.Input != "" {
		return fmt.Sprintf("uridecodebin uri=%s ! videoconvert", cfg.Input)
	}
	numBuffers := int64(-1)
	if cfg.Frames > 0 {
		numBuffers = int64(cfg.Frames)
	}
	return fmt.Sprintf("videotestsrc num-buffers=%d is-live=%t", numBuffers, cfg.RealTime)
}

func gstDownstream(output string) string {
	switch output {
	case config.OutputDiscard:
		return "fakesink"
	case config.OutputStdout:
		return "fdsink fd=1"
	default:
		return fmt.Sprintf("filesink location=\"%s\"", output)
	}
}

func printStatsLoop(
	ctx context.Context,
	n node.Abstract,
	interval time.Duration,
) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			statsJSON, err := json.Marshal(n.GetStatistics())
			if err != nil {
				logger.Errorf(ctx, "unable to serialize statistics: %v", err)
				return
			}
			fmt.Fprintf(os.Stderr, "%s\n", statsJSON)
		}
	}
}
