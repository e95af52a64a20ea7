// Package gsthost runs a timestamp node inside a GStreamer pipeline: an
// appsink feeds the node and its src pads push into two appsrc elements.
package gsthost

import (
	"context"
	"fmt"
	"time"

	"github.com/facebookincubator/go-belt"
	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
	"github.com/xaionaro-go/xcontext"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/xaionaro-go/avtimestamp/event"
	"github.com/xaionaro-go/avtimestamp/kernel"
	"github.com/xaionaro-go/avtimestamp/logger"
	"github.com/xaionaro-go/avtimestamp/node"
	"github.com/xaionaro-go/avtimestamp/types"
)

const (
	ElementNameSink     = "tssink"
	ElementNameVideoSrc = "tsvideo"
	ElementNameTextSrc  = "tstext"

	DefaultUpstream   = "videotestsrc num-buffers=300"
	DefaultDownstream = "fakesink"

	busPollInterval     = 50 * time.Millisecond
	DefaultDrainTimeout = 5 * time.Second
)

type Config struct {
	// Upstream is a gst-launch description of what produces the video,
	// e.g. "uridecodebin uri=file:///tmp/in.mp4 ! videoconvert".
	Upstream string

	VideoDownstream string
	TextDownstream  string

	// DrainTimeout is how long the pipeline may take to drain after the
	// context is cancelled.
	DrainTimeout time.Duration
}

func (cfg Config) withDefaults() Config {
	if cfg.Upstream == "" {
		cfg.Upstream = DefaultUpstream
	}
	if cfg.VideoDownstream == "" {
		cfg.VideoDownstream = DefaultDownstream
	}
	if cfg.TextDownstream == "" {
		cfg.TextDownstream = DefaultDownstream
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = DefaultDrainTimeout
	}
	return cfg
}

// LaunchString builds the whole pipeline description.
func LaunchString(cfg Config) string {
	cfg = cfg.withDefaults()
	return fmt.Sprintf(
		"%s ! appsink name=%s sync=false "+
			"appsrc name=%s format=time ! %s "+
			"appsrc name=%s format=time caps=\"%s\" ! %s",
		cfg.Upstream, ElementNameSink,
		ElementNameVideoSrc, cfg.VideoDownstream,
		ElementNameTextSrc, types.CapsTextUTF8, cfg.TextDownstream,
	)
}

type Runner struct {
	Config   Config
	Node     *node.Node[*kernel.Timestamper]
	Pipeline *gst.Pipeline
	AppSink  *app.Sink
	VideoSrc *app.Source
	TextSrc  *app.Source

	SamplesReceived atomic.Uint64

	lastCaps string
	ctx      context.Context
}

func New(
	ctx context.Context,
	cfg Config,
	n *node.Node[*kernel.Timestamper],
) (_ret *Runner, _err error) {
	cfg = cfg.withDefaults()
	launch := LaunchString(cfg)
	logger.Debugf(ctx, "New: '%s'", launch)
	defer func() { logger.Debugf(ctx, "/New: %v", _err) }()

	gst.Init(nil)
	pipeline, err := gst.NewPipelineFromString(launch)
	if err != nil {
		return nil, fmt.Errorf("unable to create the pipeline '%s': %w", launch, err)
	}

	r := &Runner{
		Config:   cfg,
		Node:     n,
		Pipeline: pipeline,
	}
	sinkElem, err := pipeline.GetElementByName(ElementNameSink)
	if err != nil {
		return nil, fmt.Errorf("unable to find '%s': %w", ElementNameSink, err)
	}
	r.AppSink = app.SinkFromElement(sinkElem)
	for _, src := range []struct {
		ElementName string
		PadName     string
		Dst         **app.Source
	}{
		{ElementNameVideoSrc, kernel.PadNameVideoSrc, &r.VideoSrc},
		{ElementNameTextSrc, kernel.PadNameTextSrc, &r.TextSrc},
	} {
		elem, err := pipeline.GetElementByName(src.ElementName)
		if err != nil {
			return nil, fmt.Errorf("unable to find '%s': %w", src.ElementName, err)
		}
		*src.Dst = app.SrcFromElement(elem)
		if err := n.Link(ctx, src.PadName, NewSrcPeer(*src.Dst)); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Run plays the pipeline until EOS, a pipeline error or the cancellation of
// ctx; on cancellation the pipeline is sent EOS and given DrainTimeout to
// finish.
func (r *Runner) Run(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "Run")
	defer func() { logger.Debugf(ctx, "/Run: %v", _err) }()

	r.ctx = belt.WithField(xcontext.DetachDone(ctx), "node", r.Node.String())
	r.AppSink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: r.onNewSample,
		EOSFunc:       r.onEOS,
	})

	if err := r.Pipeline.SetState(gst.StatePlaying); err != nil {
		return fmt.Errorf("unable to start the pipeline: %w", err)
	}
	defer func() {
		if err := r.Pipeline.SetState(gst.StateNull); err != nil {
			logger.Errorf(ctx, "unable to stop the pipeline: %v", err)
		}
	}()

	watchCtx, cancelWatch := context.WithCancel(xcontext.DetachDone(ctx))
	defer cancelWatch()

	var eg errgroup.Group
	eg.Go(func() error {
		defer cancelWatch()
		return r.watchBus(watchCtx)
	})
	eg.Go(func() error {
		select {
		case <-watchCtx.Done():
			return nil
		case <-ctx.Done():
		}
		logger.Debugf(ctx, "the context is closed, draining the pipeline")
		r.Pipeline.SendEvent(gst.NewEOSEvent())
		t := time.NewTimer(r.Config.DrainTimeout)
		defer t.Stop()
		select {
		case <-watchCtx.Done():
		case <-t.C:
			logger.Warnf(ctx, "the pipeline did not drain in %v", r.Config.DrainTimeout)
			cancelWatch()
		}
		return ctx.Err()
	})
	return eg.Wait()
}

func (r *Runner) watchBus(ctx context.Context) error {
	bus := r.Pipeline.GetPipelineBus()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msg := bus.TimedPop(busPollInterval)
		if msg == nil {
			continue
		}
		switch msg.Type() {
		case gst.MessageEOS:
			logger.Debugf(ctx, "end of stream; samples received: %d", r.SamplesReceived.Load())
			return nil
		case gst.MessageError:
			gerr := msg.ParseError()
			logger.Errorf(ctx, "pipeline error: %s (%s)", gerr.Error(), gerr.DebugString())
			return fmt.Errorf("pipeline error: %s", gerr.Error())
		case gst.MessageWarning:
			gerr := msg.ParseWarning()
			logger.Warnf(ctx, "pipeline warning: %s (%s)", gerr.Error(), gerr.DebugString())
		}
	}
}

func (r *Runner) onNewSample(sink *app.Sink) gst.FlowReturn {
	ctx := r.ctx
	sample := sink.PullSample()
	if sample == nil {
		logger.Warnf(ctx, "unable to pull a sample")
		return gst.FlowOK
	}
	gstBuf := sample.GetBuffer()
	if gstBuf == nil {
		logger.Warnf(ctx, "a sample without a buffer")
		return gst.FlowOK
	}
	r.SamplesReceived.Inc()

	if caps := sample.GetCaps(); caps != nil {
		if err := r.onCaps(ctx, caps.String()); err != nil {
			logger.Errorf(ctx, "unable to handle caps: %v", err)
			return gst.FlowNotNegotiated
		}
	}

	err := r.Node.Process(ctx, node.BufferItem(BufferFromGst(gstBuf)))
	if err == nil {
		return gst.FlowOK
	}
	logger.Debugf(ctx, "unable to process a sample: %v", err)
	return FlowReturnToGst(kernel.FlowReturnOf(err))
}

func (r *Runner) onCaps(ctx context.Context, caps string) error {
	if caps == r.lastCaps {
		return nil
	}
	var evs []event.Event
	if r.lastCaps == "" {
		evs = append(evs, event.NewStreamStart(r.Node.String()))
	}
	evs = append(evs, event.NewCaps(types.Caps(caps)))
	if r.lastCaps == "" {
		evs = append(evs, event.NewSegment(0))
	}
	r.lastCaps = caps
	for _, ev := range evs {
		if err := r.Node.Process(ctx, node.EventItem(ev)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) onEOS(sink *app.Sink) {
	ctx := r.ctx
	if err := r.Node.Process(ctx, node.EventItem(event.NewEOS())); err != nil {
		logger.Errorf(ctx, "unable to forward EOS: %v", err)
	}
}
