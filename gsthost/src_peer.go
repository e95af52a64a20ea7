package gsthost

import (
	"context"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/xaionaro-go/avtimestamp/event"
	"github.com/xaionaro-go/avtimestamp/logger"
	"github.com/xaionaro-go/avtimestamp/packet"
	"github.com/xaionaro-go/avtimestamp/pad"
	"github.com/xaionaro-go/avtimestamp/types"
)

// SrcPeer forwards whatever a kernel src pad pushes into an appsrc element.
type SrcPeer struct {
	Source *app.Source
}

var _ pad.Peer = (*SrcPeer)(nil)

func NewSrcPeer(src *app.Source) *SrcPeer {
	return &SrcPeer{Source: src}
}

func (p *SrcPeer) Chain(
	ctx context.Context,
	buf *packet.Buffer,
) types.FlowReturn {
	defer buf.Release()
	ret := FlowReturnFromGst(p.Source.PushBuffer(BufferToGst(buf)))
	if ret != types.FlowOK {
		logger.Debugf(ctx, "appsrc %s refused %s: %s", p.Source.GetName(), buf, ret)
	}
	return ret
}

func (p *SrcPeer) Event(
	ctx context.Context,
	ev event.Event,
) bool {
	switch ev.Type {
	case event.TypeCaps:
		p.Source.SetCaps(gst.NewCapsFromString(string(ev.Caps)))
		return true
	case event.TypeEOS:
		return p.Source.EndStream() == gst.FlowOK
	default:
		// appsrc generates stream-start and segment on its own
		return true
	}
}
