package kernel

import (
	"github.com/xaionaro-go/avtimestamp/pad"
	"github.com/xaionaro-go/avtimestamp/types"
)

const (
	PadNameSink     = "sink"
	PadNameVideoSrc = "videosrc"
	PadNameTextSrc  = "textsrc"
)

var (
	TemplateSink = pad.Template{
		Name:      PadNameSink,
		Direction: pad.DirectionSink,
		Presence:  pad.PresenceAlways,
		Caps:      types.CapsAny,
	}
	TemplateVideoSrc = pad.Template{
		Name:      PadNameVideoSrc,
		Direction: pad.DirectionSrc,
		Presence:  pad.PresenceAlways,
		Caps:      types.CapsVideoRaw,
	}
	TemplateTextSrc = pad.Template{
		Name:      PadNameTextSrc,
		Direction: pad.DirectionSrc,
		Presence:  pad.PresenceAlways,
		Caps:      types.CapsTextUTF8,
	}
)

// TimestamperTemplates lists the pads of Timestamper.
func TimestamperTemplates() []pad.Template {
	return []pad.Template{TemplateSink, TemplateVideoSrc, TemplateTextSrc}
}
