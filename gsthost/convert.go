package gsthost

import (
	"github.com/tinyzimmer/go-gst/gst"

	"github.com/xaionaro-go/avtimestamp/packet"
	"github.com/xaionaro-go/avtimestamp/types"
)

// BufferFromGst copies a GStreamer buffer; the source buffer is left
// untouched. go-gst reports unknown times as negative durations, which
// become ClockTimeNone.
func BufferFromGst(src *gst.Buffer) *packet.Buffer {
	mapInfo := src.Map(gst.MapRead)
	data := mapInfo.Bytes()
	payload := make([]byte, len(data))
	copy(payload, data)
	src.Unmap()

	buf := packet.NewBuffer(payload)
	buf.PTS = types.ClockTimeFromDuration(src.PresentationTimestamp())
	buf.DTS = types.ClockTimeFromDuration(src.DecodingTimestamp())
	buf.Duration = types.ClockTimeFromDuration(src.Duration())
	if offset := src.Offset(); offset >= 0 {
		buf.Offset = uint64(offset)
	}
	if offsetEnd := src.OffsetEnd(); offsetEnd >= 0 {
		buf.OffsetEnd = uint64(offsetEnd)
	}
	return buf
}

// BufferToGst copies the buffer into a new GStreamer buffer; unset timing
// fields stay unset.
func BufferToGst(src *packet.Buffer) *gst.Buffer {
	buf := gst.NewBufferFromBytes(src.Payload)
	if pts, ok := src.PTS.Duration(); ok {
		buf.SetPresentationTimestamp(pts)
	}
	if dts, ok := src.DTS.Duration(); ok {
		buf.SetDecodingTimestamp(dts)
	}
	if dur, ok := src.Duration.Duration(); ok {
		buf.SetDuration(dur)
	}
	if src.Offset != types.OffsetNone {
		buf.SetOffset(int64(src.Offset))
	}
	if src.OffsetEnd != types.OffsetNone {
		buf.SetOffsetEnd(int64(src.OffsetEnd))
	}
	return buf
}

func FlowReturnFromGst(ret gst.FlowReturn) types.FlowReturn {
	switch ret {
	case gst.FlowOK:
		return types.FlowOK
	case gst.FlowNotLinked:
		return types.FlowNotLinked
	case gst.FlowFlushing:
		return types.FlowFlushing
	case gst.FlowEOS:
		return types.FlowEOS
	case gst.FlowNotNegotiated:
		return types.FlowNotNegotiated
	case gst.FlowNotSupported:
		return types.FlowNotSupported
	default:
		return types.FlowError
	}
}

func FlowReturnToGst(ret types.FlowReturn) gst.FlowReturn {
	switch ret {
	case types.FlowOK:
		return gst.FlowOK
	case types.FlowNotLinked:
		return gst.FlowNotLinked
	case types.FlowFlushing:
		return gst.FlowFlushing
	case types.FlowEOS:
		return gst.FlowEOS
	case types.FlowNotNegotiated:
		return gst.FlowNotNegotiated
	case types.FlowNotSupported:
		return gst.FlowNotSupported
	default:
		return gst.FlowError
	}
}
