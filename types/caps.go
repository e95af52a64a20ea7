// caps.go defines Caps, the capability description attached to pads.

package types

import (
	"fmt"
	"strings"
)

// Caps describes the data format flowing through a pad, in the usual
// "media/type, key=value, ..." notation. Only the media type and top-level
// fields are interpreted; full negotiation is left to the host.
type Caps string

const (
	CapsAny      = Caps("ANY")
	CapsVideoRaw = Caps("video/x-raw")
	CapsTextUTF8 = Caps("text/x-raw, format=utf8")
)

func (c Caps) IsAny() bool {
	return strings.TrimSpace(string(c)) == string(CapsAny)
}

func (c Caps) IsEmpty() bool {
	return strings.TrimSpace(string(c)) == ""
}

// Name returns the media type part, e.g. "video/x-raw".
func (c Caps) Name() string {
	name, _, _ := strings.Cut(string(c), ",")
	return strings.TrimSpace(name)
}

// Field returns the value of a top-level field, with surrounding braces
// and spaces trimmed (so "format= { utf8 }" yields "utf8").
func (c Caps) Field(key string) (string, bool) {
	parts := strings.Split(string(c), ",")
	for _, part := range parts[1:] {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		if strings.TrimSpace(k) != key {
			continue
		}
		v = strings.TrimSpace(v)
		v = strings.TrimPrefix(v, "{")
		v = strings.TrimSuffix(v, "}")
		return strings.TrimSpace(v), true
	}
	return "", false
}

// MediaType is the major part of the caps name; statistics are split by it.
type MediaType int

const (
	MediaTypeUnknown = MediaType(-1)
	MediaTypeVideo   = MediaType(0)
	MediaTypeAudio   = MediaType(1)
	MediaTypeText    = MediaType(2)
	MediaTypeOther   = MediaType(3)
)

func (t MediaType) String() string {
	switch t {
	case MediaTypeUnknown:
		return "unknown"
	case MediaTypeVideo:
		return "video"
	case MediaTypeAudio:
		return "audio"
	case MediaTypeText:
		return "text"
	case MediaTypeOther:
		return "other"
	}
	return fmt.Sprintf("MediaType(%d)", int(t))
}

func (c Caps) MediaType() MediaType {
	if c.IsAny() || c.IsEmpty() {
		return MediaTypeUnknown
	}
	major, _, _ := strings.Cut(c.Name(), "/")
	switch major {
	case "video", "image":
		return MediaTypeVideo
	case "audio":
		return MediaTypeAudio
	case "text":
		return MediaTypeText
	default:
		return MediaTypeOther
	}
}

// CanIntersect reports whether the two descriptions may describe the same
// format. Only the media type name is compared.
func (c Caps) CanIntersect(other Caps) bool {
	if c.IsAny() || other.IsAny() {
		return true
	}
	return c.Name() == other.Name()
}

func (c Caps) String() string {
	return string(c)
}
