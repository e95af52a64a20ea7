//go:build !debug_trace
// +build !debug_trace

package logger

import (
	"context"
)

// TraceEnabled is false: per-buffer tracing is compiled out unless built
// with the debug_trace tag.
const TraceEnabled = false

func Tracef(ctx context.Context, format string, args ...any) {}
