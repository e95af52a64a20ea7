package kernel

import (
	"context"

	"github.com/xaionaro-go/avtimestamp/logger"
)

// assert panics through the logger, so the failure ends up in the log
// before the stack trace.
func assert(
	ctx context.Context,
	mustBeTrue bool,
	extraArgs ...any,
) {
	if mustBeTrue {
		return
	}
	logger.Panic(ctx, append([]any{"assertion failed"}, extraArgs...)...)
}
