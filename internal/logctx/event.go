package logctx

import (
	"context"
	"fmt"
)

// LogEvent is the call site every package uses to emit a log line. It pulls
// the logger and the current tag list off ctx, formats the message, and
// hands it to the logger's queue. A context with no embedded logger is a
// silent no-op, so packages never need a nil check before logging.
func LogEvent(ctx context.Context, eventLevel int, eventSeverity string, format string, args ...any) {
	logger := GetLogger(ctx)
	if logger == nil {
		return
	}

	tags := GetTagList(ctx)
	message := fmt.Sprintf(format, args...)
	logger.log(eventLevel, eventSeverity, tags, message)
}
