package discovery

import (
	"augmentloop/internal/global"
	"augmentloop/internal/logctx"
	"context"
)

// LoggingRegistrar is the default Registrar when no external discovery
// backend is configured: it simply logs what would have been registered.
type LoggingRegistrar struct{}

func NewLogging() (r *LoggingRegistrar) {
	r = &LoggingRegistrar{}
	return
}

func (r *LoggingRegistrar) Register(ctx context.Context, serviceName, address string) (err error) {
	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
		"service discovery: would register %s at %s\n", serviceName, address)
	return
}

func (r *LoggingRegistrar) Deregister(ctx context.Context, serviceName, address string) (err error) {
	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
		"service discovery: would deregister %s at %s\n", serviceName, address)
	return
}
