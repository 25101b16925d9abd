package augmentation

import (
	"augmentloop/internal/discovery"
	"augmentloop/internal/expiry"
	"augmentloop/internal/global"
	"augmentloop/internal/logctx"
	"augmentloop/internal/metrics"
	"augmentloop/internal/registry"
	"augmentloop/internal/scaling"
	"augmentloop/internal/transport"
	"augmentloop/pkg/wire"
	"context"
	"runtime/debug"
	"sync"
	"time"
)

// clientMessage is one decoded frame vector arriving from a connected
// augmentor, tagged with the peer address the transport received it on.
type clientMessage struct {
	peerAddr string
	frame    wire.Frame
}

// Loop is the single-goroutine dispatch core. The registry's write side and
// augmenting are mutated only from the goroutine running Run; conns is
// written by the per-connection reader goroutines under connsMu.
type Loop struct {
	registry  *registry.AugmentorRegistry
	augmenting *expiry.AugmentingMap
	transportImpl transport.Transport
	sink      metrics.Sink
	discoverer discovery.Registrar
	clock     func() time.Time

	inbox      chan *expiry.AuctionEntry
	disconnect chan string
	wireIn     chan clientMessage

	conns   map[string]transport.Connection // peer address -> live connection
	connsMu sync.Mutex

	trend         map[string]*scaling.Tracker
	lastLatencyMs map[string]float64
	trendMu       sync.Mutex

	stats *Stats

	idleMu sync.Mutex
	idle   bool
	idleCond *sync.Cond

	expiryTick time.Duration
	statsTick  time.Duration
}

// Config bundles the loop's tunables; the zero value of each field falls
// back to its global.Default constant in New.
type Config struct {
	ExpiryTick time.Duration
	StatsTick  time.Duration
}

func New(registryImpl *registry.AugmentorRegistry, transportImpl transport.Transport, sink metrics.Sink, discoverer discovery.Registrar, cfg Config) (loop *Loop) {
	if cfg.ExpiryTick <= 0 {
		cfg.ExpiryTick = global.DefaultExpiryGranul
	}
	if cfg.StatsTick <= 0 {
		cfg.StatsTick = global.DefaultStatsInterval
	}

	loop = &Loop{
		registry:      registryImpl,
		augmenting:    expiry.NewAugmentingMap(),
		transportImpl: transportImpl,
		sink:          sink,
		discoverer:    discoverer,
		clock:         time.Now,
		inbox:         make(chan *expiry.AuctionEntry, global.DefaultMinQueueSize),
		disconnect:    make(chan string, global.DefaultMinQueueSize),
		wireIn:        make(chan clientMessage, global.DefaultMinQueueSize),
		conns:         make(map[string]transport.Connection),
		trend:         make(map[string]*scaling.Tracker),
		lastLatencyMs: make(map[string]float64),
		stats:         NewStats(),
		idle:          true,
		expiryTick:    cfg.ExpiryTick,
		statsTick:     cfg.StatsTick,
	}
	loop.idleCond = sync.NewCond(&loop.idleMu)
	return
}

// Bind starts the TCP listener in the given port range, registers with
// discovery, and wires accepted connections into the loop's message
// sources. Must be called before Run.
func (loop *Loop) Bind(ctx context.Context, host string, portLow, portHi int) (boundAddr string, err error) {
	conns, boundAddr, err := loop.transportImpl.ListenRange(ctx, host, portLow, portHi)
	if err != nil {
		return
	}

	go loop.acceptConnections(ctx, conns)

	if loop.discoverer != nil {
		if regErr := loop.discoverer.Register(ctx, global.ProgName, boundAddr); regErr != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"service discovery registration failed: %v\n", regErr)
		}
	}
	return
}

func (loop *Loop) acceptConnections(ctx context.Context, conns <-chan transport.Connection) {
	for {
		select {
		case <-ctx.Done():
			return
		case conn, ok := <-conns:
			if !ok {
				return
			}
			go loop.readConnection(ctx, conn)
		}
	}
}

// readConnection pumps frames off one connection into wireIn until it
// closes or ctx is cancelled, then reports the disconnect.
func (loop *Loop) readConnection(ctx context.Context, conn transport.Connection) {
	peerAddr := conn.Address()

	loop.connsMu.Lock()
	loop.conns[peerAddr] = conn
	loop.connsMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in augmentor connection reader: %v\n%s", r, debug.Stack())
		}

		loop.connsMu.Lock()
		delete(loop.conns, peerAddr)
		loop.connsMu.Unlock()
		conn.Close()

		select {
		case loop.disconnect <- peerAddr:
		case <-ctx.Done():
		}
	}()

	for {
		frame, err := conn.Recv(ctx)
		if err != nil {
			return
		}
		select {
		case loop.wireIn <- clientMessage{peerAddr: peerAddr, frame: frame}:
		case <-ctx.Done():
			return
		}
	}
}

// Run drains every source serially until ctx is cancelled. It is the loop
// thread: nothing else may mutate the registry's write side or augmenting.
func (loop *Loop) Run(ctx context.Context) {
	ctx = logctx.AppendCtxTag(ctx, global.NSLoop)
	defer func() { ctx = logctx.RemoveLastCtxTag(ctx) }()

	expiryTicker := time.NewTicker(loop.expiryTick)
	defer expiryTicker.Stop()
	statsTicker := time.NewTicker(loop.statsTick)
	defer statsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			if loop.sink != nil {
				loop.sink.Close()
			}
			return

		case entry := <-loop.inbox:
			loop.doAugmentation(ctx, entry)

		case addr := <-loop.disconnect:
			loop.doDisconnection(ctx, addr)

		case msg := <-loop.wireIn:
			loop.dispatchClientMessage(ctx, msg)

		case <-expiryTicker.C:
			loop.checkExpiries(ctx)

		case <-statsTicker.C:
			loop.recordStats(ctx)
		}
	}
}

// NumAugmenting returns the number of auctions currently awaiting responses.
// Safe to call from any goroutine; the loop thread is the only writer so no
// explicit mutex is needed beyond what AugmentingMap itself would require
// if called concurrently, which it never is outside the loop thread — this
// method is intended for tests and diagnostics invoked after SleepUntilIdle.
func (loop *Loop) NumAugmenting() (n int) {
	n = loop.augmenting.Len()
	return
}

// SleepUntilIdle blocks until the loop has no in-flight auctions, or ctx is
// cancelled.
func (loop *Loop) SleepUntilIdle(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		loop.idleMu.Lock()
		for !loop.idle {
			loop.idleCond.Wait()
		}
		loop.idleMu.Unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (loop *Loop) setIdle(isIdle bool) {
	loop.idleMu.Lock()
	loop.idle = isIdle
	loop.idleMu.Unlock()
	if isIdle {
		loop.idleCond.Broadcast()
	}
}

// trackerFor returns this augmentor's saturation tracker, creating one on
// first observation.
func (loop *Loop) trackerFor(name string) (tracker *scaling.Tracker) {
	loop.trendMu.Lock()
	defer loop.trendMu.Unlock()

	tracker, found := loop.trend[name]
	if !found {
		tracker = scaling.NewTracker(8)
		loop.trend[name] = tracker
	}
	return
}

// recordLatency stashes the most recent round-trip time observed for name,
// for recordStats to fold into that augmentor's saturation tracker on the
// next tick.
func (loop *Loop) recordLatency(name string, ms float64) {
	loop.trendMu.Lock()
	defer loop.trendMu.Unlock()

	loop.lastLatencyMs[name] = ms
}

// latencyFor returns the last round-trip time recorded for name, or 0 if
// none has been observed yet.
func (loop *Loop) latencyFor(name string) (ms float64) {
	loop.trendMu.Lock()
	defer loop.trendMu.Unlock()

	ms = loop.lastLatencyMs[name]
	return
}
