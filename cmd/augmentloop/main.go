package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"augmentloop/internal/augmentation"
	"augmentloop/internal/config"
	"augmentloop/internal/discovery"
	"augmentloop/internal/global"
	"augmentloop/internal/httpmetrics"
	"augmentloop/internal/lifecycle"
	"augmentloop/internal/logctx"
	"augmentloop/internal/metrics"
	"augmentloop/internal/registry"
	"augmentloop/internal/transport"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	var configPath string
	fs.StringVar(&configPath, "c", global.DefaultConfigPath, "Path to the configuration file")
	fs.StringVar(&configPath, "config", global.DefaultConfigPath, "Path to the configuration file")
	fs.IntVar(&global.Verbosity, "v", global.VerbosityStandard, "Increase detailed progress messages (Higher is more verbose) <0...5>")
	fs.IntVar(&global.Verbosity, "verbosity", global.VerbosityStandard, "Increase detailed progress messages (Higher is more verbose) <0...5>")
	var showVersion bool
	fs.BoolVar(&showVersion, "version", false, "Print version information and exit")
	var promptPSK bool
	fs.BoolVar(&promptPSK, "prompt-psk", false, "Prompt for the wire preshared key on the terminal instead of reading it from the config file")
	fs.Parse(os.Args[1:])

	if showVersion {
		fmt.Printf("%s %s\n", global.ProgName, global.ProgVersion)
		fmt.Printf("Built using %s(%s) for %s on %s\n", runtime.Version(), runtime.Compiler, runtime.GOOS, runtime.GOARCH)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctx = logctx.New(ctx, global.ProgName, global.Verbosity, ctx.Done())
	logger := logctx.GetLogger(ctx)
	logctx.StartWatcher(logger, os.Stdout)
	defer func() {
		cancel()
		logger.Wake()
		logger.Wait()
	}()

	jsonCfg, err := config.LoadConfig(configPath)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "failed to load config: %v\n", err)
		cancel()
		logger.Wake()
		logger.Wait()
		os.Exit(1)
	}

	cfg, err := jsonCfg.NewConfig()
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "failed to resolve config: %v\n", err)
		cancel()
		logger.Wake()
		logger.Wait()
		os.Exit(1)
	}

	if promptPSK {
		fmt.Fprint(os.Stderr, "wire preshared key: ")
		secret, terr := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if terr != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "failed to read preshared key from terminal: %v\n", terr)
			cancel()
			logger.Wake()
			logger.Wait()
			os.Exit(1)
		}
		cfg.PSK, err = config.DeriveWirePSK(secret)
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "failed to derive preshared key: %v\n", err)
			cancel()
			logger.Wake()
			logger.Wait()
			os.Exit(1)
		}
	}

	daemonManager := &daemon{cfg: cfg, baseCtx: ctx}

	err = daemonManager.Start(ctx, cfg.PSK)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "failed to start: %v\n", err)
		cancel()
		logger.Wake()
		logger.Wait()
		os.Exit(1)
	}

	// Signal readiness to whichever process spawned us (self-update handoff
	// or systemd); a no-op when neither applies.
	if rerr := lifecycle.ReadinessSender(); rerr != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "readiness handoff failed: %v\n", rerr)
	}
	if rerr := lifecycle.NotifyReady(ctx); rerr != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "systemd notify ready failed: %v\n", rerr)
	}

	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "%s %s started\n", global.ProgName, global.ProgVersion)

	// Blocks until a terminating signal arrives (or a SIGHUP handoff
	// replaces this process); drives daemonManager.Shutdown on the way out.
	lifecycle.SignalHandler(ctx, daemonManager)
}

// daemon wires the augmentation loop, its transport and metrics sinks, and
// the optional metrics query server into the single running unit that
// lifecycle.SignalHandler drives through Start/Shutdown.
type daemon struct {
	cfg        config.Config
	baseCtx    context.Context
	loop       *augmentation.Loop
	metricsSrv *http.Server
	sink       *metrics.TeeSink
	cancel     context.CancelFunc
	background errgroup.Group
}

// Start satisfies lifecycle.DaemonLike. psk is the already-derived wire
// encryption key (empty when the deployment runs unencrypted).
func (d *daemon) Start(ctx context.Context, psk []byte) (err error) {
	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	registryImpl := registry.New()
	transportImpl := transport.NewTCP(psk)
	discoverer := discovery.NewLogging()

	metricsRegistry := metrics.New()
	sinks := []metrics.Sink{metrics.NewRegistrySink(metricsRegistry, d.cfg.MetricCollectionInterval)}
	if d.cfg.BeatsEndpoint != "" {
		var beatsSink *metrics.BeatsSink
		beatsSink, err = metrics.NewBeatsSink(d.cfg.BeatsEndpoint)
		if err != nil {
			err = fmt.Errorf("failed to set up beats metrics sink: %w", err)
			cancel()
			return
		}
		sinks = append(sinks, beatsSink)
	}
	d.sink = metrics.NewTeeSink(sinks...)

	loopCfg := augmentation.Config{
		ExpiryTick: d.cfg.ExpiryGranularity,
		StatsTick:  d.cfg.StatsInterval,
	}
	d.loop = augmentation.New(registryImpl, transportImpl, d.sink, discoverer, loopCfg)

	boundAddr, err := d.loop.Bind(runCtx, d.cfg.ListenAddress, d.cfg.ListenPortLow, d.cfg.ListenPortHigh)
	if err != nil {
		err = fmt.Errorf("failed to bind augmentor listener: %w", err)
		cancel()
		return
	}
	logctx.LogEvent(runCtx, global.VerbosityStandard, global.InfoLog, "listening for augmentors on %s\n", boundAddr)

	if d.cfg.MetricQueryServerEnabled {
		d.metricsSrv, err = httpmetrics.SetupListener(runCtx, d.cfg.MetricQueryServerPort,
			metricsRegistry.Search, metricsRegistry.Discover, metricsRegistry.Aggregate)
		if err != nil {
			err = fmt.Errorf("failed to set up metrics query server: %w", err)
			cancel()
			return
		}
		go httpmetrics.Start(runCtx, d.metricsSrv)
		logctx.LogEvent(runCtx, global.VerbosityStandard, global.InfoLog,
			"metrics query server listening on :%d\n", d.cfg.MetricQueryServerPort)
	}

	d.background.Go(func() error {
		d.loop.Run(runCtx)
		return nil
	})
	d.background.Go(func() error {
		pruneMetrics(runCtx, metricsRegistry, d.cfg.MetricMaxAge)
		return nil
	})

	return
}

// Shutdown satisfies lifecycle.DaemonLike, tearing down the loop, its
// listener, and the metrics query server. Called once, from the signal
// handler, before the process either exits or hands off to a replacement.
func (d *daemon) Shutdown() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), global.ShutdownTimeout)
		defer cancel()
		d.metricsSrv.Shutdown(shutdownCtx)
	}

	drained := make(chan struct{})
	go func() {
		d.background.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(global.ShutdownTimeout):
		logctx.LogEvent(d.baseCtx, global.VerbosityStandard, global.WarnLog,
			"background tasks did not drain within %v, exiting anyway\n", global.ShutdownTimeout)
	}

	if d.sink != nil {
		d.sink.Close()
	}
}

// pruneMetrics periodically evicts metric time slices older than maxAge so
// the in-memory registry backing the query server doesn't grow unbounded.
func pruneMetrics(ctx context.Context, metricsRegistry *metrics.Registry, maxAge time.Duration) {
	ticker := time.NewTicker(maxAge / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			metricsRegistry.Prune(now, maxAge)
		}
	}
}
