package global

import "time"

const (
	// Descriptive Names for available verbosity levels
	VerbosityNone int = iota
	VerbosityStandard
	VerbosityProgress
	VerbosityData
	VerbosityFullData
	VerbosityDebug

	// Descriptive names for available severity levels
	ErrorLog string = "Error"
	WarnLog  string = "Warn"
	InfoLog  string = "Info"
)

const (
	ProgName    string = "augmentloop"
	ProgVersion string = "v0.1.0"

	// Context keys
	LoggerKey  CtxKey = "logger"  // Event queue (mostly for variable log verbosity handling)
	LogTagsKey CtxKey = "logtags" // List of tags in order of broad->specific appended/popped at various parts of the program

	DefaultConfigPath string = "/etc/augmentloop.json"

	// Self-update handoff (SIGHUP reload): env vars and pipe protocol shared
	// between a process and the replacement it spawns.
	DefaultMaxWaitForUpdate time.Duration = 10 * time.Second
	ReadyMessage            string        = "READY"
	EnvNameReadinessFD      string        = "READY_FD"
	EnvNameAlivenessFD      string        = "ALIVE_FD"
	EnvNameSelfUpdate       string        = "UPDATING_CHILD_PID"

	// Dispatch defaults, mirrored from the original router's augmentation stage
	DefaultMaxInFlight  int           = 3000
	DefaultLoopTick     time.Duration = time.Millisecond
	DefaultExpiryGranul time.Duration = 977 * time.Microsecond
	DefaultStatsInterval time.Duration = 977 * time.Millisecond
	DefaultAugmentTimeout time.Duration = 5 * time.Second

	// Queue sizing
	DefaultMinQueueSize int = 512
	DefaultMaxQueueSize int = 8192

	// Transport
	DefaultListenAddr    string        = "0.0.0.0"
	DefaultListenPortLow int           = 18800
	DefaultListenPortHi  int           = 18810
	DialTimeout          time.Duration = 3 * time.Second
	FrameReadTimeout     time.Duration = 30 * time.Second

	// Timeout values
	ShutdownTimeout time.Duration = 10 * time.Second

	// Metric HTTP server
	HTTPListenPort   int           = 28514
	HTTPListenAddr   string        = "localhost" // Metric queries only exposed to local machine
	HTTPReadTimeout  time.Duration = 30 * time.Second
	HTTPWriteTimeout time.Duration = 10 * time.Second
	HTTPIdleTimeout  time.Duration = 180 * time.Second
	DiscoveryPath    string        = "/metrics/discover/"
	SearchPath       string        = "/metrics/search/"
	AggregationPath  string        = "/metrics/aggregate/"

	// Metric aggregation selectors
	MetricSum string = "sum"
	MetricMin string = "min"
	MetricMax string = "max"
	MetricAvg string = "avg"

	// Namespacing Name Components
	NSAugment   string = "Augmentation"
	NSDispatch  string = "Dispatch"
	NSLoop      string = "Loop"
	NSPool      string = "Pool"
	NSRegistry  string = "Registry"
	NSExpiry    string = "Expiry"
	NSQueue     string = "Queue"
	NSWire      string = "Wire"
	NSMetric    string = "Metrics"
	NSMetricSrv string = "Server"
	NSTransport string = "Transport"
	NSTest      string = "Test"
)
