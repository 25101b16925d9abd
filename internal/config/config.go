package config

import (
	"augmentloop/internal/global"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// LoadConfig reads and parses the JSON config file at path.
func LoadConfig(path string) (cfg JSONConfig, err error) {
	configFile, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("failed to read config file: %w", err)
		return
	}

	err = json.Unmarshal(configFile, &cfg)
	if err != nil {
		err = fmt.Errorf("invalid config syntax in '%s': %w", path, err)
		return
	}
	return
}

// NewConfig resolves the JSON config into the typed Config the daemon runs
// with, parsing duration strings and deriving the wire PSK.
func (cfg JSONConfig) NewConfig() (config Config, err error) {
	config.ListenAddress = cfg.Network.Address
	config.ListenPortLow = cfg.Network.PortLow
	config.ListenPortHigh = cfg.Network.PortHigh

	config.PSK, err = resolvePSK(cfg.Security.PresharedKeyFile, cfg.Security.PresharedKeyHex)
	if err != nil {
		err = fmt.Errorf("failed to resolve preshared key: %w", err)
		return
	}

	config.DefaultMaxInFlight = cfg.Dispatch.DefaultMaxInFlight
	if cfg.Dispatch.ExpiryGranularity != "" {
		config.ExpiryGranularity, err = time.ParseDuration(cfg.Dispatch.ExpiryGranularity)
		if err != nil {
			err = fmt.Errorf("failed to parse expiry granularity: %w", err)
			return
		}
	}
	if cfg.Dispatch.StatsInterval != "" {
		config.StatsInterval, err = time.ParseDuration(cfg.Dispatch.StatsInterval)
		if err != nil {
			err = fmt.Errorf("failed to parse stats interval: %w", err)
			return
		}
	}

	config.MetricQueryServerEnabled = cfg.Metrics.EnableQueryServer
	config.MetricQueryServerPort = cfg.Metrics.QueryServerPort
	config.BeatsEndpoint = cfg.Metrics.BeatsEndpoint
	if cfg.Metrics.Interval != "" {
		config.MetricCollectionInterval, err = time.ParseDuration(cfg.Metrics.Interval)
		if err != nil {
			err = fmt.Errorf("failed to parse metric collection interval: %w", err)
			return
		}
	}
	if cfg.Metrics.MaxAge != "" {
		config.MetricMaxAge, err = time.ParseDuration(cfg.Metrics.MaxAge)
		if err != nil {
			err = fmt.Errorf("failed to parse metric max age: %w", err)
			return
		}
	}

	config.ServiceName = cfg.Discovery.ServiceName

	config.setDefaults()
	return
}

// setDefaults fills every zero-valued field with its global.Default constant.
func (config *Config) setDefaults() {
	if config.ListenAddress == "" {
		config.ListenAddress = global.DefaultListenAddr
	}
	if config.ListenPortLow == 0 {
		config.ListenPortLow = global.DefaultListenPortLow
	}
	if config.ListenPortHigh == 0 {
		config.ListenPortHigh = global.DefaultListenPortHi
	}

	if config.DefaultMaxInFlight == 0 {
		config.DefaultMaxInFlight = defaultMaxInFlightFromMemory()
	}
	if config.ExpiryGranularity == 0 {
		config.ExpiryGranularity = global.DefaultExpiryGranul
	}
	if config.StatsInterval == 0 {
		config.StatsInterval = global.DefaultStatsInterval
	}

	if config.MetricQueryServerPort == 0 {
		config.MetricQueryServerPort = global.HTTPListenPort
	}
	if config.MetricCollectionInterval == 0 {
		config.MetricCollectionInterval = global.DefaultStatsInterval
	}
	if config.MetricMaxAge == 0 {
		config.MetricMaxAge = time.Hour
	}

	if config.ServiceName == "" {
		config.ServiceName = global.ProgName
	}
}
