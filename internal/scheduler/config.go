package scheduler

import (
	"time"

	"github.com/smallbiznis/shipmentdna/internal/config"
)

// Config controls the background scan cadence.
type Config struct {
	Enabled      bool
	ScanInterval time.Duration
	ScanTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		ScanInterval: time.Hour,
		ScanTimeout:  10 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.ScanInterval <= 0 {
		c.ScanInterval = defaults.ScanInterval
	}
	if c.ScanTimeout <= 0 {
		c.ScanTimeout = defaults.ScanTimeout
	}
	return c
}

func ProvideConfig(cfg config.Config) Config {
	return Config{
		Enabled:      cfg.ScanSchedulerEnabled,
		ScanInterval: cfg.ScanInterval,
	}.withDefaults()
}
