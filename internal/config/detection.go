package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// DetectionConfig carries the recognized duplicate detection tunables.
// The scoring weights and the potential/likely flags are engine constants
// and deliberately absent here.
type DetectionConfig struct {
	Threshold          float64 `mapstructure:"threshold"`
	AmountTolerancePct float64 `mapstructure:"amountTolerancePct"`
	DateToleranceDays  int     `mapstructure:"dateToleranceDays"`
}

func DefaultDetectionConfig() DetectionConfig {
	return DetectionConfig{
		Threshold:          0.85,
		AmountTolerancePct: 2.0,
		DateToleranceDays:  3,
	}
}

// DetectionConfigHolder exposes the current detection config with hot
// reload from the config file.
type DetectionConfigHolder struct {
	current atomic.Value // holds DetectionConfig
}

func NewDetectionConfigHolder() (*DetectionConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("detection")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/shipmentdna/config") // Volume-mounted config
	v.AddConfigPath("/etc/shipmentdna")            // System config
	v.AddConfigPath(".")                           // Current directory (dev mode)

	v.SetEnvPrefix("SHIPMENTDNA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultDetectionConfig()
	v.SetDefault("detection.threshold", defaults.Threshold)
	v.SetDefault("detection.amountTolerancePct", defaults.AmountTolerancePct)
	v.SetDefault("detection.dateToleranceDays", defaults.DateToleranceDays)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg DetectionConfig
	if err := v.UnmarshalKey("detection", &cfg); err != nil {
		return nil, err
	}
	if err := validateDetectionConfig(cfg); err != nil {
		return nil, err
	}

	holder := &DetectionConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated DetectionConfig
		if err := v.UnmarshalKey("detection", &updated); err != nil {
			log.Printf("[detection-config] reload failed: %v", err)
			return
		}
		if err := validateDetectionConfig(updated); err != nil {
			log.Printf("[detection-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[detection-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *DetectionConfigHolder) Get() DetectionConfig {
	return h.current.Load().(DetectionConfig)
}

func validateDetectionConfig(cfg DetectionConfig) error {
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		return errors.New("detection.threshold must be in (0,1]")
	}
	if cfg.AmountTolerancePct <= 0 {
		return errors.New("detection.amountTolerancePct must be positive")
	}
	if cfg.DateToleranceDays <= 0 {
		return errors.New("detection.dateToleranceDays must be positive")
	}
	return nil
}
