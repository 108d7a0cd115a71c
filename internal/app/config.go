package app

import "fmt"

// Config carries the validated application settings.
type Config struct {
	// KernelPath is a .hcl kernel description file or a directory of
	// them.
	KernelPath string

	// LogFormat is "text" or "json".
	LogFormat string

	// LogLevel is "debug", "info", "warn" or "error".
	LogLevel string

	// Explain replays the longest dead-end branch with step-by-step
	// output when a kernel cannot be scheduled.
	Explain bool

	// NoCache disables the schedule cache.
	NoCache bool
}

// NewConfig validates a Config and applies defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.KernelPath == "" {
		return nil, fmt.Errorf("kernel description path is required")
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return &cfg, nil
}
