package config

import (
	"time"

	"git.home.luguber.info/inful/gcodepost/internal/retry"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
		Output: OutputConfig{
			Suffix: "_pp",
			Mark:   true,
		},
		Watch: WatchConfig{
			SweepInterval: Duration(time.Minute),
			Debounce:      Duration(500 * time.Millisecond),
		},
		Notify: NotifyConfig{
			Subject: "gcodepost.jobs",
			Stream:  "GCODEPOST",
			Retry: RetryConfig{
				Backoff:    retry.ModeExponential,
				Initial:    Duration(500 * time.Millisecond),
				Max:        Duration(5 * time.Second),
				MaxRetries: 3,
			},
		},
	}
}
