package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	perrors "git.home.luguber.info/inful/gcodepost/internal/errors"
)

// Example returns a starter configuration with the pause script enabled for
// the bottom layer.
func Example() *Config {
	cfg := Default()
	cfg.Scripts = []ScriptConfig{
		{
			Name: "PauseAtTopAndBottom",
			Settings: map[string]any{
				"pause_in_bottom_layer":    true,
				"pause_before_skin_bottom": true,
				"head_park_x":              190,
				"head_park_y":              190,
				"retract_before_pause":     true,
			},
		},
	}
	cfg.Watch = WatchConfig{
		Inbox:         "./inbox",
		Outbox:        "./outbox",
		SweepInterval: Duration(time.Minute),
		Debounce:      Duration(500 * time.Millisecond),
		MetricsAddr:   ":9464",
	}
	cfg.History.Path = "./gcodepost-history.db"
	cfg.Notify.NATSURL = "${NATS_URL}"
	return cfg
}

// Init writes the example configuration to path.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return perrors.ValidationFailed("path", fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", path))
	}

	data, err := yaml.Marshal(Example())
	if err != nil {
		return perrors.InternalError("failed to marshal example config", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return perrors.FileError("write", path, err)
	}
	return nil
}
