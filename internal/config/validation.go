package config

import (
	"fmt"
	"path/filepath"

	perrors "git.home.luguber.info/inful/gcodepost/internal/errors"
)

// Validate checks the configuration for values no component could use.
// Script names are resolved against the registry later, when the chain is
// built.
func (c *Config) Validate() error {
	for i, s := range c.Scripts {
		if s.Name == "" {
			return perrors.ValidationFailed(fmt.Sprintf("scripts[%d].name", i), "must not be empty")
		}
	}

	if !c.Output.Overwrite && c.Output.Suffix == "" {
		return perrors.ValidationFailed("output.suffix", "must not be empty unless output.overwrite is set")
	}

	if c.Watch.SweepInterval < 0 {
		return perrors.ValidationFailed("watch.sweep_interval", "must not be negative")
	}
	if c.Watch.Debounce < 0 {
		return perrors.ValidationFailed("watch.debounce", "must not be negative")
	}
	if c.Watch.Inbox != "" && c.Watch.Outbox != "" &&
		filepath.Clean(c.Watch.Inbox) == filepath.Clean(c.Watch.Outbox) {
		return perrors.ValidationFailed("watch.outbox", "must differ from watch.inbox")
	}

	if c.Notify.Retry.MaxRetries < 0 {
		return perrors.ValidationFailed("notify.retry.max_retries", "must not be negative")
	}
	if c.Notify.Retry.Initial < 0 || c.Notify.Retry.Max < 0 {
		return perrors.ValidationFailed("notify.retry", "durations must not be negative")
	}

	return nil
}

// ValidateWatch checks what the watch daemon additionally needs.
func (c *Config) ValidateWatch() error {
	if c.Watch.Inbox == "" {
		return perrors.ValidationFailed("watch.inbox", "is required to watch")
	}
	return nil
}
