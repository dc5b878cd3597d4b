package config

import (
	"fmt"
	"sort"
	"strings"

	"git.home.luguber.info/inful/gcodepost/internal/retry"
)

var backoffNormalizer = newNormalizer(map[string]retry.Mode{
	"fixed":       retry.ModeFixed,
	"linear":      retry.ModeLinear,
	"exponential": retry.ModeExponential,
})

// NormalizeBackoff returns the canonical backoff mode, or "" when raw is unknown.
func NormalizeBackoff(raw string) retry.Mode {
	return backoffNormalizer.normalize(raw)
}

// normalizer maps case-insensitive spellings onto enum values.
type normalizer[T comparable] struct {
	values map[string]T
	keys   []string
}

func newNormalizer[T comparable](values map[string]T) *normalizer[T] {
	n := &normalizer[T]{values: make(map[string]T, len(values))}
	for k, v := range values {
		key := cleanEnum(k)
		n.values[key] = v
		n.keys = append(n.keys, key)
	}
	sort.Strings(n.keys)
	return n
}

// normalize returns the zero value for unknown input.
func (n *normalizer[T]) normalize(raw string) T {
	return n.values[cleanEnum(raw)]
}

func cleanEnum(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizationResult captures adjustments & warnings from normalization pass.
type NormalizationResult struct{ Warnings []string }

// Normalize canonicalizes enumerated fields and trims names in place.
// Unknown enum values fall back to their defaults with a warning.
func Normalize(c *Config) *NormalizationResult {
	res := &NormalizationResult{}

	if lvl := NormalizeLogLevel(string(c.Logging.Level)); lvl != "" {
		if c.Logging.Level != lvl {
			res.Warnings = append(res.Warnings, warnChanged("logging.level", c.Logging.Level, lvl))
			c.Logging.Level = lvl
		}
	} else {
		if strings.TrimSpace(string(c.Logging.Level)) != "" {
			res.Warnings = append(res.Warnings, warnUnknown("logging.level", string(c.Logging.Level), string(LogLevelInfo)))
		}
		c.Logging.Level = LogLevelInfo
	}

	if f := NormalizeLogFormat(string(c.Logging.Format)); f != "" {
		if c.Logging.Format != f {
			res.Warnings = append(res.Warnings, warnChanged("logging.format", c.Logging.Format, f))
			c.Logging.Format = f
		}
	} else {
		if strings.TrimSpace(string(c.Logging.Format)) != "" {
			res.Warnings = append(res.Warnings, warnUnknown("logging.format", string(c.Logging.Format), string(LogFormatText)))
		}
		c.Logging.Format = LogFormatText
	}

	if b := NormalizeBackoff(string(c.Notify.Retry.Backoff)); b != "" {
		if c.Notify.Retry.Backoff != b {
			res.Warnings = append(res.Warnings, warnChanged("notify.retry.backoff", c.Notify.Retry.Backoff, b))
			c.Notify.Retry.Backoff = b
		}
	} else {
		if strings.TrimSpace(string(c.Notify.Retry.Backoff)) != "" {
			res.Warnings = append(res.Warnings, warnUnknown("notify.retry.backoff", string(c.Notify.Retry.Backoff), string(retry.ModeExponential)))
		}
		c.Notify.Retry.Backoff = retry.ModeExponential
	}

	for i := range c.Scripts {
		c.Scripts[i].Name = strings.TrimSpace(c.Scripts[i].Name)
	}

	return res
}

func warnChanged(field string, from, to any) string {
	return fmt.Sprintf("normalized %s from '%v' to '%v'", field, from, to)
}

func warnUnknown(field, value, def string) string {
	return fmt.Sprintf("unknown %s '%s', defaulting to %s", field, value, def)
}
