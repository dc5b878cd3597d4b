package plugin

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/gcodepost/internal/settings"
)

// PluginContext provides plugins with access to the document being
// processed, their resolved settings and a logger. A context is created per
// job; the host swaps Settings and Logger for each script in the chain.
type PluginContext struct {
	// Context is the standard Go context for cancellation and deadlines.
	Context context.Context

	// Logger provides structured logging for plugin operations.
	Logger *slog.Logger

	// JobID uniquely identifies this processing job.
	JobID string

	// SourcePath is the file the layers were read from, if any.
	SourcePath string

	// Settings is the resolved settings store of the running script.
	Settings settings.Lookup

	// Layers is the document being transformed: Layers[i] is the text of
	// layer block i. Scripts replace blocks in place.
	Layers []string

	// Data is a map for plugins to share data during execution.
	// This allows plugins to communicate state without direct dependencies.
	Data map[string]interface{}
}

// NewPluginContext creates a new plugin context for one job.
func NewPluginContext(
	ctx context.Context,
	logger *slog.Logger,
	jobID, sourcePath string,
	layers []string,
) *PluginContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &PluginContext{
		Context:    ctx,
		Logger:     logger,
		JobID:      jobID,
		SourcePath: sourcePath,
		Layers:     layers,
		Data:       make(map[string]interface{}),
	}
}

// ForScript returns a shallow copy bound to one script's settings, with the
// script name attached to the logger. Layers and Data stay shared.
func (pc *PluginContext) ForScript(name string, store settings.Lookup) *PluginContext {
	scoped := *pc
	scoped.Settings = store
	scoped.Logger = pc.Logger.With(slog.String("script", name))
	return &scoped
}

// SetValue stores a value in the plugin data map.
func (pc *PluginContext) SetValue(key string, value interface{}) {
	pc.Data[key] = value
}

// GetValue retrieves a value from the plugin data map.
// Returns nil if the key doesn't exist.
func (pc *PluginContext) GetValue(key string) interface{} {
	return pc.Data[key]
}

// GetString retrieves a string value from the plugin data map.
// Returns empty string if the key doesn't exist or is not a string.
func (pc *PluginContext) GetString(key string) string {
	if v, ok := pc.Data[key].(string); ok {
		return v
	}
	return ""
}

// GetInt retrieves an integer value from the plugin data map.
// Returns 0 if the key doesn't exist or is not an integer.
func (pc *PluginContext) GetInt(key string) int {
	if v, ok := pc.Data[key].(int); ok {
		return v
	}
	return 0
}
