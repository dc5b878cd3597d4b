// Package plugin provides the plugin system post-processing scripts are
// built on. A script declares its settings schema, validates configured
// values, and rewrites the layer blocks of a G-code document.
package plugin

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/gcodepost/internal/settings"
)

// Plugin represents a gcodepost plugin with metadata and lifecycle methods.
type Plugin interface {
	// Metadata returns the plugin's metadata (name, version, type, capabilities).
	Metadata() PluginMetadata

	// Schema declares the settings the plugin reads.
	Schema() settings.Schema

	// Validate checks configured values before the plugin runs.
	// Returns an error if a value is unknown or has the wrong type.
	Validate(values settings.Values) error

	// Execute runs the plugin over pluginCtx.Layers, rewriting them in place.
	// Settings and logging are provided through the context.
	Execute(ctx context.Context, pluginCtx *PluginContext) error
}

// PluginMetadata describes a plugin's identity and capabilities.
type PluginMetadata struct {
	// Name is the unique plugin identifier (e.g., "PauseAtTopAndBottom").
	Name string

	// Version is the semantic version (e.g., "v2.0.0").
	Version string

	// Type identifies the plugin category.
	Type PluginType

	// Description provides a human-readable summary of the plugin's purpose.
	Description string

	// Author is the plugin creator or maintainer.
	Author string

	// Capabilities lists optional features this plugin provides.
	Capabilities []string
}

// String returns a human-readable representation of the plugin metadata.
func (m PluginMetadata) String() string {
	return fmt.Sprintf("%s@%s (%s)", m.Name, m.Version, m.Type)
}

// Validate checks if the plugin metadata is valid.
func (m PluginMetadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("plugin version is required")
	}
	if _, err := parseVersion(m.Version); err != nil {
		return fmt.Errorf("plugin %s: %w", m.Name, err)
	}
	if !m.Type.IsValid() {
		return fmt.Errorf("invalid plugin type: %s", m.Type)
	}
	return nil
}

// HasCapability reports whether the metadata lists capability c.
func (m PluginMetadata) HasCapability(c PluginCapability) bool {
	for _, have := range m.Capabilities {
		if have == string(c) {
			return true
		}
	}
	return false
}

// BasePlugin provides a default Validate that resolves values against the
// plugin's schema. Embedders pass their own schema in.
type BasePlugin struct{}

// ValidateAgainst resolves values against schema, rejecting unknown keys and
// mistyped values.
func (b *BasePlugin) ValidateAgainst(schema settings.Schema, values settings.Values) error {
	_, err := schema.Resolve(values)
	return err
}
