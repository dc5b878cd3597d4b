// Package pauseattopbottom inserts operator pauses around the skin of the
// bottom layer and of the top layer, so a print can be interrupted to embed
// parts or change filament at exactly those points.
package pauseattopbottom

import (
	"context"

	"git.home.luguber.info/inful/gcodepost/internal/plugin"
	"git.home.luguber.info/inful/gcodepost/internal/plugin/transforms"
	"git.home.luguber.info/inful/gcodepost/internal/settings"
)

// ScriptName is the registered name and schema key of the script.
const ScriptName = "PauseAtTopAndBottom"

// Setting keys.
const (
	KeyPauseInBottomLayer    = "pause_in_bottom_layer"
	KeyPauseBeforeSkinBottom = "pause_before_skin_bottom"
	KeyPauseAfterSkinBottom  = "pause_after_skin_bottom"
	KeyPauseInTopLayer       = "pause_in_top_layer"
	KeyPauseBeforeSkinTop    = "pause_before_skin_top"
	KeyPauseAfterSkinTop     = "pause_after_skin_top"
	KeyHeadParkX             = "head_park_x"
	KeyHeadParkY             = "head_park_y"
	KeyRetractBeforePause    = "retract_before_pause"
)

// Schema returns the settings declaration of the script.
func Schema() settings.Schema {
	return settings.Schema{
		Name:     "Pause at top and bottom",
		Key:      ScriptName,
		Version:  2,
		Metadata: map[string]any{},
		Definitions: []settings.Definition{
			{
				Key:         KeyPauseInBottomLayer,
				Label:       "Pause in bottom layer",
				Description: "Whether to pause in the bottom layer",
				Type:        settings.TypeBool,
				Default:     false,
			},
			{
				Key:         KeyPauseBeforeSkinBottom,
				Label:       "Before skin",
				Description: "Whether to pause in the bottom layer before printing the skin",
				Type:        settings.TypeBool,
				Default:     false,
				Enabled:     KeyPauseInBottomLayer,
			},
			{
				Key:         KeyPauseAfterSkinBottom,
				Label:       "After skin",
				Description: "Whether to pause in the bottom layer after printing the skin",
				Type:        settings.TypeBool,
				Default:     false,
				Enabled:     KeyPauseInBottomLayer,
			},
			{
				Key:         KeyPauseInTopLayer,
				Label:       "Pause in top layer",
				Description: "Whether to pause in the top layer",
				Type:        settings.TypeBool,
				Default:     false,
			},
			{
				Key:         KeyPauseBeforeSkinTop,
				Label:       "Before skin",
				Description: "Whether to pause in the top layer before printing the skin",
				Type:        settings.TypeBool,
				Default:     false,
				Enabled:     KeyPauseInTopLayer,
			},
			{
				Key:         KeyPauseAfterSkinTop,
				Label:       "After skin",
				Description: "Whether to pause in the top layer after printing the skin",
				Type:        settings.TypeBool,
				Default:     false,
				Enabled:     KeyPauseInTopLayer,
			},
			{
				Key:         KeyHeadParkX,
				Label:       "Park Print Head X",
				Description: "What X location does the head move to when pausing.",
				Unit:        "mm",
				Type:        settings.TypeFloat,
				Default:     190,
			},
			{
				Key:         KeyHeadParkY,
				Label:       "Park Print Head Y",
				Description: "What Y location does the head move to when pausing.",
				Unit:        "mm",
				Type:        settings.TypeFloat,
				Default:     190,
			},
			{
				Key:         KeyRetractBeforePause,
				Label:       "Retract filament before pausing",
				Description: "Use machine setting for retraction before pausing",
				Type:        settings.TypeBool,
				Default:     true,
			},
		},
	}
}

// PauseTransform adapts Execute to the script chain.
type PauseTransform struct {
	transforms.BaseTransformPlugin
	schema settings.Schema
}

var _ transforms.TransformPlugin = (*PauseTransform)(nil)

// NewPauseTransform creates the transform.
func NewPauseTransform() *PauseTransform {
	return &PauseTransform{schema: Schema()}
}

// Metadata implements plugin.Plugin.
func (t *PauseTransform) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        ScriptName,
		Version:     "v2.0.0",
		Type:        plugin.PluginTypeTransform,
		Description: "Pause before or after the skin of the bottom and top layers",
		Author:      "gcodepost",
		Capabilities: []string{
			string(plugin.CapabilityPause),
			string(plugin.CapabilityGriffin),
			string(plugin.CapabilityMarlin),
		},
	}
}

// Schema implements plugin.Plugin.
func (t *PauseTransform) Schema() settings.Schema {
	return t.schema
}

// Validate implements plugin.Plugin.
func (t *PauseTransform) Validate(values settings.Values) error {
	return t.ValidateAgainst(t.schema, values)
}

// ShouldApply skips documents when no layer gate has a placement switch on.
func (t *PauseTransform) ShouldApply(pluginCtx *plugin.PluginContext) bool {
	if pluginCtx.Settings == nil {
		return false
	}
	return ConfigFrom(pluginCtx.Settings).Any()
}

// Execute implements plugin.Plugin.
func (t *PauseTransform) Execute(ctx context.Context, pluginCtx *plugin.PluginContext) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lookup := pluginCtx.Settings
	if lookup == nil {
		lookup = t.schema.Defaults()
	}

	layers, stats := Execute(pluginCtx.Layers, lookup, pluginCtx.Logger)
	pluginCtx.Layers = layers
	pluginCtx.SetValue(transforms.StatsKey, stats)
	return nil
}

func init() {
	plugin.MustRegister(NewPauseTransform())
}
