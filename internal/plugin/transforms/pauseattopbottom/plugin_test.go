package pauseattopbottom

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/gcodepost/internal/plugin"
	"git.home.luguber.info/inful/gcodepost/internal/plugin/transforms"
	"git.home.luguber.info/inful/gcodepost/internal/settings"
)

func TestPauseTransform_Registered(t *testing.T) {
	p, err := plugin.GetLatest(ScriptName)
	require.NoError(t, err)

	meta := p.Metadata()
	assert.Equal(t, "v2.0.0", meta.Version)
	assert.Equal(t, plugin.PluginTypeTransform, meta.Type)
	assert.True(t, meta.HasCapability(plugin.CapabilityPause))

	_, ok := p.(transforms.TransformPlugin)
	assert.True(t, ok)
}

func TestSchema_Declaration(t *testing.T) {
	s := Schema()
	require.NoError(t, s.Validate())

	assert.Equal(t, []string{
		KeyPauseInBottomLayer,
		KeyPauseBeforeSkinBottom,
		KeyPauseAfterSkinBottom,
		KeyPauseInTopLayer,
		KeyPauseBeforeSkinTop,
		KeyPauseAfterSkinTop,
		KeyHeadParkX,
		KeyHeadParkY,
		KeyRetractBeforePause,
	}, s.Keys())

	defaults := s.Defaults()
	assert.False(t, defaults.Bool(KeyPauseInBottomLayer))
	assert.Equal(t, 190.0, defaults.Float(KeyHeadParkX))
	assert.Equal(t, 190.0, defaults.Float(KeyHeadParkY))
	assert.True(t, defaults.Bool(KeyRetractBeforePause))

	assert.False(t, defaults.Enabled(KeyPauseBeforeSkinBottom))
	on := resolve(t, settings.Values{KeyPauseInTopLayer: true})
	assert.True(t, on.Enabled(KeyPauseAfterSkinTop))
}

func TestSchema_JSON(t *testing.T) {
	raw, err := Schema().JSON()
	require.NoError(t, err)

	var doc struct {
		Name     string                    `json:"name"`
		Key      string                    `json:"key"`
		Version  int                       `json:"version"`
		Settings map[string]map[string]any `json:"settings"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, "Pause at top and bottom", doc.Name)
	assert.Equal(t, ScriptName, doc.Key)
	assert.Equal(t, 2, doc.Version)
	assert.Len(t, doc.Settings, 9)
	assert.Equal(t, "pause_in_bottom_layer", doc.Settings[KeyPauseBeforeSkinBottom]["enabled"])
	assert.Equal(t, "mm", doc.Settings[KeyHeadParkX]["unit"])
	assert.Equal(t, 190.0, doc.Settings[KeyHeadParkY]["default_value"])
}

func TestPauseTransform_Validate(t *testing.T) {
	tr := NewPauseTransform()

	assert.NoError(t, tr.Validate(settings.Values{KeyHeadParkX: "200.5", KeyPauseInTopLayer: "true"}))
	assert.Error(t, tr.Validate(settings.Values{"pause_layer": true}))
	assert.Error(t, tr.Validate(settings.Values{KeyHeadParkY: "left"}))
}

func TestPauseTransform_ShouldApply(t *testing.T) {
	tr := NewPauseTransform()
	pctx := plugin.NewPluginContext(context.Background(), nil, "job", "", nil)

	assert.False(t, tr.ShouldApply(pctx))
	assert.False(t, tr.ShouldApply(pctx.ForScript(ScriptName, Schema().Defaults())))
	assert.False(t, tr.ShouldApply(pctx.ForScript(ScriptName, resolve(t, settings.Values{KeyPauseInBottomLayer: true}))),
		"a layer gate without placement switches inserts nothing")
	assert.False(t, tr.ShouldApply(pctx.ForScript(ScriptName, resolve(t, settings.Values{KeyPauseAfterSkinTop: true}))))
	assert.True(t, tr.ShouldApply(pctx.ForScript(ScriptName, resolve(t, settings.Values{
		KeyPauseInBottomLayer:   true,
		KeyPauseAfterSkinBottom: true,
	}))))
	assert.True(t, tr.ShouldApply(pctx.ForScript(ScriptName, resolve(t, settings.Values{
		KeyPauseInTopLayer:    true,
		KeyPauseBeforeSkinTop: true,
	}))))
}

func TestPauseTransform_InPipeline(t *testing.T) {
	pipeline := transforms.NewPipeline()
	require.NoError(t, pipeline.Add(NewPauseTransform(), settings.Values{
		KeyPauseInBottomLayer:    true,
		KeyPauseBeforeSkinBottom: true,
	}))

	pctx := plugin.NewPluginContext(context.Background(), nil, "job-1", "part.gcode", twoLayerDoc())
	results, err := pipeline.Run(pctx)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, ScriptName, results[0].Name)
	assert.False(t, results[0].Skipped)

	stats, ok := results[0].Stats.(Stats)
	require.True(t, ok)
	assert.Equal(t, 1, stats.Pauses)
	assert.Contains(t, pctx.Layers[1], ";script: PauseAtTopAndBottom")
}

func TestPauseTransform_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pctx := plugin.NewPluginContext(ctx, nil, "job", "", twoLayerDoc())
	err := NewPauseTransform().Execute(ctx, pctx)
	assert.ErrorIs(t, err, context.Canceled)
}
