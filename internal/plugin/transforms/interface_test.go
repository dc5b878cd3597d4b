package transforms

import (
	"context"
	"errors"
	"strings"
	"testing"

	"git.home.luguber.info/inful/gcodepost/internal/plugin"
	"git.home.luguber.info/inful/gcodepost/internal/settings"
)

var mockSchema = settings.Schema{
	Name: "Append",
	Key:  "Append",
	Definitions: []settings.Definition{
		{Key: "suffix", Type: settings.TypeString, Default: ";tail"},
		{Key: "enabled", Type: settings.TypeBool, Default: true},
	},
}

// mockTransform appends its configured suffix line to the last layer.
type mockTransform struct {
	BaseTransformPlugin
	name    string
	version string
	typ     plugin.PluginType
	order   int
	fail    error
}

func newMock(name string, order int) *mockTransform {
	return &mockTransform{name: name, version: "v1.0.0", typ: plugin.PluginTypeTransform, order: order}
}

func (m *mockTransform) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:    m.name,
		Version: m.version,
		Type:    m.typ,
	}
}

func (m *mockTransform) Schema() settings.Schema {
	return mockSchema
}

func (m *mockTransform) Validate(values settings.Values) error {
	return m.ValidateAgainst(mockSchema, values)
}

func (m *mockTransform) Order() int {
	return m.order
}

func (m *mockTransform) ShouldApply(pluginCtx *plugin.PluginContext) bool {
	return pluginCtx.Settings.Bool("enabled")
}

func (m *mockTransform) Execute(ctx context.Context, pluginCtx *plugin.PluginContext) error {
	if m.fail != nil {
		return m.fail
	}
	v, _ := pluginCtx.Settings.Value("suffix")
	last := len(pluginCtx.Layers) - 1
	pluginCtx.Layers[last] += v.(string) + "\n"
	pluginCtx.SetValue(StatsKey, m.name)
	return nil
}

func newContext(layers ...string) *plugin.PluginContext {
	return plugin.NewPluginContext(context.Background(), nil, "job", "", layers)
}

func TestPipeline_RunsInOrder(t *testing.T) {
	p := NewPipeline()
	if err := p.Add(newMock("second", 10), settings.Values{"suffix": ";b"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := p.Add(newMock("first", 0), settings.Values{"suffix": ";a"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := p.Add(newMock("also-first", 0), nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got := strings.Join(p.Names(), ",")
	if got != "first,also-first,second" {
		t.Errorf("Names() = %s, want first,also-first,second", got)
	}

	pctx := newContext(";LAYER:0\n")
	results, err := p.Run(pctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if pctx.Layers[0] != ";LAYER:0\n;a\n;tail\n;b\n" {
		t.Errorf("unexpected layers: %q", pctx.Layers[0])
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, name := range []string{"first", "also-first", "second"} {
		if results[i].Name != name || results[i].Stats != name {
			t.Errorf("result %d = %+v, want %s", i, results[i], name)
		}
	}
}

func TestPipeline_SameTransformTwice(t *testing.T) {
	m := newMock("append", 0)
	p := NewPipeline()
	_ = p.Add(m, settings.Values{"suffix": ";one"})
	_ = p.Add(m, settings.Values{"suffix": ";two"})

	pctx := newContext("")
	if _, err := p.Run(pctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if pctx.Layers[0] != ";one\n;two\n" {
		t.Errorf("each entry should use its own settings, got %q", pctx.Layers[0])
	}
}

func TestPipeline_Skipped(t *testing.T) {
	p := NewPipeline()
	_ = p.Add(newMock("off", 0), settings.Values{"enabled": false})

	pctx := newContext("x")
	results, err := p.Run(pctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 1 || !results[0].Skipped {
		t.Errorf("expected one skipped result, got %+v", results)
	}
	if pctx.Layers[0] != "x" {
		t.Errorf("skipped transform modified layers: %q", pctx.Layers[0])
	}
}

func TestPipeline_AddRejects(t *testing.T) {
	p := NewPipeline()

	if err := p.Add(nil, nil); err == nil {
		t.Error("expected error for nil transform")
	}

	bad := newMock("", 0)
	if err := p.Add(bad, nil); err == nil {
		t.Error("expected error for invalid metadata")
	}

	if err := p.Add(newMock("m", 0), settings.Values{"unknown": 1}); err == nil {
		t.Error("expected error for unknown setting")
	}

	if err := p.Add(newMock("m", 0), settings.Values{"enabled": "maybe"}); err == nil {
		t.Error("expected error for mistyped setting")
	}

	if p.Count() != 0 {
		t.Errorf("rejected transforms should not be added, count = %d", p.Count())
	}
}

func TestPipeline_ErrorStopsChain(t *testing.T) {
	boom := errors.New("boom")
	failing := newMock("failing", 0)
	failing.fail = boom

	p := NewPipeline()
	_ = p.Add(failing, nil)
	_ = p.Add(newMock("after", 1), nil)

	results, err := p.Run(newContext(""))
	if err == nil {
		t.Fatal("expected error")
	}

	var pluginErr *plugin.PluginError
	if !errors.As(err, &pluginErr) || pluginErr.PluginName != "failing" {
		t.Errorf("expected PluginError from failing, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestPipeline_Canceled(t *testing.T) {
	p := NewPipeline()
	_ = p.Add(newMock("m", 0), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pctx := plugin.NewPluginContext(ctx, nil, "job", "", []string{""})

	if _, err := p.Run(pctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPipeline_Clear(t *testing.T) {
	p := NewPipeline()
	_ = p.Add(newMock("m", 0), nil)
	p.Clear()
	if p.Count() != 0 {
		t.Errorf("Count() after Clear = %d", p.Count())
	}
}

func TestBaseTransformPlugin_Defaults(t *testing.T) {
	base := &BaseTransformPlugin{}
	if base.Order() != 0 {
		t.Errorf("default Order = %d", base.Order())
	}
	if !base.ShouldApply(nil) {
		t.Error("default ShouldApply should be true")
	}
}
