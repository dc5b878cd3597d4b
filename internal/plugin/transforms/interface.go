package transforms

import (
	"fmt"
	"sort"
	"time"

	"git.home.luguber.info/inful/gcodepost/internal/plugin"
	"git.home.luguber.info/inful/gcodepost/internal/settings"
)

// StatsKey is the PluginContext data key under which a transform may leave a
// summary of what it changed; the pipeline copies it into the StepResult.
const StatsKey = "transform.stats"

// PauseReporter is implemented by stats values of scripts that insert
// pauses, so hosts can count them without knowing the script.
type PauseReporter interface {
	PausesInserted() int
	DialectName() string
}

// TransformPlugin extends the base Plugin interface with chain-specific methods.
type TransformPlugin interface {
	plugin.Plugin

	// ShouldApply returns true if the transform should run for this document.
	ShouldApply(pluginCtx *plugin.PluginContext) bool

	// Order returns the execution order (lower values execute first).
	// Default is 0. Entries with equal order keep their configured sequence.
	Order() int
}

// BaseTransformPlugin provides default implementations for transform methods.
type BaseTransformPlugin struct {
	plugin.BasePlugin
}

// Order returns default execution order (0).
func (b *BaseTransformPlugin) Order() int {
	return 0
}

// ShouldApply returns true by default (applies to every document).
func (b *BaseTransformPlugin) ShouldApply(pluginCtx *plugin.PluginContext) bool {
	return true
}

// StepResult records how one transform in the chain went.
type StepResult struct {
	Name     string
	Skipped  bool
	Duration time.Duration
	Stats    any
}

// entry is one configured transform with its resolved settings.
type entry struct {
	transform TransformPlugin
	settings  *settings.Store
}

// Pipeline is an ordered chain of transforms, each with its own settings.
// The same transform may appear more than once with different settings.
type Pipeline struct {
	entries []entry
}

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{
		entries: make([]entry, 0),
	}
}

// Add appends a transform configured with values. Values are validated by
// the transform and resolved against its schema.
func (p *Pipeline) Add(transform TransformPlugin, values settings.Values) error {
	if transform == nil {
		return fmt.Errorf("cannot add nil transform")
	}

	metadata := transform.Metadata()
	if err := metadata.Validate(); err != nil {
		return fmt.Errorf("invalid transform metadata: %w", err)
	}

	// Verify it's a transform type
	if metadata.Type != plugin.PluginTypeTransform {
		return fmt.Errorf("plugin %s has type %s, expected %s", metadata.Name, metadata.Type, plugin.PluginTypeTransform)
	}

	if err := transform.Validate(values); err != nil {
		return plugin.NewPluginError(metadata.Name, "validate", err)
	}
	store, err := transform.Schema().Resolve(values)
	if err != nil {
		return plugin.NewPluginError(metadata.Name, "validate", err)
	}

	p.entries = append(p.entries, entry{
		transform: transform,
		settings:  store,
	})
	return nil
}

// ordered returns the entries sorted by Order, stable on configured position.
func (p *Pipeline) ordered() []entry {
	sorted := make([]entry, len(p.entries))
	copy(sorted, p.entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].transform.Order() < sorted[j].transform.Order()
	})
	return sorted
}

// Run applies every transform in order to pluginCtx.Layers. Each transform
// sees the layers left by the previous one. The first failure stops the
// chain and is returned as a *plugin.PluginError.
func (p *Pipeline) Run(pluginCtx *plugin.PluginContext) ([]StepResult, error) {
	results := make([]StepResult, 0, len(p.entries))

	for _, e := range p.ordered() {
		name := e.transform.Metadata().Name
		if err := pluginCtx.Context.Err(); err != nil {
			return results, plugin.NewPluginError(name, "execute", err)
		}

		scoped := pluginCtx.ForScript(name, e.settings)
		if !e.transform.ShouldApply(scoped) {
			results = append(results, StepResult{Name: name, Skipped: true})
			continue
		}

		delete(pluginCtx.Data, StatsKey)
		start := time.Now()
		if err := e.transform.Execute(scoped.Context, scoped); err != nil {
			return results, plugin.NewPluginError(name, "execute", err)
		}
		pluginCtx.Layers = scoped.Layers

		results = append(results, StepResult{
			Name:     name,
			Duration: time.Since(start),
			Stats:    pluginCtx.GetValue(StatsKey),
		})
	}

	return results, nil
}

// Names returns the configured transform names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, 0, len(p.entries))
	for _, e := range p.ordered() {
		names = append(names, e.transform.Metadata().Name)
	}
	return names
}

// Count returns the number of configured transforms.
func (p *Pipeline) Count() int {
	return len(p.entries)
}

// Clear removes all transforms from the pipeline.
func (p *Pipeline) Clear() {
	p.entries = make([]entry, 0)
}
