package postprocess

import (
	"git.home.luguber.info/inful/gcodepost/internal/config"
	perrors "git.home.luguber.info/inful/gcodepost/internal/errors"
	"git.home.luguber.info/inful/gcodepost/internal/plugin"
	"git.home.luguber.info/inful/gcodepost/internal/plugin/transforms"
	"git.home.luguber.info/inful/gcodepost/internal/settings"
)

// BuildPipeline resolves each configured script in reg (the default registry
// when nil) and adds it to a new pipeline with its settings.
func BuildPipeline(reg *plugin.Registry, scripts []config.ScriptConfig) (*transforms.Pipeline, error) {
	if reg == nil {
		reg = plugin.DefaultRegistry()
	}

	pipeline := transforms.NewPipeline()
	for _, sc := range scripts {
		p, err := reg.GetLatest(sc.Name)
		if err != nil {
			return nil, perrors.ScriptNotFound(sc.Name)
		}
		transform, ok := p.(transforms.TransformPlugin)
		if !ok {
			return nil, perrors.New(perrors.CategoryPlugin, perrors.SeverityFatal, "script cannot run in a chain").
				WithContext("script", sc.Name)
		}
		if err := pipeline.Add(transform, settings.Values(sc.Settings)); err != nil {
			return nil, perrors.Wrap(err, perrors.CategoryValidation, perrors.SeverityFatal, "invalid script settings").
				WithContext("script", sc.Name)
		}
	}
	return pipeline, nil
}

// ApplyOverrides merges command-line values into every configured entry of
// script, appending an entry when the script is not configured yet.
func ApplyOverrides(scripts []config.ScriptConfig, script string, overrides settings.Values) []config.ScriptConfig {
	out := make([]config.ScriptConfig, 0, len(scripts)+1)
	found := false
	for _, sc := range scripts {
		if sc.Name == script {
			sc.Settings = settings.Values(sc.Settings).Merge(overrides)
			found = true
		}
		out = append(out, sc)
	}
	if !found {
		out = append(out, config.ScriptConfig{Name: script, Settings: overrides})
	}
	return out
}
