package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyJobID      = "job_id"
	KeyJobOutcome = "job_outcome"
	KeyScript     = "script"
	KeyStage      = "stage"
	KeyFile       = "file"
	KeyPath       = "path"
	KeyLayer      = "layer"
	KeyLine       = "line"
	KeyLayers     = "layers"
	KeyDialect    = "dialect"
	KeyPauses     = "pauses"
	KeyPosition   = "position"
	KeyDurationMS = "duration_ms"
	KeyAddr       = "addr"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func JobID(id string) slog.Attr       { return slog.String(KeyJobID, id) }
func JobOutcome(o string) slog.Attr   { return slog.String(KeyJobOutcome, o) }
func Script(name string) slog.Attr    { return slog.String(KeyScript, name) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Layer(i int) slog.Attr           { return slog.Int(KeyLayer, i) }
func Line(i int) slog.Attr            { return slog.Int(KeyLine, i) }
func Layers(n int) slog.Attr          { return slog.Int(KeyLayers, n) }
func Dialect(d string) slog.Attr      { return slog.String(KeyDialect, d) }
func Pauses(n int) slog.Attr          { return slog.Int(KeyPauses, n) }
func Position(p string) slog.Attr     { return slog.String(KeyPosition, p) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Addr(a string) slog.Attr         { return slog.String(KeyAddr, a) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
