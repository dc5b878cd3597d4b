package pauseattopbottom

import (
	"log/slog"

	"git.home.luguber.info/inful/gcodepost/internal/logfields"
	"git.home.luguber.info/inful/gcodepost/internal/settings"
)

// Stats summarizes one Execute call.
type Stats struct {
	Dialect Dialect
	Points  []InsertionPoint
	Pauses  int
}

// PausesInserted implements transforms.PauseReporter.
func (s Stats) PausesInserted() int { return s.Pauses }

// DialectName implements transforms.PauseReporter.
func (s Stats) DialectName() string { return s.Dialect.String() }

// ConfigFrom reads the six placement switches from resolved settings.
func ConfigFrom(lookup settings.Lookup) Config {
	return Config{
		PauseInBottomLayer:    lookup.Bool(KeyPauseInBottomLayer),
		PauseBeforeSkinBottom: lookup.Bool(KeyPauseBeforeSkinBottom),
		PauseAfterSkinBottom:  lookup.Bool(KeyPauseAfterSkinBottom),
		PauseInTopLayer:       lookup.Bool(KeyPauseInTopLayer),
		PauseBeforeSkinTop:    lookup.Bool(KeyPauseBeforeSkinTop),
		PauseAfterSkinTop:     lookup.Bool(KeyPauseAfterSkinTop),
	}
}

// ParkFrom reads the parking position and retract switch.
func ParkFrom(lookup settings.Lookup) Park {
	return Park{
		X:       lookup.Float(KeyHeadParkX),
		Y:       lookup.Float(KeyHeadParkY),
		Retract: lookup.Bool(KeyRetractBeforePause),
	}
}

// Execute inserts the configured pauses into layers and returns them. It
// never fails: documents without layer or skin markers come back unchanged.
// Running it twice inserts the pauses twice.
func Execute(layers []string, lookup settings.Lookup, logger *slog.Logger) ([]string, Stats) {
	if logger == nil {
		logger = slog.Default()
	}

	dialect, points := Scan(layers, ConfigFrom(lookup), logger)
	stats := Stats{Dialect: dialect, Points: points, Pauses: len(points)}
	if len(points) == 0 {
		logger.Debug("No pause points found", logfields.Layers(len(layers)))
		return layers, stats
	}

	park := ParkFrom(lookup)
	insertions := make([]Insertion, 0, len(points))
	for _, p := range points {
		insertions = append(insertions, Insertion{
			Point: p,
			Lines: Synthesize(dialect, park, p.State),
		})
	}

	layers = Splice(layers, insertions)
	logger.Info("Pauses inserted",
		logfields.Pauses(stats.Pauses),
		logfields.Dialect(dialect.String()))
	return layers, stats
}
