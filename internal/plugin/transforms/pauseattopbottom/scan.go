package pauseattopbottom

import (
	"log/slog"

	"git.home.luguber.info/inful/gcodepost/internal/gcode"
	"git.home.luguber.info/inful/gcodepost/internal/logfields"
)

// Dialect is the controller command convention of the document.
type Dialect int

const (
	// DialectLegacy controllers need explicit parking moves around a pause.
	DialectLegacy Dialect = iota
	// DialectGriffin controllers park the head themselves on M0.
	DialectGriffin
)

// String returns the lower-case dialect name.
func (d Dialect) String() string {
	if d == DialectGriffin {
		return "griffin"
	}
	return "legacy"
}

// Region says which pass found an insertion point.
type Region string

const (
	RegionBottom Region = "bottom"
	RegionTop    Region = "top"
)

// Edge says whether a point sits before the skin region or after it.
type Edge string

const (
	EdgeBeforeSkin Edge = "before_skin"
	EdgeAfterSkin  Edge = "after_skin"
)

// InsertionPoint is a place to splice a pause: before line Line of layer
// block Layer, with the toolhead state seen when the scan reached it.
type InsertionPoint struct {
	Layer  int
	Line   int
	State  gcode.Toolhead
	Region Region
	Edge   Edge
}

// Config selects where pauses go.
type Config struct {
	PauseInBottomLayer    bool
	PauseBeforeSkinBottom bool
	PauseAfterSkinBottom  bool
	PauseInTopLayer       bool
	PauseBeforeSkinTop    bool
	PauseAfterSkinTop     bool
}

// Any reports whether any pause can be inserted at all.
func (c Config) Any() bool {
	return (c.PauseInBottomLayer && (c.PauseBeforeSkinBottom || c.PauseAfterSkinBottom)) ||
		(c.PauseInTopLayer && (c.PauseBeforeSkinTop || c.PauseAfterSkinTop))
}

// scanner carries the toolhead state across both passes; the position is
// never reset between layers or between passes.
type scanner struct {
	cfg     Config
	logger  *slog.Logger
	head    gcode.Toolhead
	dialect Dialect
	points  []InsertionPoint
}

// Scan walks the layer blocks and returns the document dialect and the
// insertion points in discovery order: bottom layer first, then the top
// layer.
func Scan(layers []string, cfg Config, logger *slog.Logger) (Dialect, []InsertionPoint) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &scanner{cfg: cfg, logger: logger}

	s.scanBottom(layers)
	if cfg.PauseInTopLayer {
		s.scanTop(layers)
	}

	return s.dialect, s.points
}

func (s *scanner) record(layer, line int, region Region, edge Edge) {
	s.points = append(s.points, InsertionPoint{
		Layer:  layer,
		Line:   line,
		State:  s.head,
		Region: region,
		Edge:   edge,
	})
	s.logger.Debug("Pause point found",
		logfields.Layer(layer),
		logfields.Line(line),
		slog.String("region", string(region)),
		slog.String("edge", string(edge)),
		logfields.Position(s.head.String()))
}

// scanBottom visits every line of every layer for dialect detection and
// position tracking. Inside the layer that opens with ";LAYER:0" it marks
// the skin region and stops reading that layer at the first comment after
// the skin starts.
func (s *scanner) scanBottom(layers []string) {
	before := s.cfg.PauseInBottomLayer && s.cfg.PauseBeforeSkinBottom
	after := s.cfg.PauseInBottomLayer && s.cfg.PauseAfterSkinBottom

	for layerIdx, block := range layers {
		inBottom, inSkin := false, false

		for lineIdx, text := range gcode.SplitLines(block) {
			line := gcode.Classify(text)
			if line.IsGriffin() {
				s.dialect = DialectGriffin
			}
			s.head.Track(line)

			if line.IsLayerZero() {
				inBottom = true
				continue
			}
			if !inBottom {
				continue
			}

			if line.IsSkin() {
				inSkin = true
				if before {
					s.record(layerIdx, lineIdx, RegionBottom, EdgeBeforeSkin)
				}
				continue
			}

			if inSkin && line.IsComment() {
				if after {
					s.record(layerIdx, lineIdx, RegionBottom, EdgeAfterSkin)
				}
				break
			}
		}
	}
}

// scanTop targets the last layer block containing a layer marker (block 0
// when none does) and records skin edges there. Unlike the bottom pass it
// keeps going after an after-skin point, so every comment line following the
// skin start gets one.
func (s *scanner) scanTop(layers []string) {
	if len(layers) == 0 {
		return
	}

	target := 0
	for i := len(layers) - 1; i >= 0; i-- {
		target = i
		if gcode.HasLayerMarker(layers[i]) {
			break
		}
	}

	lines := gcode.SplitLines(layers[target])
	s.logger.Debug("Top layer selected", logfields.Layer(target), slog.Int("lines", len(lines)))

	inSkin := false
	for lineIdx, text := range lines {
		line := gcode.Classify(text)
		s.head.Track(line)

		// A single-layer document has no separate top layer marker.
		if line.IsLayerZero() {
			continue
		}

		if line.IsSkin() {
			inSkin = true
			if s.cfg.PauseBeforeSkinTop {
				s.record(target, lineIdx, RegionTop, EdgeBeforeSkin)
			}
			continue
		}

		if inSkin && line.IsComment() && s.cfg.PauseAfterSkinTop {
			s.record(target, lineIdx, RegionTop, EdgeAfterSkin)
		}
	}
}
