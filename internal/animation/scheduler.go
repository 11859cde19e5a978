package animation

import "time"

// DefaultGlyphInterval is how often a glyph pass runs when the host does not
// configure one.
const DefaultGlyphInterval = 500 * time.Millisecond

// Scheduler paces an Engine the way an interactive front end does: colors move
// every frame, glyphs only when the glyph timer runs out.
type Scheduler struct {
	engine   *Engine
	interval float64
	timer    float64
	passes   uint64
}

func NewScheduler(engine *Engine, glyphInterval time.Duration) *Scheduler {
	if glyphInterval <= 0 {
		glyphInterval = DefaultGlyphInterval
	}
	s := &Scheduler{engine: engine, interval: glyphInterval.Seconds()}
	s.timer = s.interval
	return s
}

func (s *Scheduler) Engine() *Engine { return s.engine }

// Passes is the number of glyph passes run so far.
func (s *Scheduler) Passes() uint64 { return s.passes }

// Advance resolves colors for delta seconds and, when the glyph timer drops
// below zero, runs one glyph pass and resets the timer. ran reports whether the
// glyph pass happened.
func (s *Scheduler) Advance(delta float64) (events []Event, ran bool) {
	s.engine.AdvanceColors(delta)
	s.timer -= delta
	if s.timer >= 0 {
		return nil, false
	}
	events = s.engine.MutateGlyphs()
	s.timer = s.interval
	s.passes++
	return events, true
}
