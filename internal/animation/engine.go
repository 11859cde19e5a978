// Package animation advances a parsed render model tick by tick: keyframe colors
// are resolved per animation timer and glyphs are recomputed per cell from the
// palettes. The engine does not render; it reports what changed as events.
package animation

import (
	"math"
	"math/rand/v2"

	"hypercastle/internal/render"
)

// RandomSource supplies uniform values in [0, 1).
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns a PCG source. A zero seed draws a random one.
func NewRandomSource(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

type EventKind int

const (
	// EventGlyph sets the cell's glyph to Value.
	EventGlyph EventKind = iota
	// EventFontSize sets the cell's rendered size to Value.
	EventFontSize
)

func (k EventKind) String() string {
	switch k {
	case EventGlyph:
		return "glyph"
	case EventFontSize:
		return "size"
	}
	return "unknown"
}

type Event struct {
	Kind  EventKind
	Cell  int
	Value int
}

const (
	fontSizeChance    = 0.005
	fontSizeSeedFloor = 5000
	fontSizeBase      = 3
	fontSizeSpread    = 34
	slowDriftSeed     = 8000
	blankingClass     = 'j'
)

// Engine mutates one model. It is not safe for concurrent use; callers drive it
// from a single goroutine.
type Engine struct {
	model *render.Model
	rand  RandomSource
}

func NewEngine(model *render.Model, random RandomSource) *Engine {
	if random == nil {
		random = NewRandomSource(0)
	}
	return &Engine{model: model, rand: random}
}

func (e *Engine) Model() *render.Model { return e.model }

// Tick runs both passes with delta seconds elapsed and returns the glyph pass
// events.
func (e *Engine) Tick(delta float64) []Event {
	e.AdvanceColors(delta)
	return e.MutateGlyphs()
}

// AdvanceColors moves every animation timer by delta seconds and copies the
// matching keyframe color into the color map. Timers still inside their delay
// only count the delay down.
func (e *Engine) AdvanceColors(delta float64) {
	m := e.model
	for i := range m.States {
		state := &m.States[i]
		if state.CurrentDelay > 0 {
			state.CurrentDelay -= delta
			continue
		}
		duration := m.Animations[i].Duration
		if duration <= 0 {
			continue
		}

		state.CurrentTime = math.Mod(state.CurrentTime+duration-delta, duration)
		if state.CurrentTime < 0 {
			state.CurrentTime += duration
		}
		ratio := int(math.Floor(state.CurrentTime / duration * 100))

		for _, kf := range m.Keyframes {
			if kf.Percentage == ratio {
				m.Colors[state.Class] = kf.Color
				break
			}
		}
	}
}

// MutateGlyphs runs one glyph pass over the grid and advances the tick counter.
// Cells are scanned with x as the grid row and y as the column; the arithmetic
// is done in float32 so the floors match frames rendered by the token contract.
func (e *Engine) MutateGlyphs() []Event {
	m := e.model
	p := m.Params
	tick := m.Tick
	mainSet := m.MainCharSet
	charSet := m.CharSet
	var events []Event

	set := func(index int, glyph rune) {
		m.Glyphs[index] = glyph
		events = append(events, Event{Kind: EventGlyph, Cell: index, Value: int(glyph)})
	}

	dream := p.IsDayDream() || p.IsTerraformed()
	if p.Mode != 0 && !dream {
		m.Tick++
		return nil
	}

	for x := 0; x < render.GridHeight; x++ {
		for y := 0; y < render.GridWidth; y++ {
			index := y + render.GridWidth*x
			cell := m.Cells[index]
			h := cell.Depth
			fx, fy, fh := float32(x), float32(y), float32(h)

			if p.Mode == 0 {
				if float64(h) > 6-p.Resource {
					i := floor(0.25*float32(tick) + (fh + 0.5*fx + 0.1*float32(p.Direction)*fy))
					set(index, mainSet[wrap(i, len(mainSet))])
				}
				continue
			}

			if h == 0 {
				var i int
				if p.Seed < slowDriftSeed {
					i = floor(float32(tick)/1e3 + 0.05*fx + 0.005*fy)
				} else {
					i = floor(float32(tick)/2 + 0.05*fx)
				}
				set(index, mainSet[i%len(mainSet)])
				continue
			}

			i := int(tick/uint32(p.SpeedFactor())) + x + h
			set(index, charSet[i%len(charSet)])

			if e.rand.Float64() < fontSizeChance && p.Seed > fontSizeSeedFloor {
				events = append(events, Event{
					Kind:  EventFontSize,
					Cell:  index,
					Value: fontSizeBase + int(tick%fontSizeSpread),
				})
			}

			if cell.OriginalClass == blankingClass || cell.ActiveClass == blankingClass {
				set(index, render.Blank)
			}
		}
	}
	m.Tick++
	return events
}

// wrap is i modulo n, kept non-negative for negative directions.
func wrap(i, n int) int {
	return (i%n + n) % n
}

func floor(v float32) int {
	return int(math.Floor(float64(v)))
}
