// Package render holds the normalized model parsed from a generated document and
// mutated in place by the animation engine.
//
// A Model is owned by a single goroutine. Hosts that need concurrent access must
// funnel every mutation through one writer.
package render

import (
	"strings"

	"hypercastle/internal/color"
)

const (
	GridWidth  = 32
	GridHeight = 32
	CellCount  = GridWidth * GridHeight
)

// Blank is the glyph shown for empty cells.
const Blank rune = ' '

// Params are the generation parameters embedded in the document script.
type Params struct {
	Mode      int
	Seed      int
	Direction int
	Resource  float64
}

func (p Params) IsDayDream() bool    { return p.Mode == 1 || p.Mode == 3 }
func (p Params) IsTerraformed() bool { return p.Mode == 3 || p.Mode == 4 }
func (p Params) IsOrigin() bool      { return p.Mode == 3 || p.Mode == 4 }

// SpeedFactor divides the tick counter for depth cells in dream modes.
func (p Params) SpeedFactor() int {
	if p.Seed > 6500 {
		return 30
	}
	return 1
}

type BaseColor struct {
	Class rune
	Color color.Color
}

// Animation is one stylesheet animation declaration. Duration and Delay are in
// seconds.
type Animation struct {
	Class          rune
	Name           string
	Duration       float64
	Delay          float64
	Direction      string
	TimingFunction string
	FillMode       string
	IterationCount string
	PlayState      string
}

// Keyframe is one stop of a keyframes block. Track names the block it came from;
// color resolution scans every track as one list.
type Keyframe struct {
	Track      string
	Percentage int
	Color      color.Color
}

// AnimationState is the running timer of the Animation at the same index.
type AnimationState struct {
	Class        rune
	CurrentTime  float64
	CurrentDelay float64
}

// Cell is the per-cell context. ActiveClass starts equal to OriginalClass.
type Cell struct {
	Depth         int
	OriginalClass rune
	ActiveClass   rune
}

// ColorMap is the live class to color mapping. It only holds classes that some
// style rule colored, so every read must go through Lookup.
type ColorMap map[rune]color.Color

func (m ColorMap) Lookup(class rune) (color.Color, bool) {
	c, ok := m[class]
	return c, ok
}

type Model struct {
	Params     Params
	ClassIDs   []rune
	Anchors    []int
	Background color.Color
	BaseColors []BaseColor
	Animations []Animation
	Keyframes  []Keyframe

	OriginalChars []rune
	CharSet       []rune
	MainCharSet   []rune

	// Classes is the source of truth for each cell's label and never changes
	// after parsing.
	Classes [CellCount]rune
	Glyphs  [CellCount]rune
	Cells   [CellCount]Cell

	Colors ColorMap
	States []AnimationState
	Tick   uint32
}

// Initialize derives cell contexts, seeds the color map from the base colors and
// resets the animation timers.
func (m *Model) Initialize() {
	for i, class := range m.Classes {
		m.Cells[i] = Cell{
			Depth:         m.Depth(class),
			OriginalClass: class,
			ActiveClass:   class,
		}
	}

	m.Colors = make(ColorMap, len(m.ClassIDs))
	for _, base := range m.BaseColors {
		if _, exists := m.Colors[base.Class]; exists {
			continue
		}
		m.Colors[base.Class] = base.Color
	}

	m.States = make([]AnimationState, len(m.Animations))
	for i, anim := range m.Animations {
		m.States[i] = AnimationState{
			Class:        anim.Class,
			CurrentTime:  anim.Duration,
			CurrentDelay: anim.Delay,
		}
	}
}

// Depth is len(ClassIDs) minus the class position. Classes missing from the
// alphabet get len(ClassIDs)+1.
func (m *Model) Depth(class rune) int {
	return len(m.ClassIDs) - indexOf(m.ClassIDs, class)
}

// BaseColor returns the first base color declared for class.
func (m *Model) BaseColor(class rune) (color.Color, bool) {
	for _, base := range m.BaseColors {
		if base.Class == class {
			return base.Color, true
		}
	}
	return color.Color{}, false
}

// CellColor returns the live color of the cell's class.
func (m *Model) CellColor(index int) (color.Color, bool) {
	return m.Colors.Lookup(m.Classes[index])
}

// Rows renders the current glyphs as GridHeight lines. Zero glyphs print as
// blanks.
func (m *Model) Rows() []string {
	rows := make([]string, GridHeight)
	var b strings.Builder
	for row := 0; row < GridHeight; row++ {
		b.Reset()
		for col := 0; col < GridWidth; col++ {
			glyph := m.Glyphs[Index(row, col)]
			if glyph == 0 {
				glyph = Blank
			}
			b.WriteRune(glyph)
		}
		rows[row] = b.String()
	}
	return rows
}

func Row(index int) int { return index / GridWidth }
func Col(index int) int { return index % GridWidth }

func Index(row, col int) int { return row*GridWidth + col }

func indexOf(classes []rune, class rune) int {
	for i, c := range classes {
		if c == class {
			return i
		}
	}
	return -1
}
