package render

import (
	"testing"

	"hypercastle/internal/color"
)

func testModel() *Model {
	m := &Model{
		ClassIDs: []rune{'c', 'b', 'a'},
		BaseColors: []BaseColor{
			{Class: 'a', Color: color.Opaque(1, 1, 1)},
			{Class: 'b', Color: color.Opaque(2, 2, 2)},
			{Class: 'a', Color: color.Opaque(9, 9, 9)},
		},
		Animations: []Animation{
			{Class: 'b', Duration: 2, Delay: 0.5},
		},
	}
	for i := range m.Classes {
		m.Classes[i] = 'a'
		m.Glyphs[i] = 'x'
	}
	m.Classes[1] = 'b'
	m.Classes[2] = 'c'
	m.Classes[3] = 'z'
	return m
}

func TestInitialize(t *testing.T) {
	m := testModel()
	m.Initialize()

	t.Run("depth follows alphabet position", func(t *testing.T) {
		if m.Cells[2].Depth != 3 {
			t.Fatalf("expected depth 3 for first class, got %d", m.Cells[2].Depth)
		}
		if m.Cells[1].Depth != 2 {
			t.Fatalf("expected depth 2, got %d", m.Cells[1].Depth)
		}
		if m.Cells[0].Depth != 1 {
			t.Fatalf("expected depth 1 for last class, got %d", m.Cells[0].Depth)
		}
	})

	t.Run("unknown class sits below the alphabet", func(t *testing.T) {
		if m.Cells[3].Depth != 4 {
			t.Fatalf("expected depth 4, got %d", m.Cells[3].Depth)
		}
	})

	t.Run("active class starts as original", func(t *testing.T) {
		for i, cell := range m.Cells {
			if cell.ActiveClass != cell.OriginalClass || cell.OriginalClass != m.Classes[i] {
				t.Fatalf("cell %d: unexpected classes %+v", i, cell)
			}
		}
	})

	t.Run("first base color wins", func(t *testing.T) {
		c, ok := m.Colors.Lookup('a')
		if !ok || c != color.Opaque(1, 1, 1) {
			t.Fatalf("expected first color, got %v %v", c, ok)
		}
	})

	t.Run("uncolored class is absent", func(t *testing.T) {
		if _, ok := m.Colors.Lookup('c'); ok {
			t.Fatalf("expected no color for c")
		}
		if _, ok := m.CellColor(3); ok {
			t.Fatalf("expected no color for unknown class")
		}
		if len(m.Colors) != 2 {
			t.Fatalf("expected 2 colored classes, got %d", len(m.Colors))
		}
	})

	t.Run("animation timers start full", func(t *testing.T) {
		if len(m.States) != 1 {
			t.Fatalf("expected 1 state, got %d", len(m.States))
		}
		state := m.States[0]
		if state.Class != 'b' || state.CurrentTime != 2 || state.CurrentDelay != 0.5 {
			t.Fatalf("unexpected state %+v", state)
		}
	})
}

func TestBaseColor(t *testing.T) {
	m := testModel()
	if c, ok := m.BaseColor('b'); !ok || c != color.Opaque(2, 2, 2) {
		t.Fatalf("expected base color for b, got %v %v", c, ok)
	}
	if _, ok := m.BaseColor('q'); ok {
		t.Fatalf("expected missing base color")
	}
}

func TestParams(t *testing.T) {
	tests := []struct {
		mode        int
		dayDream    bool
		terraformed bool
	}{
		{0, false, false},
		{1, true, false},
		{2, false, false},
		{3, true, true},
		{4, false, true},
	}
	for _, tt := range tests {
		p := Params{Mode: tt.mode}
		if p.IsDayDream() != tt.dayDream {
			t.Fatalf("mode %d: expected daydream %v", tt.mode, tt.dayDream)
		}
		if p.IsTerraformed() != tt.terraformed || p.IsOrigin() != tt.terraformed {
			t.Fatalf("mode %d: expected terraformed/origin %v", tt.mode, tt.terraformed)
		}
	}
	if (Params{Seed: 6500}).SpeedFactor() != 1 {
		t.Fatalf("expected speed factor 1 at 6500")
	}
	if (Params{Seed: 6501}).SpeedFactor() != 30 {
		t.Fatalf("expected speed factor 30 above 6500")
	}
}

func TestRows(t *testing.T) {
	m := testModel()
	m.Glyphs[Index(1, 2)] = 0
	rows := m.Rows()
	if len(rows) != GridHeight {
		t.Fatalf("expected %d rows, got %d", GridHeight, len(rows))
	}
	if []rune(rows[1])[2] != Blank {
		t.Fatalf("expected zero glyph to render blank, got %q", rows[1])
	}
	if Row(33) != 1 || Col(33) != 1 || Index(1, 1) != 33 {
		t.Fatalf("unexpected index helpers")
	}
}
