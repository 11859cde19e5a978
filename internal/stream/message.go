// Package stream broadcasts a running animation to websocket clients.
package stream

import (
	"encoding/json"

	"hypercastle/internal/animation"
	"hypercastle/internal/render"
)

const (
	TypeFrame    = "frame"
	TypeSnapshot = "snapshot"
)

// Message is the JSON envelope for everything written to a socket.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type GlyphUpdate struct {
	Cell  int    `json:"cell"`
	Glyph string `json:"glyph"`
}

type SizeUpdate struct {
	Cell int `json:"cell"`
	Size int `json:"size"`
}

// Frame carries the changes of one glyph pass plus the current class colors.
type Frame struct {
	Tick   uint32            `json:"tick"`
	Glyphs []GlyphUpdate     `json:"glyphs"`
	Sizes  []SizeUpdate      `json:"sizes"`
	Colors map[string]string `json:"colors"`
}

// Snapshot is the whole grid, sent to a client when it connects.
type Snapshot struct {
	Tick       uint32            `json:"tick"`
	Background string            `json:"background"`
	Width      int               `json:"width"`
	Height     int               `json:"height"`
	Classes    string            `json:"classes"`
	Rows       []string          `json:"rows"`
	Colors     map[string]string `json:"colors"`
}

func NewFrame(m *render.Model, events []animation.Event) Frame {
	f := Frame{
		Tick:   m.Tick,
		Glyphs: []GlyphUpdate{},
		Sizes:  []SizeUpdate{},
		Colors: colorsOf(m),
	}
	// A cell can be set twice in one pass; the last write wins.
	last := make(map[int]int)
	for _, ev := range events {
		switch ev.Kind {
		case animation.EventGlyph:
			if i, ok := last[ev.Cell]; ok {
				f.Glyphs[i].Glyph = string(rune(ev.Value))
				continue
			}
			last[ev.Cell] = len(f.Glyphs)
			f.Glyphs = append(f.Glyphs, GlyphUpdate{Cell: ev.Cell, Glyph: string(rune(ev.Value))})
		case animation.EventFontSize:
			f.Sizes = append(f.Sizes, SizeUpdate{Cell: ev.Cell, Size: ev.Value})
		}
	}
	return f
}

func NewSnapshot(m *render.Model) Snapshot {
	classes := make([]rune, len(m.Classes))
	for i, class := range m.Classes {
		if class == 0 {
			class = render.Blank
		}
		classes[i] = class
	}
	return Snapshot{
		Tick:       m.Tick,
		Background: m.Background.Hex(),
		Width:      render.GridWidth,
		Height:     render.GridHeight,
		Classes:    string(classes),
		Rows:       m.Rows(),
		Colors:     colorsOf(m),
	}
}

func colorsOf(m *render.Model) map[string]string {
	colors := make(map[string]string, len(m.Colors))
	for class, c := range m.Colors {
		colors[string(class)] = c.Hex()
	}
	return colors
}

func encode(kind string, payload any) ([]byte, error) {
	return json.Marshal(Message{Type: kind, Payload: payload})
}
