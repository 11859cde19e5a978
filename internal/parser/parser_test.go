package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"hypercastle/internal/color"
	"hypercastle/internal/palette"
	"hypercastle/internal/render"
)

func runes(values ...int) []rune {
	out := make([]rune, len(values))
	for i, v := range values {
		out[i] = rune(v)
	}
	return out
}

func TestParseFile_GoldenPalettes(t *testing.T) {
	tests := []struct {
		file     string
		mainSet  []rune
		charSet  []rune
		classIDs string
	}{
		{
			file:     "556.svg",
			mainSet:  runes(9053, 46, 9617, 9617, 9617, 46, 46, 10007, 9053),
			charSet:  runes(9053, 10007, 46, 46, 9617, 9617, 9617, 46, 9053),
			classIDs: "ihgfedcba",
		},
		{
			file:    "1122.svg",
			mainSet: runes(127956, 9552, 9552, 9552, 9552, 9552, 9552, 9552, 127956),
			charSet: runes(127956, 9552, 9552, 9552, 9552, 9552, 9552, 9552, 127956,
				9620, 9621, 9622, 9623, 9624, 9625, 9626, 9627, 9628, 9629),
		},
		{
			file:    "7034.svg",
			mainSet: runes(9820, 9816, 32, 32, 32, 9814, 9814, 9814, 9820),
			charSet: runes(9820, 9814, 9814, 9814, 32, 32, 32, 9816, 9820),
		},
		{
			file:    "8857.svg",
			mainSet: runes(9617, 9618, 9619, 9619, 9618, 9618, 9618, 9617),
			charSet: runes(9617, 9618, 9618, 9618, 9619, 9619, 9618, 9617,
				9610, 9611, 9612, 9613, 9614, 9615, 9616, 9617, 9618, 9619),
		},
		{
			file:    "7702.svg",
			mainSet: runes(9608, 9604, 9617, 9617, 9618, 9619, 9600, 9617, 9604),
			charSet: runes(9604, 9617, 9600, 9619, 9618, 9617, 9617, 9604, 9608),
		},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			doc, err := ParseFile(filepath.Join("testdata", tt.file))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			m := doc.Model
			if doc.SourceFile != filepath.Join("testdata", tt.file) {
				t.Fatalf("expected source file, got %q", doc.SourceFile)
			}
			if !slices.Equal(m.MainCharSet, tt.mainSet) {
				t.Fatalf("main char set mismatch:\nexpected %v\ngot      %v", tt.mainSet, m.MainCharSet)
			}
			if !slices.Equal(m.CharSet, tt.charSet) {
				t.Fatalf("char set mismatch:\nexpected %v\ngot      %v", tt.charSet, m.CharSet)
			}
			if !slices.Equal(m.CharSet[:len(m.OriginalChars)], m.OriginalChars) {
				t.Fatalf("expected char set to start with the original chars")
			}
			if tt.classIDs != "" && string(m.ClassIDs) != tt.classIDs {
				t.Fatalf("expected class ids %q, got %q", tt.classIDs, string(m.ClassIDs))
			}
			if len(m.Animations) == 0 || len(m.BaseColors) == 0 || len(m.Keyframes) == 0 {
				t.Fatalf("expected animations, base colors and keyframes")
			}
			if m.Background.IsZero() {
				t.Fatalf("expected a background color")
			}
		})
	}
}

func TestParseFile_Details(t *testing.T) {
	doc, err := ParseFile(filepath.Join("testdata", "556.svg"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	m := doc.Model

	t.Run("parameters", func(t *testing.T) {
		want := render.Params{Mode: 0, Seed: 4120, Direction: 1, Resource: 3.1234}
		if m.Params != want {
			t.Fatalf("expected %+v, got %+v", want, m.Params)
		}
		if len(doc.Warnings) != 0 {
			t.Fatalf("expected no warnings, got %v", doc.Warnings)
		}
	})

	t.Run("anchors", func(t *testing.T) {
		if !slices.Equal(m.Anchors, []int{9600, 9620, 9632}) {
			t.Fatalf("unexpected anchors %v", m.Anchors)
		}
	})

	t.Run("background", func(t *testing.T) {
		if m.Background != color.Opaque(7, 7, 9) {
			t.Fatalf("unexpected background %v", m.Background)
		}
	})

	t.Run("base colors", func(t *testing.T) {
		if len(m.BaseColors) != 9 {
			t.Fatalf("expected 9 base colors, got %d", len(m.BaseColors))
		}
		c, ok := m.Colors.Lookup('i')
		if !ok || c != color.Opaque(12, 34, 56) {
			t.Fatalf("unexpected color for i: %v %v", c, ok)
		}
	})

	t.Run("missing class is not in the color map", func(t *testing.T) {
		if _, ok := m.Colors.Lookup('r'); ok {
			t.Fatalf("expected no color for r")
		}
		if _, ok := m.Colors.Lookup('z'); ok {
			t.Fatalf("expected no color for z")
		}
	})

	t.Run("animations", func(t *testing.T) {
		if len(m.Animations) != 2 {
			t.Fatalf("expected 2 animations, got %d", len(m.Animations))
		}
		first := m.Animations[0]
		if first.Class != 'i' || first.Name != "x" || first.Duration != 4 || first.Delay != -2 || first.IterationCount != "infinite" {
			t.Fatalf("unexpected first animation %+v", first)
		}
		second := m.Animations[1]
		if second.Class != 'a' || second.Duration != 2 || second.Delay != 1 || second.Direction != "alternate" {
			t.Fatalf("unexpected second animation %+v", second)
		}
		if len(m.States) != 2 || m.States[1].CurrentTime != 2 || m.States[1].CurrentDelay != 1 {
			t.Fatalf("unexpected animation states %+v", m.States)
		}
	})

	t.Run("keyframes", func(t *testing.T) {
		var percentages []int
		for _, kf := range m.Keyframes {
			percentages = append(percentages, kf.Percentage)
		}
		if !slices.Equal(percentages, []int{0, 25, 50, 75, 100}) {
			t.Fatalf("unexpected percentages %v", percentages)
		}
		if m.Keyframes[2].Color != color.Opaque(7, 8, 9) || m.Keyframes[2].Track != "x" {
			t.Fatalf("unexpected keyframe %+v", m.Keyframes[2])
		}
	})

	t.Run("grid", func(t *testing.T) {
		if m.Glyphs[0] != 9053 || m.Classes[0] != 'i' {
			t.Fatalf("unexpected first cell %q %q", m.Glyphs[0], m.Classes[0])
		}
		if m.Classes[render.CellCount-1] == 0 {
			t.Fatalf("expected a full grid")
		}
		if m.Cells[0].Depth != 9 || m.Cells[8].Depth != 1 {
			t.Fatalf("unexpected depths %d %d", m.Cells[0].Depth, m.Cells[8].Depth)
		}
	})
}

func TestParseFile_SurrogatePairGlyph(t *testing.T) {
	doc, err := ParseFile(filepath.Join("testdata", "1122.svg"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if doc.Model.Glyphs[0] != 127956 {
		t.Fatalf("expected astral glyph, got %d", doc.Model.Glyphs[0])
	}
}

func TestParse_Idempotent(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "8857.svg"))
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	first, err := Parse(data)
	if err != nil {
		t.Fatalf("first parse: %v", err)
	}
	second, err := Parse(data)
	if err != nil {
		t.Fatalf("second parse: %v", err)
	}
	if !slices.Equal(first.Model.CharSet, second.Model.CharSet) || !slices.Equal(first.Model.MainCharSet, second.Model.MainCharSet) {
		t.Fatalf("expected identical palettes")
	}
	if first.Model.Glyphs != second.Model.Glyphs || first.Model.Classes != second.Model.Classes {
		t.Fatalf("expected identical grids")
	}
}

const (
	testStyle  = `.a{color:rgb(10, 20, 30)} .b{color:#ff0000} .r{background-color:rgb(1, 1, 1)}`
	testScript = `let MODE=0;let RESOURCE=20000;let DIRECTION=1;let SEED=100;const classIds=['a','b'],charSet=[];let uni=[9600];`
)

func gridCells(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			b.WriteString(`<p class="a">x</p>`)
		} else {
			b.WriteString(`<p class="b">y</p>`)
		}
	}
	return b.String()
}

func buildDocument(style, cells, script string) []byte {
	var b strings.Builder
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg">`)
	if style != "" {
		fmt.Fprintf(&b, "<style>%s</style>", style)
	}
	if cells != "" {
		fmt.Fprintf(&b, `<foreignObject><div class="r">%s</div></foreignObject>`, cells)
	}
	if script != "" {
		fmt.Fprintf(&b, "<script>%s</script>", script)
	}
	b.WriteString(`</svg>`)
	return []byte(b.String())
}

func TestParse(t *testing.T) {
	t.Run("minimal document", func(t *testing.T) {
		doc, err := Parse(buildDocument(testStyle, gridCells(render.CellCount), testScript))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(doc.Model.CharSet) != "xy" || string(doc.Model.MainCharSet) != "yx" {
			t.Fatalf("unexpected palettes %q %q", string(doc.Model.CharSet), string(doc.Model.MainCharSet))
		}
		if doc.Model.Params.Resource != 2 {
			t.Fatalf("expected resource 2, got %v", doc.Model.Params.Resource)
		}
	})

	t.Run("sections in any order", func(t *testing.T) {
		content := fmt.Sprintf(`<svg><script>%s</script><foreignObject><div class="r">%s</div></foreignObject><style>%s</style></svg>`,
			testScript, gridCells(render.CellCount), testStyle)
		doc, err := Parse([]byte(content))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(doc.Model.CharSet) != "xy" {
			t.Fatalf("unexpected char set %q", string(doc.Model.CharSet))
		}
	})

	t.Run("missing background", func(t *testing.T) {
		_, err := Parse(buildDocument(`.a{color:rgb(1, 2, 3)}`, gridCells(render.CellCount), testScript))
		if !errors.Is(err, ErrMissingBackgroundColor) {
			t.Fatalf("expected ErrMissingBackgroundColor, got %v", err)
		}
	})

	t.Run("missing style", func(t *testing.T) {
		_, err := Parse(buildDocument("", gridCells(render.CellCount), testScript))
		if !errors.Is(err, ErrMissingBackgroundColor) {
			t.Fatalf("expected ErrMissingBackgroundColor, got %v", err)
		}
	})

	t.Run("missing grid", func(t *testing.T) {
		_, err := Parse(buildDocument(testStyle, "", testScript))
		if !errors.Is(err, ErrMissingGrid) {
			t.Fatalf("expected ErrMissingGrid, got %v", err)
		}
	})

	t.Run("empty grid", func(t *testing.T) {
		content := fmt.Sprintf(`<svg><style>%s</style><foreignObject><div class="r"></div></foreignObject><script>%s</script></svg>`, testStyle, testScript)
		_, err := Parse([]byte(content))
		if !errors.Is(err, ErrMissingGrid) {
			t.Fatalf("expected ErrMissingGrid, got %v", err)
		}
	})

	t.Run("grid overflow", func(t *testing.T) {
		_, err := Parse(buildDocument(testStyle, gridCells(render.CellCount+1), testScript))
		if !errors.Is(err, ErrGridOverflow) {
			t.Fatalf("expected ErrGridOverflow, got %v", err)
		}
	})

	t.Run("short grid is zero filled", func(t *testing.T) {
		doc, err := Parse(buildDocument(testStyle, gridCells(10), testScript))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if doc.Model.Classes[10] != 0 || doc.Model.Glyphs[10] != 0 {
			t.Fatalf("expected zero cell after the grid")
		}
		if len(doc.Warnings) != 1 {
			t.Fatalf("expected one warning, got %v", doc.Warnings)
		}
	})

	t.Run("invalid markup", func(t *testing.T) {
		_, err := Parse([]byte("not markup at all"))
		if !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("expected ErrInvalidDocument, got %v", err)
		}
	})

	t.Run("class ids matching no cell", func(t *testing.T) {
		script := strings.Replace(testScript, "['a','b']", "['q']", 1)
		_, err := Parse(buildDocument(testStyle, gridCells(render.CellCount), script))
		if !errors.Is(err, palette.ErrEmptyPalette) {
			t.Fatalf("expected ErrEmptyPalette, got %v", err)
		}
	})

	t.Run("origin without anchors", func(t *testing.T) {
		script := `let MODE=3;let SEED=100;const classIds=['a','b'];let uni=[];`
		_, err := Parse(buildDocument(testStyle, gridCells(render.CellCount), script))
		if !errors.Is(err, palette.ErrEmptyAnchorList) {
			t.Fatalf("expected ErrEmptyAnchorList, got %v", err)
		}
	})

	t.Run("unparseable parameter defaults with a warning", func(t *testing.T) {
		script := strings.Replace(testScript, "let SEED=100;", "let SEED=abc;", 1)
		doc, err := Parse(buildDocument(testStyle, gridCells(render.CellCount), script))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if doc.Model.Params.Seed != 0 {
			t.Fatalf("expected default seed, got %d", doc.Model.Params.Seed)
		}
		if len(doc.Warnings) == 0 {
			t.Fatalf("expected a warning")
		}
		if !slices.Equal(doc.DefaultedParameters, []string{"SEED"}) {
			t.Fatalf("expected SEED to be defaulted, got %v", doc.DefaultedParameters)
		}
	})

	t.Run("malformed color degrades", func(t *testing.T) {
		style := `.a{color:rgb(1, 2)} .r{background-color:rgb(1, 1, 1)}`
		doc, err := Parse(buildDocument(style, gridCells(render.CellCount), testScript))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		c, ok := doc.Model.Colors.Lookup('a')
		if !ok || !c.IsZero() {
			t.Fatalf("expected zero color for a, got %v %v", c, ok)
		}
	})

	t.Run("blank and surrogate cells", func(t *testing.T) {
		cells := `<p class="a"></p><p class="b">` + "\U0001F3D4" + `</p><p class="a">  </p>`
		doc, err := Parse(buildDocument(testStyle, cells, testScript))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if doc.Model.Glyphs[0] != ' ' || doc.Model.Glyphs[1] != 0x1F3D4 || doc.Model.Glyphs[2] != ' ' {
			t.Fatalf("unexpected glyphs %v", doc.Model.Glyphs[:3])
		}
	})

	t.Run("whitespace glyphs are kept", func(t *testing.T) {
		cells := `<p class="a">` + "\u00a0" + `</p><p class="b">` + "\u3000" + `</p><p class="a"> </p>`
		doc, err := Parse(buildDocument(testStyle, cells, testScript))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if doc.Model.Glyphs[0] != 0x00A0 || doc.Model.Glyphs[1] != 0x3000 || doc.Model.Glyphs[2] != ' ' {
			t.Fatalf("unexpected glyphs %U", doc.Model.Glyphs[:3])
		}
		if !slices.Contains(doc.Model.OriginalChars, 0x3000) {
			t.Fatalf("expected ideographic space in original chars, got %U", doc.Model.OriginalChars)
		}
	})

	t.Run("regular expression with a quote", func(t *testing.T) {
		script := `let MODE=0;let RESOURCE=20000;let DIRECTION=1;let SEED=100;` +
			`let clean=s=>s.replace(/['"]/g,"");const classIds=['a','b'];let uni=[9600];`
		doc, err := Parse(buildDocument(testStyle, gridCells(render.CellCount), script))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(doc.Model.ClassIDs) != "ab" || !slices.Equal(doc.Model.Anchors, []int{9600}) {
			t.Fatalf("expected class ids and anchors after the regex, got %q %v", string(doc.Model.ClassIDs), doc.Model.Anchors)
		}
	})

	t.Run("text longer than a pair leaves the cell zero", func(t *testing.T) {
		cells := `<p class="a">abc</p><p class="b">xy</p>`
		doc, err := Parse(buildDocument(testStyle, cells, testScript))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if doc.Model.Glyphs[0] != 0 || doc.Model.Glyphs[1] != 'x' {
			t.Fatalf("unexpected glyphs %U", doc.Model.Glyphs[:2])
		}
	})
}

func TestTokenizeScript_RegexAndDivision(t *testing.T) {
	tests := []struct {
		src   string
		regex string
	}{
		{src: `x=s.match(/'/g);`, regex: `/'/g`},
		{src: `x=/[/"]+/;`, regex: `/[/"]+/`},
		{src: `x=a/b/c;`},
		{src: `x=(a)/2/'q';`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			var regexes []string
			for _, tok := range tokenizeScript(tt.src) {
				if tok.kind == tokenRegex {
					regexes = append(regexes, tok.text)
				}
			}
			if tt.regex == "" && len(regexes) != 0 {
				t.Fatalf("expected division only, got regexes %v", regexes)
			}
			if tt.regex != "" && (len(regexes) != 1 || regexes[0] != tt.regex) {
				t.Fatalf("expected regex %s, got %v", tt.regex, regexes)
			}
		})
	}
}
