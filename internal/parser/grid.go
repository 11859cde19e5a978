package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"hypercastle/internal/render"
)

// node is a minimal element tree. parts keeps text and child elements in
// document order so innerText matches the concatenation a browser would show.
type node struct {
	name  string
	attrs []xml.Attr
	parts []part
}

type part struct {
	text string
	elem *node
}

func (n *node) elements() []*node {
	var out []*node
	for _, p := range n.parts {
		if p.elem != nil {
			out = append(out, p.elem)
		}
	}
	return out
}

func (n *node) innerText() string {
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *node) writeText(b *strings.Builder) {
	for _, p := range n.parts {
		if p.elem != nil {
			p.elem.writeText(b)
			continue
		}
		b.WriteString(p.text)
	}
}

// parseTree decodes content into an element tree rooted at the first element.
// The decoder is lenient about HTML entities and unclosed void elements that show
// up inside foreignObject markup.
func parseTree(content []byte) (*node, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))
	decoder.Strict = false
	decoder.AutoClose = xml.HTMLAutoClose
	decoder.Entity = xml.HTMLEntity

	var root *node
	var stack []*node
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local, attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) == 0 {
				if root != nil {
					continue
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.parts = append(parent.parts, part{elem: n})
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.parts = append(parent.parts, part{text: string(t)})
			}
		}
	}
	if root == nil {
		return nil, errors.New("no root element")
	}
	return root, nil
}

// findGlyphParent returns the first element, depth first, carrying an attribute
// whose value is exactly value.
func findGlyphParent(n *node, value string) *node {
	for _, attr := range n.attrs {
		if attr.Value == value {
			return n
		}
	}
	for _, child := range n.elements() {
		if found := findGlyphParent(child, value); found != nil {
			return found
		}
	}
	return nil
}

// gridResult is what the glyph grid contributes to the model. Cells past count
// stay zero.
type gridResult struct {
	classes [render.CellCount]rune
	glyphs  [render.CellCount]rune
	count   int
}

// extractGrid reads one cell per child element of the glyph parent: the class
// is the first character of the child's first attribute value and the glyph is
// its text.
func extractGrid(parent *node) (gridResult, error) {
	var out gridResult
	if parent == nil {
		return out, ErrMissingGrid
	}
	cells := parent.elements()
	if len(cells) == 0 {
		return out, ErrMissingGrid
	}
	if len(cells) > render.CellCount {
		return out, ErrGridOverflow
	}
	for i, cell := range cells {
		if len(cell.attrs) > 0 && cell.attrs[0].Value != "" {
			out.classes[i], _ = utf8.DecodeRuneInString(cell.attrs[0].Value)
		}
		out.glyphs[i] = decodeGlyph(cell.innerText())
	}
	out.count = len(cells)
	return out, nil
}

// decodeGlyph maps cell text to one code point by its UTF-16 length: no units
// is a blank, one unit is taken as is and two units are a surrogate pair. A pair
// that does not decode keeps its first unit. Longer text leaves the cell 0.
func decodeGlyph(text string) rune {
	units := utf16.Encode([]rune(text))
	switch len(units) {
	case 0:
		return render.Blank
	case 1:
		return rune(units[0])
	case 2:
		if r := utf16.DecodeRune(rune(units[0]), rune(units[1])); r != unicode.ReplacementChar {
			return r
		}
		return rune(units[0])
	}
	return 0
}
