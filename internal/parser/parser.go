package parser

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"hypercastle/internal/logging"
	"hypercastle/internal/palette"
	"hypercastle/internal/render"
)

// Document is a parsed generated document. Warnings list the lenient
// degradations taken while parsing, such as defaulted script parameters.
type Document struct {
	Model    *render.Model
	Warnings []string
	// DefaultedParameters names the script parameters that were missing or not
	// integer literals and kept their zero value.
	DefaultedParameters []string
	SourceFile          string
}

var (
	ErrInvalidDocument        = errors.New("document is not well-formed markup")
	ErrMissingBackgroundColor = errors.New("stylesheet declares no background-color")
	ErrMissingGrid            = errors.New("glyph grid is missing or empty")
	ErrGridOverflow           = errors.New("glyph grid has more than 1024 cells")
)

// glyphParentValue is the attribute value marking the element whose children are
// the grid cells.
const glyphParentValue = "r"

func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	doc.SourceFile = path
	return doc, nil
}

// Parse builds an initialized render model from one document. The style, grid
// and script sections may appear in any order.
func Parse(content []byte) (*Document, error) {
	root, err := parseTree(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	var styles, scripts []string
	var glyphParent *node
	for _, child := range root.elements() {
		switch child.name {
		case "style":
			styles = append(styles, child.innerText())
		case "script":
			scripts = append(scripts, child.innerText())
		case "foreignObject":
			if glyphParent == nil {
				glyphParent = findGlyphParent(child, glyphParentValue)
			}
		}
	}

	style := extractStyle(parseStylesheet(strings.Join(styles, "\n")))
	if !style.hasBackground {
		return nil, ErrMissingBackgroundColor
	}

	grid, err := extractGrid(glyphParent)
	if err != nil {
		return nil, err
	}

	script := extractScript(strings.Join(scripts, "\n"))

	original := palette.OriginalChars(script.classIDs, grid.classes[:grid.count], grid.glyphs[:grid.count])
	set, err := palette.Build(script.params, original, script.anchors)
	if err != nil {
		return nil, fmt.Errorf("deriving palettes: %w", err)
	}

	model := &render.Model{
		Params:        script.params,
		ClassIDs:      script.classIDs,
		Anchors:       script.anchors,
		Background:    style.background,
		BaseColors:    style.baseColors,
		Animations:    style.animations,
		Keyframes:     style.keyframes,
		OriginalChars: set.Original,
		CharSet:       set.Chars,
		MainCharSet:   set.Main,
		Classes:       grid.classes,
		Glyphs:        grid.glyphs,
	}
	model.Initialize()

	doc := &Document{Model: model, DefaultedParameters: script.defaulted}
	doc.Warnings = append(doc.Warnings, script.warnings...)
	if style.background.IsZero() {
		doc.Warnings = append(doc.Warnings, "background-color could not be decoded; using transparent black")
	}
	if grid.count < render.CellCount {
		doc.Warnings = append(doc.Warnings, fmt.Sprintf("glyph grid has %d of %d cells; the rest are empty", grid.count, render.CellCount))
	}

	logger := logging.Logger()
	for _, warning := range doc.Warnings {
		logger.Warn("lenient parse", "detail", warning)
	}
	logger.Debug("parsed document",
		"mode", model.Params.Mode,
		"seed", model.Params.Seed,
		"classes", len(model.ClassIDs),
		"animations", len(model.Animations),
		"keyframes", len(model.Keyframes),
		"char_set", len(model.CharSet),
		"main_char_set", len(model.MainCharSet),
	)

	return doc, nil
}
