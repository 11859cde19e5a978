// Package palette derives the glyph palettes the animation engine draws from.
package palette

import (
	"errors"
	"fmt"
	"slices"

	"hypercastle/internal/render"
)

// RunLength is the number of consecutive code points appended per anchor.
const RunLength = 10

var (
	ErrEmptyPalette     = errors.New("palette is empty")
	ErrEmptyAnchorList  = errors.New("unicode anchor list is empty")
	ErrAnchorOutOfRange = errors.New("unicode anchor index out of range")
)

// Set holds the derived palettes. Chars always starts with Original.
type Set struct {
	Original []rune
	Chars    []rune
	Main     []rune
}

// OriginalChars picks, for each class id in order, the glyph of the first cell
// labelled with it. Class ids that label no cell are skipped.
func OriginalChars(classIDs []rune, classes, glyphs []rune) []rune {
	original := make([]rune, 0, len(classIDs))
	for _, id := range classIDs {
		index := slices.Index(classes, id)
		if index < 0 {
			continue
		}
		original = append(original, glyphs[index])
	}
	return original
}

// Build derives Chars and Main from the original characters, the generation
// parameters and the unicode anchors:
//
//	origin, seed > 9000   one run per anchor
//	origin, otherwise     len(anchors) runs at anchors[seed % len(anchors)]
//	seed > 9970           one run per anchor
//	seed > 5000           one run at anchors[seed % 3]
//
// Main is Chars when seed > 9950 and the reversed original characters otherwise.
func Build(params render.Params, original []rune, anchors []int) (Set, error) {
	chars := make([]rune, 0, len(original)+len(anchors)*RunLength)
	chars = append(chars, original...)

	switch {
	case params.IsOrigin():
		if params.Seed > 9000 {
			for _, anchor := range anchors {
				chars = appendRun(chars, anchor)
			}
			break
		}
		if len(anchors) == 0 {
			return Set{}, fmt.Errorf("origin seed %d: %w", params.Seed, ErrEmptyAnchorList)
		}
		// The same run repeats once per anchor.
		start := anchors[mod(params.Seed, len(anchors))]
		for range anchors {
			chars = appendRun(chars, start)
		}
	case params.Seed > 9970:
		for _, anchor := range anchors {
			chars = appendRun(chars, anchor)
		}
	case params.Seed > 5000:
		if len(anchors) == 0 {
			return Set{}, fmt.Errorf("seed %d: %w", params.Seed, ErrEmptyAnchorList)
		}
		index := mod(params.Seed, 3)
		if index >= len(anchors) {
			return Set{}, fmt.Errorf("seed %d needs anchor %d of %d: %w", params.Seed, index, len(anchors), ErrAnchorOutOfRange)
		}
		chars = appendRun(chars, anchors[index])
	}

	var main []rune
	if params.Seed > 9950 {
		main = slices.Clone(chars)
	} else {
		main = slices.Clone(original)
		slices.Reverse(main)
	}

	if len(chars) == 0 || len(main) == 0 {
		return Set{}, ErrEmptyPalette
	}

	return Set{
		Original: slices.Clone(original),
		Chars:    chars,
		Main:     main,
	}, nil
}

func appendRun(chars []rune, anchor int) []rune {
	for cp := anchor; cp < anchor+RunLength; cp++ {
		chars = append(chars, rune(cp))
	}
	return chars
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
