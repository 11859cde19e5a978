package ingest

import (
	"hypercastle/internal/parser"
	"hypercastle/internal/store"
)

// TokenInput flattens a parsed document into the row the store persists.
func TokenInput(id, sourceFile, hash string, doc *parser.Document) store.TokenInput {
	m := doc.Model
	colors := make(map[string]string, len(m.BaseColors))
	for _, base := range m.BaseColors {
		key := string(base.Class)
		if _, exists := colors[key]; exists {
			continue
		}
		colors[key] = base.Color.Hex()
	}

	return store.TokenInput{
		ID:          id,
		SourceFile:  sourceFile,
		SourceHash:  hash,
		Mode:        m.Params.Mode,
		Seed:        m.Params.Seed,
		Direction:   m.Params.Direction,
		Resource:    m.Params.Resource,
		ClassIDs:    string(m.ClassIDs),
		Background:  m.Background.Hex(),
		MainCharSet: codePoints(m.MainCharSet),
		CharSet:     codePoints(m.CharSet),
		BaseColors:  colors,
	}
}

func codePoints(runes []rune) []int32 {
	out := make([]int32, len(runes))
	copy(out, runes)
	return out
}
