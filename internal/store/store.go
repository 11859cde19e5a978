package store

import "context"

// Store persists ingested tokens. Each token is keyed by its id, the stem of the
// source document file name.
type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	UpsertToken(ctx context.Context, t TokenInput) error
	RemoveStaleTokens(ctx context.Context, currentSourceFiles []string) (int64, error)
	GetSourceHashes(ctx context.Context) (map[string]string, error)

	GetToken(ctx context.Context, id string) (*Token, error)
	ListTokens(ctx context.Context, mode int) ([]TokenSummary, error)
	FindTokensByGlyph(ctx context.Context, glyph rune) ([]TokenSummary, error)

	RunSQL(ctx context.Context, query string, args ...any) ([]map[string]any, error)
}

// AnyMode disables the mode filter of ListTokens.
const AnyMode = -1
