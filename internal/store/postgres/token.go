package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hypercastle/internal/store"
)

func (c *Client) UpsertToken(ctx context.Context, t store.TokenInput) error {
	colorsJSON, err := json.Marshal(t.BaseColors)
	if err != nil {
		return fmt.Errorf("marshaling base colors: %w", err)
	}

	query := `
INSERT INTO tokens (id, source_file, source_hash, mode, seed, direction, resource,
    class_ids, background, main_char_set, char_set, base_colors, last_ingested)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
    COALESCE($10, '{}'::integer[]), COALESCE($11, '{}'::integer[]), $12, now())
ON CONFLICT (id) DO UPDATE SET
    source_file = EXCLUDED.source_file,
    source_hash = EXCLUDED.source_hash,
    mode = EXCLUDED.mode,
    seed = EXCLUDED.seed,
    direction = EXCLUDED.direction,
    resource = EXCLUDED.resource,
    class_ids = EXCLUDED.class_ids,
    background = EXCLUDED.background,
    main_char_set = EXCLUDED.main_char_set,
    char_set = EXCLUDED.char_set,
    base_colors = EXCLUDED.base_colors,
    last_ingested = now()
`

	_, err = c.pool.Exec(ctx, query,
		t.ID,
		t.SourceFile,
		t.SourceHash,
		t.Mode,
		t.Seed,
		t.Direction,
		t.Resource,
		t.ClassIDs,
		t.Background,
		t.MainCharSet,
		t.CharSet,
		colorsJSON,
	)
	if err != nil {
		return fmt.Errorf("upserting token %s: %w", t.ID, err)
	}
	return nil
}

func (c *Client) GetToken(ctx context.Context, id string) (*store.Token, error) {
	query := `
SELECT id, source_file, source_hash, mode, seed, direction, resource,
    class_ids, background, main_char_set, char_set, base_colors, last_ingested
FROM tokens
WHERE id = $1
`

	var t store.Token
	var colorsBytes []byte
	err := c.pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.SourceFile,
		&t.SourceHash,
		&t.Mode,
		&t.Seed,
		&t.Direction,
		&t.Resource,
		&t.ClassIDs,
		&t.Background,
		&t.MainCharSet,
		&t.CharSet,
		&colorsBytes,
		&t.LastIngested,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting token: %w", err)
	}

	if len(colorsBytes) > 0 {
		if err := json.Unmarshal(colorsBytes, &t.BaseColors); err != nil {
			return nil, fmt.Errorf("unmarshaling base colors: %w", err)
		}
	}
	if t.BaseColors == nil {
		t.BaseColors = map[string]string{}
	}
	return &t, nil
}

func (c *Client) ListTokens(ctx context.Context, mode int) ([]store.TokenSummary, error) {
	query := `
SELECT id, mode, seed, source_file
FROM tokens
WHERE ($1 < 0 OR mode = $1)
ORDER BY id
`
	return c.querySummaries(ctx, "listing tokens", query, mode)
}

func (c *Client) FindTokensByGlyph(ctx context.Context, glyph rune) ([]store.TokenSummary, error) {
	query := `
SELECT id, mode, seed, source_file
FROM tokens
WHERE char_set @> ARRAY[$1::integer] OR main_char_set @> ARRAY[$1::integer]
ORDER BY id
`
	return c.querySummaries(ctx, "finding tokens by glyph", query, int32(glyph))
}

func (c *Client) querySummaries(ctx context.Context, action, query string, args ...any) ([]store.TokenSummary, error) {
	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	defer rows.Close()

	var summaries []store.TokenSummary
	for rows.Next() {
		var s store.TokenSummary
		if err := rows.Scan(&s.ID, &s.Mode, &s.Seed, &s.SourceFile); err != nil {
			return nil, fmt.Errorf("scanning token summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating token summaries: %w", err)
	}

	if summaries == nil {
		summaries = []store.TokenSummary{}
	}

	return summaries, nil
}

func (c *Client) RemoveStaleTokens(ctx context.Context, currentSourceFiles []string) (int64, error) {
	if currentSourceFiles == nil {
		currentSourceFiles = []string{}
	}
	tag, err := c.pool.Exec(ctx,
		"DELETE FROM tokens WHERE NOT (source_file = ANY($1))",
		currentSourceFiles,
	)
	if err != nil {
		return 0, fmt.Errorf("removing stale tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (c *Client) GetSourceHashes(ctx context.Context) (map[string]string, error) {
	rows, err := c.pool.Query(ctx, "SELECT source_file, source_hash FROM tokens")
	if err != nil {
		return nil, fmt.Errorf("query source hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var sourceFile, sourceHash string
		if err := rows.Scan(&sourceFile, &sourceHash); err != nil {
			return nil, fmt.Errorf("scanning source hash: %w", err)
		}
		hashes[sourceFile] = sourceHash
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating source hashes: %w", err)
	}

	return hashes, nil
}
