package postgres

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	// All statements run in one implicit transaction and are idempotent.
	ddl := `
CREATE TABLE IF NOT EXISTS tokens (
    id             TEXT PRIMARY KEY,
    source_file    TEXT NOT NULL,
    source_hash    TEXT NOT NULL,
    mode           INTEGER NOT NULL,
    seed           INTEGER NOT NULL,
    direction      INTEGER NOT NULL,
    resource       DOUBLE PRECISION NOT NULL,
    class_ids      TEXT NOT NULL DEFAULT '',
    background     TEXT NOT NULL DEFAULT '',
    main_char_set  INTEGER[] NOT NULL DEFAULT '{}',
    char_set       INTEGER[] NOT NULL DEFAULT '{}',
    base_colors    JSONB NOT NULL DEFAULT '{}',
    last_ingested  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_tokens_source_file ON tokens (source_file);
CREATE INDEX IF NOT EXISTS idx_tokens_mode ON tokens (mode);
CREATE INDEX IF NOT EXISTS idx_tokens_char_set ON tokens USING GIN (char_set);
`
	_, err := c.pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
