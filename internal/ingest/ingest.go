package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"hypercastle/internal/config"
	"hypercastle/internal/logging"
	"hypercastle/internal/parser"
	"hypercastle/internal/store"
)

// Store is the subset of store.Store the ingester writes through.
type Store interface {
	EnsureSchema(ctx context.Context) error
	UpsertToken(ctx context.Context, t store.TokenInput) error
	RemoveStaleTokens(ctx context.Context, currentSourceFiles []string) (int64, error)
	GetSourceHashes(ctx context.Context) (map[string]string, error)
}

type Result struct {
	TokensUpserted int
	TokensRemoved  int
	FilesSkipped   int
	Errors         []error
}

type Options struct {
	// Full re-parses every document even when its hash is unchanged.
	Full bool
}

func Run(ctx context.Context, cfg *config.ProjectConfig, db Store, options Options) (*Result, error) {
	if err := db.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	var existingHashes map[string]string
	if !options.Full {
		var err error
		existingHashes, err = db.GetSourceHashes(ctx)
		if err != nil {
			return nil, fmt.Errorf("get source hashes: %w", err)
		}
	}

	files, err := walkDocumentFiles(cfg.Sources.Paths, cfg.Sources.Exclude)
	if err != nil {
		return nil, fmt.Errorf("walking source files: %w", err)
	}

	logger := logging.Logger()
	result := &Result{}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hash, err := computeHash(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("hashing %s: %w", path, err))
			continue
		}
		if !options.Full {
			if existing, ok := existingHashes[path]; ok && existing == hash {
				result.FilesSkipped++
				continue
			}
		}

		doc, err := parser.ParseFile(path)
		if err != nil {
			if errors.Is(err, parser.ErrMissingGrid) {
				// Not a token document.
				result.FilesSkipped++
				continue
			}
			result.Errors = append(result.Errors, fmt.Errorf("parsing %s: %w", path, err))
			continue
		}

		input := TokenInput(TokenID(path), path, hash, doc)
		if err := db.UpsertToken(ctx, input); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("upserting %s: %w", path, err))
			continue
		}
		logger.Debug("ingested token", "id", input.ID, "path", path, "warnings", len(doc.Warnings))
		result.TokensUpserted++
	}

	// Every walked file counts as current, so a file that fails to parse keeps
	// its last stored row.
	deleted, err := db.RemoveStaleTokens(ctx, files)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("removing stale tokens: %w", err))
	} else {
		result.TokensRemoved = int(deleted)
	}

	return result, nil
}

// TokenID is the file name without its extension.
func TokenID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func walkDocumentFiles(roots []string, excludes []string) ([]string, error) {
	excluded := make([]string, 0, len(excludes))
	for _, path := range excludes {
		if path == "" {
			continue
		}
		excluded = append(excluded, filepath.Clean(path))
	}

	var files []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && isExcluded(path, excluded) {
				return filepath.SkipDir
			}
			if d.IsDir() {
				return nil
			}
			if !strings.HasSuffix(strings.ToLower(d.Name()), ".svg") {
				return nil
			}
			if isExcluded(path, excluded) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func isExcluded(path string, excludes []string) bool {
	clean := filepath.Clean(path)
	for _, exclude := range excludes {
		if exclude == clean || strings.HasPrefix(clean, exclude+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

func computeHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
