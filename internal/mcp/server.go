package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"hypercastle/internal/config"
	"hypercastle/internal/store"
)

// TokenQuerier is the read side of the token store.
type TokenQuerier interface {
	GetToken(ctx context.Context, id string) (*store.Token, error)
	ListTokens(ctx context.Context, mode int) ([]store.TokenSummary, error)
	FindTokensByGlyph(ctx context.Context, glyph rune) ([]store.TokenSummary, error)
}

type Server struct {
	cfg *config.ProjectConfig
	db  TokenQuerier
	mcp *sdk.Server
}

// NewServer builds the tool server. db may be nil, in which case the token
// tools report that no database is configured.
func NewServer(cfg *config.ProjectConfig, db TokenQuerier, version string) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{
		cfg: cfg,
		db:  db,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "hypercastle",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
