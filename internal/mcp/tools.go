package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"hypercastle/internal/animation"
	"hypercastle/internal/parser"
	"hypercastle/internal/store"
	"hypercastle/internal/validate"
)

const (
	maxSimulateTicks = 10000
	defaultDeltaMS   = 500
)

var errNoDatabase = errors.New("database is not configured")

type ParseDocumentInput struct {
	Path string `json:"path" jsonschema:"path to a token document"`
}

type SimulateInput struct {
	Path    string `json:"path" jsonschema:"path to a token document"`
	Ticks   int    `json:"ticks,omitempty" jsonschema:"number of engine ticks to run, default 1"`
	DeltaMS int    `json:"delta_ms,omitempty" jsonschema:"elapsed milliseconds per tick, default 500"`
}

type GetTokenInput struct {
	ID string `json:"id" jsonschema:"token id"`
}

type ListTokensInput struct {
	Mode *int `json:"mode,omitempty" jsonschema:"restrict to one generation mode"`
}

type FindTokensByGlyphInput struct {
	Glyph string `json:"glyph" jsonschema:"a single character to look up in the palettes"`
}

type ParamsOutput struct {
	Mode      int     `json:"mode"`
	Seed      int     `json:"seed"`
	Direction int     `json:"direction"`
	Resource  float64 `json:"resource"`
}

type DocumentOutput struct {
	Params      ParamsOutput      `json:"params"`
	ClassIDs    string            `json:"class_ids"`
	Anchors     []int             `json:"anchors"`
	Background  string            `json:"background"`
	BaseColors  map[string]string `json:"base_colors"`
	Animations  int               `json:"animations"`
	Keyframes   int               `json:"keyframes"`
	MainCharSet string            `json:"main_char_set"`
	CharSet     string            `json:"char_set"`
	Warnings    []string          `json:"warnings"`
	Issues      []validate.Issue  `json:"issues"`
}

type SimulateOutput struct {
	Tick       uint32            `json:"tick"`
	Rows       []string          `json:"rows"`
	Colors     map[string]string `json:"colors"`
	SizeEvents int               `json:"size_events"`
}

type TokenOutput struct {
	ID           string            `json:"id"`
	SourceFile   string            `json:"source_file"`
	Params       ParamsOutput      `json:"params"`
	ClassIDs     string            `json:"class_ids"`
	Background   string            `json:"background"`
	BaseColors   map[string]string `json:"base_colors"`
	MainCharSet  string            `json:"main_char_set"`
	CharSet      string            `json:"char_set"`
	LastIngested string            `json:"last_ingested"`
}

type ListTokensOutput struct {
	Tokens []store.TokenSummary `json:"tokens"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "parse_document",
		Description: "Parse a token document and return its parameters, palettes and consistency issues",
	}, s.handleParseDocument)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "simulate",
		Description: "Run the animation engine on a token document and return the resulting grid rows",
	}, s.handleSimulate)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_token",
		Description: "Retrieve an ingested token by id",
	}, s.handleGetToken)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_tokens",
		Description: "List ingested tokens with an optional mode filter",
	}, s.handleListTokens)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "find_tokens_by_glyph",
		Description: "List ingested tokens whose palettes contain a character",
	}, s.handleFindTokensByGlyph)
}

func (s *Server) handleParseDocument(ctx context.Context, req *sdk.CallToolRequest, input ParseDocumentInput) (*sdk.CallToolResult, DocumentOutput, error) {
	if input.Path == "" {
		return nil, DocumentOutput{}, fmt.Errorf("path is required")
	}
	doc, err := parser.ParseFile(input.Path)
	if err != nil {
		return nil, DocumentOutput{}, err
	}
	report, err := validate.Run(doc)
	if err != nil {
		return nil, DocumentOutput{}, err
	}
	return nil, documentOutput(doc, report), nil
}

func (s *Server) handleSimulate(ctx context.Context, req *sdk.CallToolRequest, input SimulateInput) (*sdk.CallToolResult, SimulateOutput, error) {
	if input.Path == "" {
		return nil, SimulateOutput{}, fmt.Errorf("path is required")
	}
	ticks := input.Ticks
	if ticks == 0 {
		ticks = 1
	}
	if ticks < 0 || ticks > maxSimulateTicks {
		return nil, SimulateOutput{}, fmt.Errorf("ticks must be between 1 and %d", maxSimulateTicks)
	}
	deltaMS := input.DeltaMS
	if deltaMS <= 0 {
		deltaMS = defaultDeltaMS
	}

	doc, err := parser.ParseFile(input.Path)
	if err != nil {
		return nil, SimulateOutput{}, err
	}

	m := doc.Model
	seed := s.cfg.Engine.RandomSeed
	if seed == 0 {
		seed = uint64(m.Params.Seed) + 1
	}
	engine := animation.NewEngine(m, animation.NewRandomSource(seed))

	delta := float64(deltaMS) / 1000
	sizes := 0
	for i := 0; i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			return nil, SimulateOutput{}, err
		}
		for _, ev := range engine.Tick(delta) {
			if ev.Kind == animation.EventFontSize {
				sizes++
			}
		}
	}

	colors := make(map[string]string, len(m.Colors))
	for class, c := range m.Colors {
		colors[string(class)] = c.Hex()
	}
	return nil, SimulateOutput{
		Tick:       m.Tick,
		Rows:       m.Rows(),
		Colors:     colors,
		SizeEvents: sizes,
	}, nil
}

func (s *Server) handleGetToken(ctx context.Context, req *sdk.CallToolRequest, input GetTokenInput) (*sdk.CallToolResult, TokenOutput, error) {
	if input.ID == "" {
		return nil, TokenOutput{}, fmt.Errorf("id is required")
	}
	if s.db == nil {
		return nil, TokenOutput{}, errNoDatabase
	}
	token, err := s.db.GetToken(ctx, input.ID)
	if err != nil {
		return nil, TokenOutput{}, err
	}
	if token == nil {
		return nil, TokenOutput{}, fmt.Errorf("token not found")
	}
	return nil, tokenOutputFromStore(token), nil
}

func (s *Server) handleListTokens(ctx context.Context, req *sdk.CallToolRequest, input ListTokensInput) (*sdk.CallToolResult, ListTokensOutput, error) {
	if s.db == nil {
		return nil, ListTokensOutput{}, errNoDatabase
	}
	mode := store.AnyMode
	if input.Mode != nil {
		mode = *input.Mode
	}
	tokens, err := s.db.ListTokens(ctx, mode)
	if err != nil {
		return nil, ListTokensOutput{}, err
	}
	return nil, ListTokensOutput{Tokens: tokens}, nil
}

func (s *Server) handleFindTokensByGlyph(ctx context.Context, req *sdk.CallToolRequest, input FindTokensByGlyphInput) (*sdk.CallToolResult, ListTokensOutput, error) {
	if utf8.RuneCountInString(input.Glyph) != 1 {
		return nil, ListTokensOutput{}, fmt.Errorf("glyph must be a single character")
	}
	if s.db == nil {
		return nil, ListTokensOutput{}, errNoDatabase
	}
	glyph, _ := utf8.DecodeRuneInString(input.Glyph)
	tokens, err := s.db.FindTokensByGlyph(ctx, glyph)
	if err != nil {
		return nil, ListTokensOutput{}, err
	}
	return nil, ListTokensOutput{Tokens: tokens}, nil
}

func documentOutput(doc *parser.Document, report *validate.Report) DocumentOutput {
	m := doc.Model
	colors := make(map[string]string, len(m.BaseColors))
	for _, base := range m.BaseColors {
		if _, exists := colors[string(base.Class)]; !exists {
			colors[string(base.Class)] = base.Color.Hex()
		}
	}
	warnings := doc.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	anchors := m.Anchors
	if anchors == nil {
		anchors = []int{}
	}
	return DocumentOutput{
		Params: ParamsOutput{
			Mode:      m.Params.Mode,
			Seed:      m.Params.Seed,
			Direction: m.Params.Direction,
			Resource:  m.Params.Resource,
		},
		ClassIDs:    string(m.ClassIDs),
		Anchors:     anchors,
		Background:  m.Background.Hex(),
		BaseColors:  colors,
		Animations:  len(m.Animations),
		Keyframes:   len(m.Keyframes),
		MainCharSet: string(m.MainCharSet),
		CharSet:     string(m.CharSet),
		Warnings:    warnings,
		Issues:      report.Issues,
	}
}

func tokenOutputFromStore(t *store.Token) TokenOutput {
	colors := t.BaseColors
	if colors == nil {
		colors = map[string]string{}
	}
	return TokenOutput{
		ID:         t.ID,
		SourceFile: t.SourceFile,
		Params: ParamsOutput{
			Mode:      t.Mode,
			Seed:      t.Seed,
			Direction: t.Direction,
			Resource:  t.Resource,
		},
		ClassIDs:     t.ClassIDs,
		Background:   t.Background,
		BaseColors:   colors,
		MainCharSet:  string(t.MainCharSet),
		CharSet:      string(t.CharSet),
		LastIngested: t.LastIngested.UTC().Format(time.RFC3339),
	}
}
