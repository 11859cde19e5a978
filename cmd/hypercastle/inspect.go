package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"hypercastle/internal/parser"
	"hypercastle/internal/render"
)

type inspectOutput struct {
	File        string            `json:"file"`
	Mode        int               `json:"mode"`
	Seed        int               `json:"seed"`
	Direction   int               `json:"direction"`
	Resource    float64           `json:"resource"`
	ClassIDs    string            `json:"class_ids"`
	Anchors     []int             `json:"anchors"`
	Background  string            `json:"background"`
	BaseColors  map[string]string `json:"base_colors"`
	Animations  int               `json:"animations"`
	Keyframes   int               `json:"keyframes"`
	MainCharSet []int32           `json:"main_char_set"`
	CharSet     []int32           `json:"char_set"`
	Rows        []string          `json:"rows"`
	Warnings    []string          `json:"warnings"`
}

func inspectCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect <file.svg>",
		Short: "Parse a token document and print its parameters and palettes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := parser.ParseFile(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return printInspectJSON(doc)
			}
			printInspect(doc)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func newInspectOutput(doc *parser.Document) inspectOutput {
	m := doc.Model
	colors := make(map[string]string, len(m.BaseColors))
	for _, base := range m.BaseColors {
		if _, exists := colors[string(base.Class)]; !exists {
			colors[string(base.Class)] = base.Color.Hex()
		}
	}
	out := inspectOutput{
		File:        doc.SourceFile,
		Mode:        m.Params.Mode,
		Seed:        m.Params.Seed,
		Direction:   m.Params.Direction,
		Resource:    m.Params.Resource,
		ClassIDs:    string(m.ClassIDs),
		Anchors:     m.Anchors,
		Background:  m.Background.Hex(),
		BaseColors:  colors,
		Animations:  len(m.Animations),
		Keyframes:   len(m.Keyframes),
		MainCharSet: []int32(m.MainCharSet),
		CharSet:     []int32(m.CharSet),
		Rows:        m.Rows(),
		Warnings:    doc.Warnings,
	}
	if out.Anchors == nil {
		out.Anchors = []int{}
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	return out
}

func printInspectJSON(doc *parser.Document) error {
	payload, err := json.MarshalIndent(newInspectOutput(doc), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(payload))
	return nil
}

func printInspect(doc *parser.Document) {
	out := newInspectOutput(doc)
	fmt.Fprintf(os.Stdout, "%s\n", out.File)
	fmt.Fprintf(os.Stdout, "  Mode:       %d\n", out.Mode)
	fmt.Fprintf(os.Stdout, "  Seed:       %d\n", out.Seed)
	fmt.Fprintf(os.Stdout, "  Direction:  %d\n", out.Direction)
	fmt.Fprintf(os.Stdout, "  Resource:   %g\n", out.Resource)
	fmt.Fprintf(os.Stdout, "  Class ids:  %s\n", out.ClassIDs)
	fmt.Fprintf(os.Stdout, "  Anchors:    %v\n", out.Anchors)
	fmt.Fprintf(os.Stdout, "  Background: %s\n", out.Background)
	fmt.Fprintf(os.Stdout, "  Animations: %d (%d keyframes)\n", out.Animations, out.Keyframes)
	fmt.Fprintf(os.Stdout, "  Main set:   %s %v\n", quoteRunes(doc.Model.MainCharSet), out.MainCharSet)
	fmt.Fprintf(os.Stdout, "  Char set:   %s %v\n", quoteRunes(doc.Model.CharSet), out.CharSet)

	fmt.Fprintln(os.Stdout, "")
	for _, row := range out.Rows {
		fmt.Fprintf(os.Stdout, "  %s\n", row)
	}

	if len(out.Warnings) > 0 {
		fmt.Fprintf(os.Stdout, "\nWarnings (%d):\n", len(out.Warnings))
		for _, warning := range out.Warnings {
			fmt.Fprintf(os.Stdout, "  - %s\n", warning)
		}
	}
}

func quoteRunes(chars []rune) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range chars {
		if r == 0 {
			r = render.Blank
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}
