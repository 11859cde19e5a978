package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hypercastle/internal/store"
)

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query the token store from the CLI",
	}
	cmd.AddCommand(queryTokenCmd())
	cmd.AddCommand(queryListCmd())
	cmd.AddCommand(queryGlyphCmd())
	cmd.AddCommand(querySQLCmd())
	return cmd
}

func printSummaries(summaries []store.TokenSummary) {
	if len(summaries) == 0 {
		fmt.Fprintln(os.Stdout, "No tokens found.")
		return
	}
	for _, s := range summaries {
		fmt.Fprintf(os.Stdout, "%s mode=%d seed=%d (%s)\n", s.ID, s.Mode, s.Seed, s.SourceFile)
	}
}
