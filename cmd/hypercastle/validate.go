package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"hypercastle/internal/parser"
	"hypercastle/internal/validate"
)

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file.svg>...",
		Short: "Run consistency checks against token documents",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runValidate,
	}
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	var errorIssues []validate.Issue
	var warnIssues []validate.Issue
	for _, path := range args {
		doc, err := parser.ParseFile(path)
		if err != nil {
			errorIssues = append(errorIssues, validate.Issue{
				Severity: validate.SeverityError,
				Code:     "parse_failed",
				Message:  err.Error(),
				FilePath: path,
			})
			continue
		}
		report, err := validate.Run(doc)
		if err != nil {
			return err
		}
		for _, issue := range report.Issues {
			switch issue.Severity {
			case validate.SeverityError:
				errorIssues = append(errorIssues, issue)
			case validate.SeverityWarn:
				warnIssues = append(warnIssues, issue)
			}
		}
	}

	if len(errorIssues) == 0 && len(warnIssues) == 0 {
		fmt.Fprintln(os.Stdout, "No issues found.")
		return nil
	}

	if len(errorIssues) > 0 {
		fmt.Fprintf(os.Stdout, "Errors (%d):\n", len(errorIssues))
		printIssues(os.Stdout, errorIssues)
	}
	if len(warnIssues) > 0 {
		if len(errorIssues) > 0 {
			fmt.Fprintln(os.Stdout, "")
		}
		fmt.Fprintf(os.Stdout, "Warnings (%d):\n", len(warnIssues))
		printIssues(os.Stdout, warnIssues)
	}

	if len(errorIssues) > 0 {
		return fmt.Errorf("validation found errors")
	}
	return nil
}

func printIssues(out io.Writer, issues []validate.Issue) {
	for _, issue := range issues {
		location := issue.FilePath
		if issue.Class != "" {
			location = fmt.Sprintf("%s class %q", location, issue.Class)
		}
		fmt.Fprintf(out, "  - %s: %s (%s)\n", location, issue.Message, issue.Code)
	}
}
