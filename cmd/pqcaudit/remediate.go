// ABOUTME: The remediate subcommand: suggests code fixes for one source file.
// ABOUTME: Prints fix suggestions with confidence levels, or JSON with --json.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arcqubit/pqcaudit/internal/audit"
	"github.com/arcqubit/pqcaudit/internal/remediate"
	"github.com/arcqubit/pqcaudit/internal/types"
)

var remediateJSON bool

var remediateCmd = &cobra.Command{
	Use:   "remediate [file]",
	Short: "Suggest fixes for weak cryptography in a source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		lang, ok := types.LanguageForExtension(ext)
		if !ok {
			return fmt.Errorf("unsupported file extension: %s", path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		result, err := audit.NewEngine(logger).Audit(string(data), lang.String())
		if err != nil {
			return err
		}

		fixes := remediate.Generate(result, path)

		if remediateJSON {
			return emitJSON(fixes, "")
		}

		fmt.Printf("%d finding(s), %d auto-fixable, %d need manual review\n\n",
			fixes.Summary.TotalFindings, fixes.Summary.AutoFixable, fixes.Summary.ManualReviewRequired)
		for _, fix := range fixes.Fixes {
			marker := "manual"
			if fix.AutoApplicable {
				marker = "auto"
			}
			fmt.Printf("%s:%d [%s, confidence %.0f%%] %s\n", fix.FilePath, fix.Line, marker, fix.Confidence*100, fix.Algorithm)
			fmt.Printf("  - %s\n", fix.OldCode)
			fmt.Printf("  + %s\n", fix.NewCode)
			fmt.Printf("  %s\n\n", fix.Explanation)
		}
		for _, warning := range fixes.Warnings {
			fmt.Printf("warning: %s\n", warning)
		}
		return nil
	},
}

func init() {
	remediateCmd.Flags().BoolVar(&remediateJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(remediateCmd)
}
