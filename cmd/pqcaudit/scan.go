// ABOUTME: The scan subcommand: audits a file, directory, or git repository.
// ABOUTME: Emits text summaries or compliance reports and records scan history.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arcqubit/pqcaudit/internal/algdb"
	"github.com/arcqubit/pqcaudit/internal/assess"
	"github.com/arcqubit/pqcaudit/internal/audit"
	"github.com/arcqubit/pqcaudit/internal/history"
	"github.com/arcqubit/pqcaudit/internal/report"
	"github.com/arcqubit/pqcaudit/internal/scanner"
	"github.com/arcqubit/pqcaudit/internal/types"
)

var (
	scanClassification string
	scanFormat         string
	scanOut            string
	scanKeepClone      bool
	scanNoHistory      bool
	scanFailOnCritical bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [target]",
	Short: "Scan a file, directory, or git repository for weak cryptography",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := args[0]

		classification := cfg.DefaultClassification()
		if scanClassification != "" {
			var ok bool
			classification, ok = types.ParseClassification(scanClassification)
			if !ok {
				return fmt.Errorf("unknown classification: %s", scanClassification)
			}
		}

		db, err := algdb.Load()
		if err != nil {
			return fmt.Errorf("loading algorithm database: %w", err)
		}
		assessor := assess.New(db)

		src := scanner.NewSource(target, scanKeepClone || cfg.KeepClone, logger)
		root, err := src.Resolve(cmd.Context())
		if err != nil {
			return err
		}
		defer src.Cleanup()

		s := scanner.New(audit.NewEngine(logger), logger)
		s.Exclude(cfg.ExcludeDirs...)

		summary, err := s.ScanPath(cmd.Context(), root)
		if err != nil {
			return err
		}

		if !scanNoHistory {
			recordHistory(summary, assessor, classification)
		}

		if err := writeScanOutput(summary, assessor, db, classification); err != nil {
			return err
		}

		if scanFailOnCritical && hasCriticalFindings(summary) {
			return fmt.Errorf("critical cryptographic findings detected")
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVarP(&scanClassification, "classification", "c", "", "Data classification to assess against (unclassified, protected-a, protected-b, protected-c)")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "text", "Output format: text, json, sc13, oscal, itsg33, unified")
	scanCmd.Flags().StringVarP(&scanOut, "out", "o", "", "Output file (single target) or directory (multiple files); defaults to stdout / report dir")
	scanCmd.Flags().BoolVar(&scanKeepClone, "keep-clone", false, "Keep cloned repositories on disk after scanning")
	scanCmd.Flags().BoolVar(&scanNoHistory, "no-history", false, "Skip recording this scan in the history database")
	scanCmd.Flags().BoolVar(&scanFailOnCritical, "fail-on-critical", false, "Exit non-zero when critical findings are present")
	rootCmd.AddCommand(scanCmd)
}

func hasCriticalFindings(summary *scanner.ScanSummary) bool {
	for _, fr := range summary.Files {
		if fr.Result != nil && fr.Result.Stats.CriticalCount > 0 {
			return true
		}
	}
	return false
}

func recordHistory(summary *scanner.ScanSummary, assessor *assess.Assessor, classification types.Classification) {
	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		logger.WithError(err).Warn("Could not open history database")
		return
	}
	defer store.Close()

	for _, fr := range summary.Files {
		if fr.Result == nil {
			continue
		}
		assessment := assessor.Assess(fr.Result, classification)
		if _, err := store.Record(fr.Path, fr.Result, assessment); err != nil {
			logger.WithError(err).WithField("path", fr.Path).Warn("Could not record scan history")
		}
	}
}

func writeScanOutput(summary *scanner.ScanSummary, assessor *assess.Assessor, db *algdb.Database, classification types.Classification) error {
	switch strings.ToLower(scanFormat) {
	case "text":
		printTextSummary(summary)
		return nil
	case "json":
		return emitJSON(summary, scanOut)
	case "sc13", "oscal", "itsg33", "unified":
		return writeReports(summary, assessor, db, classification)
	default:
		return fmt.Errorf("unknown format: %s", scanFormat)
	}
}

func printTextSummary(summary *scanner.ScanSummary) {
	fmt.Printf("Scanned %d file(s), skipped %d, %d finding(s)\n\n",
		summary.FilesScanned, summary.FilesSkipped, summary.TotalFindings)

	for _, fr := range summary.Files {
		if fr.Err != nil {
			fmt.Printf("%s: error: %v\n", fr.Path, fr.Err)
			continue
		}
		if len(fr.Result.Findings) == 0 {
			continue
		}
		fmt.Printf("%s (%s, risk %d):\n", fr.Path, fr.Language, fr.Result.RiskScore)
		for _, f := range fr.Result.Findings {
			fmt.Printf("  %d:%d [%s] %s %s\n", f.Line, f.Column, strings.ToUpper(f.Severity.String()), f.Primitive, f.Message)
		}
		fmt.Println()
	}
}

func emitJSON(v any, out string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if out == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(out, append(data, '\n'), 0o644)
}

// writeReports generates one compliance report per audited file. A single
// file goes to stdout (or --out); multiple files are written into the
// report directory.
func writeReports(summary *scanner.ScanSummary, assessor *assess.Assessor, db *algdb.Database, classification types.Classification) error {
	var audited []scanner.FileResult
	for _, fr := range summary.Files {
		if fr.Result != nil {
			audited = append(audited, fr)
		}
	}
	if len(audited) == 0 {
		return fmt.Errorf("no files audited")
	}

	if len(audited) == 1 {
		doc, err := buildReport(audited[0], assessor, db, classification)
		if err != nil {
			return err
		}
		return emitJSON(doc, scanOut)
	}

	outDir := scanOut
	if outDir == "" {
		outDir = cfg.ReportDir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	for _, fr := range audited {
		doc, err := buildReport(fr, assessor, db, classification)
		if err != nil {
			return err
		}
		name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(fr.Path)
		path := filepath.Join(outDir, name+"."+strings.ToLower(scanFormat)+".json")
		if err := emitJSON(doc, path); err != nil {
			return err
		}
	}
	logger.WithField("report_dir", outDir).Info("Reports written")
	return nil
}

func buildReport(fr scanner.FileResult, assessor *assess.Assessor, db *algdb.Database, classification types.Classification) (any, error) {
	assessment := assessor.Assess(fr.Result, classification)
	switch strings.ToLower(scanFormat) {
	case "sc13":
		return report.GenerateSC13(fr.Result, assessment, fr.Path), nil
	case "oscal":
		return report.GenerateOSCAL(report.GenerateSC13(fr.Result, assessment, fr.Path)), nil
	case "itsg33":
		return report.GenerateITSG33(fr.Result, assessment, db, fr.Path), nil
	case "unified":
		return report.GenerateUnified(fr.Result, assessment, db, fr.Path), nil
	}
	return nil, fmt.Errorf("unknown format: %s", scanFormat)
}
