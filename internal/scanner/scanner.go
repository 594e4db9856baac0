// ABOUTME: Walks directories for source files and audits them concurrently.
// ABOUTME: Bounded worker concurrency with per-file size guards and skip lists.

package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/arcqubit/pqcaudit/internal/audit"
	"github.com/arcqubit/pqcaudit/internal/types"
)

const maxConcurrentAudits = 10

// Directories never descended into during a walk.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"target":       true,
	"vendor":       true,
}

// FileResult pairs an audited file with its outcome.
type FileResult struct {
	Path     string             `json:"path"`
	Language types.Language     `json:"language"`
	Result   *types.AuditResult `json:"result,omitempty"`
	Err      error              `json:"-"`
}

// ScanSummary aggregates a directory scan.
type ScanSummary struct {
	FilesScanned  int          `json:"files_scanned"`
	FilesSkipped  int          `json:"files_skipped"`
	TotalFindings int          `json:"total_findings"`
	Files         []FileResult `json:"files"`
}

// Scanner discovers source files and runs audits over them.
type Scanner struct {
	engine   *audit.Engine
	logger   *logrus.Logger
	excludes map[string]bool
}

func New(engine *audit.Engine, logger *logrus.Logger) *Scanner {
	return &Scanner{engine: engine, logger: logger, excludes: map[string]bool{}}
}

// Exclude adds directory names to skip during walks, on top of the built-in
// dependency directories.
func (s *Scanner) Exclude(dirs ...string) {
	for _, d := range dirs {
		s.excludes[d] = true
	}
}

// ScanPath audits a single file or every recognized source file under a
// directory. Files with unrecognized extensions are skipped, not failed.
func (s *Scanner) ScanPath(ctx context.Context, root string) (*ScanSummary, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan path: %w", err)
	}

	var paths []string
	if info.IsDir() {
		paths, err = s.collectFiles(root)
		if err != nil {
			return nil, err
		}
	} else {
		paths = []string{root}
	}

	return s.scanFiles(ctx, paths)
}

// collectFiles walks root and returns every file whose extension maps to a
// supported language, skipping dependency and build directories.
func (s *Scanner) collectFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (skipDirs[d.Name()] || s.excludes[d.Name()]) {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if _, ok := types.LanguageForExtension(ext); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return paths, nil
}

// scanFiles audits the given files with bounded concurrency and returns
// results sorted by path for deterministic output.
func (s *Scanner) scanFiles(ctx context.Context, paths []string) (*ScanSummary, error) {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		results   []FileResult
		skipped   int
		semaphore = make(chan struct{}, maxConcurrentAudits)
	)

	for _, path := range paths {
		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		lang, ok := types.LanguageForExtension(ext)
		if !ok {
			mu.Lock()
			skipped++
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(path string, lang types.Language) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if ctx.Err() != nil {
				return
			}

			fr := s.scanFile(path, lang)
			mu.Lock()
			if fr.Err != nil && os.IsNotExist(fr.Err) {
				skipped++
			} else {
				results = append(results, fr)
			}
			mu.Unlock()
		}(path, lang)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })

	summary := &ScanSummary{
		FilesSkipped: skipped,
		Files:        results,
	}
	for _, fr := range results {
		if fr.Err != nil {
			continue
		}
		summary.FilesScanned++
		summary.TotalFindings += len(fr.Result.Findings)
	}

	s.logger.WithFields(logrus.Fields{
		"component":      "scanner",
		"files_scanned":  summary.FilesScanned,
		"files_skipped":  summary.FilesSkipped,
		"total_findings": summary.TotalFindings,
	}).Info("Scan complete")

	return summary, nil
}

func (s *Scanner) scanFile(path string, lang types.Language) FileResult {
	fr := FileResult{Path: path, Language: lang}

	info, err := os.Stat(path)
	if err != nil {
		fr.Err = err
		return fr
	}
	if info.Size() > audit.MaxSourceBytes {
		fr.Err = &audit.SourceTooLargeError{Actual: int(info.Size()), Limit: audit.MaxSourceBytes}
		s.logger.WithFields(logrus.Fields{
			"component": "scanner",
			"path":      path,
			"bytes":     info.Size(),
		}).Warn("Skipping oversized file")
		return fr
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fr.Err = err
		return fr
	}

	result, err := s.engine.Audit(string(data), lang.String())
	if err != nil {
		fr.Err = err
		return fr
	}
	fr.Result = result
	return fr
}
