// ABOUTME: Scan target sources: local directories and remote git repositories.
// ABOUTME: Remote targets are shallow-cloned into a temp dir and cleaned up after.

package scanner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// TargetSource resolves a scan target to a local directory.
type TargetSource interface {
	Name() string
	Resolve(ctx context.Context) (string, error)
	Cleanup() error
}

// LocalSource is a directory (or file) already on disk.
type LocalSource struct {
	path string
}

func NewLocalSource(path string) *LocalSource {
	return &LocalSource{path: path}
}

func (s *LocalSource) Name() string { return s.path }

func (s *LocalSource) Resolve(ctx context.Context) (string, error) {
	if _, err := os.Stat(s.path); err != nil {
		return "", fmt.Errorf("scan target: %w", err)
	}
	return s.path, nil
}

// Cleanup is a no-op; local targets are caller-owned.
func (s *LocalSource) Cleanup() error { return nil }

// GitSource shallow-clones a remote repository for scanning.
type GitSource struct {
	url       string
	keepClone bool
	clonePath string
	logger    *logrus.Logger
}

func NewGitSource(url string, keepClone bool, logger *logrus.Logger) *GitSource {
	return &GitSource{url: url, keepClone: keepClone, logger: logger}
}

func (s *GitSource) Name() string { return s.url }

func (s *GitSource) Resolve(ctx context.Context) (string, error) {
	logger := s.logger.WithField("repository", s.url)

	tempDir, err := os.MkdirTemp("", "pqcaudit-clone-")
	if err != nil {
		return "", fmt.Errorf("creating clone directory: %w", err)
	}

	clonePath := filepath.Join(tempDir, repoName(s.url))
	logger.WithField("path", clonePath).Info("Cloning repository")

	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", s.url, clonePath)
	if out, err := cmd.CombinedOutput(); err != nil {
		os.RemoveAll(tempDir)
		return "", fmt.Errorf("git clone failed: %v: %s", err, strings.TrimSpace(string(out)))
	}

	s.clonePath = tempDir
	return clonePath, nil
}

func (s *GitSource) Cleanup() error {
	if s.clonePath == "" || s.keepClone {
		return nil
	}
	return os.RemoveAll(s.clonePath)
}

// NewSource picks the right source type for a target string.
func NewSource(target string, keepClone bool, logger *logrus.Logger) TargetSource {
	if IsGitURL(target) {
		return NewGitSource(target, keepClone, logger)
	}
	return NewLocalSource(target)
}

// IsGitURL reports whether a scan target names a remote repository.
func IsGitURL(target string) bool {
	return strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "git@") ||
		strings.HasPrefix(target, "ssh://") ||
		strings.HasSuffix(target, ".git")
}

// repoName extracts the repository name from a URL or path, e.g.
// "https://github.com/org/repo.git" and "git@github.com:org/repo" both
// yield "repo".
func repoName(url string) string {
	trimmed := strings.TrimSuffix(strings.TrimRight(url, "/"), ".git")
	if i := strings.LastIndexAny(trimmed, "/:"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if trimmed == "" {
		return "repository"
	}
	return trimmed
}
