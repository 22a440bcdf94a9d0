// Package context loads sibling files around a flagged location so the
// generator's context_adaptation strategy and the explain output have more
// than a single line to reason about (SPEC_FULL.md "Pattern Generator /
// Validator / Classifier", derive_rule context_adaptation).
package context

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ContextFile represents a file loaded as additional context around a match.
type ContextFile struct {
	Path    string
	Content string
}

// Selector describes a glob of related files to pull in, optionally scoped
// to artifacts matching OnlyFor (e.g. only load "*_test.go" siblings when
// the flagged artifact itself is a test file).
type Selector struct {
	Pattern string
	OnlyFor string
}

// Loader handles loading additional context files based on selectors
type Loader struct {
	baseDir string
}

// NewLoader creates a new context loader with the given base directory
func NewLoader(baseDir string) *Loader {
	return &Loader{baseDir: baseDir}
}

// LoadForArtifact loads all matching context files for a given artifact path
// based on the provided selectors.
func (l *Loader) LoadForArtifact(artifactPath string, selectors []Selector) ([]ContextFile, error) {
	var contexts []ContextFile

	for _, selector := range selectors {
		if selector.OnlyFor != "" {
			matched, err := filepath.Match(selector.OnlyFor, filepath.Base(artifactPath))
			if err != nil {
				return nil, fmt.Errorf("invalid only_for pattern %q: %w", selector.OnlyFor, err)
			}
			if !matched {
				continue
			}
		}

		files, err := l.loadPattern(selector.Pattern)
		if err != nil {
			return nil, fmt.Errorf("loading pattern %q: %w", selector.Pattern, err)
		}

		contexts = append(contexts, files...)
	}

	return contexts, nil
}

// loadPattern loads all files matching the given glob pattern
func (l *Loader) loadPattern(pattern string) ([]ContextFile, error) {
	fullPattern := filepath.Join(l.baseDir, pattern)

	matches, err := filepath.Glob(fullPattern)
	if err != nil {
		return nil, fmt.Errorf("glob pattern error: %w", err)
	}

	var files []ContextFile

	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue // Skip files we can't stat
		}
		if info.IsDir() {
			continue
		}

		content, err := os.ReadFile(match)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", match, err)
		}

		relPath, err := filepath.Rel(l.baseDir, match)
		if err != nil {
			relPath = match
		}

		files = append(files, ContextFile{
			Path:    relPath,
			Content: string(content),
		})
	}

	return files, nil
}

// FormatContext formats context files into a text block for the explain
// output or a Generate() context sample.
func FormatContext(contexts []ContextFile) string {
	if len(contexts) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Additional Context Files:\n")

	for _, ctx := range contexts {
		sb.WriteString(fmt.Sprintf("\n--- %s ---\n", ctx.Path))
		sb.WriteString(ctx.Content)
		sb.WriteString("\n")
	}

	return sb.String()
}
