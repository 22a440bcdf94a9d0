package input

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

type Kind int

const (
	KindFile Kind = iota
	KindDiff
)

// DefaultMaxBytes mirrors gate.Engine's content size ceiling so oversized
// artifacts are skipped at read time instead of round-tripping through
// Analyze only to be rejected there.
const DefaultMaxBytes = 10 * 1024 * 1024

type Artifact struct {
	Path    string
	Content string
	Kind    Kind
}

type Handler struct {
	maxBytes int64
}

// Option configures a Handler.
type Option func(*Handler)

// WithMaxBytes overrides DefaultMaxBytes.
func WithMaxBytes(n int64) Option {
	return func(h *Handler) { h.maxBytes = n }
}

func NewHandler(opts ...Option) *Handler {
	h := &Handler{maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) ReadFiles(paths []string) ([]Artifact, error) {
	var artifacts []Artifact
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		if !h.valid(p, data) {
			continue
		}
		artifacts = append(artifacts, Artifact{
			Path:    p,
			Content: string(data),
			Kind:    KindFile,
		})
	}
	return artifacts, nil
}

func (h *Handler) ReadDiff(diff string) ([]Artifact, error) {
	var artifacts []Artifact
	var currentPath string
	var currentLines []string

	flush := func() {
		if currentPath != "" {
			artifacts = append(artifacts, Artifact{
				Path:    currentPath,
				Content: strings.Join(currentLines, "\n"),
				Kind:    KindDiff,
			})
		}
	}

	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "diff --git") {
			flush()
			parts := strings.Fields(line)
			if len(parts) >= 4 {
				currentPath = strings.TrimPrefix(parts[len(parts)-1], "b/")
			}
			currentLines = nil
		} else {
			currentLines = append(currentLines, line)
		}
	}
	flush()

	return artifacts, nil
}

func (h *Handler) ReadDirectory(dir string) ([]Artifact, error) {
	var artifacts []Artifact
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if !h.valid(path, data) {
			return nil
		}
		artifacts = append(artifacts, Artifact{
			Path:    path,
			Content: string(data),
			Kind:    KindFile,
		})
		return nil
	})
	return artifacts, err
}

// valid reports whether data should be handed to the gate, logging (and
// skipping, not erroring) the two ways a file is unfit for scanning:
// invalid UTF-8 and exceeding the size ceiling.
func (h *Handler) valid(path string, data []byte) bool {
	if !utf8.Valid(data) {
		slog.Warn("skipping file with invalid UTF-8", "path", path)
		return false
	}
	if h.maxBytes > 0 && int64(len(data)) > h.maxBytes {
		slog.Warn("skipping file exceeding max content size", "path", path, "size", len(data), "max", h.maxBytes)
		return false
	}
	return true
}
