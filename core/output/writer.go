// Package output handles file naming and writing for exported artifacts.
// Unnamed artifacts get a unique name from their kind (snapshot-<uuid>.pdf);
// named artifacts are sanitized to a flat filename.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/gaurav-prasanna/receita/core"
)

// Writer writes artifacts to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	// Ensure the output directory exists.
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// Write writes data to name+ext in the output directory and returns the path.
func (w *Writer) Write(name string, data []byte, ext string) (string, error) {
	path := filepath.Join(w.OutputDir, sanitize(name)+ext)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// WriteArtifact writes a under a unique name derived from its kind.
func (w *Writer) WriteArtifact(a core.Artifact) (string, error) {
	return w.Write(ArtifactName(a.Kind), a.Data, a.Extension())
}

// WriteNamed writes a under the given name, falling back to a unique name
// when name is empty.
func (w *Writer) WriteNamed(name string, a core.Artifact) (string, error) {
	if strings.TrimSpace(name) == "" {
		return w.WriteArtifact(a)
	}
	name = strings.TrimSuffix(name, a.Extension())
	return w.Write(name, a.Data, a.Extension())
}

// ArtifactName returns a unique base name for an artifact of the given kind.
func ArtifactName(kind core.ArtifactKind) string {
	k := string(kind)
	if k == "" {
		k = "artifact"
	}
	return k + "-" + uuid.NewString()
}

// sanitize replaces characters other than letters, digits, '-' and '_'
// with underscores.
func sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-' || ch == '_' {
			b.WriteRune(ch)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
