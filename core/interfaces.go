// Package core defines the shared interfaces for receita.
// The composition stages (collect, dosage, align) are pure functions; the
// export stage talks to the host environment only through these interfaces.
package core

import (
	"context"
	"errors"
)

// ErrViewerUnavailable is returned by a Viewer that cannot open a new
// viewing context (no opener on the host, no response to write to).
var ErrViewerUnavailable = errors.New("viewer unavailable")

// FetchResult holds the raw HTML and response metadata from a fetch.
type FetchResult struct {
	URL        string
	StatusCode int
	HTML       string
}

// ArtifactKind tells which export path produced an artifact.
type ArtifactKind string

const (
	// ArtifactSnapshot is a rasterized page built from a document tree.
	ArtifactSnapshot ArtifactKind = "snapshot"
	// ArtifactText is a plain text page built from a transcript.
	ArtifactText ArtifactKind = "text"
	// ArtifactMarkdown is a Markdown rendition of a document tree.
	ArtifactMarkdown ArtifactKind = "markdown"
)

// Artifact is an exported document handed to a Viewer. It is created on
// demand and discarded once the viewer returns.
type Artifact struct {
	Kind ArtifactKind
	Data []byte
	// AutoPrint is set when the document carries an open action that
	// invokes the print dialog.
	AutoPrint bool
}

// Extension returns the file extension for the artifact.
func (a Artifact) Extension() string {
	if a.Kind == ArtifactMarkdown {
		return ".md"
	}
	return ".pdf"
}

// ContentType returns the MIME type for the artifact.
func (a Artifact) ContentType() string {
	if a.Kind == ArtifactMarkdown {
		return "text/markdown; charset=utf-8"
	}
	return "application/pdf"
}

// Fetcher retrieves raw HTML from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Rasterizer renders a standalone HTML page to a PNG bitmap.
// Scale is the device pixel ratio used for the capture.
type Rasterizer interface {
	Rasterize(ctx context.Context, html string, scale float64) ([]byte, error)
}

// Viewer opens an artifact in a new viewing context. It returns
// ErrViewerUnavailable when no context can be opened.
type Viewer interface {
	Open(ctx context.Context, a Artifact) error
}
