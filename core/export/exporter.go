// Package export builds printable A4 documents from a document tree or a
// plain transcript and hands them to a viewing context.
//
// Two paths exist and they behave differently:
//
//   - FromNode rasterizes a print clone of the tree and embeds the bitmap as a
//     full page; the document asks the viewer to print as soon as it opens.
//   - FromText writes the transcript as text; the document simply opens.
//
// Both are fire-and-forget for callers that use Print. Callers that want to
// react to the result use the Outcome returned by the other entry points.
package export

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gaurav-prasanna/receita/core"
	"github.com/gaurav-prasanna/receita/core/document"
	"github.com/gaurav-prasanna/receita/core/normalize"
)

// DefaultScale is the oversampling factor of the tree path capture.
const DefaultScale = 5.0

// DefaultFontSize is the text path font size in points.
const DefaultFontSize = 16.0

// Status is the result of an export call.
type Status int

const (
	// Exported means the artifact was handed to the viewer.
	Exported Status = iota
	// NoInput means neither a tree nor a non-empty text was given.
	NoInput
	// ViewerUnavailable means no viewing context could be opened.
	ViewerUnavailable
	// Failed means building the artifact or opening it failed.
	Failed
)

func (s Status) String() string {
	switch s {
	case Exported:
		return "exported"
	case NoInput:
		return "no-input"
	case ViewerUnavailable:
		return "viewer-unavailable"
	default:
		return "failed"
	}
}

// Outcome reports what an export call did.
type Outcome struct {
	Status   Status
	Artifact core.Artifact
	Err      error
}

// Exporter builds artifacts and opens them in a viewer.
type Exporter struct {
	raster   core.Rasterizer
	viewer   core.Viewer
	log      *zap.Logger
	scale    float64
	fontSize float64
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithScale sets the capture oversampling factor of the tree path.
func WithScale(scale float64) Option {
	return func(e *Exporter) {
		if scale > 0 {
			e.scale = scale
		}
	}
}

// WithFontSize sets the text path font size in points.
func WithFontSize(size float64) Option {
	return func(e *Exporter) {
		if size > 0 {
			e.fontSize = size
		}
	}
}

// New creates an Exporter. raster may be nil when only the text path is
// used; log may be nil.
func New(raster core.Rasterizer, viewer core.Viewer, log *zap.Logger, opts ...Option) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Exporter{
		raster:   raster,
		viewer:   viewer,
		log:      log,
		scale:    DefaultScale,
		fontSize: DefaultFontSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// To returns a copy of e that opens artifacts in v.
func (e *Exporter) To(v core.Viewer) *Exporter {
	c := *e
	c.viewer = v
	return &c
}

// FromNode rasterizes a print clone of n at the configured scale, embeds
// it full-page in a single A4 document that prints on open, and opens it.
// n is never modified.
func (e *Exporter) FromNode(ctx context.Context, n *document.Node) Outcome {
	if n == nil {
		return e.noInput()
	}
	if e.raster == nil {
		return e.failed(errors.New("no rasterizer configured"))
	}

	page, err := PrintHTML(n)
	if err != nil {
		return e.failed(err)
	}

	bitmap, err := e.raster.Rasterize(ctx, page, e.scale)
	if err != nil {
		return e.failed(fmt.Errorf("rasterizing document: %w", err))
	}

	data, err := imagePDF(bitmap, true)
	if err != nil {
		return e.failed(err)
	}

	return e.open(ctx, core.Artifact{Kind: core.ArtifactSnapshot, Data: data, AutoPrint: true})
}

// FromText writes text on a single A4 page and opens it without printing.
func (e *Exporter) FromText(ctx context.Context, text string) Outcome {
	if text == "" {
		return e.noInput()
	}

	data, err := textPDF(text, e.fontSize)
	if err != nil {
		return e.failed(err)
	}

	return e.open(ctx, core.Artifact{Kind: core.ArtifactText, Data: data})
}

// Export uses the tree when n is non-nil, else the text when non-empty.
// With neither it logs and does nothing.
func (e *Exporter) Export(ctx context.Context, n *document.Node, text string) Outcome {
	if n != nil {
		return e.FromNode(ctx, n)
	}
	return e.FromText(ctx, text)
}

// Print is Export without a result.
func (e *Exporter) Print(ctx context.Context, n *document.Node, text string) {
	_ = e.Export(ctx, n, text)
}

// Markdown renders the print clone of n as Markdown and opens it.
func (e *Exporter) Markdown(ctx context.Context, n *document.Node) Outcome {
	if n == nil {
		return e.noInput()
	}
	md, err := Markdown(n)
	if err != nil {
		return e.failed(err)
	}
	return e.open(ctx, core.Artifact{Kind: core.ArtifactMarkdown, Data: []byte(md)})
}

// Markdown renders the print clone of n as Markdown.
func Markdown(n *document.Node) (string, error) {
	fragment, err := PrintFragment(n)
	if err != nil {
		return "", err
	}
	return normalize.New().Normalize(fragment)
}

func (e *Exporter) open(ctx context.Context, a core.Artifact) Outcome {
	if e.viewer == nil {
		e.log.Warn("could not open viewer", zap.String("kind", string(a.Kind)))
		return Outcome{Status: ViewerUnavailable, Artifact: a, Err: core.ErrViewerUnavailable}
	}

	err := e.viewer.Open(ctx, a)
	switch {
	case err == nil:
		e.log.Debug("document exported",
			zap.String("kind", string(a.Kind)),
			zap.Int("bytes", len(a.Data)),
			zap.Bool("auto_print", a.AutoPrint))
		return Outcome{Status: Exported, Artifact: a}
	case errors.Is(err, core.ErrViewerUnavailable):
		e.log.Warn("could not open viewer", zap.String("kind", string(a.Kind)), zap.Error(err))
		return Outcome{Status: ViewerUnavailable, Artifact: a, Err: err}
	default:
		return e.failed(fmt.Errorf("opening document: %w", err))
	}
}

func (e *Exporter) noInput() Outcome {
	e.log.Warn("nothing to export: no document and no text")
	return Outcome{Status: NoInput}
}

func (e *Exporter) failed(err error) Outcome {
	e.log.Error("export failed", zap.Error(err))
	return Outcome{Status: Failed, Err: err}
}
