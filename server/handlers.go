package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/gaurav-prasanna/receita/core/align"
	"github.com/gaurav-prasanna/receita/core/catalog"
	"github.com/gaurav-prasanna/receita/core/collect"
	"github.com/gaurav-prasanna/receita/core/document"
	"github.com/gaurav-prasanna/receita/core/dosage"
	"github.com/gaurav-prasanna/receita/core/export"
	"github.com/gaurav-prasanna/receita/core/viewer"
)

type collectRequest struct {
	HTML      string `json:"html"`
	Selector  string `json:"selector"`
	Uppercase bool   `json:"uppercase"`
}

type collectResponse struct {
	Text  string   `json:"text"`
	Lines []string `json:"lines"`
}

func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	var req collectRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.HTML == "" {
		jsonError(w, "html is required", http.StatusBadRequest)
		return
	}
	root, err := document.FromHTMLString(req.HTML, req.Selector)
	if err != nil {
		snapshotError(w, err)
		return
	}
	text := collect.Collect(root, req.Uppercase)
	writeJSON(w, http.StatusOK, collectResponse{Text: text, Lines: collect.Lines(text)})
}

type exportRequest struct {
	HTML     string `json:"html"`
	Selector string `json:"selector"`
	Text     string `json:"text"`
	// Format is "pdf" (default: tree when html is given, else text),
	// "text" (text path only) or "markdown".
	Format string `json:"format"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if !s.decode(w, r, &req) {
		return
	}

	var root *document.Node
	if req.HTML != "" && req.Format != "text" {
		var err error
		root, err = document.FromHTMLString(req.HTML, req.Selector)
		if err != nil {
			snapshotError(w, err)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.ExportTimeout)
	defer cancel()
	ww := statusTracking(w, r)
	e := s.exporter.To(viewer.Response{W: ww})

	var out export.Outcome
	switch req.Format {
	case "", "pdf":
		out = e.Export(ctx, root, req.Text)
	case "text":
		out = e.FromText(ctx, req.Text)
	case "markdown":
		out = e.Markdown(ctx, root)
	default:
		jsonError(w, fmt.Sprintf("unknown format %q", req.Format), http.StatusBadRequest)
		return
	}
	s.writeOutcome(ww, r, out)
}

// writeOutcome answers for the outcomes that did not already stream the
// artifact into the response. Once the viewer has sent headers a failure can
// only be logged.
func (s *Server) writeOutcome(w middleware.WrapResponseWriter, r *http.Request, out export.Outcome) {
	if out.Status == export.Exported {
		return
	}
	if w.Status() != 0 {
		s.log.Error("export failed after response started",
			zap.String("path", r.URL.Path),
			zap.Int("bytes", w.BytesWritten()),
			zap.Error(out.Err))
		return
	}

	switch out.Status {
	case export.NoInput:
		w.WriteHeader(http.StatusNoContent)
	case export.ViewerUnavailable:
		jsonError(w, "viewer unavailable", http.StatusServiceUnavailable)
	default:
		s.log.Error("export failed", zap.String("path", r.URL.Path), zap.Error(out.Err))
		jsonError(w, "export failed: "+out.Err.Error(), http.StatusInternalServerError)
	}
}

// statusTracking reuses the request logger's wrapper when present.
func statusTracking(w http.ResponseWriter, r *http.Request) middleware.WrapResponseWriter {
	if ww, ok := w.(middleware.WrapResponseWriter); ok {
		return ww
	}
	return middleware.NewWrapResponseWriter(w, r.ProtoMajor)
}

type alignRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleAlign(w http.ResponseWriter, r *http.Request) {
	var req alignRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"title": align.Title(req.Title)})
}

type dosageRequest struct {
	Value  string `json:"value"`
	Cursor int    `json:"cursor"`
	Key    string `json:"key"`
}

type dosageResponse struct {
	dosage.Edit
	Tokens []dosage.Span `json:"tokens"`
}

func (s *Server) handleDosage(w http.ResponseWriter, r *http.Request) {
	var req dosageRequest
	if !s.decode(w, r, &req) {
		return
	}
	key, ok := dosage.ParseKey(req.Key)
	if !ok {
		jsonError(w, fmt.Sprintf("key must be Backspace or Delete, got %q", req.Key), http.StatusBadRequest)
		return
	}
	edit := dosage.Apply(req.Value, req.Cursor, key)
	writeJSON(w, http.StatusOK, dosageResponse{Edit: edit, Tokens: dosage.Tokens(edit.Value)})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	meds := s.catalog.Search(r.URL.Query().Get("q"))
	if meds == nil {
		meds = []catalog.Medicine{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"medicines": meds})
}

type prescriptionRequest struct {
	IDs       []int `json:"ids"`
	Uppercase bool  `json:"uppercase"`
	// Format, when set, exports the composed document instead of
	// describing it: "pdf", "text" or "markdown".
	Format string `json:"format"`
}

type prescriptionResponse struct {
	Prescription *catalog.Prescription `json:"prescription"`
	Text         string                `json:"text"`
	HTML         string                `json:"html"`
}

func (s *Server) handlePrescription(w http.ResponseWriter, r *http.Request) {
	var req prescriptionRequest
	if !s.decode(w, r, &req) {
		return
	}

	p := catalog.NewPrescription()
	for _, id := range req.IDs {
		m, ok := s.catalog.Find(id)
		if !ok {
			jsonError(w, fmt.Sprintf("unknown medicine id %d", id), http.StatusBadRequest)
			return
		}
		if !p.Contains(m) {
			p.Toggle(m)
		}
	}
	doc := p.Document()
	text := collect.Collect(doc, req.Uppercase)

	if req.Format != "" {
		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.ExportTimeout)
		defer cancel()
		ww := statusTracking(w, r)
		e := s.exporter.To(viewer.Response{W: ww})

		var out export.Outcome
		switch req.Format {
		case "pdf":
			if p.Len() == 0 {
				doc = nil
			}
			out = e.Export(ctx, doc, text)
		case "text":
			out = e.FromText(ctx, text)
		case "markdown":
			out = e.Markdown(ctx, doc)
		default:
			jsonError(w, fmt.Sprintf("unknown format %q", req.Format), http.StatusBadRequest)
			return
		}
		s.writeOutcome(ww, r, out)
		return
	}

	fragment, err := export.PrintFragment(doc)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, prescriptionResponse{Prescription: p, Text: text, HTML: fragment})
}

// decode reads a JSON body no larger than the configured limit. It writes
// the error response itself and reports whether decoding succeeded.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.cfg.MaxBodyBytes), http.StatusRequestEntityTooLarge)
			return false
		}
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func snapshotError(w http.ResponseWriter, err error) {
	if errors.Is(err, document.ErrNoMatch) {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	jsonError(w, err.Error(), http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
