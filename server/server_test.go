package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gaurav-prasanna/receita/config"
	"github.com/gaurav-prasanna/receita/core/catalog"
	"github.com/gaurav-prasanna/receita/core/export"
	"github.com/gaurav-prasanna/receita/core/viewer"
)

const testCatalog = `medicines:
  - id: 1
    name: Dipirona 500mg
    title: Dipirona 500mg - 1 cartela
    description: Tomar 1 comprimido de 6/6 horas.
  - id: 2
    name: Soro fisiológico
    title: Soro fisiológico - 1 frasco
    description: Aplicar 2 jatos em cada narina.
    type: nasal
`

type pngRaster struct{ calls int }

func (p *pngRaster) Rasterize(context.Context, string, float64) ([]byte, error) {
	p.calls++
	var buf bytes.Buffer
	err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 6)))
	return buf.Bytes(), err
}

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *pngRaster) {
	t.Helper()
	cat, err := catalog.Load(strings.NewReader(testCatalog))
	require.NoError(t, err)

	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	raster := &pngRaster{}
	// The exporter's own viewer must never be reached from HTTP.
	e := export.New(raster, viewer.Unavailable{}, zap.NewNop())
	return New(e, cat, zap.NewNop(), cfg), raster
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCollect(t *testing.T) {
	s, _ := newTestServer(t, nil)
	body := `{"html":"<div id=\"rx\"><h2>Uso oral</h2><ol><li><input value=\"a\"></li><li><input value=\"b\"></li></ol></div>","selector":"#rx","uppercase":true}`

	rec := do(t, s, http.MethodPost, "/api/collect", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp collectResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "USO ORAL \n\n1. A\n\n2. B\n\n", resp.Text)
	assert.Equal(t, []string{"USO ORAL ", "", "1. A", "", "2. B", ""}, resp.Lines)
}

func TestCollect_Errors(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/collect", `{"html":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/collect", `{"html":"<p>x</p>","selector":"#missing"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/collect", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON body")
}

func TestExport_TreeWritesPDFInline(t *testing.T) {
	s, raster := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/api/export", `{"html":"<div><input value=\"\"></div>"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, raster.calls)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "true", rec.Header().Get("X-Receita-Auto-Print"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestExport_TextPath(t *testing.T) {
	s, raster := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/api/export", `{"text":"Hello"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, raster.calls)
	assert.Equal(t, "false", rec.Header().Get("X-Receita-Auto-Print"))

	rec = do(t, s, http.MethodPost, "/api/export", `{"html":"<div></div>","text":"Hello","format":"text"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, raster.calls)
}

func TestExport_NoInput(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/api/export", `{}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
}

func TestExport_Markdown(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/api/export", `{"html":"<div><h2>Uso oral</h2></div>","format":"markdown"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, rec.Body.String(), "## Uso oral")
}

func TestExport_UnknownFormat(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/api/export", `{"text":"x","format":"docx"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExport_BodyLimit(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.Config) { c.MaxBodyBytes = 16 })
	rec := do(t, s, http.MethodPost, "/api/export", `{"text":"`+strings.Repeat("x", 64)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

// brokenPipe accepts headers but fails every body write, like a client that
// hung up mid-download.
type brokenPipe struct {
	*httptest.ResponseRecorder
	headers int
	writes  int
}

func (b *brokenPipe) WriteHeader(code int) {
	b.headers++
	b.ResponseRecorder.WriteHeader(code)
}

func (b *brokenPipe) Write([]byte) (int, error) {
	b.writes++
	return 0, errors.New("broken pipe")
}

func TestExport_WriteFailureDoesNotAppendError(t *testing.T) {
	s, _ := newTestServer(t, nil)
	for _, body := range []string{
		`{"html":"<div><input value=\"\"></div>"}`,
		`{"text":"Hello","format":"text"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := &brokenPipe{ResponseRecorder: httptest.NewRecorder()}
		s.ServeHTTP(w, req)

		assert.Equal(t, 1, w.headers, body)
		assert.Equal(t, 1, w.writes, body)
		assert.Equal(t, http.StatusOK, w.Code, body)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"), body)
	}
}

func TestAlign(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/api/align", `{"title":"A--B"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Equal(t, "A-B"+strings.Repeat("-", 67), resp["title"])
}

func TestDosage(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/api/dosage", `{"value":"Take 1/1 tablet","cursor":8,"key":"Backspace"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Value  string        `json:"value"`
		Cursor int           `json:"cursor"`
		Atomic bool          `json:"atomic"`
		Tokens []interface{} `json:"tokens"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "Take  tablet", resp.Value)
	assert.Equal(t, 5, resp.Cursor)
	assert.True(t, resp.Atomic)
	assert.Empty(t, resp.Tokens)

	rec = do(t, s, http.MethodPost, "/api/dosage", `{"value":"x","cursor":1,"key":"Enter"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalog(t *testing.T) {
	s, _ := newTestServer(t, nil)

	var resp struct {
		Medicines []catalog.Medicine `json:"medicines"`
	}
	rec := do(t, s, http.MethodGet, "/api/catalog?q=soro", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Medicines, 1)
	assert.Equal(t, catalog.Nasal, resp.Medicines[0].Route)

	rec = do(t, s, http.MethodGet, "/api/catalog?q=zzz", "")
	assert.JSONEq(t, `{"medicines":[]}`, rec.Body.String())
}

func TestPrescription_Describe(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/api/prescription", `{"ids":[2,1,1]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp prescriptionResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, 2, resp.Prescription.Len())
	assert.True(t, strings.HasPrefix(resp.Text, "Uso oral \n\n1. Dipirona 500mg - 1 cartela-"), resp.Text)
	assert.Contains(t, resp.Text, "Uso Nasal")
	assert.Less(t, strings.Index(resp.Text, "Uso oral"), strings.Index(resp.Text, "Uso Nasal"))
	assert.Contains(t, resp.HTML, `id="`+export.PrintRootID+`"`)
}

func TestPrescription_ExportAndErrors(t *testing.T) {
	s, raster := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/prescription", `{"ids":[1],"format":"pdf"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, raster.calls)

	rec = do(t, s, http.MethodPost, "/api/prescription", `{"ids":[],"format":"pdf"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/prescription", `{"ids":[99]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuth(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.Config) { c.APIKey = "k" })

	rec := do(t, s, http.MethodPost, "/api/align", `{"title":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/align", strings.NewReader(`{"title":"x"}`))
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/align", strings.NewReader(`{"title":"x"}`))
	req.Header.Set("Authorization", "Bearer k")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code, "health stays public")
}
