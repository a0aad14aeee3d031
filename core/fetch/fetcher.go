// Package fetch reads rendered HTML pages over HTTP. The CLI uses it when
// collect or export is given a URL: the authoring application serves the
// prescription page with its fields already filled in, and the fetched HTML
// is snapshotted with the usual selector (#receita-print, or body).
//
// The authoring application usually sits behind a login, so callers set a
// session cookie through HTTPFetcher.Header. A login redirect that lands on
// a JSON or plain-text error is rejected instead of being snapshotted as an
// empty prescription.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/gaurav-prasanna/receita/core"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "receita/1.0 (+https://github.com/gaurav-prasanna/receita)"
	// maxPageBytes bounds a fetched page.
	maxPageBytes = 16 << 20
)

// HTTPFetcher fetches pages via HTTP GET.
type HTTPFetcher struct {
	client *http.Client
	// Header is added to every request, e.g. a session cookie for the
	// authoring application.
	Header http.Header
}

// New creates an HTTPFetcher with a 30s timeout.
func New() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: defaultTimeout},
		Header: http.Header{},
	}
}

// Fetch retrieves the HTML of url. Responses outside 2xx, bodies over
// maxPageBytes and non-HTML content types are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range f.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || (mt != "text/html" && mt != "application/xhtml+xml") {
			return nil, fmt.Errorf("%s is %q, not an HTML page", url, ct)
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > maxPageBytes {
		return nil, fmt.Errorf("page %s exceeds %d bytes", url, maxPageBytes)
	}

	return &core.FetchResult{
		URL:        url,
		StatusCode: resp.StatusCode,
		HTML:       string(body),
	}, nil
}
