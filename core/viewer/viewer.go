// Package viewer provides viewing contexts for exported artifacts: the
// desktop opener, an HTTP response and an in-memory capture.
package viewer

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os/exec"
	"runtime"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/gaurav-prasanna/receita/core"
	"github.com/gaurav-prasanna/receita/core/output"
)

// System writes artifacts to disk and opens them with the host's default
// application. Opening is fire-and-forget: the opener is started and not
// waited on by the caller.
type System struct {
	writer *output.Writer
	log    *zap.Logger
	// Opener overrides the platform opener command. The artifact path is
	// appended as the last argument.
	Opener []string
	// Name, when set, is used instead of a generated file name.
	Name string
}

// NewSystem creates a System viewer writing through w.
func NewSystem(w *output.Writer, log *zap.Logger) *System {
	if log == nil {
		log = zap.NewNop()
	}
	return &System{writer: w, log: log}
}

// Open writes a and launches the opener on it. The file is kept on disk
// even when no opener is available.
func (s *System) Open(ctx context.Context, a core.Artifact) error {
	path, err := s.writer.WriteNamed(s.Name, a)
	if err != nil {
		return err
	}
	s.log.Info("artifact written", zap.String("path", path), zap.Bool("auto_print", a.AutoPrint))

	argv := s.Opener
	if len(argv) == 0 {
		argv = platformOpener()
	}
	if len(argv) == 0 {
		return fmt.Errorf("%w: no opener for %s", core.ErrViewerUnavailable, runtime.GOOS)
	}
	bin, err := exec.LookPath(argv[0])
	if err != nil {
		return fmt.Errorf("%w: %s: %v", core.ErrViewerUnavailable, argv[0], err)
	}

	args := append(append([]string{}, argv[1:]...), path)
	cmd := exec.Command(bin, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: starting %s: %v", core.ErrViewerUnavailable, argv[0], err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			s.log.Debug("opener exited", zap.String("opener", argv[0]), zap.Error(err))
		}
	}()
	return nil
}

func platformOpener() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler"}
	case "linux", "freebsd", "openbsd", "netbsd":
		return []string{"xdg-open"}
	}
	return nil
}

// Response is the viewing context of an HTTP request: the artifact is
// written inline so the browser displays it in place.
type Response struct {
	W        http.ResponseWriter
	Filename string
}

// Open writes a as the response body.
func (r Response) Open(_ context.Context, a core.Artifact) error {
	if r.W == nil {
		return core.ErrViewerUnavailable
	}
	name := r.Filename
	if name == "" {
		name = "receita" + a.Extension()
	}

	h := r.W.Header()
	h.Set("Content-Type", a.ContentType())
	h.Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": name}))
	h.Set("Content-Length", strconv.Itoa(len(a.Data)))
	h.Set("X-Receita-Auto-Print", strconv.FormatBool(a.AutoPrint))
	r.W.WriteHeader(http.StatusOK)
	if _, err := r.W.Write(a.Data); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	return nil
}

// Capture keeps every artifact it is asked to open.
type Capture struct {
	mu        sync.Mutex
	artifacts []core.Artifact
}

// Open records a.
func (c *Capture) Open(_ context.Context, a core.Artifact) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.artifacts = append(c.artifacts, a)
	return nil
}

// Last returns the most recent artifact.
func (c *Capture) Last() (core.Artifact, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.artifacts) == 0 {
		return core.Artifact{}, false
	}
	return c.artifacts[len(c.artifacts)-1], true
}

// Len returns how many artifacts were opened.
func (c *Capture) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.artifacts)
}

// Unavailable is a viewer that can never open a viewing context.
type Unavailable struct{}

// Open always fails with core.ErrViewerUnavailable.
func (Unavailable) Open(context.Context, core.Artifact) error {
	return core.ErrViewerUnavailable
}
