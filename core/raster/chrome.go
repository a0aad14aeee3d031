// Package raster renders print pages to bitmaps with a headless Chrome
// driven over the DevTools protocol.
package raster

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/gaurav-prasanna/receita/core/export"
)

// A4 at 96 CSS pixels per inch.
const (
	viewportWidth  = 794
	viewportHeight = 1123
)

// Config selects how Chrome is reached.
type Config struct {
	// ControlURL connects to a running Chrome's DevTools endpoint.
	ControlURL string
	// Bin is the Chrome binary to launch when ControlURL is empty. Empty
	// lets the launcher find or download one.
	Bin string
	// Headless launches Chrome without a window.
	Headless bool
}

// Chrome rasterizes HTML pages. The browser is started on first use and
// shared by all calls; each call gets its own page, closed before return.
type Chrome struct {
	cfg Config
	log *zap.Logger

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// NewChrome creates a Chrome rasterizer. No browser is started until the
// first Rasterize call.
func NewChrome(cfg Config, log *zap.Logger) *Chrome {
	if log == nil {
		log = zap.NewNop()
	}
	return &Chrome{cfg: cfg, log: log}
}

func (c *Chrome) ensureBrowser() (*rod.Browser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browser != nil {
		if _, err := c.browser.Version(); err == nil {
			return c.browser, nil
		}
		c.log.Warn("stale browser connection, reconnecting")
		_ = c.browser.Close()
		c.browser = nil
	}

	controlURL := c.cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(c.cfg.Headless)
		if c.cfg.Bin != "" {
			l = l.Bin(c.cfg.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		c.launcher = l
		controlURL = u
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	c.log.Debug("chrome connected", zap.String("control_url", controlURL))
	c.browser = b
	return b, nil
}

// Rasterize loads page into a fresh A4-sized tab at the given device scale
// and captures the print root element as PNG.
func (c *Chrome) Rasterize(ctx context.Context, page string, scale float64) ([]byte, error) {
	if scale <= 0 {
		return nil, errors.New("scale must be positive")
	}
	b, err := c.ensureBrowser()
	if err != nil {
		return nil, err
	}

	p, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	// p stays unbound so that closing still works after ctx is done.
	defer func() {
		if err := p.Close(); err != nil {
			c.log.Warn("closing page", zap.Error(err))
		}
	}()
	pc := p.Context(ctx)

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: scale,
		Mobile:            false,
	}).Call(pc); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	if err := pc.SetDocumentContent(page); err != nil {
		return nil, fmt.Errorf("load print page: %w", err)
	}
	if err := pc.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait for print page: %w", err)
	}

	el, err := pc.Element("#" + export.PrintRootID)
	if err != nil {
		return nil, fmt.Errorf("find print root: %w", err)
	}
	png, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, fmt.Errorf("capture print root: %w", err)
	}
	return png, nil
}

// Close shuts the browser down if this rasterizer started or connected it.
func (c *Chrome) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.browser != nil {
		err = c.browser.Close()
		c.browser = nil
	}
	if c.launcher != nil {
		c.launcher.Cleanup()
		c.launcher = nil
	}
	return err
}
