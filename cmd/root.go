// Package cmd implements the receita CLI using Cobra.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gaurav-prasanna/receita/config"
	"github.com/gaurav-prasanna/receita/core"
	"github.com/gaurav-prasanna/receita/core/catalog"
	"github.com/gaurav-prasanna/receita/core/document"
	"github.com/gaurav-prasanna/receita/core/fetch"
)

// Persistent flag variables.
var (
	flagConfig  string
	flagVerbose bool
)

// Set up by the root command before any subcommand runs.
var (
	cfg    config.Config
	logger = zap.NewNop()
)

var fetcher core.Fetcher = fetch.New()

var rootCmd = &cobra.Command{
	Use:   "receita",
	Short: "receita — compose, transcribe and export prescription documents",
	Long: `receita turns a rendered prescription page into a clipboard transcript
or a printable A4 PDF, and exposes the same operations over HTTP.

Usage:
  receita collect <page.html|url|-> [flags]
  receita export <page.html|url|-> [flags]
  receita serve`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return err
		}
		logger, err = newLogger(flagVerbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", os.Getenv("RECEITA_CONFIG"), "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zc.Build()
}

// readPage returns the HTML named by src: an http(s) URL, "-" for stdin or
// a file path.
func readPage(ctx context.Context, src string) (string, error) {
	switch {
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		res, err := fetcher.Fetch(ctx, src)
		if err != nil {
			return "", err
		}
		return res.HTML, nil
	case src == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(src)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", src, err)
		}
		return string(data), nil
	}
}

// snapshotPage reads src and snapshots the element matched by selector.
func snapshotPage(ctx context.Context, src, selector string) (*document.Node, error) {
	page, err := readPage(ctx, src)
	if err != nil {
		return nil, err
	}
	root, err := document.FromHTMLString(page, selector)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", src, err)
	}
	return root, nil
}

// loadCatalog opens the configured catalog. A missing path yields an empty
// catalog.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return &catalog.Catalog{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()
	return catalog.Load(f)
}
