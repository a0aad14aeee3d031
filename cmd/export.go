package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/receita/core"
	"github.com/gaurav-prasanna/receita/core/collect"
	"github.com/gaurav-prasanna/receita/core/document"
	"github.com/gaurav-prasanna/receita/core/export"
	"github.com/gaurav-prasanna/receita/core/output"
	"github.com/gaurav-prasanna/receita/core/raster"
	"github.com/gaurav-prasanna/receita/core/viewer"
)

var (
	exportSelector   string
	exportText       string
	exportTranscript bool
	exportUppercase  bool
	exportMarkdown   bool
	exportOutputDir  string
	exportName       string
	exportStdout     bool
)

var exportCmd = &cobra.Command{
	Use:   "export [page.html|url|-]",
	Short: "Export a prescription page or a transcript as a printable PDF",
	Long: `Export snapshots the element matched by --selector, rasterizes it onto a
single A4 page and opens the PDF, which asks for the print dialog on open.

With --text (or --transcript) the PDF holds the plain transcript instead and
opens without printing.

Examples:
  receita export receita.html --selector "#prescription"
  receita export https://app.local/receita/12 --transcript --uppercase
  receita export --text "Dipirona 500mg" --output_dir ./out
  receita export receita.html --markdown --stdout > receita.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportSelector, "selector", "body", "CSS selector of the document root")
	exportCmd.Flags().StringVar(&exportText, "text", "", "Export this text instead of a page")
	exportCmd.Flags().BoolVar(&exportTranscript, "transcript", false, "Export the collected transcript of the page")
	exportCmd.Flags().BoolVar(&exportUppercase, "uppercase", false, "Upper-case the transcript (with --transcript)")
	exportCmd.Flags().BoolVar(&exportMarkdown, "markdown", false, "Export Markdown instead of PDF")
	exportCmd.Flags().StringVar(&exportOutputDir, "output_dir", "", "Output directory (default: config output_dir or current directory)")
	exportCmd.Flags().StringVar(&exportName, "name", "", "Output file name (default: <kind>-<uuid>)")
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "Write the document to stdout instead of opening it")
}

func runExport(cmd *cobra.Command, args []string) error {
	if err := validateExportFlags(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ExportTimeout)
	defer cancel()

	var root *document.Node
	text := exportText
	if len(args) == 1 {
		n, err := snapshotPage(ctx, args[0], exportSelector)
		if err != nil {
			return err
		}
		if exportTranscript {
			text = collect.Collect(n, exportUppercase)
		} else {
			root = n
		}
	}

	var capture viewer.Capture
	var v core.Viewer = &capture
	if !exportStdout {
		sys, err := systemViewer()
		if err != nil {
			return err
		}
		v = sys
	}

	e, closeRaster := newExporter(v)
	defer closeRaster()

	var out export.Outcome
	if exportMarkdown {
		out = e.Markdown(ctx, root)
	} else {
		out = e.Export(ctx, root, text)
	}

	switch out.Status {
	case export.Failed:
		return out.Err
	case export.NoInput, export.ViewerUnavailable:
		// Already logged; the file, if any, is kept on disk.
		return nil
	}

	if exportStdout {
		a, _ := capture.Last()
		if _, err := os.Stdout.Write(a.Data); err != nil {
			return fmt.Errorf("writing stdout: %w", err)
		}
	}
	return nil
}

func validateExportFlags(args []string) error {
	if len(args) == 1 && exportText != "" {
		return errors.New("--text and a page argument are mutually exclusive")
	}
	if exportTranscript && len(args) == 0 {
		return errors.New("--transcript needs a page argument")
	}
	if exportMarkdown && (exportTranscript || exportText != "") {
		return errors.New("--markdown exports a page, not a transcript")
	}
	if exportUppercase && !exportTranscript {
		return errors.New("--uppercase only applies with --transcript")
	}
	return nil
}

func systemViewer() (*viewer.System, error) {
	dir := exportOutputDir
	if dir == "" {
		dir = cfg.OutputDir
	}
	w, err := output.New(dir)
	if err != nil {
		return nil, fmt.Errorf("initializing output writer: %w", err)
	}
	v := viewer.NewSystem(w, logger)
	v.Opener = cfg.Opener
	v.Name = exportName
	return v, nil
}

// newExporter wires the Chrome rasterizer to v. The browser is only started
// if the tree path is taken; the returned func shuts it down.
func newExporter(v core.Viewer) (*export.Exporter, func()) {
	chrome := raster.NewChrome(raster.Config{
		ControlURL: cfg.ChromeURL,
		Bin:        cfg.ChromeBin,
		Headless:   cfg.Headless,
	}, logger)

	e := export.New(chrome, v, logger,
		export.WithScale(cfg.Scale),
		export.WithFontSize(cfg.TextFontSize),
	)
	return e, func() {
		if err := chrome.Close(); err != nil {
			logger.Sugar().Debugw("closing chrome", "error", err)
		}
	}
}
