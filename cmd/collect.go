package cmd

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gaurav-prasanna/receita/core/collect"
)

var (
	collectSelector  string
	collectUppercase bool
	collectCopy      bool
)

var collectCmd = &cobra.Command{
	Use:   "collect <page.html|url|->",
	Short: "Print the text transcript of a prescription page",
	Long: `Collect snapshots the element matched by --selector and prints its
transcript: field values in document order, numbered list items and headings
followed by a blank line.

Examples:
  receita collect receita.html --selector "#prescription"
  receita collect - --uppercase --copy < receita.html`,
	Args: cobra.ExactArgs(1),
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringVar(&collectSelector, "selector", "body", "CSS selector of the document root")
	collectCmd.Flags().BoolVar(&collectUppercase, "uppercase", false, "Upper-case the transcript")
	collectCmd.Flags().BoolVar(&collectCopy, "copy", false, "Also copy the transcript to the clipboard")
}

func runCollect(cmd *cobra.Command, args []string) error {
	root, err := snapshotPage(cmd.Context(), args[0], collectSelector)
	if err != nil {
		return err
	}
	text := collect.Collect(root, collectUppercase)

	if collectCopy {
		if err := clipboard.WriteAll(collect.Clipboard(text)); err != nil {
			logger.Warn("clipboard write failed", zap.Error(err))
			fmt.Fprintln(os.Stderr, "✗ failed to copy text")
		} else {
			fmt.Fprintln(os.Stderr, "✓ text copied")
		}
	}

	fmt.Fprint(os.Stdout, text)
	return nil
}
