package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/receita/core/align"
)

var alignCmd = &cobra.Command{
	Use:     "align <title...>",
	Short:   "Pad a medicine title with dashes to the aligned width",
	Example: `  receita align "Dipirona 500mg - 1 cartela"`,
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(os.Stdout, align.Title(strings.Join(args, " ")))
	},
}

func init() {
	rootCmd.AddCommand(alignCmd)
}
