package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/receita/core/dosage"
)

var (
	dosageCursor int
	dosageKey    string
)

var dosageCmd = &cobra.Command{
	Use:   "dosage <value>",
	Short: "Apply a deletion keystroke to a dosage field and print the result",
	Long: `Dosage replays a Backspace or Delete at --cursor (in characters) on value.
A keystroke that lands on the edge of a dosage token such as 1/1 or Y/Y
removes the whole token.`,
	Example: `  receita dosage "Tomar 1/1 comprimido" --cursor 9 --key Backspace`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, ok := dosage.ParseKey(dosageKey)
		if !ok {
			return fmt.Errorf("--key must be Backspace or Delete, got %q", dosageKey)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(dosage.Apply(args[0], dosageCursor, key))
	},
}

func init() {
	rootCmd.AddCommand(dosageCmd)

	dosageCmd.Flags().IntVar(&dosageCursor, "cursor", 0, "Cursor position in characters")
	dosageCmd.Flags().StringVar(&dosageKey, "key", "Backspace", "Backspace or Delete")
}
