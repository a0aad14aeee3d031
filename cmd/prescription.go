package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/receita/core/catalog"
	"github.com/gaurav-prasanna/receita/core/collect"
)

var (
	rxIDs       []int
	rxUppercase bool
	rxSearch    string
)

var prescriptionCmd = &cobra.Command{
	Use:   "prescription",
	Short: "Compose a prescription from catalog medicines and print its transcript",
	Long: `Prescription adds each --id from the catalog (config catalog_path) with its
default aligned title and description, grouped by route, and prints the
transcript. With --search it lists matching medicines instead.

Examples:
  receita prescription --search dipi
  receita prescription --id 3 --id 1 --uppercase`,
	Args: cobra.NoArgs,
	RunE: runPrescription,
}

func init() {
	rootCmd.AddCommand(prescriptionCmd)

	prescriptionCmd.Flags().IntSliceVar(&rxIDs, "id", nil, "Medicine ID to add (repeatable)")
	prescriptionCmd.Flags().BoolVar(&rxUppercase, "uppercase", false, "Upper-case the transcript")
	prescriptionCmd.Flags().StringVar(&rxSearch, "search", "", "List medicines whose name contains this")
}

func runPrescription(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("search") || len(rxIDs) == 0 {
		for _, m := range cat.Search(rxSearch) {
			fmt.Fprintf(os.Stdout, "%4d  %-40s %s\n", m.ID, m.Name, m.Route.Label())
		}
		return nil
	}

	p := catalog.NewPrescription()
	var missing []string
	for _, id := range rxIDs {
		m, ok := cat.Find(id)
		if !ok {
			missing = append(missing, fmt.Sprint(id))
			continue
		}
		if !p.Contains(m) {
			p.Toggle(m)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("unknown medicine id(s): %s", strings.Join(missing, ", "))
	}

	fmt.Fprint(os.Stdout, collect.Collect(p.Document(), rxUppercase))
	return nil
}
