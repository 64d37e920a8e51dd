package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scopewright/scopewright/internal/kb"
)

var catalogFile string

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the knowledge base catalogue",
	Long: `Catalog lists the reference tables the detection engine runs against:
line item codes with reference prices, building-code citations, and
commonly-omitted item templates with their trigger conditions.`,
}

// catalogShowCmd lists the catalogue contents
var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List line items, citations, and omitted-item templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}

		fmt.Printf("LINE ITEMS (%d)\n", len(catalog.LineItems()))
		for _, li := range catalog.LineItems() {
			fmt.Printf("  %-12s %-48s %4s  $%8.2f  %s\n",
				li.Code, li.Description, li.Unit, li.ReferencePrice, li.Category)
		}

		fmt.Printf("\nCITATIONS (%d)\n", len(catalog.Citations()))
		for _, cit := range catalog.Citations() {
			fmt.Printf("  %-18s %s\n", cit.ID, cit.Title)
		}

		fmt.Printf("\nOMITTED ITEM TEMPLATES (%d)\n", len(catalog.Templates()))
		for _, tpl := range catalog.Templates() {
			trigger := "always"
			switch {
			case tpl.Trigger.MinPitch > 0:
				trigger = fmt.Sprintf("pitch >= %.0f/12", tpl.Trigger.MinPitch)
			case tpl.Trigger.MinStories > 0:
				trigger = fmt.Sprintf("stories >= %d", tpl.Trigger.MinStories)
			}
			fmt.Printf("  %-12s %-20s %-8s when %s\n", tpl.LineItemCode, tpl.Name, tpl.Priority, trigger)
		}

		return nil
	},
}

// catalogValidateCmd checks a custom catalogue file
var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a catalogue file's referential integrity",
	RunE: func(cmd *cobra.Command, args []string) error {
		if catalogFile == "" {
			return fmt.Errorf("--file is required for validate")
		}
		catalog, err := kb.LoadFile(catalogFile)
		if err != nil {
			return err
		}
		fmt.Printf("✓ %s: %d line items, %d citations, %d templates\n",
			catalogFile, len(catalog.LineItems()), len(catalog.Citations()), len(catalog.Templates()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogValidateCmd)

	catalogCmd.PersistentFlags().StringVar(&catalogFile, "file", "", "catalogue YAML path (default: built-in)")
}

// loadCatalog resolves the requested catalogue
func loadCatalog() (*kb.Catalog, error) {
	if catalogFile != "" {
		return kb.LoadFile(catalogFile)
	}
	return kb.Default(), nil
}
