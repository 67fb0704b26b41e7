package cmd

import (
	"fmt"

	"github.com/example/psychly/internal/excel"
	"github.com/spf13/cobra"
)

var importSheet string

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx|file.csv>",
	Short: "Import experiments and theories from a spreadsheet",
	Long: `Import reads rows with the columns
Date, Type, Name, Info, Period, People, Hypothesis, Rejected, Category, Icon
starting from the second row. Existing records at the same date and type are updated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		importCfg := excel.DefaultImportConfig()
		importCfg.FilePath = args[0]
		importCfg.SheetName = importSheet

		result, err := a.importer.Import(cmd.Context(), importCfg)
		if err != nil {
			return err
		}

		fmt.Printf("✅ Processed: %d  Created: %d  Updated: %d  Unchanged: %d\n",
			result.TotalProcessed, result.Created, result.Updated, result.Skipped)
		if len(result.Errors) > 0 {
			fmt.Printf("\n❌ Errors (%d):\n", len(result.Errors))
			for _, e := range result.Errors {
				fmt.Println("-", e)
			}
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "sheet to import (default: the first sheet)")
	rootCmd.AddCommand(importCmd)
}
