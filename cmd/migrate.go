package cmd

import (
	"fmt"

	"github.com/example/psychly/internal/content"
	"github.com/example/psychly/pkg/models"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the schema and upgrade stored records to the current version",
	Long: `Migrate creates any missing tables and then upgrades every content record
stored with an older schema version. Records are otherwise upgraded lazily
the first time they are read.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		outdated, err := a.contentRepo.Outdated(ctx, models.CurrentSchemaVersion)
		if err != nil {
			return err
		}
		if len(outdated) == 0 {
			fmt.Println("✅ All records are up to date.")
			return nil
		}

		migrator := content.NewMigrator(a.contentRepo, a.gen, a.pools, log)
		failed := 0
		for i := range outdated {
			c := &outdated[i]
			if _, err := migrator.Migrate(ctx, c); err != nil {
				log.Warn("migration failed", "type", c.Type, "date", c.DateKey, "error", err)
				failed++
			}
		}
		fmt.Printf("✅ Migrated %d of %d records\n", len(outdated)-failed, len(outdated))
		if failed > 0 {
			return fmt.Errorf("%d records could not be migrated", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
