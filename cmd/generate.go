package cmd

import (
	"fmt"

	"github.com/example/psychly/internal/scheduler"
	"github.com/example/psychly/pkg/models"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate today's experiment and theory if they don't exist yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		sched := scheduler.New(a.resolver, a.userRepo, nil, cfg.NotificationHour, log)
		if err := sched.Pregenerate(cmd.Context()); err != nil {
			return err
		}

		today := a.resolver.Today()
		for _, t := range models.ContentTypes {
			c, err := a.contentRepo.Get(cmd.Context(), t, today)
			if err != nil {
				return err
			}
			if c != nil {
				fmt.Printf("✅ %s %s: %s\n", today, t, c.Name)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
