package main

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/catalogimport/internal/database"
)

func migrateCmd(flags *globalFlags) *cobra.Command {
	var (
		down  bool
		steps int
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply catalog schema migrations",
		Long: `Apply pending catalog schema migrations. With --down, roll back
--steps migrations, or all of them when --steps is 0.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if err := cfg.RequireDatabase(); err != nil {
				return err
			}

			pool, err := database.Connect(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			if down {
				return database.MigrateDown(pool, steps, logger)
			}
			return database.Migrate(pool, logger)
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "Roll back migrations instead of applying them")
	cmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back with --down (0 for all)")

	return cmd
}
