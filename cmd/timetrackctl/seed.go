package main

import (
	"fmt"

	"timetrack/internal/app"

	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default accounts and office location",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lg, err := loadConfig()
			if err != nil {
				return err
			}
			defer lg.Sync()

			deps, err := app.Connect(cfg, lg)
			if err != nil {
				return err
			}
			defer deps.Close()

			if migrate {
				if err := app.Migrate(deps.DB); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
			}

			res, err := app.Seeder(deps).Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "users created: %d, location created: %t\n",
				res.UsersCreated, res.LocationCreated)
			return nil
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "run schema migration first")
	return cmd
}
