package main

import (
	"fmt"
	"os"
	"path/filepath"

	"timetrack/internal/app"
	"timetrack/internal/location"
	"timetrack/internal/timeentry"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var (
		from   string
		to     string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "export-timesheet",
		Short: "Write the timesheet workbook for a date range",
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

			svc := timeentry.NewService(
				deps.SQL,
				timeentry.NewRepository(deps.DB),
				location.NewRepository(deps.DB),
				nil,
				nil,
				lg,
			)
			sheet, err := svc.ExportTimesheet(cmd.Context(), from, to)
			if err != nil {
				return err
			}

			path := filepath.Join(outDir, sheet.Filename)
			if err := os.WriteFile(path, sheet.Content, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
