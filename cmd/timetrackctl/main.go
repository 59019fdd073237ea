package main

import (
	"fmt"
	"os"

	"timetrack/internal/config"
	"timetrack/internal/shared/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:           "timetrackctl",
		Short:         "Operational commands for the TimeTrack backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of timetrackctl",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "timetrackctl version %s\n", version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", "", "path to configuration file (defaults to $CONFIG_FILE)")
	rootCmd.AddCommand(versionCmd, newSeedCmd(), newExportCmd())
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	lg, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, err
	}
	zap.ReplaceGlobals(lg)
	return cfg, lg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
