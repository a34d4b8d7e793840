package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/stocksure/deployctl/pkg/errdefs"
	"github.com/stocksure/deployctl/pkg/log"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var (
	flagVerbose bool
	flagCI      bool
	flagDataDir string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, errdefs.Format(err, flagVerbose))
		os.Exit(errdefs.ExitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "deployctl",
	Short: "deployctl - deployment manager for the StockSure notification backend",
	Long: `deployctl orchestrates deployment of the StockSure notification backend
to Render: it validates prerequisites, prepares service-account credentials,
generates the render.yaml service descriptor, keeps a deployment history
ledger, and probes deployed services for health.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := log.InfoLevel
		if flagVerbose {
			level = log.DebugLevel
		}
		log.Init(log.Config{Level: level})

		if !flagCI && os.Getenv("CI") == "true" {
			flagCI = true
		}
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"deployctl version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging and raw error chains")
	rootCmd.PersistentFlags().BoolVar(&flagCI, "ci", false, "Non-interactive CI mode (skips confirmations)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", ".deploy", "Directory for config, history, and logs")

	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(environmentCmd)
}

// Derived data paths.
func configPath() string     { return filepath.Join(flagDataDir, "environments.json") }
func historyPath() string    { return filepath.Join(flagDataDir, "history.json") }
func logsDir() string        { return filepath.Join(flagDataDir, "logs") }
func credentialsOut() string { return filepath.Join(flagDataDir, "credentials.txt") }
