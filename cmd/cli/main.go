// Package cli wires the geosync commands together.
package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/geosync-io/geosync/internal/config"
)

// Global configuration instance
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "geosync",
	Short: "Synchronize GIS group membership with LMS course rosters",
	Long: `Synchronize GIS collaboration groups with LMS course rosters.

Assignments linked to the configured rubric outcome get a GIS group whose
membership is reconciled against the current course roster.

If no config file is specified, geosync looks for config.yaml in:
  - ./
  - ./config/
  - /etc/geosync/
  - ~/.config/geosync/`,
}

// loadConfig loads the configuration based on the --config flag or default locations
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	return config.Load(configFile)
}

// preRunConfigE loads configuration before any command runs
func preRunConfigE(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// check if verbose flag is set
	verbose, err := cmd.Flags().GetBool("verbose")
	if err == nil && verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	return nil
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the configuration file (optional)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
}

// Execute runs the root command; a fatal error exits non-zero.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatalf("Failed to execute command: %v", err)
	}
}
