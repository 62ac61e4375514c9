// Package cmd wires the beekit command line. Commands resolve their store
// backend from the loaded configuration and speak to it through the table
// connector boundary.
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/beedata/beekit/config"
	"github.com/beedata/beekit/memstore"
	"github.com/beedata/beekit/sqlstore"
	"github.com/beedata/beekit/table"
)

var (
	configPath string
	debugMode  bool
)

var rootCmd = &cobra.Command{
	Use:   "beekit",
	Short: "Batched writes and paginated scans over a column-family store",
	Long: `beekit loads records into a sorted column-family store and scans them
back in bounded batches.

The store backend comes from the configuration file (--config, or the
CONF_FILE environment variable): "memory" for an in-process store, or
"sqlite" for a file-backed one.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		if debugMode {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (JSON or YAML); defaults to $"+config.EnvConfigFile)
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(encryptCmd)
	rootCmd.AddCommand(decryptCmd)
}

// loadConfig reads the configuration for commands that need a backend.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// resolveConnector builds the table connector named by the configuration.
func resolveConnector(cfg *config.Config) (table.Connector, error) {
	switch cfg.Store.Backend {
	case "", "memory":
		return memstore.New(), nil
	case "sqlite":
		return sqlstore.New(&sqlstore.Config{Path: cfg.Store.Path})
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}
