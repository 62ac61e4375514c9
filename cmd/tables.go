package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beedata/beekit/table"
)

var tablesFilter string

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the store's tables",
	Long: `Tables prints the table names in the configured store, one per line.
The --filter pattern is a regular expression matched against the start of
each name.

Examples:
  beekit tables
  beekit tables --filter "readings_"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		connector, err := resolveConnector(cfg)
		if err != nil {
			return err
		}

		names, err := table.ListTables(connector, tablesFilter)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	tablesCmd.Flags().StringVarP(&tablesFilter, "filter", "f", "", "Regular expression matched against name prefixes")
}
