package cmd

import (
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/beedata/beekit/table"
)

var (
	scanTable     string
	scanStart     string
	scanStop      string
	scanPrefix    string
	scanColumns   []string
	scanBatchSize int
	scanLimit     int
	scanReverse   bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a key range and print rows as JSON lines",
	Long: `Scan walks a table's key range in bounded rounds and prints one JSON
object per row. Bound the range with --start/--stop, or with --prefix to
cover exactly the keys beginning with a prefix.

Examples:
  beekit scan --table readings --prefix device-1:
  beekit scan --table readings --start a --stop m --limit 500`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		connector, err := resolveConnector(cfg)
		if err != nil {
			return err
		}

		scanner, err := table.NewScanner(&table.ScannerConfig{
			Connector: connector,
			Table:     scanTable,
			RowStart:  scanStart,
			RowStop:   scanStop,
			RowPrefix: scanPrefix,
			Columns:   scanColumns,
			Reverse:   scanReverse,
			BatchSize: scanBatchSize,
			Limit:     scanLimit,
		})
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(os.Stdout)
		for scanner.Next() {
			for _, row := range scanner.Batch() {
				out := map[string]any{"key": row.Key}
				columns := make(map[string]string, len(row.Columns))
				for col, cell := range row.Columns {
					columns[col] = string(cell.Value)
				}
				out["columns"] = columns
				if err = encoder.Encode(out); err != nil {
					return err
				}
			}
		}
		return scanner.Err()
	},
}

func init() {
	scanCmd.Flags().StringVarP(&scanTable, "table", "t", "", "Table to scan (required)")
	scanCmd.Flags().StringVar(&scanStart, "start", "", "Inclusive lower bound of the key range")
	scanCmd.Flags().StringVar(&scanStop, "stop", "", "Exclusive upper bound of the key range")
	scanCmd.Flags().StringVar(&scanPrefix, "prefix", "", "Scan exactly the keys with this prefix (overrides --start/--stop)")
	scanCmd.Flags().StringSliceVar(&scanColumns, "columns", nil, "Restrict output to these columns (family or family:qualifier)")
	scanCmd.Flags().IntVar(&scanBatchSize, "batch-size", 0, "Rows requested per round")
	scanCmd.Flags().IntVar(&scanLimit, "limit", 0, "Cap on total rows returned (0 = no cap)")
	scanCmd.Flags().BoolVar(&scanReverse, "reverse", false, "Scan in descending key order")
	_ = scanCmd.MarkFlagRequired("table")
}
