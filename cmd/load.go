package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/beedata/beekit/table"
)

var (
	loadTable     string
	loadMappings  []string
	loadRowFields []string
	loadBatchSize int
)

var loadCmd = &cobra.Command{
	Use:   "load [file]",
	Short: "Write JSON records into a table",
	Long: `Load reads JSON records (one object per line) from a file or stdin and
writes them into a table in batches.

Each --map entry routes record fields into a column family:
  --map "info=sensor,unit"   take the sensor and unit fields into info
  --map "data=*"             take every remaining field into data

Row keys come from --row-fields, joined with "~"; without it each record
gets a generated run-scoped key.

Examples:
  beekit load readings.jsonl --table readings --map "data=*"
  cat readings.jsonl | beekit load --table readings \
    --map "info=sensor" --map "data=*" --row-fields building,sensor`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		connector, err := resolveConnector(cfg)
		if err != nil {
			return err
		}

		mapping, err := parseMappings(loadMappings)
		if err != nil {
			return err
		}

		writer, err := table.NewWriter(&table.WriterConfig{
			Connector: connector,
			Table:     loadTable,
			Mapping:   mapping,
			RowFields: loadRowFields,
			BatchSize: loadBatchSize,
		})
		if err != nil {
			return err
		}

		records, err := readRecords(args)
		if err != nil {
			return err
		}
		if err = writer.Save(records); err != nil {
			return err
		}

		log.Info().Int("records", len(records)).Str("table", loadTable).Msg("load complete")
		return nil
	},
}

func init() {
	loadCmd.Flags().StringVarP(&loadTable, "table", "t", "", "Destination table (required)")
	loadCmd.Flags().StringArrayVarP(&loadMappings, "map", "m", nil, `Column family mapping, "family=field,field" or "family=*" (required)`)
	loadCmd.Flags().StringSliceVar(&loadRowFields, "row-fields", nil, "Record fields composed into the row key")
	loadCmd.Flags().IntVar(&loadBatchSize, "batch-size", 0, "Records per write batch")
	_ = loadCmd.MarkFlagRequired("table")
	_ = loadCmd.MarkFlagRequired("map")
}

// parseMappings turns the --map flags into an ordered column family mapping.
func parseMappings(entries []string) (table.Mapping, error) {
	var mapping table.Mapping
	for _, entry := range entries {
		family, spec, ok := strings.Cut(entry, "=")
		if !ok || family == "" {
			return nil, fmt.Errorf("malformed mapping %q, want family=field,... or family=*", entry)
		}
		if spec == "*" {
			mapping = append(mapping, table.FamilyMap{Family: family, Select: table.AllFields()})
			continue
		}
		var fields []string
		for _, f := range strings.Split(spec, ",") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
		mapping = append(mapping, table.FamilyMap{Family: family, Select: table.Columns(fields...)})
	}
	return mapping, nil
}

// readRecords decodes one JSON object per line from the file argument, or
// stdin when no file is given.
func readRecords(args []string) ([]table.Record, error) {
	var in io.Reader = os.Stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}

	var records []table.Record
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var fields map[string]any
		if err := json.Unmarshal([]byte(text), &fields); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, table.RecordFromMap(fields))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("no records in input")
	}
	return records, nil
}
