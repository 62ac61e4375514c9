package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMappings(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	mapping, err := parseMappings([]string{"info=sensor, unit", "data=*"})
	req.NoError(err)
	req.Equal([]string{"info", "data"}, mapping.Families())

	_, err = parseMappings([]string{"no-equals"})
	req.Error(err)

	_, err = parseMappings([]string{"=fields"})
	req.Error(err)
}

func TestReadRecords(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	path := filepath.Join(t.TempDir(), "records.jsonl")
	req.NoError(os.WriteFile(path, []byte(`
{"sensor": "temp", "value": 21.5}

{"sensor": "hum", "value": 40}
`), 0o644))

	records, err := readRecords([]string{path})
	req.NoError(err)
	req.Len(records, 2)

	v, ok := records[0].Get("sensor")
	req.True(ok)
	req.Equal("temp", v)

	_, err = readRecords([]string{filepath.Join(t.TempDir(), "missing.jsonl")})
	req.Error(err)
}
