// Package flux builds Flux query text for time-series lookups keyed by a
// device hash. The package stays at the query-text boundary: callers hand the
// string to whatever InfluxDB client they run.
package flux

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Query renders Flux source text.
type Query interface {
	Build() (string, error)
}

// Raw passes pre-written Flux source through unchanged.
type Raw string

func (r Raw) Build() (string, error) {
	if strings.TrimSpace(string(r)) == "" {
		return "", errors.New("query text is empty")
	}
	return string(r), nil
}

// HashQuery selects the pivoted value series of one hashed device over a
// time window.
type HashQuery struct {
	Bucket      string
	Measurement string
	Hash        string
	Start       time.Time
	End         time.Time
}

func (q *HashQuery) validate() error {
	var errGrp []error
	if q.Bucket == "" {
		errGrp = append(errGrp, errors.New("bucket is required"))
	}
	if q.Measurement == "" {
		errGrp = append(errGrp, errors.New("measurement is required"))
	}
	if q.Hash == "" {
		errGrp = append(errGrp, errors.New("hash is required"))
	}
	if q.End.Before(q.Start) {
		errGrp = append(errGrp, fmt.Errorf("window end %s precedes start %s", q.End, q.Start))
	}
	return errors.Join(errGrp...)
}

// Build renders the query. Rows flagged as null placeholders are filtered
// out, and fields are pivoted into columns so each result row carries the
// value with its window-end and is-real markers.
func (q *HashQuery) Build() (string, error) {
	if err := q.validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "from(bucket: %q)\n", q.Bucket)
	fmt.Fprintf(&b, "  |> range(start: time(v: %d), stop: time(v: %d))\n",
		q.Start.UnixNano(), q.End.UnixNano())
	fmt.Fprintf(&b, "  |> filter(fn: (r) => r[\"_measurement\"] == %q)\n", q.Measurement)
	fmt.Fprintf(&b, "  |> filter(fn: (r) => r[\"hash\"] == %q)\n", q.Hash)
	b.WriteString("  |> pivot(rowKey: [\"_time\"], columnKey: [\"_field\"], valueColumn: \"_value\")\n")
	b.WriteString("  |> filter(fn: (r) => r[\"is_null\"] == 0.0)\n")
	b.WriteString("  |> keep(columns: [\"_time\", \"value\", \"end\", \"isReal\"])")
	return b.String(), nil
}
