// Package codec provides the value encodings used on stream and config
// boundaries: JSON for interoperable payloads, gob for Go-to-Go binary
// payloads, and plain for raw byte passthrough.
package codec

import (
	"fmt"
	"strings"
)

// Encoding serializes values for transport.
type Encoding interface {
	// Name returns the encoding identifier ("json", "gob", "plain").
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// ByName resolves an encoding from its identifier, case-insensitively.
func ByName(name string) (Encoding, error) {
	switch strings.ToLower(name) {
	case "json":
		return NewJSON(), nil
	case "gob":
		return NewGob(), nil
	case "plain":
		return NewPlain(), nil
	default:
		return nil, fmt.Errorf("unknown encoding: %s", name)
	}
}
