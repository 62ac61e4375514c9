package codec

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"
)

func init() {
	// Envelope payloads are free-form maps; register the shapes they carry.
	gob.Register(map[string]any{})
	gob.Register([]any{})
	gob.Register(time.Time{})
}

// Gob encodes values with encoding/gob. Both ends must be Go; use JSON for
// anything that crosses a language boundary.
type Gob struct{}

func NewGob() *Gob {
	return &Gob{}
}

func (c *Gob) Name() string {
	return "gob"
}

func (c *Gob) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&v); err != nil {
		return nil, fmt.Errorf("failed to encode gob: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *Gob) Unmarshal(data []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return fmt.Errorf("failed to decode gob: %w", err)
	}
	return nil
}
