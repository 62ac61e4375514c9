package codec

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// JSON encodes values as JSON documents.
type JSON struct{}

func NewJSON() *JSON {
	return &JSON{}
}

func (c *JSON) Name() string {
	return "json"
}

func (c *JSON) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return data, nil
}

func (c *JSON) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}
