package codec

import (
	"errors"
	"fmt"
)

// Plain passes byte and string payloads through untouched.
type Plain struct{}

func NewPlain() *Plain {
	return &Plain{}
}

func (c *Plain) Name() string {
	return "plain"
}

func (c *Plain) Marshal(v any) ([]byte, error) {
	switch t := v.(type) {
	case []byte:
		return t, nil
	case string:
		return []byte(t), nil
	default:
		return nil, fmt.Errorf("plain encoding accepts only bytes or strings, got %T", v)
	}
}

func (c *Plain) Unmarshal(data []byte, v any) error {
	switch t := v.(type) {
	case *[]byte:
		*t = data
		return nil
	case *string:
		*t = string(data)
		return nil
	default:
		return errors.New("plain decoding targets only *[]byte or *string")
	}
}
