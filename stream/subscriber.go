package stream

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"github.com/beedata/beekit/codec"
)

// Subscriber consumes newline-framed messages from an emitter. The decoding
// must match the emitter's encoding.
type Subscriber struct {
	conn     net.Conn
	reader   *bufio.Reader
	encoding codec.Encoding
}

// Subscribe connects to an emitter. A nil encoding defaults to JSON.
func Subscribe(address string, encoding codec.Encoding) (*Subscriber, error) {
	if encoding == nil {
		encoding = codec.NewJSON()
	}

	conn, err := net.DialTimeout("tcp", address, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to emitter at %s: %w", address, err)
	}

	return &Subscriber{
		conn:     conn,
		reader:   bufio.NewReader(conn),
		encoding: encoding,
	}, nil
}

// Receive blocks for the next message envelope and decodes it into v.
func (s *Subscriber) Receive(v any) error {
	frame, err := s.reader.ReadBytes('\n')
	if err != nil {
		return fmt.Errorf("failed to read frame: %w", err)
	}
	return s.encoding.Unmarshal(frame[:len(frame)-1], v)
}

func (s *Subscriber) Close() error {
	return s.conn.Close()
}
