package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/beedata/beekit/codec"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port    int
	Address string
	// Encoding serializes the message envelopes. Defaults to JSON.
	Encoding codec.Encoding
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Port < 0 {
		errGrp = append(errGrp, fmt.Errorf("invalid port: %d", c.Port))
	}
	if c.Address == "" {
		errGrp = append(errGrp, fmt.Errorf("invalid address: %s", c.Address))
	}
	return errors.Join(errGrp...)
}

// Emitter broadcasts published messages to every connected consumer. A slow
// or dead consumer is dropped rather than allowed to stall the fan-out.
type Emitter struct {
	port     int
	address  string
	listener net.Listener
	encoding codec.Encoding

	emitChan   chan *Message
	procCtx    context.Context
	procCancel context.CancelFunc

	clients    map[net.Conn]bool
	clientsMux sync.Mutex
}

func New(cfg *Config) (*Emitter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	encoding := cfg.Encoding
	if encoding == nil {
		encoding = codec.NewJSON()
	}

	addrString := fmt.Sprintf("%s:%d", cfg.Address, cfg.Port)
	listener, err := net.Listen("tcp", addrString)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addrString, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Emitter{
		listener:   listener,
		port:       cfg.Port,
		address:    cfg.Address,
		encoding:   encoding,
		emitChan:   make(chan *Message, 100000),
		procCtx:    ctx,
		procCancel: cancel,

		clients:    make(map[net.Conn]bool),
		clientsMux: sync.Mutex{},
	}, nil
}

// Addr returns the address the emitter listens on.
func (e *Emitter) Addr() string {
	return e.listener.Addr().String()
}

// Publish implements Producer. Messages are queued and broadcast by the
// emitter's own goroutine.
func (e *Emitter) Publish(msg *Message) error {
	select {
	case e.emitChan <- msg:
		return nil
	case <-e.procCtx.Done():
		return errors.New("emitter is stopped")
	}
}

func (e *Emitter) Start() error {
	go func() {
		for {
			select {
			case <-e.procCtx.Done():
				return
			case msg := <-e.emitChan:
				e.broadcast(msg)
			}
		}
	}()

	// Accept consumers in a separate goroutine
	go func() {
		for {
			select {
			case <-e.procCtx.Done():
				return
			default:
				conn, err := e.listener.Accept()
				if err != nil {
					if e.procCtx.Err() != nil {
						return
					}
					log.Error().Err(err).Msg("failed to accept consumer")
					continue
				}

				go e.handle(conn)
			}
		}
	}()

	return nil
}

func (e *Emitter) Stop() error {
	if e.listener != nil {
		if err := e.listener.Close(); err != nil {
			return fmt.Errorf("failed to close listener: %w", err)
		}
	}

	if e.procCancel != nil {
		e.procCancel()
	}

	e.clientsMux.Lock()
	defer e.clientsMux.Unlock()
	for client := range e.clients {
		_ = client.Close()
		delete(e.clients, client)
	}

	return nil
}

func (e *Emitter) Name() string {
	return "Stream Emitter"
}

// broadcast encodes the envelope and writes it to every connected consumer.
func (e *Emitter) broadcast(msg *Message) {
	data, err := e.encoding.Marshal(msg.envelope())
	if err != nil {
		log.Error().Err(err).Msg("failed to encode stream message")
		return
	}

	// Newline for message framing
	framed := append(data, '\n')

	// no new clients while writing
	e.clientsMux.Lock()
	defer e.clientsMux.Unlock()

	for client := range e.clients {
		// Non-blocking write with short timeout
		_ = client.SetWriteDeadline(time.Now().Add(100 * time.Millisecond))
		if _, err = client.Write(framed); err != nil {
			_ = client.Close()
			delete(e.clients, client)
		}
	}
}

func (e *Emitter) handle(conn net.Conn) {
	defer func() {
		_ = conn.Close()

		e.clientsMux.Lock()
		delete(e.clients, conn)
		e.clientsMux.Unlock()
	}()

	e.clientsMux.Lock()
	e.clients[conn] = true
	e.clientsMux.Unlock()

	log.Debug().Str("consumer", conn.RemoteAddr().String()).Msg("consumer connected")

	// Reading is only to detect disconnection
	buffer := make([]byte, 4096)
	for {
		if _, err := conn.Read(buffer); err != nil {
			if errors.Is(err, io.EOF) {
				log.Debug().Str("consumer", conn.RemoteAddr().String()).Msg("consumer disconnected")
			}
			return
		}
	}
}
