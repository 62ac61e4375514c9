// Package stream publishes record events to attached consumers. The emitter
// is a TCP fan-out: consumers connect, and every published message is
// encoded, newline-framed and broadcast to all of them.
package stream

// Message is one event to publish.
type Message struct {
	// Key optionally identifies the subject of the event.
	Key string `json:"key,omitempty"`
	// Data is the event payload.
	Data any `json:"data"`
	// Meta carries caller metadata merged into the envelope alongside the
	// payload.
	Meta map[string]any `json:"-"`
}

// envelope builds the wire form: the payload under "data", the key when set,
// and the metadata entries merged in.
func (m *Message) envelope() map[string]any {
	env := map[string]any{
		"data": m.Data,
	}
	if m.Key != "" {
		env["key"] = m.Key
	}
	for k, v := range m.Meta {
		env[k] = v
	}
	return env
}

// Producer is the publishing boundary. The TCP Emitter implements it; callers
// that need a broker-backed transport implement it against their client.
type Producer interface {
	Publish(msg *Message) error
}
