// Package protoconnect wires the splitshare.v1 messages to Connect handlers
// and clients.
package protoconnect

import (
	"bytes"
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// codecName replaces Connect's protobuf-only JSON codec for the
// application/json content type.
const codecName = "json"

type jsonCodec struct{}

func (jsonCodec) Name() string { return codecName }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// Unmarshal rejects unknown fields so that typos in requests fail loudly.
func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(msg); err != nil {
		return fmt.Errorf("decode %T: %w", msg, err)
	}
	return nil
}

// WithJSON configures a handler or client to exchange plain Go structs as JSON.
// The service constructors in this package apply it automatically.
func WithJSON() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
