// Package rpc defines the planboard wire contract: Connect procedures, their
// request and response messages, the JSON codec they travel with, and the
// websocket frames pushed by the hub.
//
// Messages are plain Go structs. They are encoded with encoding/json under the
// codec name "json", so any Connect client speaking application/json can call
// the services.
package rpc

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// Codec marshals plain structs as JSON.
type Codec struct{}

var _ connect.Codec = Codec{}

// Name is registered in place of connect's protobuf JSON codec.
func (Codec) Name() string { return "json" }

func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// WithJSON configures a client or handler to use Codec.
func WithJSON() connect.Option {
	return connect.WithCodec(Codec{})
}
