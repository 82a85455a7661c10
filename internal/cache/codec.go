package cache

import "encoding/json"

// jsonCodec is the wire codec for the daemon's gRPC methods. Messages are
// plain structs marshalled as JSON, which keeps the service free of a
// protobuf code-generation step; both ends force this codec explicitly.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return "json" }
