package cache

// Wire messages for the handle-cache service. The daemon never sees a
// password or a decrypted store: it holds only the derived master key per
// store file, and clients re-open the file from disk on every hit.

type LookupRequest struct {
	Path string `json:"path"`
}

type LookupResponse struct {
	Found bool   `json:"found"`
	Key   []byte `json:"key,omitempty"`
}

type RegisterRequest struct {
	Path       string `json:"path"`
	Key        []byte `json:"key"`
	TTLSeconds int64  `json:"ttl_seconds"`
}

type RegisterResponse struct{}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}
