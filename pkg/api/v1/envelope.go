package v1

import "encoding/json"

// Envelope is the body shape of every backend response, errors included.
type Envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// RawEnvelope keeps data undecoded so callers can pick the payload type later.
type RawEnvelope = Envelope[json.RawMessage]
