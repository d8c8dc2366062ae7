package models

import "encoding/json"

// WSMessage is the envelope for every frame pushed over the projection
// stream.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// WSErrorMessage carries a stream-level error to the client
type WSErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Stream event names
const (
	EventStateUpdate = "state_update"
	EventError       = "error"
)
