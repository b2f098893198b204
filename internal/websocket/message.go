package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	// Client to Server
	MessageTypeNavigate MessageType = "NAVIGATE"
	MessageTypeRefresh  MessageType = "REFRESH"

	// Server to Client
	MessageTypeDetail MessageType = "DETAIL"
	MessageTypeError  MessageType = "ERROR"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// Client to Server payloads

type NavigatePayload struct {
	GameID string `json:"gameId"`
}

// Server to Client payloads

// DetailPayload carries a freshly rendered game page fragment.
type DetailPayload struct {
	GameID string `json:"gameId"`
	Title  string `json:"title,omitempty"`
	HTML   string `json:"html"`
	Error  string `json:"error,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
