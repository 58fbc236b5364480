package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	TypeAlertNew     MessageType = "alert_new"
	TypeAlertExpired MessageType = "alert_expired"
	TypeSyncComplete MessageType = "sync_complete"
	TypeAck          MessageType = "ack"
	TypePing         MessageType = "ping"
	TypePong         MessageType = "pong"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// AlertExpiredPayload tells connected clients to drop a cached alert.
type AlertExpiredPayload struct {
	AlertID string `json:"alert_id"`
}

// SyncCompletePayload notifies a user's other devices that one device just
// drained its queue, so they can refresh instead of waiting for the ticker.
type SyncCompletePayload struct {
	DeviceID string    `json:"device_id"`
	SyncTime time.Time `json:"sync_time"`
}

type AckPayload struct {
	MessageID string `json:"message_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = bytes
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Payload:   payloadBytes,
	}, nil
}

func (m *Message) UnmarshalPayload(v interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
