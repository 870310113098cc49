package amqp

import (
	"encoding/json"
	"fmt"

	"moneypaz/internal/core"
)

// ChangeMessage is the wire form of a finance state change. It carries the
// full event so consumers never need to read the state store.
type ChangeMessage struct {
	core.ChangeEvent
	// UserID identifies whose state changed. Empty when the publisher is not
	// bound to a user.
	UserID string `json:"userId,omitempty"`
}

// NewChangeMessage wraps an event for publishing.
func NewChangeMessage(ev core.ChangeEvent, userID string) *ChangeMessage {
	return &ChangeMessage{ChangeEvent: ev, UserID: userID}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON decodes a message and rejects unknown event kinds.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Event.IsValid() {
		return nil, fmt.Errorf("unknown event %q", msg.Event)
	}
	if msg.Event.IsMovementEvent() && msg.Movement == nil {
		return nil, fmt.Errorf("%s event without movement", msg.Event)
	}
	return &msg, nil
}
