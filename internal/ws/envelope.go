package ws

import "encoding/json"

// Client -> server events.
const (
	EventJoinChat    = "joinChat"
	EventTyping      = "typing"
	EventStopTyping  = "stopTyping"
	EventSendMessage = "sendMessage"
	EventMarkSeen    = "markSeen"
)

// Server -> client events.
const (
	EventNewMessage        = "newMessage"
	EventUpdateUnreadCount = "updateUnreadCount"
	EventNewNotification   = "newNotification"
	EventMessagesSeen      = "messagesSeen"
	EventError             = "error"
)

// Envelope is the wire format for every live-session message, both directions.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func encodeEnvelope(event string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(Envelope{Event: event, Payload: raw})
}
