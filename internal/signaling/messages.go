package signaling

import "encoding/json"

// MessageType tags a signaling envelope.
type MessageType string

const (
	// Sent by clients.
	TypeRegister  MessageType = "register"
	TypeListHosts MessageType = "list-hosts"
	TypePing      MessageType = "ping"

	// Relayed between clients with From set to the sender.
	TypeOffer  MessageType = "offer"
	TypeAnswer MessageType = "answer"

	// Sent by the relay.
	TypeRegistered       MessageType = "registered"
	TypeHosts            MessageType = "hosts"
	TypeHostsUpdated     MessageType = "hosts-updated"
	TypeHostDisconnected MessageType = "host-disconnected"
	TypePong             MessageType = "pong"
	TypeError            MessageType = "error"
)

// Client roles.
const (
	ClientTypeHost       = "host"
	ClientTypeController = "controller"
)

// Message is the JSON envelope for every signaling exchange. Offers and
// answers carry a complete SDP, with all ICE candidates, as Payload.
type Message struct {
	Type       MessageType     `json:"type"`
	ID         string          `json:"id,omitempty"`
	ClientType string          `json:"clientType,omitempty"`
	From       string          `json:"from,omitempty"`
	Target     string          `json:"target,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	List       []HostInfo      `json:"list,omitempty"`
	HostID     string          `json:"hostId,omitempty"`
	Text       string          `json:"message,omitempty"`
	Timestamp  int64           `json:"timestamp,omitempty"`
}

// HostInfo describes one registered host.
type HostInfo struct {
	ID     string `json:"id"`
	Online bool   `json:"online"`
}

func errorMessage(text string) Message {
	return Message{Type: TypeError, Text: text}
}
