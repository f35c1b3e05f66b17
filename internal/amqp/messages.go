package amqp

import (
	"encoding/json"
	"time"
)

// CommandMessage is one inbound chat command: the raw text plus an opaque
// user identifier. The engine knows nothing about rooms or senders beyond
// this pair.
type CommandMessage struct {
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	MessageID string    `json:"message_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ReplyMessage is the outbound reply for one command. At most one reply is
// published per inbound command.
type ReplyMessage struct {
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	InReplyTo string    `json:"in_reply_to,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewReplyMessage builds a reply correlated to the inbound message id.
func NewReplyMessage(userID, text, inReplyTo string) *ReplyMessage {
	return &ReplyMessage{
		UserID:    userID,
		Text:      text,
		InReplyTo: inReplyTo,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the reply to JSON bytes.
func (m *ReplyMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// CommandMessageFromJSON decodes an inbound command body.
func CommandMessageFromJSON(data []byte) (*CommandMessage, error) {
	var msg CommandMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
