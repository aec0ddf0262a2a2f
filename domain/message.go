// Package domain contains core concepts of the chat system.
// This file defines Message and the frames exchanged on the socket.
// Messages are immutable once built by the dispatcher.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents a stored chat event. Timestamp is in unix seconds.
type Message struct {
	ID        uuid.UUID
	From      string
	To        string
	Body      string
	Timestamp int64
}

func NewMessage(from, to, body string, at time.Time) Message {
	return Message{
		ID:        uuid.New(),
		From:      from,
		To:        to,
		Body:      body,
		Timestamp: at.Unix(),
	}
}

// InboundFrame is what a client writes on its socket.
type InboundFrame struct {
	To      string `json:"to" validate:"required"`
	Message string `json:"message"`
}

// OutboundMessage is delivered to both the sender and the recipient.
type OutboundMessage struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// OutboundError is only ever sent to the sender.
type OutboundError struct {
	Error string `json:"error"`
}

func (m Message) ToOutbound() OutboundMessage {
	return OutboundMessage{
		From:      m.From,
		To:        m.To,
		Message:   m.Body,
		Timestamp: m.Timestamp,
	}
}

// Counterpart returns the other side of the conversation seen from user.
func (m Message) Counterpart(user string) string {
	if m.From == user {
		return m.To
	}
	return m.From
}
