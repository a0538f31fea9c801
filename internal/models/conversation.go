package models

import (
	"fmt"
	"time"
)

// PlaceholderTitle is shown for conversations that have no title yet
const PlaceholderTitle = "New Conversation"

// Message represents a single chat message
type Message struct {
	Role    string
	Content string
	Time    time.Time
}

// Conversation represents a chat conversation with messages
type Conversation struct {
	ID       string
	Title    string
	Messages []Message
	Created  time.Time
	Updated  time.Time
}

// DisplayTitle returns the title, falling back to PlaceholderTitle when empty
func (c Conversation) DisplayTitle() string {
	if c.Title == "" {
		return PlaceholderTitle
	}
	return c.Title
}

// MessageCount returns the number of messages in the conversation
func (c Conversation) MessageCount() int { return len(c.Messages) }

// MetaLine describes the conversation size, e.g. "3 messages"
func (c Conversation) MetaLine() string {
	if n := c.MessageCount(); n != 1 {
		return fmt.Sprintf("%d messages", n)
	}
	return "1 message"
}
