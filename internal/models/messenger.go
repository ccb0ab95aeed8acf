package models

import (
	"time"
)

type User struct {
	UserID    int64
	Username  string
	CreatedAt time.Time
}

// Conversation is the canonical record for an unordered pair of users.
// User1ID < User2ID always holds; the pair is ordered at write time.
type Conversation struct {
	ConversationID     int64
	User1ID            int64
	User2ID            int64
	LastMessageAt      time.Time
	LastMessageContent string
}

type Message struct {
	MessageID      int64
	ConversationID int64
	SenderID       int64
	ReceiverID     int64
	Content        string
	CreatedAt      time.Time
}

type ConversationPage struct {
	Total int64
	Page  int
	Limit int
	Data  []*Conversation
}

type MessagePage struct {
	Total int64
	Page  int
	Limit int
	Data  []*Message
}
