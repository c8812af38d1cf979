package models

import "time"

type Message struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	ChatID    string    `bson:"chat_id" json:"chat_id"`
	SenderID  string    `bson:"sender_id" json:"sender_id"`
	Content   string    `bson:"content" json:"content"`
	ReadBy    []string  `bson:"read_by" json:"read_by"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`

	// Resolved from the sender's user record before broadcast, never stored.
	SenderName string `bson:"-" json:"sender_name,omitempty"`
}

func (m *Message) ReadByUser(userID string) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}
