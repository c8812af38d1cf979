package models

import "time"

const (
	ChatDirect  = "direct"
	ChatGroup   = "group"
	ChatProject = "project"
)

type Chat struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	Name          string    `bson:"name,omitempty" json:"name,omitempty"`
	Type          string    `bson:"type" json:"type"`
	Participants  []string  `bson:"participants" json:"participants"`
	AdminID       string    `bson:"admin_id,omitempty" json:"admin_id,omitempty"`
	ProjectID     string    `bson:"project_id,omitempty" json:"project_id,omitempty"`
	LastMessageID string    `bson:"last_message_id,omitempty" json:"last_message_id,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`

	// Filled per-viewer on chat listings, never stored.
	UnreadCount int64    `bson:"-" json:"unread_count"`
	LastMessage *Message `bson:"-" json:"last_message,omitempty"`
}

func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
