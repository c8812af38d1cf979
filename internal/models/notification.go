package models

import "time"

// Notification type tags. Post/event/project tags pass through the fan-out
// opaquely; this service only produces the messaging and connection ones.
const (
	NotifConnectionRequest = "connection_request"
	NotifRequestAccepted   = "request_accepted"
	NotifRequestRejected   = "request_rejected"
	NotifNewFollower       = "new_follower"
	NotifPostLike          = "post_like"
	NotifPostComment       = "post_comment"
	NotifNewMessage        = "new_message"
	NotifEventInvite       = "event_invite"
	NotifProjectInvite     = "project_invite"
)

type Notification struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	RecipientID string    `bson:"recipient_id" json:"recipient_id"`
	SenderID    string    `bson:"sender_id,omitempty" json:"sender_id,omitempty"`
	Type        string    `bson:"type" json:"type"`
	EntityID    string    `bson:"entity_id,omitempty" json:"entity_id,omitempty"`
	Message     string    `bson:"message,omitempty" json:"message,omitempty"`
	IsRead      bool      `bson:"is_read" json:"is_read"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`

	SenderName string `bson:"-" json:"sender_name,omitempty"`
}
