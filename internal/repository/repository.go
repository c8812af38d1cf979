package repository

import (
	"context"
	"time"

	"github.com/Pranaykumar222/CampusConnect/internal/models"
)

// Repositories return apperr.ErrNotFound for missing records and
// apperr.ErrDuplicate when a connection insert collides on its pair key.

type UserRepository interface {
	Get(ctx context.Context, id string) (*models.User, error)
	SetOnline(ctx context.Context, id string, online bool, lastSeen *time.Time) error
}

type ChatRepository interface {
	Create(ctx context.Context, chat *models.Chat) error
	Get(ctx context.Context, id string) (*models.Chat, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Chat, error)
	FindDirect(ctx context.Context, userA, userB string) (*models.Chat, error)
	SetLastMessage(ctx context.Context, chatID, messageID string) error
	Rename(ctx context.Context, chatID, name string) error
	AddParticipant(ctx context.Context, chatID, userID string) error
	RemoveParticipant(ctx context.Context, chatID, userID string) error
	Delete(ctx context.Context, chatID string) error
}

type MessageRepository interface {
	Insert(ctx context.Context, msg *models.Message) error
	Get(ctx context.Context, id string) (*models.Message, error)
	List(ctx context.Context, chatID string) ([]*models.Message, error)
	// CountUnread counts messages in the chat not sent by and not yet read
	// by the given user. Always derived, never a stored counter.
	CountUnread(ctx context.Context, chatID, userID string) (int64, error)
	// MarkAllSeen adds the user to read_by on every message they have not
	// sent and not yet read. Idempotent.
	MarkAllSeen(ctx context.Context, chatID, userID string) error
	DeleteByChat(ctx context.Context, chatID string) error
}

type NotificationRepository interface {
	Insert(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, recipientID string) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id, recipientID string) (*models.Notification, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	Delete(ctx context.Context, id, recipientID string) error
}

type ConnectionRepository interface {
	Insert(ctx context.Context, conn *models.Connection) error
	Get(ctx context.Context, id string) (*models.Connection, error)
	FindByPair(ctx context.Context, userA, userB string) (*models.Connection, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	ListAccepted(ctx context.Context, userID string) ([]*models.Connection, error)
	ListPendingFor(ctx context.Context, receiverID string) ([]*models.Connection, error)
}
