package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Pranaykumar222/CampusConnect/internal/metrics"
	"github.com/Pranaykumar222/CampusConnect/internal/models"
	"github.com/Pranaykumar222/CampusConnect/internal/repository"
	"github.com/Pranaykumar222/CampusConnect/internal/ws"
)

// Pusher is the slice of the hub the services push through.
type Pusher interface {
	Broadcast(room, event string, payload any)
	BroadcastExcept(room, exceptUserID, event string, payload any)
	SendToUser(userID, event string, payload any) bool
	IsOnline(userID string) bool
	JoinRoom(room, userID string)
}

// Notifier is the single choke point for durable notifications: persist
// first, then best-effort push to the recipient's personal room. Both the
// messaging pipeline and the connection state machine go through it.
type Notifier struct {
	repo   repository.NotificationRepository
	users  repository.UserRepository
	pusher Pusher
	log    *zap.SugaredLogger
}

func NewNotifier(repo repository.NotificationRepository, users repository.UserRepository,
	pusher Pusher, log *zap.SugaredLogger) *Notifier {
	return &Notifier{repo: repo, users: users, pusher: pusher, log: log}
}

// Notify persists the notification and pushes it if the recipient is
// online. Push failure is swallowed; the durable write is the source of
// truth.
func (n *Notifier) Notify(ctx context.Context, recipientID, senderID, notifType, entityID, text string) error {
	notif := &models.Notification{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        notifType,
		EntityID:    entityID,
		Message:     text,
	}
	if err := n.repo.Insert(ctx, notif); err != nil {
		return err
	}
	metrics.NotificationsCreated.Inc()

	if senderID != "" {
		if sender, err := n.users.Get(ctx, senderID); err == nil {
			notif.SenderName = sender.DisplayName()
		}
	}
	n.pusher.SendToUser(recipientID, ws.EventNewNotification, notif)
	return nil
}

func (n *Notifier) List(ctx context.Context, recipientID string) ([]*models.Notification, error) {
	return n.repo.ListForUser(ctx, recipientID)
}

func (n *Notifier) MarkRead(ctx context.Context, id, recipientID string) (*models.Notification, error) {
	return n.repo.MarkRead(ctx, id, recipientID)
}

func (n *Notifier) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	return n.repo.MarkAllRead(ctx, recipientID)
}

func (n *Notifier) Delete(ctx context.Context, id, recipientID string) error {
	return n.repo.Delete(ctx, id, recipientID)
}
