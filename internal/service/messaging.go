package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Pranaykumar222/CampusConnect/internal/apperr"
	"github.com/Pranaykumar222/CampusConnect/internal/metrics"
	"github.com/Pranaykumar222/CampusConnect/internal/models"
	"github.com/Pranaykumar222/CampusConnect/internal/repository"
	"github.com/Pranaykumar222/CampusConnect/internal/ws"
)

// EventPublisher emits domain events for downstream consumers. Always
// best-effort; the services never fail an operation on a publish error.
type EventPublisher interface {
	PublishMessageSent(ctx context.Context, msg *models.Message)
	PublishConnectionEvent(ctx context.Context, event string, conn *models.Connection)
}

type MessagingService struct {
	chats    repository.ChatRepository
	messages repository.MessageRepository
	users    repository.UserRepository
	notifier *Notifier
	pusher   Pusher
	events   EventPublisher
	log      *zap.SugaredLogger
}

func NewMessagingService(chats repository.ChatRepository, messages repository.MessageRepository,
	users repository.UserRepository, notifier *Notifier, pusher Pusher,
	events EventPublisher, log *zap.SugaredLogger) *MessagingService {
	return &MessagingService{
		chats:    chats,
		messages: messages,
		users:    users,
		notifier: notifier,
		pusher:   pusher,
		events:   events,
		log:      log,
	}
}

// SendMessage persists the message, advances the chat's last-message
// pointer, broadcasts it to the chat room, and per recipient recomputes the
// unread count and files a notification. Persistence happens before any
// push, so a recipient who misses the live fan-out sees the message on the
// next history fetch.
func (s *MessagingService) SendMessage(ctx context.Context, chatID, senderID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if chatID == "" || content == "" {
		return nil, fmt.Errorf("%w: chat id and content are required", apperr.ErrValidation)
	}
	chat, err := s.chats.Get(ctx, chatID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown chat %s", apperr.ErrValidation, chatID)
		}
		return nil, err
	}

	msg := &models.Message{
		ID:       uuid.NewString(),
		ChatID:   chatID,
		SenderID: senderID,
		Content:  content,
		ReadBy:   []string{senderID},
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, err
	}
	// Losing the pointer update is a soft inconsistency that the next
	// message heals, not a reason to fail a persisted send.
	if err := s.chats.SetLastMessage(ctx, chatID, msg.ID); err != nil {
		s.log.Warnw("last-message pointer update failed", "chat_id", chatID, "err", err)
	}
	metrics.MessagesDelivered.Inc()
	if s.events != nil {
		s.events.PublishMessageSent(ctx, msg)
	}

	senderName := senderID
	if sender, err := s.users.Get(ctx, senderID); err == nil {
		senderName = sender.DisplayName()
	}
	msg.SenderName = senderName

	s.pusher.Broadcast(chatID, ws.EventNewMessage, msg)

	for _, participantID := range chat.Participants {
		if participantID == senderID {
			continue
		}
		unread, err := s.messages.CountUnread(ctx, chatID, participantID)
		if err != nil {
			s.log.Warnw("unread recompute failed", "chat_id", chatID, "user_id", participantID, "err", err)
		} else {
			s.pusher.SendToUser(participantID, ws.EventUpdateUnreadCount, map[string]any{
				"chatId":      chatID,
				"unreadCount": unread,
			})
		}
		err = s.notifier.Notify(ctx, participantID, senderID, models.NotifNewMessage,
			chatID, senderName+" sent you a message")
		if err != nil {
			s.log.Warnw("message notification failed", "chat_id", chatID, "user_id", participantID, "err", err)
		}
	}
	return msg, nil
}

// MarkSeen adds the user to read_by on every message they have not yet
// seen, then tells the rest of the room. Idempotent and safe to retry.
func (s *MessagingService) MarkSeen(ctx context.Context, chatID, userID string) error {
	if chatID == "" {
		return fmt.Errorf("%w: chat id is required", apperr.ErrValidation)
	}
	if err := s.messages.MarkAllSeen(ctx, chatID, userID); err != nil {
		return err
	}
	s.pusher.BroadcastExcept(chatID, userID, ws.EventMessagesSeen, map[string]any{
		"chatId": chatID,
		"seenBy": userID,
	})
	return nil
}

func (s *MessagingService) UnreadCount(ctx context.Context, chatID, userID string) (int64, error) {
	return s.messages.CountUnread(ctx, chatID, userID)
}

// FindOrCreateDirectChat returns the direct chat between the two users,
// creating it on first contact.
func (s *MessagingService) FindOrCreateDirectChat(ctx context.Context, userA, userB string) (*models.Chat, error) {
	if userA == userB {
		return nil, fmt.Errorf("%w: cannot open a chat with yourself", apperr.ErrValidation)
	}
	if _, err := s.users.Get(ctx, userB); err != nil {
		return nil, err
	}
	chat, err := s.chats.FindDirect(ctx, userA, userB)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	chat = &models.Chat{
		ID:           uuid.NewString(),
		Type:         models.ChatDirect,
		Participants: []string{userA, userB},
	}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// ListChats returns the user's chats newest-activity first, each with its
// derived unread count and resolved last message.
func (s *MessagingService) ListChats(ctx context.Context, userID string) ([]*models.Chat, error) {
	chats, err := s.chats.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, chat := range chats {
		unread, err := s.messages.CountUnread(ctx, chat.ID, userID)
		if err != nil {
			return nil, err
		}
		chat.UnreadCount = unread
		if chat.LastMessageID != "" {
			if last, err := s.messages.Get(ctx, chat.LastMessageID); err == nil {
				if sender, err := s.users.Get(ctx, last.SenderID); err == nil {
					last.SenderName = sender.DisplayName()
				}
				chat.LastMessage = last
			}
		}
	}
	return chats, nil
}

func (s *MessagingService) ListMessages(ctx context.Context, chatID string) ([]*models.Message, error) {
	if _, err := s.chats.Get(ctx, chatID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.List(ctx, chatID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string)
	for _, m := range msgs {
		name, ok := names[m.SenderID]
		if !ok {
			if sender, err := s.users.Get(ctx, m.SenderID); err == nil {
				name = sender.DisplayName()
			}
			names[m.SenderID] = name
		}
		m.SenderName = name
	}
	return msgs, nil
}

// CreateGroup starts a group chat with the creator as admin. The creator
// plus at least two others are required.
func (s *MessagingService) CreateGroup(ctx context.Context, name, adminID string, memberIDs []string) (*models.Chat, error) {
	if name == "" || len(memberIDs) < 2 {
		return nil, fmt.Errorf("%w: a group needs a name and at least two other members", apperr.ErrValidation)
	}
	participants := []string{adminID}
	for _, id := range memberIDs {
		if id != adminID {
			participants = append(participants, id)
		}
	}
	chat := &models.Chat{
		ID:           uuid.NewString(),
		Name:         name,
		Type:         models.ChatGroup,
		Participants: participants,
		AdminID:      adminID,
	}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *MessagingService) RenameGroup(ctx context.Context, chatID, actorID, name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", apperr.ErrValidation)
	}
	if _, err := s.adminGroup(ctx, chatID, actorID); err != nil {
		return err
	}
	return s.chats.Rename(ctx, chatID, name)
}

func (s *MessagingService) AddToGroup(ctx context.Context, chatID, actorID, userID string) error {
	if _, err := s.adminGroup(ctx, chatID, actorID); err != nil {
		return err
	}
	if _, err := s.users.Get(ctx, userID); err != nil {
		return err
	}
	if err := s.chats.AddParticipant(ctx, chatID, userID); err != nil {
		return err
	}
	// A live session picks up the new room immediately instead of waiting
	// for its next connect.
	if s.pusher.IsOnline(userID) {
		s.pusher.JoinRoom(chatID, userID)
	}
	return nil
}

// RemoveFromGroup allows the admin to remove anyone and any member to
// remove themselves.
func (s *MessagingService) RemoveFromGroup(ctx context.Context, chatID, actorID, userID string) error {
	chat, err := s.groupChat(ctx, chatID)
	if err != nil {
		return err
	}
	if chat.AdminID != actorID && actorID != userID {
		return apperr.ErrForbidden
	}
	return s.chats.RemoveParticipant(ctx, chatID, userID)
}

// DeleteGroup removes the chat and cascades message deletion. Admin only.
func (s *MessagingService) DeleteGroup(ctx context.Context, chatID, actorID string) error {
	if _, err := s.adminGroup(ctx, chatID, actorID); err != nil {
		return err
	}
	if err := s.messages.DeleteByChat(ctx, chatID); err != nil {
		return err
	}
	return s.chats.Delete(ctx, chatID)
}

func (s *MessagingService) groupChat(ctx context.Context, chatID string) (*models.Chat, error) {
	chat, err := s.chats.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.Type == models.ChatDirect {
		return nil, fmt.Errorf("%w: direct chats have no membership management", apperr.ErrInvalidState)
	}
	return chat, nil
}

func (s *MessagingService) adminGroup(ctx context.Context, chatID, actorID string) (*models.Chat, error) {
	chat, err := s.groupChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.AdminID != actorID {
		return nil, apperr.ErrForbidden
	}
	return chat, nil
}
