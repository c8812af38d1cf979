package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/Pranaykumar222/CampusConnect/internal/auth"
	"github.com/Pranaykumar222/CampusConnect/internal/models"
	"github.com/Pranaykumar222/CampusConnect/internal/repository"
)

// MessageHandler is the slice of the messaging service the live channel
// drives. Typing relay needs no handler; it is pure broadcast.
type MessageHandler interface {
	SendMessage(ctx context.Context, chatID, senderID, content string) (*models.Message, error)
	MarkSeen(ctx context.Context, chatID, userID string) error
}

type Options struct {
	PingInterval    time.Duration
	WriteDeadline   time.Duration
	MaxMessageSize  int64
	EventsPerSecond int
}

// Server owns the live-session lifecycle: connect-time auth, presence
// registration, room auto-join, inbound event dispatch, and teardown.
type Server struct {
	hub       *Hub
	validator *auth.Validator
	users     repository.UserRepository
	chats     repository.ChatRepository
	handler   MessageHandler
	log       *zap.SugaredLogger
	opts      Options

	// optional, invoked after a session registers or fully unregisters
	presenceHook func(userID string, online bool)
}

// SetPresenceHook wires an external presence mirror. Must be set before
// the server starts accepting connections.
func (s *Server) SetPresenceHook(fn func(userID string, online bool)) {
	s.presenceHook = fn
}

func NewServer(hub *Hub, validator *auth.Validator, users repository.UserRepository,
	chats repository.ChatRepository, handler MessageHandler, log *zap.SugaredLogger, opts Options) *Server {
	return &Server{
		hub:       hub,
		validator: validator,
		users:     users,
		chats:     chats,
		handler:   handler,
		log:       log,
		opts:      opts,
	}
}

func (s *Server) Hub() *Hub { return s.hub }

// HandleWS runs for the lifetime of one websocket connection.
func (s *Server) HandleWS() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		token := conn.Query("token")
		if token == "" {
			_ = conn.Close()
			return
		}
		userID, err := s.validator.Validate(token)
		if err != nil {
			s.log.Debugw("ws auth rejected", "err", err)
			_ = conn.Close()
			return
		}

		ctx := context.Background()
		user, err := s.users.Get(ctx, userID)
		if err != nil {
			s.log.Warnw("ws connect: user lookup failed", "user_id", userID, "err", err)
			_ = conn.Close()
			return
		}

		client := NewClient(conn, userID, s.opts.EventsPerSecond)
		s.hub.Register(client)

		// Teardown has to run exactly once and must tolerate partial setup:
		// the stale-handle check keeps a late disconnect from evicting a
		// newer session or flipping its owner offline.
		defer func() {
			if s.hub.Unregister(client) {
				now := time.Now().UTC()
				if err := s.users.SetOnline(ctx, userID, false, &now); err != nil {
					s.log.Warnw("set offline failed", "user_id", userID, "err", err)
				}
				if s.presenceHook != nil {
					s.presenceHook(userID, false)
				}
			}
			client.Close()
		}()

		if err := s.users.SetOnline(ctx, userID, true, nil); err != nil {
			s.log.Warnw("set online failed", "user_id", userID, "err", err)
		}
		if s.presenceHook != nil {
			s.presenceHook(userID, true)
		}

		chats, err := s.chats.ListForUser(ctx, userID)
		if err != nil {
			s.log.Warnw("chat auto-join failed", "user_id", userID, "err", err)
		}
		for _, chat := range chats {
			s.hub.JoinRoom(chat.ID, userID)
		}

		s.log.Infow("session connected", "user_id", userID, "session_id", client.ID)
		go client.writePump(s.opts.PingInterval, s.opts.WriteDeadline)
		s.readLoop(ctx, client, user.DisplayName())
		s.log.Infow("session disconnected", "user_id", userID, "session_id", client.ID)
	}
}

func (s *Server) readLoop(ctx context.Context, client *Client, displayName string) {
	client.conn.SetReadLimit(s.opts.MaxMessageSize)
	for {
		mt, data, err := client.conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		if !client.allow() {
			continue
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		s.dispatch(ctx, client, displayName, env)
	}
}

type chatRef struct {
	ChatID string `json:"chatId"`
}

type sendMessagePayload struct {
	ChatID  string `json:"chatId"`
	Content string `json:"content"`
}

func (s *Server) dispatch(ctx context.Context, client *Client, displayName string, env Envelope) {
	switch env.Event {
	case EventJoinChat:
		var p chatRef
		if json.Unmarshal(env.Payload, &p) == nil && p.ChatID != "" {
			s.hub.JoinRoom(p.ChatID, client.UserID)
		}

	case EventTyping:
		var p chatRef
		if json.Unmarshal(env.Payload, &p) == nil && p.ChatID != "" {
			s.hub.BroadcastExcept(p.ChatID, client.UserID, EventTyping, map[string]any{
				"userId": client.UserID,
				"name":   displayName,
				"chatId": p.ChatID,
			})
		}

	case EventStopTyping:
		var p chatRef
		if json.Unmarshal(env.Payload, &p) == nil && p.ChatID != "" {
			s.hub.BroadcastExcept(p.ChatID, client.UserID, EventStopTyping, map[string]any{
				"chatId": p.ChatID,
			})
		}

	case EventSendMessage:
		var p sendMessagePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return
		}
		if _, err := s.handler.SendMessage(ctx, p.ChatID, client.UserID, p.Content); err != nil {
			s.log.Debugw("sendMessage rejected", "user_id", client.UserID, "chat_id", p.ChatID, "err", err)
			s.pushError(client, err)
		}

	case EventMarkSeen:
		var p chatRef
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.ChatID == "" {
			return
		}
		if err := s.handler.MarkSeen(ctx, p.ChatID, client.UserID); err != nil {
			s.log.Debugw("markSeen failed", "user_id", client.UserID, "chat_id", p.ChatID, "err", err)
		}
	}
}

func (s *Server) pushError(client *Client, err error) {
	data, encErr := encodeEnvelope(EventError, map[string]any{"message": err.Error()})
	if encErr != nil {
		return
	}
	client.Send(data)
}
