package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Pranaykumar222/CampusConnect/internal/apperr"
	"github.com/Pranaykumar222/CampusConnect/internal/models"
)

// In-memory implementations of the repository interfaces. They back the
// test suite and the dev mode where no MongoDB is available.

type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]*models.User)}
}

func (r *MemoryUserRepo) Put(u *models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
}

func (r *MemoryUserRepo) Get(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryUserRepo) SetOnline(ctx context.Context, id string, online bool, lastSeen *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperr.ErrNotFound
	}
	u.IsOnline = online
	u.LastSeen = lastSeen
	return nil
}

type MemoryChatRepo struct {
	mu    sync.RWMutex
	chats map[string]*models.Chat
}

func NewMemoryChatRepo() *MemoryChatRepo {
	return &MemoryChatRepo{chats: make(map[string]*models.Chat)}
}

func (r *MemoryChatRepo) Create(ctx context.Context, chat *models.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	cp := *chat
	cp.Participants = append([]string(nil), chat.Participants...)
	r.chats[chat.ID] = &cp
	return nil
}

func (r *MemoryChatRepo) Get(ctx context.Context, id string) (*models.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.chats[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return copyChat(c), nil
}

func (r *MemoryChatRepo) ListForUser(ctx context.Context, userID string) ([]*models.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Chat
	for _, c := range r.chats {
		if c.HasParticipant(userID) {
			out = append(out, copyChat(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *MemoryChatRepo) FindDirect(ctx context.Context, userA, userB string) (*models.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.chats {
		if c.Type == models.ChatDirect && c.HasParticipant(userA) && c.HasParticipant(userB) {
			return copyChat(c), nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *MemoryChatRepo) SetLastMessage(ctx context.Context, chatID, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[chatID]
	if !ok {
		return apperr.ErrNotFound
	}
	c.LastMessageID = messageID
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryChatRepo) Rename(ctx context.Context, chatID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[chatID]
	if !ok {
		return apperr.ErrNotFound
	}
	c.Name = name
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryChatRepo) AddParticipant(ctx context.Context, chatID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[chatID]
	if !ok {
		return apperr.ErrNotFound
	}
	if !c.HasParticipant(userID) {
		c.Participants = append(c.Participants, userID)
	}
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryChatRepo) RemoveParticipant(ctx context.Context, chatID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[chatID]
	if !ok {
		return apperr.ErrNotFound
	}
	kept := c.Participants[:0]
	for _, p := range c.Participants {
		if p != userID {
			kept = append(kept, p)
		}
	}
	c.Participants = kept
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryChatRepo) Delete(ctx context.Context, chatID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.chats, chatID)
	return nil
}

func copyChat(c *models.Chat) *models.Chat {
	cp := *c
	cp.Participants = append([]string(nil), c.Participants...)
	return &cp
}

type MemoryMessageRepo struct {
	mu     sync.RWMutex
	byChat map[string][]*models.Message
}

func NewMemoryMessageRepo() *MemoryMessageRepo {
	return &MemoryMessageRepo{byChat: make(map[string][]*models.Message)}
}

func (r *MemoryMessageRepo) Insert(ctx context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.CreatedAt = time.Now().UTC()
	cp := *msg
	cp.ReadBy = append([]string(nil), msg.ReadBy...)
	r.byChat[msg.ChatID] = append(r.byChat[msg.ChatID], &cp)
	return nil
}

func (r *MemoryMessageRepo) Get(ctx context.Context, id string) (*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, msgs := range r.byChat {
		for _, m := range msgs {
			if m.ID == id {
				return copyMessage(m), nil
			}
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *MemoryMessageRepo) List(ctx context.Context, chatID string) ([]*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	msgs := r.byChat[chatID]
	out := make([]*models.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, copyMessage(m))
	}
	return out, nil
}

func (r *MemoryMessageRepo) CountUnread(ctx context.Context, chatID, userID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, m := range r.byChat[chatID] {
		if m.SenderID != userID && !m.ReadByUser(userID) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryMessageRepo) MarkAllSeen(ctx context.Context, chatID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.byChat[chatID] {
		if m.SenderID != userID && !m.ReadByUser(userID) {
			m.ReadBy = append(m.ReadBy, userID)
		}
	}
	return nil
}

func (r *MemoryMessageRepo) DeleteByChat(ctx context.Context, chatID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byChat, chatID)
	return nil
}

func copyMessage(m *models.Message) *models.Message {
	cp := *m
	cp.ReadBy = append([]string(nil), m.ReadBy...)
	return &cp
}

type MemoryNotificationRepo struct {
	mu    sync.RWMutex
	items []*models.Notification
}

func NewMemoryNotificationRepo() *MemoryNotificationRepo {
	return &MemoryNotificationRepo{}
}

func (r *MemoryNotificationRepo) Insert(ctx context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.CreatedAt = time.Now().UTC()
	cp := *n
	r.items = append(r.items, &cp)
	return nil
}

func (r *MemoryNotificationRepo) ListForUser(ctx context.Context, recipientID string) ([]*models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Notification
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].RecipientID == recipientID {
			cp := *r.items[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MemoryNotificationRepo) MarkRead(ctx context.Context, id, recipientID string) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.ID == id && n.RecipientID == recipientID {
			n.IsRead = true
			cp := *n
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *MemoryNotificationRepo) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, notif := range r.items {
		if notif.RecipientID == recipientID && !notif.IsRead {
			notif.IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *MemoryNotificationRepo) Delete(ctx context.Context, id, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.items {
		if n.ID == id && n.RecipientID == recipientID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return apperr.ErrNotFound
}

type MemoryConnectionRepo struct {
	mu     sync.Mutex
	byID   map[string]*models.Connection
	byPair map[string]string // pair key -> connection id
}

func NewMemoryConnectionRepo() *MemoryConnectionRepo {
	return &MemoryConnectionRepo{
		byID:   make(map[string]*models.Connection),
		byPair: make(map[string]string),
	}
}

func (r *MemoryConnectionRepo) Insert(ctx context.Context, conn *models.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := models.PairKey(conn.RequesterID, conn.ReceiverID)
	if _, exists := r.byPair[key]; exists {
		return apperr.ErrDuplicate
	}
	now := time.Now().UTC()
	conn.CreatedAt = now
	conn.UpdatedAt = now
	conn.PairKey = key
	cp := *conn
	r.byID[conn.ID] = &cp
	r.byPair[key] = conn.ID
	return nil
}

func (r *MemoryConnectionRepo) Get(ctx context.Context, id string) (*models.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *MemoryConnectionRepo) FindByPair(ctx context.Context, userA, userB string) (*models.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byPair[models.PairKey(userA, userB)]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *MemoryConnectionRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return apperr.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryConnectionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return apperr.ErrNotFound
	}
	delete(r.byPair, c.PairKey)
	delete(r.byID, id)
	return nil
}

func (r *MemoryConnectionRepo) ListAccepted(ctx context.Context, userID string) ([]*models.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Connection
	for _, c := range r.byID {
		if c.Status == models.ConnectionAccepted && c.Involves(userID) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MemoryConnectionRepo) ListPendingFor(ctx context.Context, receiverID string) ([]*models.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Connection
	for _, c := range r.byID {
		if c.Status == models.ConnectionPending && c.ReceiverID == receiverID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}
