package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Pranaykumar222/CampusConnect/internal/apperr"
	"github.com/Pranaykumar222/CampusConnect/internal/models"
	"github.com/Pranaykumar222/CampusConnect/internal/repository"
	"github.com/Pranaykumar222/CampusConnect/internal/ws"
)

// fakePusher records pushes and simulates presence via the online set.
type fakePusher struct {
	mu     sync.Mutex
	online map[string]bool
	pushes []push
	rooms  map[string]map[string]bool
}

type push struct {
	Room    string
	Except  string
	User    string
	Event   string
	Payload any
}

func newFakePusher(onlineUsers ...string) *fakePusher {
	online := make(map[string]bool)
	for _, u := range onlineUsers {
		online[u] = true
	}
	return &fakePusher{online: online, rooms: make(map[string]map[string]bool)}
}

func (f *fakePusher) Broadcast(room, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, push{Room: room, Event: event, Payload: payload})
}

func (f *fakePusher) BroadcastExcept(room, exceptUserID, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, push{Room: room, Except: exceptUserID, Event: event, Payload: payload})
}

func (f *fakePusher) SendToUser(userID, event string, payload any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.online[userID] {
		return false
	}
	f.pushes = append(f.pushes, push{User: userID, Event: event, Payload: payload})
	return true
}

func (f *fakePusher) IsOnline(userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online[userID]
}

func (f *fakePusher) JoinRoom(room, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rooms[room] == nil {
		f.rooms[room] = make(map[string]bool)
	}
	f.rooms[room][userID] = true
}

func (f *fakePusher) byEvent(event string) []push {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []push
	for _, p := range f.pushes {
		if p.Event == event {
			out = append(out, p)
		}
	}
	return out
}

type fixture struct {
	users     *repository.MemoryUserRepo
	chats     *repository.MemoryChatRepo
	messages  *repository.MemoryMessageRepo
	notifs    *repository.MemoryNotificationRepo
	pusher    *fakePusher
	notifier  *Notifier
	messaging *MessagingService
}

func newFixture(t *testing.T, onlineUsers ...string) *fixture {
	t.Helper()
	f := &fixture{
		users:    repository.NewMemoryUserRepo(),
		chats:    repository.NewMemoryChatRepo(),
		messages: repository.NewMemoryMessageRepo(),
		notifs:   repository.NewMemoryNotificationRepo(),
		pusher:   newFakePusher(onlineUsers...),
	}
	log := zap.NewNop().Sugar()
	f.notifier = NewNotifier(f.notifs, f.users, f.pusher, log)
	f.messaging = NewMessagingService(f.chats, f.messages, f.users, f.notifier, f.pusher, nil, log)
	for _, name := range []string{"alice", "bob", "carol"} {
		f.users.Put(&models.User{ID: name, FirstName: name})
	}
	return f
}

func (f *fixture) directChat(t *testing.T, a, b string) *models.Chat {
	t.Helper()
	chat, err := f.messaging.FindOrCreateDirectChat(context.Background(), a, b)
	require.NoError(t, err)
	return chat
}

func (f *fixture) groupChat(t *testing.T, admin string, members ...string) *models.Chat {
	t.Helper()
	chat, err := f.messaging.CreateGroup(context.Background(), "study group", admin, members)
	require.NoError(t, err)
	return chat
}

func TestSendMessageValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.messaging.SendMessage(ctx, "", "alice", "hi")
	require.ErrorIs(t, err, apperr.ErrValidation)

	chat := f.directChat(t, "alice", "bob")
	_, err = f.messaging.SendMessage(ctx, chat.ID, "alice", "   ")
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.messaging.SendMessage(ctx, "no-such-chat", "alice", "hi")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSendMessageDeliversToOnlineRecipient(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()
	chat := f.directChat(t, "alice", "bob")

	msg, err := f.messaging.SendMessage(ctx, chat.ID, "alice", "hi")
	require.NoError(t, err)
	require.Equal(t, []string{"alice"}, msg.ReadBy)

	newMsgs := f.pusher.byEvent(ws.EventNewMessage)
	require.Len(t, newMsgs, 1)
	require.Equal(t, chat.ID, newMsgs[0].Room)

	counts := f.pusher.byEvent(ws.EventUpdateUnreadCount)
	require.Len(t, counts, 1)
	require.Equal(t, "bob", counts[0].User)
	payload := counts[0].Payload.(map[string]any)
	require.Equal(t, chat.ID, payload["chatId"])
	require.Equal(t, int64(1), payload["unreadCount"])

	notifs := f.pusher.byEvent(ws.EventNewNotification)
	require.Len(t, notifs, 1)
	require.Equal(t, "bob", notifs[0].User)

	// the durable notification exists regardless of presence
	stored, err := f.notifs.ListForUser(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, models.NotifNewMessage, stored[0].Type)
	require.False(t, stored[0].IsRead)

	// last-message pointer advanced
	got, err := f.chats.Get(ctx, chat.ID)
	require.NoError(t, err)
	require.Equal(t, msg.ID, got.LastMessageID)
}

func TestSendMessageOfflineRecipientStoreOnly(t *testing.T) {
	f := newFixture(t, "alice")
	ctx := context.Background()
	chat := f.directChat(t, "alice", "bob")

	_, err := f.messaging.SendMessage(ctx, chat.ID, "alice", "hi")
	require.NoError(t, err)

	require.Empty(t, f.pusher.byEvent(ws.EventUpdateUnreadCount))
	require.Empty(t, f.pusher.byEvent(ws.EventNewNotification))

	stored, err := f.notifs.ListForUser(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, stored, 1)

	unread, err := f.messaging.UnreadCount(ctx, chat.ID, "bob")
	require.NoError(t, err)
	require.Equal(t, int64(1), unread)
}

func TestUnreadCountInvariantUnderInterleaving(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()
	chat := f.directChat(t, "alice", "bob")

	recompute := func(user string) int64 {
		msgs, err := f.messages.List(ctx, chat.ID)
		require.NoError(t, err)
		var n int64
		for _, m := range msgs {
			if m.SenderID != user && !m.ReadByUser(user) {
				n++
			}
		}
		return n
	}

	steps := []func(){
		func() { _, _ = f.messaging.SendMessage(ctx, chat.ID, "alice", "1") },
		func() { _, _ = f.messaging.SendMessage(ctx, chat.ID, "alice", "2") },
		func() { require.NoError(t, f.messaging.MarkSeen(ctx, chat.ID, "bob")) },
		func() { _, _ = f.messaging.SendMessage(ctx, chat.ID, "bob", "3") },
		func() { _, _ = f.messaging.SendMessage(ctx, chat.ID, "alice", "4") },
		func() { require.NoError(t, f.messaging.MarkSeen(ctx, chat.ID, "alice")) },
	}
	for i, step := range steps {
		step()
		for _, user := range []string{"alice", "bob"} {
			got, err := f.messaging.UnreadCount(ctx, chat.ID, user)
			require.NoError(t, err)
			require.Equal(t, recompute(user), got, "step %d user %s", i, user)
		}
	}
}

func TestMarkSeenIdempotent(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()
	chat := f.directChat(t, "alice", "bob")
	_, err := f.messaging.SendMessage(ctx, chat.ID, "alice", "hi")
	require.NoError(t, err)

	require.NoError(t, f.messaging.MarkSeen(ctx, chat.ID, "bob"))
	once, err := f.messages.List(ctx, chat.ID)
	require.NoError(t, err)

	require.NoError(t, f.messaging.MarkSeen(ctx, chat.ID, "bob"))
	twice, err := f.messages.List(ctx, chat.ID)
	require.NoError(t, err)

	require.Equal(t, once, twice)
	require.ElementsMatch(t, []string{"alice", "bob"}, twice[0].ReadBy)

	unread, err := f.messaging.UnreadCount(ctx, chat.ID, "bob")
	require.NoError(t, err)
	require.Zero(t, unread)
}

func TestMarkSeenNotifiesRoomExceptActor(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()
	chat := f.directChat(t, "alice", "bob")
	_, err := f.messaging.SendMessage(ctx, chat.ID, "alice", "hi")
	require.NoError(t, err)

	require.NoError(t, f.messaging.MarkSeen(ctx, chat.ID, "bob"))

	seen := f.pusher.byEvent(ws.EventMessagesSeen)
	require.Len(t, seen, 1)
	require.Equal(t, chat.ID, seen[0].Room)
	require.Equal(t, "bob", seen[0].Except)
	payload := seen[0].Payload.(map[string]any)
	require.Equal(t, "bob", payload["seenBy"])
}

func TestGroupChatOfflineMemberAccumulatesUnread(t *testing.T) {
	f := newFixture(t, "alice", "bob") // carol offline
	ctx := context.Background()
	chat := f.groupChat(t, "alice", "bob", "carol")

	for i := 1; i <= 3; i++ {
		_, err := f.messaging.SendMessage(ctx, chat.ID, "alice", fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
	}

	carolUnread, err := f.messaging.UnreadCount(ctx, chat.ID, "carol")
	require.NoError(t, err)
	require.Equal(t, int64(3), carolUnread)

	var bobCounts []int64
	for _, p := range f.pusher.byEvent(ws.EventUpdateUnreadCount) {
		if p.User == "bob" {
			bobCounts = append(bobCounts, p.Payload.(map[string]any)["unreadCount"].(int64))
		}
	}
	require.Equal(t, []int64{1, 2, 3}, bobCounts)
}

func TestFindOrCreateDirectChatIsStable(t *testing.T) {
	f := newFixture(t)
	first := f.directChat(t, "alice", "bob")
	second := f.directChat(t, "bob", "alice")
	require.Equal(t, first.ID, second.ID)

	_, err := f.messaging.FindOrCreateDirectChat(context.Background(), "alice", "alice")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestListChatsCarriesUnreadAndLastMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chat := f.directChat(t, "alice", "bob")
	msg, err := f.messaging.SendMessage(ctx, chat.ID, "alice", "latest")
	require.NoError(t, err)

	chats, err := f.messaging.ListChats(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, chats, 1)
	require.Equal(t, int64(1), chats[0].UnreadCount)
	require.NotNil(t, chats[0].LastMessage)
	require.Equal(t, msg.ID, chats[0].LastMessage.ID)
	require.Equal(t, "alice", chats[0].LastMessage.SenderName)
}

func TestGroupLifecyclePermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.messaging.CreateGroup(ctx, "g", "alice", []string{"bob"})
	require.ErrorIs(t, err, apperr.ErrValidation)

	chat := f.groupChat(t, "alice", "bob", "carol")

	require.ErrorIs(t, f.messaging.RenameGroup(ctx, chat.ID, "bob", "new"), apperr.ErrForbidden)
	require.NoError(t, f.messaging.RenameGroup(ctx, chat.ID, "alice", "new"))

	require.ErrorIs(t, f.messaging.AddToGroup(ctx, chat.ID, "bob", "carol"), apperr.ErrForbidden)

	// a member can leave on their own, but cannot remove someone else
	require.ErrorIs(t, f.messaging.RemoveFromGroup(ctx, chat.ID, "bob", "carol"), apperr.ErrForbidden)
	require.NoError(t, f.messaging.RemoveFromGroup(ctx, chat.ID, "bob", "bob"))

	require.ErrorIs(t, f.messaging.DeleteGroup(ctx, chat.ID, "carol"), apperr.ErrForbidden)
	require.NoError(t, f.messaging.DeleteGroup(ctx, chat.ID, "alice"))

	_, err = f.chats.Get(ctx, chat.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	msgs, err := f.messages.List(ctx, chat.ID)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestNotifierPersistsBeforePush(t *testing.T) {
	f := newFixture(t) // nobody online
	ctx := context.Background()

	err := f.notifier.Notify(ctx, "bob", "alice", models.NotifPostLike, "post-1", "alice liked your post")
	require.NoError(t, err)

	stored, err := f.notifs.ListForUser(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, models.NotifPostLike, stored[0].Type)
	require.Empty(t, f.pusher.byEvent(ws.EventNewNotification))
}
