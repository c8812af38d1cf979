package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Pranaykumar222/CampusConnect/internal/apperr"
	"github.com/Pranaykumar222/CampusConnect/internal/models"
)

func TestPairKeyOrderIndependent(t *testing.T) {
	require.Equal(t, models.PairKey("a", "b"), models.PairKey("b", "a"))
	require.Equal(t, "a:b", models.PairKey("b", "a"))
}

func TestConnectionRepoPairUniqueness(t *testing.T) {
	repo := NewMemoryConnectionRepo()
	ctx := context.Background()

	first := &models.Connection{ID: "c1", RequesterID: "alice", ReceiverID: "bob", Status: models.ConnectionPending}
	require.NoError(t, repo.Insert(ctx, first))

	// same pair, swapped direction
	reversed := &models.Connection{ID: "c2", RequesterID: "bob", ReceiverID: "alice", Status: models.ConnectionPending}
	require.ErrorIs(t, repo.Insert(ctx, reversed), apperr.ErrDuplicate)

	// deleting frees the pair for a new record
	require.NoError(t, repo.Delete(ctx, "c1"))
	require.NoError(t, repo.Insert(ctx, reversed))

	found, err := repo.FindByPair(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Equal(t, "c2", found.ID)
}

func TestConnectionRepoStatusListing(t *testing.T) {
	repo := NewMemoryConnectionRepo()
	ctx := context.Background()

	ab := &models.Connection{ID: "ab", RequesterID: "alice", ReceiverID: "bob", Status: models.ConnectionPending}
	ca := &models.Connection{ID: "ca", RequesterID: "carol", ReceiverID: "alice", Status: models.ConnectionPending}
	require.NoError(t, repo.Insert(ctx, ab))
	require.NoError(t, repo.Insert(ctx, ca))
	require.NoError(t, repo.UpdateStatus(ctx, "ab", models.ConnectionAccepted))

	accepted, err := repo.ListAccepted(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	require.Equal(t, "ab", accepted[0].ID)

	pending, err := repo.ListPendingFor(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "ca", pending[0].ID)

	// pending requests the user sent do not count as received
	pending, err = repo.ListPendingFor(ctx, "carol")
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestMessageRepoUnreadAndMarkAllSeen(t *testing.T) {
	repo := NewMemoryMessageRepo()
	ctx := context.Background()

	for i, sender := range []string{"alice", "alice", "bob"} {
		msg := &models.Message{
			ID:       string(rune('a' + i)),
			ChatID:   "chat-1",
			SenderID: sender,
			Content:  "hi",
			ReadBy:   []string{sender},
		}
		require.NoError(t, repo.Insert(ctx, msg))
	}

	bob, err := repo.CountUnread(ctx, "chat-1", "bob")
	require.NoError(t, err)
	require.Equal(t, int64(2), bob)
	alice, err := repo.CountUnread(ctx, "chat-1", "alice")
	require.NoError(t, err)
	require.Equal(t, int64(1), alice)

	require.NoError(t, repo.MarkAllSeen(ctx, "chat-1", "bob"))
	bob, err = repo.CountUnread(ctx, "chat-1", "bob")
	require.NoError(t, err)
	require.Zero(t, bob)

	// repeat does not grow read_by
	require.NoError(t, repo.MarkAllSeen(ctx, "chat-1", "bob"))
	msgs, err := repo.List(ctx, "chat-1")
	require.NoError(t, err)
	for _, m := range msgs {
		seen := make(map[string]int)
		for _, u := range m.ReadBy {
			seen[u]++
			require.Equal(t, 1, seen[u], "duplicate read_by entry in message %s", m.ID)
		}
	}

	// alice's own unread is untouched by bob's mark
	alice, err = repo.CountUnread(ctx, "chat-1", "alice")
	require.NoError(t, err)
	require.Equal(t, int64(1), alice)
}

func TestMessageRepoReturnsCopies(t *testing.T) {
	repo := NewMemoryMessageRepo()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, &models.Message{
		ID: "m1", ChatID: "chat-1", SenderID: "alice", ReadBy: []string{"alice"},
	}))

	got, err := repo.Get(ctx, "m1")
	require.NoError(t, err)
	got.ReadBy = append(got.ReadBy, "mallory")
	got.Content = "tampered"

	fresh, err := repo.Get(ctx, "m1")
	require.NoError(t, err)
	require.Equal(t, []string{"alice"}, fresh.ReadBy)
	require.Empty(t, fresh.Content)
}

func TestChatRepoMembership(t *testing.T) {
	repo := NewMemoryChatRepo()
	ctx := context.Background()
	chat := &models.Chat{
		ID: "g1", Type: models.ChatGroup, Name: "g",
		Participants: []string{"alice", "bob"}, AdminID: "alice",
	}
	require.NoError(t, repo.Create(ctx, chat))

	require.NoError(t, repo.AddParticipant(ctx, "g1", "carol"))
	require.NoError(t, repo.AddParticipant(ctx, "g1", "carol")) // no duplicate

	got, err := repo.Get(ctx, "g1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"alice", "bob", "carol"}, got.Participants)

	require.NoError(t, repo.RemoveParticipant(ctx, "g1", "bob"))
	got, err = repo.Get(ctx, "g1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"alice", "carol"}, got.Participants)

	chats, err := repo.ListForUser(ctx, "bob")
	require.NoError(t, err)
	require.Empty(t, chats)
}

func TestChatRepoFindDirect(t *testing.T) {
	repo := NewMemoryChatRepo()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.Chat{
		ID: "d1", Type: models.ChatDirect, Participants: []string{"alice", "bob"},
	}))

	got, err := repo.FindDirect(ctx, "bob", "alice")
	require.NoError(t, err)
	require.Equal(t, "d1", got.ID)

	_, err = repo.FindDirect(ctx, "alice", "carol")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestNotificationRepoLifecycle(t *testing.T) {
	repo := NewMemoryNotificationRepo()
	ctx := context.Background()

	for _, id := range []string{"n1", "n2"} {
		require.NoError(t, repo.Insert(ctx, &models.Notification{
			ID: id, RecipientID: "bob", SenderID: "alice", Type: models.NotifNewMessage,
		}))
	}
	require.NoError(t, repo.Insert(ctx, &models.Notification{
		ID: "n3", RecipientID: "carol", SenderID: "alice", Type: models.NotifNewMessage,
	}))

	list, err := repo.ListForUser(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "n2", list[0].ID) // newest first

	// scoped to the recipient: carol cannot read bob's notification
	_, err = repo.MarkRead(ctx, "n1", "carol")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	marked, err := repo.MarkRead(ctx, "n1", "bob")
	require.NoError(t, err)
	require.True(t, marked.IsRead)

	count, err := repo.MarkAllRead(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	require.ErrorIs(t, repo.Delete(ctx, "n2", "carol"), apperr.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, "n2", "bob"))
	list, err = repo.ListForUser(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestUserRepoPresence(t *testing.T) {
	repo := NewMemoryUserRepo()
	ctx := context.Background()
	repo.Put(&models.User{ID: "alice", FirstName: "Alice"})

	require.NoError(t, repo.SetOnline(ctx, "alice", true, nil))
	got, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	require.True(t, got.IsOnline)
	require.Nil(t, got.LastSeen)

	require.ErrorIs(t, repo.SetOnline(ctx, "ghost", true, nil), apperr.ErrNotFound)
}
