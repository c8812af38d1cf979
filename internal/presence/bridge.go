package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Pranaykumar222/CampusConnect/internal/ws"
)

const presenceTTL = 24 * time.Hour

// Bridge mirrors presence into redis and relays room broadcasts across
// instances over pub/sub. The in-process hub stays authoritative for local
// delivery; the bridge only widens fan-out when more than one instance runs.
type Bridge struct {
	client     *redis.Client
	prefix     string
	instanceID string
	hub        *ws.Hub
	log        *zap.SugaredLogger
}

type envelope struct {
	Origin string          `json:"origin"`
	Room   string          `json:"room"`
	Except string          `json:"except,omitempty"`
	Data   json.RawMessage `json:"data"`
}

func NewBridge(client *redis.Client, prefix string, hub *ws.Hub, log *zap.SugaredLogger) *Bridge {
	b := &Bridge{
		client:     client,
		prefix:     prefix,
		instanceID: uuid.NewString(),
		hub:        hub,
		log:        log,
	}
	hub.SetRemotePublisher(b.publish)
	return b
}

func (b *Bridge) presenceKey(userID string) string {
	return fmt.Sprintf("%s:presence:%s", b.prefix, userID)
}

func (b *Bridge) channel() string {
	return b.prefix + ":fanout"
}

// SetOnline mirrors a register/unregister into redis so other instances
// can resolve presence without a local hub entry.
func (b *Bridge) SetOnline(ctx context.Context, userID string, online bool) {
	status := "offline"
	if online {
		status = "online"
	}
	payload, _ := json.Marshal(map[string]any{
		"status":    status,
		"last_seen": time.Now().Unix(),
	})
	if err := b.client.Set(ctx, b.presenceKey(userID), payload, presenceTTL).Err(); err != nil {
		b.log.Warnw("presence mirror failed", "user_id", userID, "err", err)
	}
}

func (b *Bridge) publish(room, exceptUserID string, data []byte) {
	env := envelope{
		Origin: b.instanceID,
		Room:   room,
		Except: exceptUserID,
		Data:   data,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return
	}
	if err := b.client.Publish(context.Background(), b.channel(), payload).Err(); err != nil {
		b.log.Warnw("cross-instance publish failed", "room", room, "err", err)
	}
}

// Run consumes the fan-out channel and re-delivers remote envelopes to
// local room members. Own envelopes are skipped by instance id. Blocks
// until ctx is done.
func (b *Bridge) Run(ctx context.Context) {
	sub := b.client.Subscribe(ctx, b.channel())
	defer sub.Close()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				continue
			}
			if env.Origin == b.instanceID {
				continue
			}
			b.hub.DeliverLocal(env.Room, env.Except, env.Data)
		}
	}
}
