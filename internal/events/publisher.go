package events

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Pranaykumar222/CampusConnect/internal/models"
)

// Publisher writes domain events to Kafka for downstream consumers
// (analytics, email digests). Everything here is best-effort: the caller
// has already committed the durable write.
type Publisher struct {
	messages    *kafkago.Writer
	connections *kafkago.Writer
	log         *zap.SugaredLogger
}

func NewPublisher(brokers []string, messageTopic, connectionTopic string, log *zap.SugaredLogger) *Publisher {
	writer := func(topic string) *kafkago.Writer {
		return &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafkago.LeastBytes{},
			RequiredAcks: kafkago.RequireAll,
		}
	}
	return &Publisher{
		messages:    writer(messageTopic),
		connections: writer(connectionTopic),
		log:         log,
	}
}

func (p *Publisher) PublishMessageSent(ctx context.Context, msg *models.Message) {
	p.publish(ctx, p.messages, msg.ChatID, map[string]any{
		"event":      "message_sent",
		"message_id": msg.ID,
		"chat_id":    msg.ChatID,
		"sender_id":  msg.SenderID,
		"created_at": msg.CreatedAt,
	})
}

func (p *Publisher) PublishConnectionEvent(ctx context.Context, event string, conn *models.Connection) {
	p.publish(ctx, p.connections, conn.PairKey, map[string]any{
		"event":         event,
		"connection_id": conn.ID,
		"requester_id":  conn.RequesterID,
		"receiver_id":   conn.ReceiverID,
		"status":        conn.Status,
	})
}

func (p *Publisher) publish(ctx context.Context, w *kafkago.Writer, key string, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		p.log.Warnw("event marshal failed", "err", err)
		return
	}
	err = w.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(key),
		Value: b,
		Time:  time.Now(),
	})
	if err != nil {
		p.log.Warnw("event publish failed", "topic", w.Topic, "err", err)
	}
}

func (p *Publisher) Close() error {
	if err := p.messages.Close(); err != nil {
		return err
	}
	return p.connections.Close()
}
