package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"skill_swap/internal/domain"
	"skill_swap/pkg/logger"
)

type envelope struct {
	Recipients []uuid.UUID     `json:"recipients"`
	Event      json.RawMessage `json:"event"`
}

// RedisBroker рассылает события всем процессам через Redis pub/sub.
// Каждый процесс доставляет полученное событие в свой локальный Hub.
type RedisBroker struct {
	rdb     *redis.Client
	channel string
	hub     *Hub
	log     logger.Logger

	pubsub *redis.PubSub
	wg     sync.WaitGroup
}

func NewRedisBroker(rdb *redis.Client, channel string, hub *Hub, log logger.Logger) *RedisBroker {
	return &RedisBroker{
		rdb:     rdb,
		channel: channel,
		hub:     hub,
		log:     log.With("component", "redis_broker"),
	}
}

// Start подписывается на канал и ждет подтверждения подписки
func (b *RedisBroker) Start(ctx context.Context) error {
	pubsub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	b.pubsub = pubsub

	ch := pubsub.Channel()
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for msg := range ch {
			b.dispatch([]byte(msg.Payload))
		}
	}()

	b.log.Info("Subscribed to realtime channel", "channel", b.channel)
	return nil
}

func (b *RedisBroker) dispatch(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		b.log.Warn("Malformed realtime envelope", "error", err)
		return
	}
	b.hub.Deliver(env.Recipients, env.Event)
}

// NotifyNewMessage публикует событие; если Redis недоступен, доставляет хотя бы локально
func (b *RedisBroker) NotifyNewMessage(ctx context.Context, conv *domain.Conversation, msg *domain.Message) {
	event, err := EncodeNewMessage(msg)
	if err != nil {
		b.log.Error("Failed to encode live event", "error", err, "message_id", msg.ID)
		return
	}

	data, err := json.Marshal(envelope{Recipients: conv.Participants(), Event: event})
	if err != nil {
		b.log.Error("Failed to encode realtime envelope", "error", err)
		return
	}

	if err := b.rdb.Publish(ctx, b.channel, data).Err(); err != nil {
		b.log.Warn("Publish failed, delivering locally", "error", err, "conversation_id", conv.ID)
		b.hub.Deliver(conv.Participants(), event)
	}
}

func (b *RedisBroker) Close() error {
	if b.pubsub == nil {
		return nil
	}
	err := b.pubsub.Close()
	b.wg.Wait()
	return err
}
