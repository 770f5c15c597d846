package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/terraincognita07/miffy/internal/logging"
)

// RedisBroker shares events between processes over Redis PUBLISH/SUBSCRIBE.
type RedisBroker struct {
	client   *redis.Client
	observer Observer
	logger   *logging.Logger
}

func NewRedisBroker(redisURL string, observer Observer, logger *logging.Logger) (*RedisBroker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisBroker{
		client:   client,
		observer: observerOrNop(observer),
		logger:   logger.WithComponent("realtime"),
	}, nil
}

func (broker *RedisBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := broker.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	broker.observer.ObservePublish(topic)
	return nil
}

func (broker *RedisBroker) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	pubsub := broker.client.Subscribe(ctx, topic)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}
	broker.observer.ObserveSubscribers(1)

	events := make(chan []byte, subscriberBuffer)
	done := make(chan struct{})
	subscription := newSubscription(events, func() {
		close(done)
		if err := pubsub.Close(); err != nil {
			broker.logger.WithError(err).Debugw("close redis subscription", "topic", topic)
		}
		broker.observer.ObserveSubscribers(-1)
	})

	go func() {
		defer close(events)
		messages := pubsub.Channel()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				subscription.Close()
				return
			case message, ok := <-messages:
				if !ok {
					return
				}
				select {
				case events <- []byte(message.Payload):
				default:
				}
			}
		}
	}()
	return subscription, nil
}

func (broker *RedisBroker) Close() error {
	return broker.client.Close()
}
