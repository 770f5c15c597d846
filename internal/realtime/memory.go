package realtime

import (
	"context"
	"sync"
)

type memorySubscriber struct {
	events chan []byte
}

// MemoryBroker is the in-process broker used when no Redis URL is configured.
type MemoryBroker struct {
	mu       sync.RWMutex
	topics   map[string]map[*memorySubscriber]struct{}
	closed   bool
	observer Observer
}

func NewMemoryBroker(observer Observer) *MemoryBroker {
	return &MemoryBroker{
		topics:   make(map[string]map[*memorySubscriber]struct{}),
		observer: observerOrNop(observer),
	}
}

func (broker *MemoryBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	broker.mu.RLock()
	defer broker.mu.RUnlock()

	if broker.closed {
		return ErrBrokerClosed
	}
	broker.observer.ObservePublish(topic)

	for subscriber := range broker.topics[topic] {
		event := make([]byte, len(payload))
		copy(event, payload)
		select {
		case subscriber.events <- event:
		default:
		}
	}
	return nil
}

func (broker *MemoryBroker) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	broker.mu.Lock()
	defer broker.mu.Unlock()

	if broker.closed {
		return nil, ErrBrokerClosed
	}

	subscriber := &memorySubscriber{events: make(chan []byte, subscriberBuffer)}
	if broker.topics[topic] == nil {
		broker.topics[topic] = make(map[*memorySubscriber]struct{})
	}
	broker.topics[topic][subscriber] = struct{}{}
	broker.observer.ObserveSubscribers(1)

	subscription := newSubscription(subscriber.events, func() {
		broker.remove(topic, subscriber)
	})
	go func() {
		<-ctx.Done()
		subscription.Close()
	}()
	return subscription, nil
}

func (broker *MemoryBroker) remove(topic string, subscriber *memorySubscriber) {
	broker.mu.Lock()
	defer broker.mu.Unlock()

	subscribers, ok := broker.topics[topic]
	if !ok {
		return
	}
	if _, ok := subscribers[subscriber]; !ok {
		return
	}
	delete(subscribers, subscriber)
	if len(subscribers) == 0 {
		delete(broker.topics, topic)
	}
	broker.observer.ObserveSubscribers(-1)
	close(subscriber.events)
}

func (broker *MemoryBroker) Close() error {
	broker.mu.Lock()
	defer broker.mu.Unlock()

	if broker.closed {
		return nil
	}
	broker.closed = true
	for topic, subscribers := range broker.topics {
		for subscriber := range subscribers {
			close(subscriber.events)
			broker.observer.ObserveSubscribers(-1)
		}
		delete(broker.topics, topic)
	}
	return nil
}
