package realtime

import (
	"context"
	"errors"
	"sync"
)

const subscriberBuffer = 16

var ErrBrokerClosed = errors.New("realtime broker is closed")

// Broker fans out payloads published on a topic to the subscribers present at
// publish time. Delivery is best effort: no replay, no acknowledgement and no
// deduplication. A subscriber that falls behind loses events.
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string) (*Subscription, error)
	Close() error
}

type Observer interface {
	ObservePublish(topic string)
	ObserveSubscribers(delta int)
}

type Subscription struct {
	C <-chan []byte

	once    sync.Once
	release func()
}

func newSubscription(events <-chan []byte, release func()) *Subscription {
	return &Subscription{C: events, release: release}
}

// Close stops delivery and closes C. It is safe to call more than once.
func (subscription *Subscription) Close() {
	subscription.once.Do(subscription.release)
}

type nopObserver struct{}

func (nopObserver) ObservePublish(string)  {}
func (nopObserver) ObserveSubscribers(int) {}

func observerOrNop(observer Observer) Observer {
	if observer == nil {
		return nopObserver{}
	}
	return observer
}
