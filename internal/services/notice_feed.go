package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/terraincognita07/miffy/internal/logging"
	"github.com/terraincognita07/miffy/internal/models"
	"github.com/terraincognita07/miffy/internal/realtime"
	"github.com/terraincognita07/miffy/internal/schedule"
)

const (
	noticeHistoryLimit = 50
	noticeOwnerLimit   = 1000
)

type EventBroker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string) (*realtime.Subscription, error)
}

func NoticeTopic(ownerKey string) string {
	return "notices:" + ownerKey
}

// NoticeFeed keeps the most recent notices per owner and forwards each new
// one to the owner's real-time topic.
type NoticeFeed struct {
	broker EventBroker
	logger *logging.Logger
	now    func() time.Time

	mu      sync.Mutex
	history map[string][]models.Notice
}

func NewNoticeFeed(broker EventBroker, logger *logging.Logger) *NoticeFeed {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &NoticeFeed{
		broker:  broker,
		logger:  logger.WithComponent("notices"),
		now:     time.Now,
		history: make(map[string][]models.Notice),
	}
}

func (feed *NoticeFeed) Push(ctx context.Context, ownerKey string, notice models.Notice) {
	if notice.Variant == "" {
		notice.Variant = models.NoticeVariantDefault
	}
	if notice.CreatedAt.IsZero() {
		notice.CreatedAt = feed.now()
	}

	feed.mu.Lock()
	entries := append(feed.history[ownerKey], notice)
	if len(entries) > noticeHistoryLimit {
		entries = entries[len(entries)-noticeHistoryLimit:]
	}
	feed.history[ownerKey] = entries
	if len(feed.history) > noticeOwnerLimit {
		feed.history = map[string][]models.Notice{ownerKey: entries}
	}
	feed.mu.Unlock()

	if feed.broker == nil {
		return
	}
	payload, err := json.Marshal(notice)
	if err != nil {
		feed.logger.WithError(err).Warn("encode notice failed")
		return
	}
	if err := feed.broker.Publish(ctx, NoticeTopic(ownerKey), payload); err != nil {
		feed.logger.WithError(err).Warnw("publish notice failed", "owner", ownerKey)
	}
}

// List returns the owner's notices, newest first.
func (feed *NoticeFeed) List(ownerKey string) []models.Notice {
	feed.mu.Lock()
	defer feed.mu.Unlock()

	entries := feed.history[ownerKey]
	notices := make([]models.Notice, 0, len(entries))
	for index := len(entries) - 1; index >= 0; index-- {
		notices = append(notices, entries[index])
	}
	return notices
}

func (feed *NoticeFeed) Subscribe(ctx context.Context, ownerKey string) (*realtime.Subscription, error) {
	if feed.broker == nil {
		return nil, realtime.ErrBrokerClosed
	}
	return feed.broker.Subscribe(ctx, NoticeTopic(ownerKey))
}

// For adapts the feed to the schedule store's notifier for one owner.
func (feed *NoticeFeed) For(ownerKey string) schedule.Notifier {
	return ownerNotifier{feed: feed, ownerKey: ownerKey}
}

type ownerNotifier struct {
	feed     *NoticeFeed
	ownerKey string
}

func (notifier ownerNotifier) Notify(ctx context.Context, notice schedule.Notice) {
	notifier.feed.Push(ctx, notifier.ownerKey, models.Notice{
		Title:       notice.Title,
		Description: notice.Description,
		Variant:     notice.Variant,
	})
}

func savedNotice(description string) models.Notice {
	return models.Notice{
		Title:       "Saved to cloud",
		Description: description,
		Variant:     models.NoticeVariantDefault,
	}
}
