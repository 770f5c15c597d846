package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/terraincognita07/miffy/internal/models"
	"github.com/terraincognita07/miffy/internal/realtime"
	"github.com/terraincognita07/miffy/internal/schedule"
)

func TestNoticeFeedKeepsRecentNoticesNewestFirst(t *testing.T) {
	feed := NewNoticeFeed(nil, nil)
	for index := 0; index < noticeHistoryLimit+5; index++ {
		feed.Push(context.Background(), "user:1", models.Notice{Title: fmt.Sprintf("notice %d", index)})
	}

	list := feed.List("user:1")
	if len(list) != noticeHistoryLimit {
		t.Fatalf("expected %d notices, got %d", noticeHistoryLimit, len(list))
	}
	if list[0].Title != fmt.Sprintf("notice %d", noticeHistoryLimit+4) {
		t.Fatalf("expected newest first, got %q", list[0].Title)
	}
	if list[0].Variant != models.NoticeVariantDefault || list[0].CreatedAt.IsZero() {
		t.Fatalf("expected defaults filled in, got %+v", list[0])
	}
	if len(feed.List("user:2")) != 0 {
		t.Fatal("expected notices to be scoped per owner")
	}
}

func TestNoticeFeedPublishesToOwnerTopic(t *testing.T) {
	broker := realtime.NewMemoryBroker(nil)
	defer broker.Close()
	feed := NewNoticeFeed(broker, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	subscription, err := feed.Subscribe(ctx, "guest:abc")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer subscription.Close()

	feed.For("guest:abc").Notify(ctx, schedule.Notice{
		Title:       "Cloud sync skipped",
		Description: "Sign in to sync to cloud.",
		Variant:     schedule.NoticeVariantDefault,
	})

	select {
	case payload := <-subscription.C:
		var notice models.Notice
		if err := json.Unmarshal(payload, &notice); err != nil {
			t.Fatalf("decode notice: %v", err)
		}
		if notice.Title != "Cloud sync skipped" {
			t.Fatalf("unexpected notice: %+v", notice)
		}
	case <-time.After(time.Second):
		t.Fatal("expected notice on the owner topic")
	}
}
