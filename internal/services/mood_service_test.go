package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/terraincognita07/miffy/internal/models"
	"github.com/terraincognita07/miffy/internal/realtime"
)

type stubMoodRepo struct {
	entries []models.MoodEntry
	since   time.Time
}

func (stub *stubMoodRepo) Create(entry *models.MoodEntry) error {
	entry.ID = uint(len(stub.entries) + 1)
	entry.CreatedAt = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	stub.entries = append(stub.entries, *entry)
	return nil
}

func (stub *stubMoodRepo) ListRecentByUser(userID uint, limit int) ([]models.MoodEntry, error) {
	return stub.entries, nil
}

func (stub *stubMoodRepo) LatestByUserSince(userID uint, since time.Time) (models.MoodEntry, bool, error) {
	stub.since = since
	if len(stub.entries) == 0 {
		return models.MoodEntry{}, false, nil
	}
	return stub.entries[len(stub.entries)-1], true, nil
}

func (stub *stubMoodRepo) ListRecentByCouple(coupleID string, limit int) ([]models.MoodEntry, error) {
	entries := make([]models.MoodEntry, 0)
	for _, entry := range stub.entries {
		if entry.CoupleID != nil && *entry.CoupleID == coupleID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func TestMoodServiceRecordUsesCatalogScore(t *testing.T) {
	repo := &stubMoodRepo{}
	notices := NewNoticeFeed(nil, nil)
	service := NewMoodService(repo, NewCoupleService(newStubCoupleRepo()), nil, notices, time.UTC, nil)

	entry, err := service.Record(context.Background(), 3, nil, MoodInput{MoodID: " stormy ", Note: " rough "})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if entry.Score != 1 || entry.MoodID != "stormy" || entry.Note != "rough" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if list := notices.List(UserOwner(3, nil).Key); len(list) != 1 || list[0].Description != "Mood entry synced." {
		t.Fatalf("expected synced notice, got %+v", list)
	}

	if _, err := service.Record(context.Background(), 3, nil, MoodInput{MoodID: "foggy"}); !errors.Is(err, ErrUnknownMood) {
		t.Fatalf("expected ErrUnknownMood, got %v", err)
	}
	if _, err := service.Record(context.Background(), 3, nil, MoodInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMoodServicePublishesCoupleEventsToMembers(t *testing.T) {
	couples := newStubCoupleRepo()
	coupleService := NewCoupleService(couples)
	couple, _ := coupleService.Create(1)
	if _, err := coupleService.Join(2, couple.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	broker := realtime.NewMemoryBroker(nil)
	defer broker.Close()
	service := NewMoodService(&stubMoodRepo{}, coupleService, broker, nil, time.UTC, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	subscription, err := service.SubscribeCouple(ctx, 2, couple.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer subscription.Close()

	coupleID := couple.ID
	if _, err := service.Record(ctx, 1, &coupleID, MoodInput{MoodID: "rainbow", Note: "better"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	select {
	case payload := <-subscription.C:
		var item MoodFeedItem
		if err := json.Unmarshal(payload, &item); err != nil {
			t.Fatalf("decode feed item: %v", err)
		}
		if item.MoodID != "rainbow" || item.Score != 4 || item.Note != "better" {
			t.Fatalf("unexpected feed item: %+v", item)
		}
	case <-time.After(time.Second):
		t.Fatal("expected mood event for the guardian")
	}

	feed, err := service.CoupleFeed(2, couple.ID)
	if err != nil || len(feed) != 1 {
		t.Fatalf("expected one feed item, got %+v (%v)", feed, err)
	}
}

func TestMoodServiceFeedRequiresMembership(t *testing.T) {
	couples := NewCoupleService(newStubCoupleRepo())
	couple, _ := couples.Create(1)
	service := NewMoodService(&stubMoodRepo{}, couples, realtime.NewMemoryBroker(nil), nil, time.UTC, nil)

	if _, err := service.CoupleFeed(9, couple.ID); !errors.Is(err, ErrMoodFeedForbidden) {
		t.Fatalf("expected ErrMoodFeedForbidden, got %v", err)
	}
	if _, err := service.SubscribeCouple(context.Background(), 9, couple.ID); !errors.Is(err, ErrMoodFeedForbidden) {
		t.Fatalf("expected ErrMoodFeedForbidden on subscribe, got %v", err)
	}
}

func TestMoodServiceCurrentLooksFromStartOfToday(t *testing.T) {
	location := time.FixedZone("UTC+3", 3*60*60)
	repo := &stubMoodRepo{}
	service := NewMoodService(repo, nil, nil, nil, location, nil)
	service.now = func() time.Time { return time.Date(2026, 3, 14, 22, 30, 0, 0, time.UTC) }

	if _, found, err := service.Current(3); err != nil || found {
		t.Fatalf("expected no mood yet, got found=%v err=%v", found, err)
	}
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, location)
	if !repo.since.Equal(want) {
		t.Fatalf("expected lookup from %s, got %s", want, repo.since)
	}
}
