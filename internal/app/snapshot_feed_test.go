package app

import (
	"testing"

	"mcq-service/internal/domain"
)

func TestSnapshotFeedDropsStaleVersions(t *testing.T) {
	feed := NewSnapshotFeed()
	viewer := domain.Principal{ID: "u", Role: domain.RoleUser}

	ch, cancel := feed.Subscribe(viewer, domain.Snapshot{Version: 1})
	defer cancel()
	<-ch

	feed.Publish(domain.Snapshot{Version: 3, Questions: []domain.Question{{ID: "a", IsPublished: true}, {ID: "b"}}})
	feed.Publish(domain.Snapshot{Version: 2})

	got := <-ch
	if got.Version != 3 {
		t.Fatalf("expected version 3, got %d", got.Version)
	}
	if len(got.Questions) != 1 || got.Questions[0].ID != "a" {
		t.Fatalf("expected filtered snapshot, got %+v", got.Questions)
	}
	select {
	case extra := <-ch:
		t.Fatalf("stale snapshot delivered: %+v", extra)
	default:
	}
}

func TestSnapshotFeedSlowSubscriberDoesNotBlock(t *testing.T) {
	feed := NewSnapshotFeed()
	ch, cancel := feed.Subscribe(domain.Principal{ID: "a", Role: domain.RoleAdmin}, domain.Snapshot{})
	defer cancel()

	for v := uint64(1); v <= 20; v++ {
		feed.Publish(domain.Snapshot{Version: v})
	}

	var last uint64
	for len(ch) > 0 {
		last = (<-ch).Version
	}
	if last != 20 {
		t.Fatalf("expected newest snapshot to survive, got %d", last)
	}
}

func TestSnapshotFeedLateSubscriberGetsLatest(t *testing.T) {
	feed := NewSnapshotFeed()
	feed.Publish(domain.Snapshot{Version: 5})

	ch, cancel := feed.Subscribe(domain.Principal{ID: "a", Role: domain.RoleAdmin}, domain.Snapshot{Version: 4})
	if got := (<-ch).Version; got != 5 {
		t.Fatalf("expected latest version 5, got %d", got)
	}

	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after cancel")
	}
	if feed.Subscribers() != 0 {
		t.Fatalf("expected no subscribers")
	}
}

func TestSnapshotFeedSkipsPublishAlreadySeenOnSubscribe(t *testing.T) {
	feed := NewSnapshotFeed()
	feed.Publish(domain.Snapshot{Version: 4})

	// Version 5 is committed in the store but its Publish has not run yet.
	ch, cancel := feed.Subscribe(domain.Principal{ID: "a", Role: domain.RoleAdmin}, domain.Snapshot{Version: 5})
	defer cancel()
	if got := (<-ch).Version; got != 5 {
		t.Fatalf("expected initial version 5, got %d", got)
	}

	feed.Publish(domain.Snapshot{Version: 5})
	select {
	case dup := <-ch:
		t.Fatalf("received version %d twice", dup.Version)
	default:
	}

	feed.Publish(domain.Snapshot{Version: 6})
	if got := (<-ch).Version; got != 6 {
		t.Fatalf("expected version 6 after the duplicate was dropped, got %d", got)
	}
}
