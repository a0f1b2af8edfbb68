package app

import (
	"sync"

	"mcq-service/internal/domain"
)

// SnapshotFeed fans refreshed snapshots out to live subscribers, filtered per
// subscriber by the visibility rule.
type SnapshotFeed struct {
	mu          sync.Mutex
	latest      domain.Snapshot
	started     bool
	subscribers map[chan domain.Snapshot]domain.Principal
}

func NewSnapshotFeed() *SnapshotFeed {
	return &SnapshotFeed{
		subscribers: make(map[chan domain.Snapshot]domain.Principal),
	}
}

// Subscribe registers principal and immediately delivers the newer of current
// and the last published snapshot.
func (f *SnapshotFeed) Subscribe(principal domain.Principal, current domain.Snapshot) (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	f.mu.Lock()
	initial := current
	if f.started && f.latest.Version > current.Version {
		initial = f.latest
	}
	if !f.started || initial.Version > f.latest.Version {
		// A mutation committed but has not published yet; its Publish is now stale.
		f.latest = initial
		f.started = true
	}
	f.subscribers[ch] = principal
	ch <- initial.Visible(principal)
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers snap unless a newer version already went out.
func (f *SnapshotFeed) Publish(snap domain.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.started && snap.Version <= f.latest.Version {
		return
	}
	f.latest = snap
	f.started = true

	for ch, principal := range f.subscribers {
		visible := snap.Visible(principal)
		select {
		case ch <- visible:
		default:
			// Slow subscriber: drop its oldest pending snapshot rather than block the mutation path.
			select {
			case <-ch:
			default:
			}
			ch <- visible
		}
	}
}

// Subscribers reports how many live subscriptions exist.
func (f *SnapshotFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}
