package protocol

import (
	"context"
	"slices"
	"sync"
)

type auditSubscriber struct {
	ctx context.Context
	ch  chan Event
}

// AuditLog is the append-only event stream covering every state
// transition. Entries are never mutated or truncated; external
// observers either snapshot via Events or subscribe.
type AuditLog struct {
	mu          sync.Mutex
	seq         uint64
	entries     []Event
	subscribers []auditSubscriber
}

// NewAuditLog creates an empty audit log.
func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

// Append assigns the next sequence number, stores the event, and
// notifies subscribers. Slow subscribers are skipped rather than
// blocking the append path.
func (l *AuditLog) Append(e Event) Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	e.Seq = l.seq
	l.entries = append(l.entries, e)

	toRemove := []int{}
	for i, sub := range l.subscribers {
		select {
		case <-sub.ctx.Done():
			close(sub.ch)
			toRemove = append(toRemove, i)
		case sub.ch <- e:
		default:
			// Skip if channel is full
		}
	}

	slices.Reverse(toRemove)
	for _, i := range toRemove {
		l.subscribers = slices.Delete(l.subscribers, i, i+1)
	}

	return e
}

// Events returns a snapshot of all recorded events in append order.
func (l *AuditLog) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.entries)
}

// Len returns the number of recorded events.
func (l *AuditLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Subscribe returns a channel receiving every event appended after the
// call. The subscription is dropped when ctx is done.
func (l *AuditLog) Subscribe(ctx context.Context) <-chan Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan Event, 16)
	l.subscribers = append(l.subscribers, auditSubscriber{ctx, ch})
	return ch
}
