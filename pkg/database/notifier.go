package database

import (
	"context"
	"sync"
)

// Notifier fans out table-change signals to subscribers. Signals coalesce:
// a subscriber that has not yet drained its pending signal is not signalled
// twice, so it always re-reads the latest state exactly once.
type Notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]*subscription
}

type subscription struct {
	tables map[string]struct{}
	ch     chan struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]*subscription)}
}

// Subscribe returns a channel that receives a signal after any write to one
// of tables. An empty table list matches every write. Call cancel to stop.
func (n *Notifier) Subscribe(tables ...string) (<-chan struct{}, func()) {
	s := &subscription{
		tables: make(map[string]struct{}, len(tables)),
		ch:     make(chan struct{}, 1),
	}
	for _, t := range tables {
		s.tables[t] = struct{}{}
	}

	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = s
	n.mu.Unlock()

	var once sync.Once
	return s.ch, func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
		})
	}
}

// Publish signals subscribers of the given tables. Safe on a nil Notifier.
func (n *Notifier) Publish(tables ...string) {
	if n == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, s := range n.subs {
		if !s.matches(tables) {
			continue
		}
		select {
		case s.ch <- struct{}{}:
		default:
		}
	}
}

func (s *subscription) matches(tables []string) bool {
	if len(s.tables) == 0 {
		return true
	}
	for _, t := range tables {
		if _, ok := s.tables[t]; ok {
			return true
		}
	}
	return false
}

// Snapshot is one emission of a continuous query.
type Snapshot[T any] struct {
	Value T
	Err   error
}

// Watch runs query once immediately and again after every write to tables,
// until ctx is done. The returned channel is closed on exit. A query error is
// delivered as a Snapshot and does not stop the watch.
func Watch[T any](ctx context.Context, n *Notifier, query func(context.Context) (T, error), tables ...string) <-chan Snapshot[T] {
	out := make(chan Snapshot[T], 1)

	var (
		changed <-chan struct{}
		cancel  = func() {}
	)
	if n != nil {
		changed, cancel = n.Subscribe(tables...)
	}

	go func() {
		defer close(out)
		defer cancel()

		emit := func() bool {
			v, err := query(ctx)
			if ctx.Err() != nil {
				return false
			}
			select {
			case out <- Snapshot[T]{Value: v, Err: err}:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-changed:
				if !emit() {
					return
				}
			}
		}
	}()

	return out
}
