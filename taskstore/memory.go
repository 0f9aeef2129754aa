package taskstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kvit-dev/caleoban/models"
)

// subscription delivers snapshots in store version order. A snapshot older
// than the last one delivered is dropped.
type subscription struct {
	userID string
	fn     func([]models.Task)

	mu   sync.Mutex
	last int64
}

func (sub *subscription) deliver(version int64, snapshot []models.Task) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if version <= sub.last {
		return
	}
	sub.last = version
	// every subscriber gets its own copy
	cp := make([]models.Task, len(snapshot))
	copy(cp, snapshot)
	sub.fn(cp)
}

// MemoryStore keeps tasks in process memory. It backs TASK_STORE=memory and
// the tests, and behaves like the Firestore store: owner-scoped snapshots,
// newest first, pushed to subscribers after every change.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]models.Task
	seq   map[string]int64
	next  int64

	subs    map[int]*subscription
	nextSub int
	version int64

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks: map[string]models.Task{},
		seq:   map[string]int64{},
		subs:  map[int]*subscription{},
		now:   time.Now,
	}
}

// WithClock replaces the clock used for CreatedAt.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Create(_ context.Context, t models.Task) (string, error) {
	s.mu.Lock()
	t.ID = uuid.NewString()
	t.CreatedAt = s.now()
	t.DependsOn = append([]string(nil), t.DependsOn...)
	s.tasks[t.ID] = t
	s.next++
	s.seq[t.ID] = s.next
	version, snapshot, subs := s.pendingLocked(t.UserID)
	s.mu.Unlock()

	deliver(version, snapshot, subs)
	return t.ID, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, patch models.TaskPatch) error {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return models.ErrTaskNotFound
	}
	t = patch.Apply(t)
	s.tasks[id] = t
	version, snapshot, subs := s.pendingLocked(t.UserID)
	s.mu.Unlock()

	deliver(version, snapshot, subs)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return models.ErrTaskNotFound
	}
	delete(s.tasks, id)
	delete(s.seq, id)
	version, snapshot, subs := s.pendingLocked(t.UserID)
	s.mu.Unlock()

	deliver(version, snapshot, subs)
	return nil
}

// DeleteAllForUser removes every task of userID and returns how many went.
func (s *MemoryStore) DeleteAllForUser(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	n := 0
	for id, t := range s.tasks {
		if t.UserID == userID {
			delete(s.tasks, id)
			delete(s.seq, id)
			n++
		}
	}
	var version int64
	var snapshot []models.Task
	var subs []*subscription
	if n > 0 {
		version, snapshot, subs = s.pendingLocked(userID)
	}
	s.mu.Unlock()

	deliver(version, snapshot, subs)
	return n, nil
}

func (s *MemoryStore) List(_ context.Context, userID string) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(userID), nil
}

// Subscribe calls fn with the current snapshot right away and again after
// every change to userID's tasks. Snapshots reach fn in write order and
// never concurrently; fn must not write to the store itself. The returned
// func, or cancelling ctx, stops the subscription. The in-memory feed
// cannot fail, so the error callback is never called.
func (s *MemoryStore) Subscribe(ctx context.Context, userID string, fn func([]models.Task), _ func(error)) (func(), error) {
	s.mu.Lock()
	s.nextSub++
	key := s.nextSub
	sub := &subscription{userID: userID, fn: fn, last: -1}
	s.subs[key] = sub
	version := s.version
	snapshot := s.snapshotLocked(userID)
	s.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, key)
			s.mu.Unlock()
		})
	}
	stop := context.AfterFunc(ctx, unsubscribe)

	// a write that lands before this has already sent a newer snapshot
	sub.deliver(version, snapshot)
	return func() {
		stop()
		unsubscribe()
	}, nil
}

func (s *MemoryStore) snapshotLocked(userID string) []models.Task {
	out := make([]models.Task, 0)
	for _, t := range s.tasks {
		if t.UserID == userID {
			t.DependsOn = append([]string(nil), t.DependsOn...)
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return s.seq[out[i].ID] > s.seq[out[j].ID]
	})
	return out
}

// pendingLocked bumps the store version and returns the snapshot to push
// to userID's subscribers.
func (s *MemoryStore) pendingLocked(userID string) (int64, []models.Task, []*subscription) {
	s.version++
	var subs []*subscription
	for _, sub := range s.subs {
		if sub.userID == userID {
			subs = append(subs, sub)
		}
	}
	if len(subs) == 0 {
		return s.version, nil, nil
	}
	return s.version, s.snapshotLocked(userID), subs
}

func deliver(version int64, snapshot []models.Task, subs []*subscription) {
	for _, sub := range subs {
		sub.deliver(version, snapshot)
	}
}

// Subscribers returns the number of live subscriptions for userID.
func (s *MemoryStore) Subscribers(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, sub := range s.subs {
		if sub.userID == userID {
			n++
		}
	}
	return n
}
