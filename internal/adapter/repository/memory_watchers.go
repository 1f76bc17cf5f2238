package repository

import (
	"context"
	"sync"

	"medialib/internal/domain/repository"
)

type memoryWatcher[T any] struct {
	snapshot func() []T
	fn       func([]T)
}

// memoryWatchers fans a full snapshot out to every live query after each
// write. Deliveries are serialized so the last one seen is the newest;
// callbacks must not write to the repository that feeds them.
type memoryWatchers[T any] struct {
	mu       sync.Mutex
	notifyMu sync.Mutex
	nextID   int
	watchers map[int]memoryWatcher[T]
}

func (w *memoryWatchers[T]) add(ctx context.Context, snapshot func() []T, fn func([]T)) repository.Unsubscribe {
	w.mu.Lock()
	if w.watchers == nil {
		w.watchers = make(map[int]memoryWatcher[T])
	}
	id := w.nextID
	w.nextID++
	w.watchers[id] = memoryWatcher[T]{snapshot: snapshot, fn: fn}
	w.mu.Unlock()

	var once sync.Once
	remove := func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.watchers, id)
			w.mu.Unlock()
		})
	}
	stop := context.AfterFunc(ctx, remove)

	w.notifyMu.Lock()
	fn(snapshot())
	w.notifyMu.Unlock()

	return func() {
		stop()
		remove()
	}
}

func (w *memoryWatchers[T]) broadcast() {
	w.notifyMu.Lock()
	defer w.notifyMu.Unlock()

	w.mu.Lock()
	current := make([]memoryWatcher[T], 0, len(w.watchers))
	for _, watcher := range w.watchers {
		current = append(current, watcher)
	}
	w.mu.Unlock()

	for _, watcher := range current {
		watcher.fn(watcher.snapshot())
	}
}
