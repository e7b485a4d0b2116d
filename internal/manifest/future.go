package manifest

import "sync"

// Future is a value that becomes available exactly once. Reads before that
// do not block; they report that the value is not there yet.
type Future[T any] struct {
	mu       sync.Mutex
	value    T
	resolved bool
	done     chan struct{}
	waiters  []func(T)
}

func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolve stores v and wakes every waiter. Only the first call has an
// effect; it reports whether this call was that one.
func (f *Future[T]) Resolve(v T) bool {
	f.mu.Lock()
	if f.resolved {
		f.mu.Unlock()
		return false
	}
	f.value = v
	f.resolved = true
	waiters := f.waiters
	f.waiters = nil
	close(f.done)
	f.mu.Unlock()

	for _, w := range waiters {
		w(v)
	}
	return true
}

// Get returns the value and true once resolved, the zero value and false before.
func (f *Future[T]) Get() (T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.resolved
}

// OnResolve runs fn with the value once it is available. If the future is
// already resolved fn runs immediately on the calling goroutine.
func (f *Future[T]) OnResolve(fn func(T)) {
	f.mu.Lock()
	if !f.resolved {
		f.waiters = append(f.waiters, fn)
		f.mu.Unlock()
		return
	}
	v := f.value
	f.mu.Unlock()
	fn(v)
}

// Done is closed when the future resolves.
func (f *Future[T]) Done() <-chan struct{} { return f.done }
