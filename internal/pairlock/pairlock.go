// Package pairlock serializes work on unordered pairs of user ids.
//
// The swipe ledger's check-reverse-then-flip-both sequence must not race
// with a concurrent swipe on the same pair: the lock key is derived from
// the pair regardless of direction, so RecordSwipe(A, B) and
// RecordSwipe(B, A) always contend on the same mutex.
package pairlock

import "sync"

// Locker hands out per-pair mutexes. Entries are created on demand and
// released once no goroutine holds or waits on them, so the map does not
// grow with the number of pairs ever seen.
type Locker struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// New creates an empty Locker.
func New() *Locker {
	return &Locker{entries: make(map[string]*entry)}
}

// Key returns the canonical lock key for an unordered pair.
func Key(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// Lock acquires the mutex for the unordered pair {a, b} and returns the
// function that releases it.
func (l *Locker) Lock(a, b string) (unlock func()) {
	key := Key(a, b)

	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.entries, key)
		}
		l.mu.Unlock()
	}
}
