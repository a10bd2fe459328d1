package chat

import "sync"

// lockArena hands out one mutex per session so turns of the same session
// are serialized while different sessions proceed concurrently. Locks are
// created lazily on first use and reaped when their session is deleted.
type lockArena struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockArena() *lockArena {
	return &lockArena{locks: map[string]*sync.Mutex{}}
}

// get returns the mutex for a session, creating it on first use. The caller
// locks and unlocks it; the arena only manages ownership.
func (a *lockArena) get(sessionID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()

	l, ok := a.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		a.locks[sessionID] = l
	}
	return l
}

// remove drops a session's mutex. A turn already holding the old mutex
// finishes undisturbed; the session is gone, so no new turn will race it.
func (a *lockArena) remove(sessionID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.locks, sessionID)
}

// size reports how many session locks are live.
func (a *lockArena) size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.locks)
}
