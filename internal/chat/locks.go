package chat

import "sync"

// userLocks serializes turns per user. Turns for different users
// never contend; two turns for the same user hold the same mutex for
// their full load/generate/save span, which is what prevents the
// second save from overwriting the first one's appended messages.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *userLocks) get(userID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[userID] = lock
	}
	return lock
}
