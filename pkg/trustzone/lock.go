package trustzone

import (
	"path/filepath"
	"slices"
	"sync"
)

// pathLocks serialises access per device path. Entries are dropped once no
// caller holds or waits for them.
type pathLocks struct {
	mu      sync.Mutex
	entries map[string]*pathLock
}

type pathLock struct {
	mu   sync.Mutex
	refs int
}

func newPathLocks() *pathLocks {
	return &pathLocks{entries: make(map[string]*pathLock)}
}

// lock acquires every path in sorted order and returns the release func.
func (l *pathLocks) lock(paths ...string) func() {
	keys := make([]string, 0, len(paths))
	for _, p := range paths {
		keys = append(keys, lockKey(p))
	}
	slices.Sort(keys)
	keys = slices.Compact(keys)

	held := make([]*pathLock, 0, len(keys))
	for _, key := range keys {
		l.mu.Lock()
		entry, ok := l.entries[key]
		if !ok {
			entry = &pathLock{}
			l.entries[key] = entry
		}
		entry.refs++
		l.mu.Unlock()

		entry.mu.Lock()
		held = append(held, entry)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			l.mu.Lock()
			held[i].refs--
			if held[i].refs == 0 {
				delete(l.entries, keys[i])
			}
			l.mu.Unlock()
		}
	}
}

// lockKey maps every spelling of a path to one key.
func lockKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// size reports the number of tracked paths.
func (l *pathLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
