package store

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// memoryStoreItem holds the value and expiration timestamp for a key.
type memoryStoreItem struct {
	value     []byte
	expiresAt int64 // Unix-nano timestamp. 0 for no expiry.
}

// MemoryStore is an in-memory key-value store that is safe for
// concurrent use. It backs development and test runs without redis.
type MemoryStore struct {
	mu          sync.RWMutex
	data        map[string]memoryStoreItem
	stopCleanup chan struct{} // Channel to stop cleanup goroutine
}

// NewMemoryStore creates and returns a new MemoryStore instance.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		data:        make(map[string]memoryStoreItem),
		stopCleanup: make(chan struct{}),
	}
	// Start background goroutine to periodically clean expired items
	// This prevents memory leaks from expired items that are never accessed
	go s.cleanupExpiredItems()
	return s
}

// Close cleans up resources.
func (s *MemoryStore) Close() error {
	close(s.stopCleanup)
	return nil
}

// Set stores a key-value pair.
func (s *MemoryStore) Set(key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().UnixNano() + ttl.Nanoseconds()
	}

	s.data[key] = memoryStoreItem{
		value:     value,
		expiresAt: expiresAt,
	}
	return nil
}

// Get retrieves a value by its key.
func (s *MemoryStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	item, exists := s.data[key]
	s.mu.RUnlock()

	if !exists {
		return nil, ErrNotFound
	}

	if item.expiresAt > 0 && time.Now().UnixNano() > item.expiresAt {
		s.mu.Lock()
		delete(s.data, key)
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	return item.value, nil
}

// Delete removes a value by its key.
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Exists checks if a key exists.
func (s *MemoryStore) Exists(key string) (bool, error) {
	s.mu.RLock()
	item, exists := s.data[key]
	s.mu.RUnlock()

	if !exists {
		return false, nil
	}

	if item.expiresAt > 0 && time.Now().UnixNano() > item.expiresAt {
		s.mu.Lock()
		delete(s.data, key)
		s.mu.Unlock()
		return false, nil
	}

	return true, nil
}

// cleanupExpiredItems periodically removes expired items from the store.
// Runs every 5 minutes to balance memory usage and CPU overhead.
func (s *MemoryStore) cleanupExpiredItems() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.performCleanup()
		case <-s.stopCleanup:
			logrus.Debug("MemoryStore cleanup goroutine stopped")
			return
		}
	}
}

// performCleanup scans the store and removes expired items.
func (s *MemoryStore) performCleanup() {
	now := time.Now().UnixNano()
	expiredKeys := make([]string, 0, 100)

	// First pass: identify expired keys (read lock)
	s.mu.RLock()
	for key, item := range s.data {
		if item.expiresAt > 0 && now > item.expiresAt {
			expiredKeys = append(expiredKeys, key)
		}
	}
	s.mu.RUnlock()

	// Second pass: delete expired keys (write lock)
	if len(expiredKeys) > 0 {
		deletedCount := 0
		s.mu.Lock()
		for _, key := range expiredKeys {
			// Double-check expiration under write lock to avoid race conditions
			if item, exists := s.data[key]; exists {
				if item.expiresAt > 0 && now > item.expiresAt {
					delete(s.data, key)
					deletedCount++
				}
			}
		}
		s.mu.Unlock()

		if logrus.IsLevelEnabled(logrus.DebugLevel) {
			logrus.Debugf("MemoryStore cleanup: removed %d expired items", deletedCount)
		}
	}
}
