package services

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/gstfolio/src/models"
)

// SessionStore is the working memory of open sessions. Entries expire after
// the TTL without activity; nothing here is durable.
type SessionStore struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewSessionStore(ttl, cleanupInterval time.Duration) *SessionStore {
	return &SessionStore{cache: cache.New(ttl, cleanupInterval)}
}

func sessionCacheKey(key SessionKey) string {
	return "session_" + key.String()
}

// Get returns a copy of the session's transactions.
func (s *SessionStore) Get(key SessionKey) []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(key)
}

func (s *SessionStore) load(key SessionKey) []models.Transaction {
	cached, found := s.cache.Get(sessionCacheKey(key))
	if !found {
		return []models.Transaction{}
	}
	txs := cached.([]models.Transaction)
	out := make([]models.Transaction, len(txs))
	copy(out, txs)
	return out
}

// Update applies fn to a copy of the session's transactions and stores the
// result unless fn fails. Updates of all sessions are serialized.
func (s *SessionStore) Update(key SessionKey, fn func([]models.Transaction) ([]models.Transaction, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.load(key))
	if err != nil {
		return err
	}
	s.cache.Set(sessionCacheKey(key), next, cache.DefaultExpiration)
	return nil
}

// Clear drops the session's transactions.
func (s *SessionStore) Clear(key SessionKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(sessionCacheKey(key))
}
