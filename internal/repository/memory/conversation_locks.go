package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ConversationLocks serializes turn processing per (user, book) pair so
// concurrent sends cannot interleave state resolution and persistence.
// Idle locks are evicted by the backing cache; Acquire recreates them on
// demand, so eviction never drops a held lock (expiration far exceeds any
// request lifetime).
type ConversationLocks struct {
	mu    sync.Mutex
	locks *cache.Cache
}

func NewConversationLocks() *ConversationLocks {
	return &ConversationLocks{
		locks: cache.New(30*time.Minute, 10*time.Minute),
	}
}

func conversationKey(userId, bookId uuid.UUID) string {
	return fmt.Sprintf("%s:%s", userId, bookId)
}

// Acquire locks the conversation and returns the unlock function.
func (c *ConversationLocks) Acquire(userId, bookId uuid.UUID) func() {
	key := conversationKey(userId, bookId)

	c.mu.Lock()
	var lock *sync.Mutex
	if v, ok := c.locks.Get(key); ok {
		lock = v.(*sync.Mutex)
	} else {
		lock = &sync.Mutex{}
	}
	c.locks.Set(key, lock, cache.DefaultExpiration)
	c.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
