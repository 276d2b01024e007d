package memory

import (
	"time"

	"jobportal-be/internal/session"

	"github.com/patrickmn/go-cache"
)

// SessionRegistry holds the live session projection for each signed-in
// principal. One synchronizer per user; eviction closes the projection so
// late events cannot touch it.
type SessionRegistry struct {
	cache *cache.Cache
}

func NewSessionRegistry(ttl time.Duration) *SessionRegistry {
	c := cache.New(ttl, 10*time.Minute)
	c.OnEvicted(func(_ string, v interface{}) {
		if sync, ok := v.(*session.Synchronizer); ok {
			sync.Close()
		}
	})
	return &SessionRegistry{
		cache: c,
	}
}

func (r *SessionRegistry) Save(userID string, sync *session.Synchronizer) {
	// Replace closes the previous projection for the same principal.
	if prev, found := r.Get(userID); found && prev != sync {
		prev.Close()
	}
	r.cache.Set(userID, sync, cache.DefaultExpiration)
}

func (r *SessionRegistry) Get(userID string) (*session.Synchronizer, bool) {
	if x, found := r.cache.Get(userID); found {
		return x.(*session.Synchronizer), true
	}
	return nil, false
}

// Remove drops and closes the projection. Guard lookups miss immediately
// afterwards, which is what turns a sign-out into an instant deny.
func (r *SessionRegistry) Remove(userID string) {
	if sync, found := r.Get(userID); found {
		sync.Close()
	}
	r.cache.Delete(userID)
}
