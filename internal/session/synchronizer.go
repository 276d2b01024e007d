package session

import (
	"context"
	"sync"
	"time"
)

const lookupTimeout = 5 * time.Second

// Lookup resolves a richer display name for an email, typically from the
// principal's newest job application. Empty result means nothing found.
type Lookup func(ctx context.Context, email string) (string, error)

// Synchronizer projects one principal's identity events into a Session
// snapshot. Notify must be called from a single goroutine so event order
// is preserved by construction; enrichment lookups run async and are
// sequence-stamped so a stale result can never clobber a newer event.
type Synchronizer struct {
	mu       sync.Mutex
	current  Session
	seq      uint64
	closed   bool
	watchers []chan Session

	lookup    Lookup
	closeOnce sync.Once
	settle    *time.Timer
}

// NewSynchronizer starts in the loading shape. If no event arrives within
// firstEventTimeout the session settles signed-out instead of hanging,
// so guarded requests fail closed rather than stall forever.
func NewSynchronizer(lookup Lookup, firstEventTimeout time.Duration) *Synchronizer {
	s := &Synchronizer{
		current: Session{Loading: true},
		lookup:  lookup,
	}
	if firstEventTimeout > 0 {
		s.settle = time.AfterFunc(firstEventTimeout, s.settleSignedOut)
	}
	return s
}

// Notify applies the next identity event. A populated identity settles the
// session signed-in with a provisional display name and kicks off the
// enrichment lookup; nil settles it signed-out.
func (s *Synchronizer) Notify(identity *Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.stopSettleTimer()
	s.seq++

	if identity == nil {
		s.current = Session{Loading: false}
		s.broadcastLocked()
		return
	}

	resolved := *identity
	resolved.DisplayName = fallbackName("", identity.DisplayName)
	s.current = Session{Identity: &resolved, Loading: false}
	s.broadcastLocked()

	if s.lookup != nil {
		go s.enrich(s.seq, identity.Email, identity.DisplayName)
	}
}

func (s *Synchronizer) enrich(seq uint64, email, identityName string) {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	name, err := s.lookup(ctx, email)
	if err != nil || name == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A later event or Close supersedes this lookup.
	if s.closed || s.seq != seq || s.current.Identity == nil {
		return
	}

	updated := *s.current.Identity
	updated.DisplayName = name
	s.current = Session{Identity: &updated, Loading: false}
	s.broadcastLocked()
}

// Snapshot returns the current session value.
func (s *Synchronizer) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Watch registers an observer channel. Sends never block; a slow observer
// misses intermediate snapshots, not the latest one it can keep up with.
func (s *Synchronizer) Watch() <-chan Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Session, 8)
	if s.closed {
		close(ch)
		return ch
	}
	s.watchers = append(s.watchers, ch)
	return ch
}

// Close detaches the projection. Idempotent; notifications and in-flight
// lookup results arriving after Close are discarded.
func (s *Synchronizer) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.closed = true
		s.stopSettleTimer()
		for _, ch := range s.watchers {
			close(ch)
		}
		s.watchers = nil
	})
}

func (s *Synchronizer) settleSignedOut() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.current.Loading {
		return
	}
	s.current = Session{Loading: false}
	s.broadcastLocked()
}

func (s *Synchronizer) stopSettleTimer() {
	if s.settle != nil {
		s.settle.Stop()
		s.settle = nil
	}
}

func (s *Synchronizer) broadcastLocked() {
	for _, ch := range s.watchers {
		select {
		case ch <- s.current:
		default:
		}
	}
}

// fallbackName picks the first non-empty candidate, ending at "User" so a
// signed-in session never shows an empty name.
func fallbackName(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return "User"
}
