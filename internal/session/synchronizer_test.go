package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingLookup releases its result only when told to, so tests can
// control exactly when an enrichment lands.
type blockingLookup struct {
	mu      sync.Mutex
	gates   map[string]chan string
	started chan string
}

func newBlockingLookup() *blockingLookup {
	return &blockingLookup{
		gates:   make(map[string]chan string),
		started: make(chan string, 16),
	}
}

func (b *blockingLookup) gate(email string) chan string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.gates[email]; !ok {
		b.gates[email] = make(chan string, 1)
	}
	return b.gates[email]
}

func (b *blockingLookup) Lookup(ctx context.Context, email string) (string, error) {
	g := b.gate(email)
	b.started <- email
	select {
	case name := <-g:
		return name, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func waitForName(t *testing.T, s *Synchronizer, want string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		snap := s.Snapshot()
		if snap.Identity != nil && snap.Identity.DisplayName == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("session never converged to display name %q, got %+v", want, snap)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSynchronizerStartsLoading(t *testing.T) {
	s := NewSynchronizer(nil, 0)
	defer s.Close()

	snap := s.Snapshot()
	assert.True(t, snap.Loading)
	assert.Nil(t, snap.Identity)
	assert.Equal(t, Wait, Decide(snap))
}

func TestSynchronizerSettlesSignedOutOnTimeout(t *testing.T) {
	s := NewSynchronizer(nil, 20*time.Millisecond)
	defer s.Close()

	assert.Eventually(t, func() bool {
		snap := s.Snapshot()
		return !snap.Loading && snap.Identity == nil
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, Deny, Decide(s.Snapshot()))
}

func TestSynchronizerEventCancelsSettleTimer(t *testing.T) {
	s := NewSynchronizer(nil, 20*time.Millisecond)
	defer s.Close()

	s.Notify(&Identity{ID: uuid.New(), Email: "a@b.com", DisplayName: "Alice"})

	time.Sleep(50 * time.Millisecond)
	snap := s.Snapshot()
	require.NotNil(t, snap.Identity)
	assert.Equal(t, Allow, Decide(snap))
}

func TestSynchronizerEnrichmentConverges(t *testing.T) {
	lookup := newBlockingLookup()
	s := NewSynchronizer(lookup.Lookup, 0)
	defer s.Close()

	s.Notify(&Identity{ID: uuid.New(), Email: "a@b.com", DisplayName: "Alice"})

	// Provisional name is visible immediately.
	snap := s.Snapshot()
	require.NotNil(t, snap.Identity)
	assert.Equal(t, "Alice", snap.Identity.DisplayName)

	<-lookup.started
	lookup.gate("a@b.com") <- "Alice Applicant"

	waitForName(t, s, "Alice Applicant")
}

func TestSynchronizerEmptyNameFallsBack(t *testing.T) {
	s := NewSynchronizer(nil, 0)
	defer s.Close()

	s.Notify(&Identity{ID: uuid.New(), Email: "a@b.com"})

	snap := s.Snapshot()
	require.NotNil(t, snap.Identity)
	assert.Equal(t, "User", snap.Identity.DisplayName)
}

func TestSynchronizerStaleLookupDiscarded(t *testing.T) {
	lookup := newBlockingLookup()
	s := NewSynchronizer(lookup.Lookup, 0)
	defer s.Close()

	s.Notify(&Identity{ID: uuid.New(), Email: "old@b.com", DisplayName: "Old"})
	<-lookup.started

	// A newer event arrives before the first lookup resolves.
	s.Notify(&Identity{ID: uuid.New(), Email: "new@b.com", DisplayName: "New"})
	<-lookup.started

	// The stale result lands late. It must not clobber the newer session.
	lookup.gate("old@b.com") <- "Old Enriched"
	lookup.gate("new@b.com") <- "New Enriched"

	waitForName(t, s, "New Enriched")

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, "New Enriched", s.Snapshot().Identity.DisplayName)
}

func TestSynchronizerStaleLookupAfterSignOut(t *testing.T) {
	lookup := newBlockingLookup()
	s := NewSynchronizer(lookup.Lookup, 0)
	defer s.Close()

	s.Notify(&Identity{ID: uuid.New(), Email: "a@b.com", DisplayName: "Alice"})
	<-lookup.started

	s.Notify(nil)

	lookup.gate("a@b.com") <- "Alice Enriched"

	time.Sleep(20 * time.Millisecond)
	snap := s.Snapshot()
	assert.Nil(t, snap.Identity)
	assert.False(t, snap.Loading)
}

func TestSynchronizerCloseIsTerminal(t *testing.T) {
	lookup := newBlockingLookup()
	s := NewSynchronizer(lookup.Lookup, 0)

	s.Notify(&Identity{ID: uuid.New(), Email: "a@b.com", DisplayName: "Alice"})
	<-lookup.started

	before := s.Snapshot()
	s.Close()

	// Neither fresh events nor in-flight lookups may mutate the snapshot.
	s.Notify(&Identity{ID: uuid.New(), Email: "z@b.com", DisplayName: "Zoe"})
	lookup.gate("a@b.com") <- "Alice Enriched"

	time.Sleep(20 * time.Millisecond)
	after := s.Snapshot()
	assert.Equal(t, before.Identity.DisplayName, after.Identity.DisplayName)
	assert.Equal(t, before.Identity.Email, after.Identity.Email)

	// Close is idempotent.
	s.Close()
}

func TestSynchronizerWatchObservesUpdates(t *testing.T) {
	s := NewSynchronizer(nil, 0)
	defer s.Close()

	ch := s.Watch()
	s.Notify(&Identity{ID: uuid.New(), Email: "a@b.com", DisplayName: "Alice"})

	select {
	case snap := <-ch:
		require.NotNil(t, snap.Identity)
		assert.Equal(t, "Alice", snap.Identity.DisplayName)
	case <-time.After(time.Second):
		t.Fatal("watcher never received the update")
	}
}

func TestSynchronizerWatchAfterCloseReturnsClosedChannel(t *testing.T) {
	s := NewSynchronizer(nil, 0)
	s.Close()

	ch := s.Watch()
	_, open := <-ch
	assert.False(t, open)
}
