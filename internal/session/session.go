package session

import "github.com/google/uuid"

// Identity is the authenticated principal as seen by session consumers.
// DisplayName is whatever the enrichment lookup resolved; it is never
// empty once a snapshot reports Loading false.
type Identity struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	AvatarRef   string
}

// Session is a point-in-time snapshot of one principal's auth state.
// Loading starts true and drops to false permanently after the first
// identity event (or the first-event timeout) settles.
type Session struct {
	Identity *Identity
	Loading  bool
}

// Decision is the access verdict for a guarded resource.
type Decision int

const (
	// Wait means the session has not settled yet; hold the request.
	Wait Decision = iota
	// Deny means the session settled signed-out; reject and redirect.
	Deny
	// Allow admits the request.
	Allow
)

func (d Decision) String() string {
	switch d {
	case Wait:
		return "wait"
	case Deny:
		return "deny"
	case Allow:
		return "allow"
	default:
		return "unknown"
	}
}

// Decide maps a snapshot to an access verdict. Loading always wins over
// the identity check, so a signed-in identity still waits until the
// session settles.
func Decide(s Session) Decision {
	if s.Loading {
		return Wait
	}
	if s.Identity == nil {
		return Deny
	}
	return Allow
}
