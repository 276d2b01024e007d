package events

import "time"

// Event type codes published on the event stream.
const (
	TypeIdentitySignedIn     = "IDENTITY_SIGNED_IN"
	TypeIdentitySignedOut    = "IDENTITY_SIGNED_OUT"
	TypeProfileUpdated       = "PROFILE_UPDATED"
	TypeApplicationSubmitted = "APPLICATION_SUBMITTED"
	TypeCandidateRemoved     = "CANDIDATE_REMOVED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "IDENTITY_SIGNED_IN").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewIdentitySignedIn is emitted after a credential or provider login.
// DisplayName may be empty; consumers resolve a fallback themselves.
func NewIdentitySignedIn(userID, email, displayName, avatarRef string) Event {
	return BaseEvent{
		Type: TypeIdentitySignedIn,
		Data: map[string]interface{}{
			"user_id":      userID,
			"email":        email,
			"display_name": displayName,
			"avatar_ref":   avatarRef,
		},
		OccurredAt: time.Now(),
	}
}

func NewIdentitySignedOut(userID string) Event {
	return BaseEvent{
		Type: TypeIdentitySignedOut,
		Data: map[string]interface{}{
			"user_id": userID,
		},
		OccurredAt: time.Now(),
	}
}

func NewProfileUpdated(userID, displayName, avatarRef string) Event {
	return BaseEvent{
		Type: TypeProfileUpdated,
		Data: map[string]interface{}{
			"user_id":      userID,
			"display_name": displayName,
			"avatar_ref":   avatarRef,
		},
		OccurredAt: time.Now(),
	}
}

func NewApplicationSubmitted(submissionID, userID, email, position string) Event {
	return BaseEvent{
		Type: TypeApplicationSubmitted,
		Data: map[string]interface{}{
			"submission_id": submissionID,
			"user_id":       userID,
			"email":         email,
			"position":      position,
		},
		OccurredAt: time.Now(),
	}
}

func NewCandidateRemoved(candidateID string) Event {
	return BaseEvent{
		Type: TypeCandidateRemoved,
		Data: map[string]interface{}{
			"candidate_id": candidateID,
		},
		OccurredAt: time.Now(),
	}
}
