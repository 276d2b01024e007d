package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	identity := &Identity{ID: uuid.New(), Email: "a@b.com", DisplayName: "A"}

	tests := []struct {
		name     string
		session  Session
		expected Decision
	}{
		{
			name:     "loading with no identity waits",
			session:  Session{Loading: true},
			expected: Wait,
		},
		{
			name:     "loading with identity waits",
			session:  Session{Identity: identity, Loading: true},
			expected: Wait,
		},
		{
			name:     "settled without identity denies",
			session:  Session{Loading: false},
			expected: Deny,
		},
		{
			name:     "settled with identity allows",
			session:  Session{Identity: identity, Loading: false},
			expected: Allow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Decide(tt.session))
		})
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "wait", Wait.String())
	assert.Equal(t, "deny", Deny.String())
	assert.Equal(t, "allow", Allow.String())
}
