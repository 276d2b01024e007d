package entity

import (
	"time"

	"github.com/google/uuid"
)

type Position string

const (
	PositionFrontend  Position = "frontend"
	PositionBackend   Position = "backend"
	PositionFullstack Position = "fullstack"
	PositionUIUX      Position = "uiux"
)

// JobApplication is keyed by a caller-supplied submission ID rather than
// a generated UUID. The feed key is the tree store child key assigned
// when the record was mirrored into the realtime feed.
type JobApplication struct {
	Id         string
	UserId     uuid.UUID
	FullName   string
	Email      string
	Phone      string
	Position   Position
	Experience int
	Expertise  string
	FeedKey    string
	CreatedAt  time.Time
}
