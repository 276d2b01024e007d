package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// JobApplication persists submissions under their wire-format ID. RawPayload
// keeps the submitted form verbatim so the record survives schema drift in
// the structured columns.
type JobApplication struct {
	Id         string         `gorm:"type:varchar(32);primaryKey"`
	UserId     uuid.UUID      `gorm:"type:uuid;not null;index"`
	FullName   string         `gorm:"type:varchar(255);not null"`
	Email      string         `gorm:"type:varchar(255);not null;index"`
	Phone      string         `gorm:"type:varchar(20);not null"`
	Position   string         `gorm:"type:varchar(50);not null"`
	Experience int            `gorm:"not null"`
	Expertise  string         `gorm:"type:text"`
	FeedKey    string         `gorm:"type:varchar(64)"`
	RawPayload datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
}

func (JobApplication) TableName() string {
	return "job_applications"
}
