// FILE: internal/dto/user_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type UserProfileResponse struct {
	Id        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name" validate:"required,min=3,max=40"`
}

type UploadAvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}

// CandidateRecord is the sanitized directory entry mirrored into the
// realtime tree. It never carries credentials.
type CandidateRecord struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type CandidateListResponse struct {
	Candidates []CandidateRecord `json:"candidates"`
	Total      int               `json:"total"`
}
