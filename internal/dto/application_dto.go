package dto

import "time"

// SubmitApplicationRequest mirrors the public application form. Experience
// is a pointer so a zero value passes required validation while a missing
// field does not.
type SubmitApplicationRequest struct {
	FullName   string `json:"full_name" validate:"required,min=3,max=40"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required,len=11,numeric"`
	Position   string `json:"position" validate:"required,oneof=frontend backend fullstack uiux"`
	Experience *int   `json:"experience" validate:"required,min=0,max=20"`
	Expertise  string `json:"expertise" validate:"max=500"`
}

type SubmitApplicationResponse struct {
	Id      string `json:"id"`
	FeedKey string `json:"feed_key"`
}

type ApplicationResponse struct {
	Id         string    `json:"id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Position   string    `json:"position"`
	Experience int       `json:"experience"`
	Expertise  string    `json:"expertise,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DashboardResponse is the signed-in landing payload: the display name
// resolved through the fallback chain plus the viewer's submissions.
type DashboardResponse struct {
	DisplayName  string                `json:"display_name"`
	Email        string                `json:"email"`
	AvatarURL    string                `json:"avatar_url,omitempty"`
	Applications []ApplicationResponse `json:"applications"`
	Total        int                   `json:"total"`
}
