package dto

// IdentityChangedMessage travels on the in-process identity stream. One
// message per auth transition; SignedIn false means the other fields only
// carry the user id.
type IdentityChangedMessage struct {
	UserId      string `json:"user_id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarRef   string `json:"avatar_ref,omitempty"`
	SignedIn    bool   `json:"signed_in"`
}
