package models

import "time"

// UserResponse is the client-facing view of a credential record. It never
// carries the password hash.
type UserResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Bio          string    `json:"bio,omitempty"`
	ProfileImage string    `json:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AuthResponse is returned by register, login, and identity-bearing mutations.
// Token is present whenever the operation (re-)issued a token.
type AuthResponse struct {
	UserResponse
	Token string `json:"token,omitempty"`
}

// NewUserResponse maps a record to its client-facing view.
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Bio:          u.Bio,
		ProfileImage: u.ProfileImageURL,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
