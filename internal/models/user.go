package models

import "time"

// AnonymousUserID owns records written without a signed-in user.
const AnonymousUserID = "anonymous"

// RegisteredUser is an entry of the registeredUsers list.
type RegisteredUser struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	Name          string    `json:"name,omitempty"`
	SpecialAccess bool      `json:"special_access,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Profile is the public profile of a user, stored under profile_<id>.
type Profile struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Bio             string    `json:"bio"`
	ProfileImageURL string    `json:"profile_image_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ProfileUpdate carries optional profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name            *string `json:"name,omitempty"`
	Bio             *string `json:"bio,omitempty"`
	ProfileImageURL *string `json:"profile_image_url,omitempty"`
}

// Session identifies who the current request acts for.
type Session struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email,omitempty"`
	SpecialAccess bool   `json:"special_access"`
}

// Owner returns the user id records are scoped to.
func (s Session) Owner() string {
	if s.UserID == "" {
		return AnonymousUserID
	}
	return s.UserID
}
