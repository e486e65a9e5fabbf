package entities

import (
	"time"
)

// User represents an authenticated user. Identity is delegated to an
// external provider; this record mirrors the profile it hands back.
type User struct {
	ID              string    `json:"id" db:"id"`
	Email           string    `json:"email" db:"email"`
	FirstName       string    `json:"firstName" db:"first_name"`
	LastName        string    `json:"lastName" db:"last_name"`
	ProfileImageURL string    `json:"profileImageUrl" db:"profile_image_url"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// FullName joins the name parts, falling back to a generic label so the
// account menu never renders empty.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return "User"
}
