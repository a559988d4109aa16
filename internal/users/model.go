package users

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

// User is the stored profile of an authenticated caller. FirebaseUID is the
// owner id used by projects.
type User struct {
	ID          string    `json:"id"`
	FirebaseUID string    `json:"firebase_uid"`
	Email       *string   `json:"email,omitempty"`
	DisplayName *string   `json:"display_name,omitempty"`
	PhotoURL    *string   `json:"photo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProfileUpdate changes only the fields that are non-nil.
type ProfileUpdate struct {
	DisplayName *string
	PhotoURL    *string
}
