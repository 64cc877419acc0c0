package auth

import (
	"time"

	"github.com/user/taskman-go/session"
)

// User is a credential record: identity plus password hash. Users are
// created at registration and never mutated or deleted by any exposed
// operation.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // never serialized
	CreatedAt      time.Time `json:"created_at"`
}

// Principal returns the reduced session projection of the user.
func (u *User) Principal() *session.Principal {
	return &session.Principal{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}
