package domain

import (
	"strings"
	"time"
)

// User is a marketplace participant. Every user owns exactly one wallet account,
// keyed by the user id.
type User struct {
	CreatedAt time.Time
	ID        string
	Email     string
	FirstName string
	LastName  string
}

// DisplayName returns the name used in notifications.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}
