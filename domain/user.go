package domain

import "time"

// User is an entry of the account directory.
type User struct {
	Email          string
	Username       string
	PasswordHash   string
	ProfilePicture string
	CreatedAt      time.Time
}
