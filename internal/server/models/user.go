// Package models defines server-side data models persisted by the user
// directory.
package models

import "time"

// User is an identity record. Email is unique across the directory and is
// not changed after creation; PasswordHash never holds the raw password.
type User struct {
	ID              string
	Email           string
	PasswordHash    string
	IsEmailVerified bool
	CreatedAt       time.Time
}
