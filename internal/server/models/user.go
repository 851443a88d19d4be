// Package models defines server-side data models persisted in the database
// or passed between the gateway and the services.
package models

import "time"

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string
	UserName     string
	PasswordHash string
	CreatedAt    time.Time
}

// PublicUser is the outward view of a User.
type PublicUser struct {
	UserName string `json:"user"`
	ID       string `json:"id"`
}

// Public returns the view of u that is safe to send to clients.
func (u *User) Public() PublicUser {
	return PublicUser{UserName: u.UserName, ID: u.ID}
}
