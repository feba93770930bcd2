package models

import "time"

// User is the identity half of a credential record. It never carries the raw
// password; the hash lives in Credentials and stays inside the store layer.
type User struct {
	ID        string
	Username  string
	Email     string
	CreatedAt time.Time
}

// Credentials is what the store returns for a username lookup: the identity,
// its one-way password hash, and the role set at lookup time.
type Credentials struct {
	User         User
	PasswordHash string
	Roles        []string
}
