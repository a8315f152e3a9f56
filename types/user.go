package types

import "time"

// User represents an account in the system.
// Users are created on signup and never modified afterwards.
type User struct {
	// ID is the unique identifier of the user (UUID string).
	ID string `json:"id" db:"id" bson:"_id"`

	// Name is the unique login name chosen by the user.
	Name string `json:"name" db:"name" bson:"name"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash" bson:"passwordHash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
}
