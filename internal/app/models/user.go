package models

import (
	"time"
)

// User defines the user model based on the 'users' table. ID is the identity provider subject.
type User struct {
	ID            string    `json:"id" db:"id" example:"3f0c1f5e-5b7e-4d7a-9d0c-1c1f0f5d2e11"`
	Email         string    `json:"email" db:"email" example:"student@example.com"`
	FirstName     string    `json:"firstName" db:"first_name" example:"Ada"`
	LastName      string    `json:"lastName" db:"last_name" example:"Lovelace"`
	Phone         *string   `json:"phone,omitempty" db:"phone"`
	Role          RoleType  `json:"role" db:"role" example:"STUDENT"`
	EmailVerified bool      `json:"emailVerified" db:"email_verified"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// FullName joins first and last name
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// VerificationToken is a pending email verification
type VerificationToken struct {
	Token     string    `db:"token"`
	UserID    string    `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
}

// Expired reports whether the token is past its expiry at now
func (t *VerificationToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
