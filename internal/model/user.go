package model

import (
	"time"
)

// User has an email and/or a mobile number; at least one is present, and an
// absent identifier is NULL so it never collides under the unique columns.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        *string    `db:"email" json:"email,omitempty"`
	MobileNumber *string    `db:"mobile_number" json:"mobileNumber,omitempty"`
	PasswordHash string     `db:"password_hash" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
}

// EmailOrEmpty unwraps the optional email for callers that need a string.
func (u *User) EmailOrEmpty() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

type CreateUserParams struct {
	Email        *string
	MobileNumber *string
	PasswordHash string
}
