package model

import (
	"time"
)

// Admin is a separate identity table from users. AdminName participates in
// login alongside email and password.
type Admin struct {
	ID           string    `db:"id" json:"id"`
	AdminName    string    `db:"admin_name" json:"adminName"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

type CreateAdminParams struct {
	AdminName    string
	Email        string
	PasswordHash string
}
