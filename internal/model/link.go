package model

import (
	"time"
)

// DashboardLink maps (email, page) to an externally hosted URL. At most one
// row exists per pair; admin writes are upserts.
type DashboardLink struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Page      Page      `db:"page" json:"page"`
	Link      string    `db:"link" json:"link"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type UpsertDashboardLinkParams struct {
	Email string
	Page  Page
	Link  string
}
