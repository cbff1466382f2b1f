package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/finsight/portal-server-go/internal/model"
)

type DashboardLinkRepository interface {
	FindByEmailAndPage(ctx context.Context, email string, page model.Page) (*model.DashboardLink, error)
	FindByEmail(ctx context.Context, email string) ([]model.DashboardLink, error)
	Upsert(ctx context.Context, params model.UpsertDashboardLinkParams) (*model.DashboardLink, error)
}

type dashboardLinkRepo struct {
	db *sqlx.DB
}

func NewDashboardLinkRepository(db *sqlx.DB) DashboardLinkRepository {
	return &dashboardLinkRepo{db: db}
}

func (r *dashboardLinkRepo) FindByEmailAndPage(ctx context.Context, email string, page model.Page) (*model.DashboardLink, error) {
	var link model.DashboardLink
	err := r.db.GetContext(ctx, &link, `
		SELECT * FROM dashboard_links WHERE email = $1 AND page = $2
	`, email, page)
	return HandleNotFound(&link, err)
}

func (r *dashboardLinkRepo) FindByEmail(ctx context.Context, email string) ([]model.DashboardLink, error) {
	links := []model.DashboardLink{}
	err := r.db.SelectContext(ctx, &links, `
		SELECT * FROM dashboard_links WHERE email = $1 ORDER BY updated_at DESC
	`, email)
	if err != nil {
		return nil, err
	}
	return links, nil
}

// Upsert resolves "row exists" and "new row" in one statement so concurrent
// writers cannot race a check-then-act; the dashboard_links_email_page_key
// constraint arbitrates.
func (r *dashboardLinkRepo) Upsert(ctx context.Context, params model.UpsertDashboardLinkParams) (*model.DashboardLink, error) {
	var link model.DashboardLink
	err := r.db.GetContext(ctx, &link, `
		INSERT INTO dashboard_links (email, page, link)
		VALUES ($1, $2, $3)
		ON CONFLICT (email, page)
		DO UPDATE SET link = EXCLUDED.link, updated_at = NOW()
		RETURNING *
	`, params.Email, params.Page, params.Link)
	if err != nil {
		return nil, err
	}
	return &link, nil
}
