package handler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/finsight/portal-server-go/internal/model"
)

// In-memory fakes backing the end-to-end handler tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users []*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{}
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email != nil && *u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if (u.Email != nil && *u.Email == identifier) ||
			(u.MobileNumber != nil && *u.MobileNumber == identifier) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

// Create mirrors the users_email_key and users_mobile_number_key constraints:
// NULL never collides, duplicate values do.
func (f *fakeUserRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if params.Email != nil && u.Email != nil && *u.Email == *params.Email {
			return nil, &pq.Error{Code: "23505", Constraint: "users_email_key"}
		}
		if params.MobileNumber != nil && u.MobileNumber != nil && *u.MobileNumber == *params.MobileNumber {
			return nil, &pq.Error{Code: "23505", Constraint: "users_mobile_number_key"}
		}
	}
	f.seq++
	user := &model.User{
		ID:           fmt.Sprintf("u%d", f.seq),
		Email:        params.Email,
		MobileNumber: params.MobileNumber,
		PasswordHash: params.PasswordHash,
		CreatedAt:    time.Now(),
	}
	f.users = append(f.users, user)
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) Search(ctx context.Context, query string) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	needle := strings.ToLower(query)
	for _, u := range f.users {
		matchesEmail := u.Email != nil && strings.Contains(strings.ToLower(*u.Email), needle)
		matchesMobile := u.MobileNumber != nil && strings.Contains(*u.MobileNumber, needle)
		if matchesEmail || matchesMobile {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			now := time.Now()
			u.LastLoginAt = &now
		}
	}
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			u.PasswordHash = passwordHash
		}
	}
	return nil
}

type fakeAdminRepo struct {
	mu     sync.Mutex
	seq    int
	admins map[string]*model.Admin
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: make(map[string]*model.Admin)}
}

func (f *fakeAdminRepo) FindByID(ctx context.Context, id string) (*model.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.ID == id {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeAdminRepo) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.admins[email]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeAdminRepo) Create(ctx context.Context, params model.CreateAdminParams) (*model.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.admins[params.Email]; ok {
		return nil, &pq.Error{Code: "23505", Constraint: "admins_email_key"}
	}
	f.seq++
	admin := &model.Admin{
		ID:           fmt.Sprintf("a%d", f.seq),
		AdminName:    params.AdminName,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		CreatedAt:    time.Now(),
	}
	f.admins[params.Email] = admin
	copied := *admin
	return &copied, nil
}

type linkKey struct {
	email string
	page  model.Page
}

type fakeLinkRepo struct {
	mu    sync.Mutex
	seq   int
	links map[linkKey]*model.DashboardLink
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: make(map[linkKey]*model.DashboardLink)}
}

func (f *fakeLinkRepo) FindByEmailAndPage(ctx context.Context, email string, page model.Page) (*model.DashboardLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.links[linkKey{email, page}]; ok {
		copied := *l
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeLinkRepo) FindByEmail(ctx context.Context, email string) ([]model.DashboardLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.DashboardLink
	for k, l := range f.links {
		if k.email == email {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLinkRepo) Upsert(ctx context.Context, params model.UpsertDashboardLinkParams) (*model.DashboardLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := linkKey{params.Email, params.Page}
	now := time.Now()
	if existing, ok := f.links[key]; ok {
		existing.Link = params.Link
		existing.UpdatedAt = now
		copied := *existing
		return &copied, nil
	}
	f.seq++
	link := &model.DashboardLink{
		ID:        fmt.Sprintf("l%d", f.seq),
		Email:     params.Email,
		Page:      params.Page,
		Link:      params.Link,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.links[key] = link
	copied := *link
	return &copied, nil
}

type fakeResetRepo struct {
	mu     sync.Mutex
	seq    int
	tokens map[string]*model.PasswordResetToken
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: make(map[string]*model.PasswordResetToken)}
}

func (f *fakeResetRepo) Create(ctx context.Context, params model.CreatePasswordResetTokenParams) (*model.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	tok := &model.PasswordResetToken{
		ID:        fmt.Sprintf("r%d", f.seq),
		UserID:    params.UserID,
		TokenHash: params.TokenHash,
		ExpiresAt: params.ExpiresAt,
		CreatedAt: time.Now(),
	}
	f.tokens[params.TokenHash] = tok
	copied := *tok
	return &copied, nil
}

func (f *fakeResetRepo) FindActiveByTokenHash(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok, ok := f.tokens[tokenHash]
	if !ok || tok.UsedAt != nil || time.Now().After(tok.ExpiresAt) {
		return nil, nil
	}
	copied := *tok
	return &copied, nil
}

func (f *fakeResetRepo) MarkUsed(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tok := range f.tokens {
		if tok.ID == id {
			now := time.Now()
			tok.UsedAt = &now
		}
	}
	return nil
}

func (f *fakeResetRepo) DeleteExpired(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for hash, tok := range f.tokens {
		if time.Now().After(tok.ExpiresAt) {
			delete(f.tokens, hash)
			n++
		}
	}
	return n, nil
}

type captureSender struct {
	mu    sync.Mutex
	links []string
}

func (c *captureSender) SendResetLink(ctx context.Context, to, link string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.links = append(c.links, link)
	return nil
}

func (c *captureSender) lastLink() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.links) == 0 {
		return ""
	}
	return c.links[len(c.links)-1]
}
