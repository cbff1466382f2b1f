package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/finsight/portal-server-go/internal/config"
	"github.com/finsight/portal-server-go/internal/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	Create(ctx context.Context, params model.CreateUserParams) (*model.User, error)
	Search(ctx context.Context, query string) ([]model.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type userRepo struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1`, id)
	return HandleNotFound(&user, err)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = $1`, email)
	return HandleNotFound(&user, err)
}

// FindByIdentifier matches the login identifier against either email or
// mobile number.
func (r *userRepo) FindByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM users WHERE email = $1 OR mobile_number = $1
	`, identifier)
	return HandleNotFound(&user, err)
}

// Create inserts a new user. A concurrent duplicate surfaces as a unique
// violation from the users_email_key / users_mobile_number_key constraints;
// callers map it with IsUniqueViolation.
func (r *userRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		INSERT INTO users (email, mobile_number, password_hash)
		VALUES ($1, $2, $3)
		RETURNING *
	`, params.Email, params.MobileNumber, params.PasswordHash)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Search(ctx context.Context, query string) ([]model.User, error) {
	users := []model.User{}
	wildcard := "%" + query + "%"
	err := r.db.SelectContext(ctx, &users, `
		SELECT * FROM users
		WHERE email ILIKE $1 OR mobile_number LIKE $1
		ORDER BY created_at DESC
		LIMIT $2
	`, wildcard, config.UserSearchLimit)
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) UpdateLastLogin(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET last_login_at = $2 WHERE id = $1
	`, id, time.Now())
	return err
}

func (r *userRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $2 WHERE id = $1
	`, id, passwordHash)
	return err
}
