package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/finsight/portal-server-go/internal/model"
)

type PasswordResetTokenRepository interface {
	Create(ctx context.Context, params model.CreatePasswordResetTokenParams) (*model.PasswordResetToken, error)
	FindActiveByTokenHash(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type passwordResetTokenRepo struct {
	db *sqlx.DB
}

func NewPasswordResetTokenRepository(db *sqlx.DB) PasswordResetTokenRepository {
	return &passwordResetTokenRepo{db: db}
}

func (r *passwordResetTokenRepo) Create(ctx context.Context, params model.CreatePasswordResetTokenParams) (*model.PasswordResetToken, error) {
	var token model.PasswordResetToken
	err := r.db.GetContext(ctx, &token, `
		INSERT INTO password_reset_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING *
	`, params.UserID, params.TokenHash, params.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *passwordResetTokenRepo) FindActiveByTokenHash(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error) {
	var token model.PasswordResetToken
	err := r.db.GetContext(ctx, &token, `
		SELECT * FROM password_reset_tokens
		WHERE token_hash = $1 AND used_at IS NULL AND expires_at > NOW()
	`, tokenHash)
	return HandleNotFound(&token, err)
}

func (r *passwordResetTokenRepo) MarkUsed(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE password_reset_tokens SET used_at = NOW() WHERE id = $1
	`, id)
	return err
}

func (r *passwordResetTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
