package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/finsight/portal-server-go/internal/config"
	apperrors "github.com/finsight/portal-server-go/internal/errors"
	"github.com/finsight/portal-server-go/internal/mailer"
	"github.com/finsight/portal-server-go/internal/model"
	"github.com/finsight/portal-server-go/internal/repository"
	"github.com/finsight/portal-server-go/internal/token"
	"github.com/finsight/portal-server-go/internal/util"
)

// AuthService implements the user-tier credential lifecycle: signup, login,
// profile lookup, and the password-reset flow.
type AuthService struct {
	userRepo     repository.UserRepository
	resetRepo    repository.PasswordResetTokenRepository
	tokens       *token.Service
	mail         mailer.Sender
	tokenTTL     time.Duration
	resetBaseURL string
}

func NewAuthService(
	userRepo repository.UserRepository,
	resetRepo repository.PasswordResetTokenRepository,
	tokens *token.Service,
	mail mailer.Sender,
	tokenTTL time.Duration,
	resetBaseURL string,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		resetRepo:    resetRepo,
		tokens:       tokens,
		mail:         mail,
		tokenTTL:     tokenTTL,
		resetBaseURL: resetBaseURL,
	}
}

type SignupParams struct {
	Email           string
	MobileNumber    string
	Password        string
	ConfirmPassword *string
}

// Signup creates a user account. The duplicate pre-check is a fast path only;
// the unique constraint at the store decides races.
func (s *AuthService) Signup(ctx context.Context, params SignupParams) (*model.User, error) {
	email := util.NormalizeEmail(params.Email)
	mobile := params.MobileNumber

	if email == "" && mobile == "" {
		return nil, apperrors.ValidationError("Email or mobile number is required.")
	}
	if email != "" && !util.IsValidEmail(email) {
		return nil, apperrors.InvalidInput("email", "must be a valid email address")
	}
	if mobile != "" && !util.IsValidMobile(mobile) {
		return nil, apperrors.InvalidInput("mobileNumber", "must be a valid mobile number")
	}
	if len(params.Password) < config.MinPasswordLength {
		return nil, apperrors.ValidationError("Password must be at least 6 characters long.")
	}
	if params.ConfirmPassword != nil && *params.ConfirmPassword != params.Password {
		return nil, apperrors.ValidationError("Passwords do not match.")
	}

	if email != "" {
		existing, err := s.userRepo.FindByEmail(ctx, email)
		if err != nil {
			return nil, apperrors.Database(err)
		}
		if existing != nil {
			return nil, apperrors.New(apperrors.ErrCodeConflict, "A user with that email already exists.")
		}
	}

	hash, err := util.HashPassword(params.Password)
	if err != nil {
		log.Error().Err(err).Msg("password hashing failed")
		return nil, apperrors.Internal("Unable to create account at this time.")
	}

	createParams := model.CreateUserParams{PasswordHash: hash}
	if email != "" {
		createParams.Email = &email
	}
	if mobile != "" {
		createParams.MobileNumber = &mobile
	}

	user, err := s.userRepo.Create(ctx, createParams)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, userConflict(err)
		}
		return nil, apperrors.Database(err)
	}

	return user, nil
}

// userConflict words a unique violation by the column that collided.
func userConflict(err error) *apperrors.AppError {
	if strings.Contains(repository.UniqueConstraint(err), "mobile") {
		return apperrors.New(apperrors.ErrCodeConflict, "A user with that mobile number already exists.")
	}
	return apperrors.New(apperrors.ErrCodeConflict, "A user with that email already exists.")
}

// Login authenticates by identifier (email or mobile) and issues a session
// token. Unknown identity and wrong password are indistinguishable to the
// caller.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (string, *model.User, error) {
	if identifier == "" || password == "" {
		return "", nil, apperrors.ValidationError("Email and password are required.")
	}

	user, err := s.userRepo.FindByIdentifier(ctx, util.NormalizeEmail(identifier))
	if err != nil {
		return "", nil, apperrors.Database(err)
	}
	if user == nil {
		return "", nil, apperrors.InvalidCredentials()
	}

	if !util.CheckPasswordHash(password, user.PasswordHash) {
		return "", nil, apperrors.InvalidCredentials()
	}

	tok, err := s.tokens.Issue(user.ID, user.EmailOrEmpty(), model.RoleUser, "", s.tokenTTL)
	if err != nil {
		log.Error().Err(err).Msg("token issuance failed")
		return "", nil, apperrors.Internal("Unable to sign in at this time.")
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		log.Warn().Err(err).Str("userId", user.ID).Msg("failed to record last login")
	}

	return tok, user, nil
}

// Profile returns the identity behind a verified token. The account may have
// been deleted after issuance, in which case this is a NotFound.
func (s *AuthService) Profile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "User not found.")
	}
	return user, nil
}

// RequestPasswordReset emails a single-use reset link. The response is the
// same whether or not the address exists, so it cannot be used to enumerate
// accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	normalized := util.NormalizeEmail(email)
	if normalized == "" {
		return apperrors.MissingRequired("email")
	}

	user, err := s.userRepo.FindByEmail(ctx, normalized)
	if err != nil {
		return apperrors.Database(err)
	}
	if user == nil {
		return nil
	}

	raw, err := util.GenerateToken()
	if err != nil {
		return apperrors.Internal("Unable to process reset request.")
	}

	_, err = s.resetRepo.Create(ctx, model.CreatePasswordResetTokenParams{
		UserID:    user.ID,
		TokenHash: util.HashToken(raw),
		ExpiresAt: time.Now().Add(config.ResetTokenTTL),
	})
	if err != nil {
		return apperrors.Database(err)
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.resetBaseURL, raw)
	if err := s.mail.SendResetLink(ctx, user.EmailOrEmpty(), link); err != nil {
		// Delivery failure is logged, not surfaced, to keep responses uniform.
		log.Error().Err(err).Str("userId", user.ID).Msg("failed to send reset email")
	}

	return nil
}

// ResetPassword completes the flow: the raw token from the emailed link is
// exchanged for a password update and burned.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if rawToken == "" {
		return apperrors.MissingRequired("token")
	}
	if len(newPassword) < config.MinPasswordLength {
		return apperrors.ValidationError("Password must be at least 6 characters long.")
	}

	reset, err := s.resetRepo.FindActiveByTokenHash(ctx, util.HashToken(rawToken))
	if err != nil {
		return apperrors.Database(err)
	}
	if reset == nil {
		return apperrors.InvalidToken()
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		log.Error().Err(err).Msg("password hashing failed")
		return apperrors.Internal("Unable to reset password at this time.")
	}

	if err := s.userRepo.UpdatePassword(ctx, reset.UserID, hash); err != nil {
		return apperrors.Database(err)
	}
	if err := s.resetRepo.MarkUsed(ctx, reset.ID); err != nil {
		return apperrors.Database(err)
	}

	return nil
}
