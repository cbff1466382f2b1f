package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/finsight/portal-server-go/internal/cache"
	"github.com/finsight/portal-server-go/internal/config"
	apperrors "github.com/finsight/portal-server-go/internal/errors"
	"github.com/finsight/portal-server-go/internal/model"
	"github.com/finsight/portal-server-go/internal/repository"
	"github.com/finsight/portal-server-go/internal/token"
	"github.com/finsight/portal-server-go/internal/util"
)

// UserSearchResult is a user row decorated with their configured links.
type UserSearchResult struct {
	ID           string                `json:"id"`
	Email        *string               `json:"email,omitempty"`
	MobileNumber *string               `json:"mobileNumber,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	Links        []model.DashboardLink `json:"links"`
}

// AdminService implements the admin tier: gated signup, double-matched login,
// user management on behalf of users, and link assignment.
type AdminService struct {
	adminRepo     repository.AdminRepository
	userRepo      repository.UserRepository
	linkRepo      repository.DashboardLinkRepository
	tokens        *token.Service
	creationToken string
	tokenTTL      time.Duration
	searchCache   *cache.Cache[[]UserSearchResult]
}

func NewAdminService(
	adminRepo repository.AdminRepository,
	userRepo repository.UserRepository,
	linkRepo repository.DashboardLinkRepository,
	tokens *token.Service,
	creationToken string,
	tokenTTL time.Duration,
	searchCache *cache.Cache[[]UserSearchResult],
) *AdminService {
	return &AdminService{
		adminRepo:     adminRepo,
		userRepo:      userRepo,
		linkRepo:      linkRepo,
		tokens:        tokens,
		creationToken: creationToken,
		tokenTTL:      tokenTTL,
		searchCache:   searchCache,
	}
}

type AdminSignupParams struct {
	AdminName       string
	Email           string
	Password        string
	ConfirmPassword string
	CreationToken   string
}

// SignupAdmin creates an admin account. The shared creation secret is checked
// first, before any validation or store access, so unauthorized attempts cost
// nothing beyond the comparison.
func (s *AdminService) SignupAdmin(ctx context.Context, params AdminSignupParams) (string, *model.Admin, error) {
	if s.creationToken == "" || !util.ConstantTimeEqual(params.CreationToken, s.creationToken) {
		return "", nil, apperrors.Forbidden("Invalid admin creation token.")
	}

	name := strings.TrimSpace(params.AdminName)
	email := util.NormalizeEmail(params.Email)

	if name == "" || email == "" || params.Password == "" || params.ConfirmPassword == "" {
		return "", nil, apperrors.ValidationError("All fields are required.")
	}
	if params.Password != params.ConfirmPassword {
		return "", nil, apperrors.ValidationError("Passwords do not match.")
	}
	if len(params.Password) < config.MinPasswordLength {
		return "", nil, apperrors.ValidationError("Password must be at least 6 characters long.")
	}
	if !util.IsValidEmail(email) {
		return "", nil, apperrors.InvalidInput("email", "must be a valid email address")
	}

	existing, err := s.adminRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, apperrors.Database(err)
	}
	if existing != nil {
		return "", nil, apperrors.New(apperrors.ErrCodeConflict, "An admin with that email already exists.")
	}

	hash, err := util.HashPassword(params.Password)
	if err != nil {
		log.Error().Err(err).Msg("password hashing failed")
		return "", nil, apperrors.Internal("Unable to create admin account at this time.")
	}

	admin, err := s.adminRepo.Create(ctx, model.CreateAdminParams{
		AdminName:    name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return "", nil, apperrors.New(apperrors.ErrCodeConflict, "An admin with that email already exists.")
		}
		return "", nil, apperrors.Database(err)
	}

	tok, err := s.tokens.Issue(admin.ID, admin.Email, model.RoleAdmin, admin.AdminName, s.tokenTTL)
	if err != nil {
		log.Error().Err(err).Msg("token issuance failed")
		return "", nil, apperrors.Internal("Unable to create admin account at this time.")
	}

	return tok, admin, nil
}

// LoginAdmin requires adminName, email, and password to all match the stored
// record. Every mismatch, including the name, yields the same generic
// credential failure.
func (s *AdminService) LoginAdmin(ctx context.Context, adminName, email, password string) (string, *model.Admin, error) {
	name := strings.TrimSpace(adminName)
	normalized := util.NormalizeEmail(email)

	if name == "" || normalized == "" || password == "" {
		return "", nil, apperrors.ValidationError("Admin name, email, and password are required.")
	}

	admin, err := s.adminRepo.FindByEmail(ctx, normalized)
	if err != nil {
		return "", nil, apperrors.Database(err)
	}
	if admin == nil {
		return "", nil, apperrors.InvalidCredentials()
	}

	if !strings.EqualFold(admin.AdminName, name) {
		return "", nil, apperrors.InvalidCredentials()
	}

	if !util.CheckPasswordHash(password, admin.PasswordHash) {
		return "", nil, apperrors.InvalidCredentials()
	}

	tok, err := s.tokens.Issue(admin.ID, admin.Email, model.RoleAdmin, admin.AdminName, s.tokenTTL)
	if err != nil {
		log.Error().Err(err).Msg("token issuance failed")
		return "", nil, apperrors.Internal("Unable to sign in at this time.")
	}

	return tok, admin, nil
}

// CreateUser provisions a user account on a user's behalf.
func (s *AdminService) CreateUser(ctx context.Context, email, mobileNumber, password string) (*model.User, error) {
	normalized := util.NormalizeEmail(email)
	if normalized == "" || password == "" {
		return nil, apperrors.ValidationError("Email and password are required to create a user.")
	}
	if len(password) < config.MinPasswordLength {
		return nil, apperrors.ValidationError("Password must be at least 6 characters long.")
	}
	if !util.IsValidEmail(normalized) {
		return nil, apperrors.InvalidInput("email", "must be a valid email address")
	}

	mobile := strings.TrimSpace(mobileNumber)
	if mobile != "" && !util.IsValidMobile(mobile) {
		return nil, apperrors.InvalidInput("mobileNumber", "must be a valid mobile number")
	}

	existing, err := s.userRepo.FindByEmail(ctx, normalized)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if existing != nil {
		return nil, apperrors.New(apperrors.ErrCodeConflict, "A user with that email already exists.")
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		log.Error().Err(err).Msg("password hashing failed")
		return nil, apperrors.Internal("Unable to create user account at this time.")
	}

	createParams := model.CreateUserParams{Email: &normalized, PasswordHash: hash}
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

// SearchUsers finds users by email or mobile fragment, each with their
// configured dashboard links. Results are cached briefly; admin search is
// read-heavy and tolerant of short staleness.
func (s *AdminService) SearchUsers(ctx context.Context, query string) ([]UserSearchResult, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, apperrors.MissingRequired("Search query")
	}

	cacheKey := "usersearch:" + strings.ToLower(trimmed)
	if cached, ok := s.searchCache.Get(cacheKey); ok {
		return cached, nil
	}

	users, err := s.userRepo.Search(ctx, trimmed)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	results := make([]UserSearchResult, 0, len(users))
	for _, user := range users {
		links := []model.DashboardLink{}
		if user.Email != nil {
			links, err = s.linkRepo.FindByEmail(ctx, *user.Email)
			if err != nil {
				return nil, apperrors.Database(err)
			}
		}
		results = append(results, UserSearchResult{
			ID:           user.ID,
			Email:        user.Email,
			MobileNumber: user.MobileNumber,
			CreatedAt:    user.CreatedAt,
			Links:        links,
		})
	}

	s.searchCache.Set(cacheKey, results)
	return results, nil
}

// UpsertLink assigns or replaces the external URL for a user's page. The
// link cache is deliberately not invalidated here: entries age out within
// one TTL window, which is acceptable for an infrequent admin action.
func (s *AdminService) UpsertLink(ctx context.Context, email, page, link string) (*model.DashboardLink, error) {
	normalized := util.NormalizeEmail(email)
	if normalized == "" || page == "" || link == "" {
		return nil, apperrors.ValidationError("Email, page, and link are required.")
	}

	normalizedPage := model.Page(strings.ToLower(page))
	if !normalizedPage.IsValid() {
		return nil, apperrors.ValidationError("Invalid page specified.")
	}

	sanitized := util.SanitizeURL(link)
	if sanitized == "" {
		return nil, apperrors.ValidationError("Link must be a valid URL starting with http or https.")
	}

	user, err := s.userRepo.FindByEmail(ctx, normalized)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "User not found for the provided email.")
	}

	saved, err := s.linkRepo.Upsert(ctx, model.UpsertDashboardLinkParams{
		Email: normalized,
		Page:  normalizedPage,
		Link:  sanitized,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	return saved, nil
}
