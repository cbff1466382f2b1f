package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/finsight/portal-server-go/internal/cache"
	apperrors "github.com/finsight/portal-server-go/internal/errors"
	"github.com/finsight/portal-server-go/internal/model"
)

const testCreationToken = "admin-creation-secret"

func newAdminService(t *testing.T, admins *mockAdminRepo, users *mockUserRepo, links *mockLinkRepo) *AdminService {
	t.Helper()
	return NewAdminService(
		admins, users, links,
		newTestTokenService(t),
		testCreationToken,
		7*24*time.Hour,
		cache.New[[]UserSearchResult](16, time.Minute),
	)
}

func validAdminSignup() AdminSignupParams {
	return AdminSignupParams{
		AdminName:       "Operator",
		Email:           "ops@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		CreationToken:   testCreationToken,
	}
}

func TestSignupAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates admin and issues an admin token", func(t *testing.T) {
		admins := new(mockAdminRepo)
		admins.On("FindByEmail", mock.Anything, "ops@example.com").Return(nil, nil)
		admins.On("Create", mock.Anything, mock.MatchedBy(func(p model.CreateAdminParams) bool {
			return p.AdminName == "Operator" && p.Email == "ops@example.com" && p.PasswordHash != "secret123"
		})).Return(&model.Admin{ID: "a1", AdminName: "Operator", Email: "ops@example.com"}, nil)

		tokens := newTestTokenService(t)
		svc := NewAdminService(admins, new(mockUserRepo), new(mockLinkRepo), tokens,
			testCreationToken, 7*24*time.Hour, cache.New[[]UserSearchResult](16, time.Minute))

		tok, admin, err := svc.SignupAdmin(ctx, validAdminSignup())
		require.NoError(t, err)
		assert.Equal(t, "a1", admin.ID)

		claims, err := tokens.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, claims.Role)
		assert.Equal(t, "Operator", claims.AdminName)
		admins.AssertExpectations(t)
	})

	t.Run("wrong creation token is rejected before anything else", func(t *testing.T) {
		admins := new(mockAdminRepo)
		svc := newAdminService(t, admins, new(mockUserRepo), new(mockLinkRepo))

		params := validAdminSignup()
		params.CreationToken = "wrong"
		params.Email = ""
		params.Password = ""

		_, _, err := svc.SignupAdmin(ctx, params)
		appErr := assertCode(t, err, apperrors.ErrCodeForbidden)
		assert.Equal(t, "Invalid admin creation token.", appErr.Message)
		admins.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("empty configured creation token disables admin signup", func(t *testing.T) {
		svc := NewAdminService(new(mockAdminRepo), new(mockUserRepo), new(mockLinkRepo),
			newTestTokenService(t), "", 7*24*time.Hour, cache.New[[]UserSearchResult](16, time.Minute))

		params := validAdminSignup()
		params.CreationToken = ""
		_, _, err := svc.SignupAdmin(ctx, params)
		assertCode(t, err, apperrors.ErrCodeForbidden)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		svc := newAdminService(t, new(mockAdminRepo), new(mockUserRepo), new(mockLinkRepo))
		params := validAdminSignup()
		params.AdminName = "  "
		_, _, err := svc.SignupAdmin(ctx, params)
		assertCode(t, err, apperrors.ErrCodeValidation)
	})

	t.Run("mismatched confirmation rejected", func(t *testing.T) {
		svc := newAdminService(t, new(mockAdminRepo), new(mockUserRepo), new(mockLinkRepo))
		params := validAdminSignup()
		params.ConfirmPassword = "something-else"
		_, _, err := svc.SignupAdmin(ctx, params)
		appErr := assertCode(t, err, apperrors.ErrCodeValidation)
		assert.Equal(t, "Passwords do not match.", appErr.Message)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		admins := new(mockAdminRepo)
		admins.On("FindByEmail", mock.Anything, "ops@example.com").
			Return(&model.Admin{ID: "a1", Email: "ops@example.com"}, nil)

		svc := newAdminService(t, admins, new(mockUserRepo), new(mockLinkRepo))
		_, _, err := svc.SignupAdmin(ctx, validAdminSignup())
		assertCode(t, err, apperrors.ErrCodeConflict)
	})
}

func TestLoginAdmin(t *testing.T) {
	ctx := context.Background()

	storedAdmin := func(t *testing.T) *model.Admin {
		return &model.Admin{
			ID:           "a1",
			AdminName:    "Operator",
			Email:        "ops@example.com",
			PasswordHash: mustHash(t, "secret123"),
		}
	}

	t.Run("all three credentials must match", func(t *testing.T) {
		admins := new(mockAdminRepo)
		admins.On("FindByEmail", mock.Anything, "ops@example.com").Return(storedAdmin(t), nil)

		tokens := newTestTokenService(t)
		svc := NewAdminService(admins, new(mockUserRepo), new(mockLinkRepo), tokens,
			testCreationToken, 7*24*time.Hour, cache.New[[]UserSearchResult](16, time.Minute))

		tok, admin, err := svc.LoginAdmin(ctx, "Operator", "ops@example.com", "secret123")
		require.NoError(t, err)
		assert.Equal(t, "a1", admin.ID)

		claims, err := tokens.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, claims.Role)
	})

	t.Run("admin name match is case-insensitive", func(t *testing.T) {
		admins := new(mockAdminRepo)
		admins.On("FindByEmail", mock.Anything, "ops@example.com").Return(storedAdmin(t), nil)

		svc := newAdminService(t, admins, new(mockUserRepo), new(mockLinkRepo))
		_, _, err := svc.LoginAdmin(ctx, "operator", "ops@example.com", "secret123")
		require.NoError(t, err)
	})

	t.Run("name mismatch yields the generic credential failure", func(t *testing.T) {
		admins := new(mockAdminRepo)
		admins.On("FindByEmail", mock.Anything, "ops@example.com").Return(storedAdmin(t), nil)

		svc := newAdminService(t, admins, new(mockUserRepo), new(mockLinkRepo))
		_, _, err := svc.LoginAdmin(ctx, "Impostor", "ops@example.com", "secret123")
		appErr := assertCode(t, err, apperrors.ErrCodeInvalidCredentials)
		assert.Equal(t, "Invalid credentials.", appErr.Message)
	})

	t.Run("unknown email yields the generic credential failure", func(t *testing.T) {
		admins := new(mockAdminRepo)
		admins.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

		svc := newAdminService(t, admins, new(mockUserRepo), new(mockLinkRepo))
		_, _, err := svc.LoginAdmin(ctx, "Operator", "ghost@example.com", "secret123")
		assertCode(t, err, apperrors.ErrCodeInvalidCredentials)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		svc := newAdminService(t, new(mockAdminRepo), new(mockUserRepo), new(mockLinkRepo))
		_, _, err := svc.LoginAdmin(ctx, "Operator", "", "secret123")
		assertCode(t, err, apperrors.ErrCodeValidation)
	})
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("provisions a user account", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, nil)
		users.On("Create", mock.Anything, mock.MatchedBy(func(p model.CreateUserParams) bool {
			return p.Email != nil && *p.Email == "new@example.com" && p.MobileNumber != nil && *p.MobileNumber == "+821012345678"
		})).Return(&model.User{ID: "u1", Email: strPtr("new@example.com")}, nil)

		svc := newAdminService(t, new(mockAdminRepo), users, new(mockLinkRepo))
		user, err := svc.CreateUser(ctx, "new@example.com", "+821012345678", "secret123")
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
	})

	t.Run("missing email or password rejected", func(t *testing.T) {
		svc := newAdminService(t, new(mockAdminRepo), new(mockUserRepo), new(mockLinkRepo))
		_, err := svc.CreateUser(ctx, "new@example.com", "", "")
		appErr := assertCode(t, err, apperrors.ErrCodeValidation)
		assert.Equal(t, "Email and password are required to create a user.", appErr.Message)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("FindByEmail", mock.Anything, "taken@example.com").
			Return(&model.User{ID: "u1", Email: strPtr("taken@example.com")}, nil)

		svc := newAdminService(t, new(mockAdminRepo), users, new(mockLinkRepo))
		_, err := svc.CreateUser(ctx, "taken@example.com", "", "secret123")
		assertCode(t, err, apperrors.ErrCodeConflict)
	})
}

func TestSearchUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("joins users with their links", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("Search", mock.Anything, "exam").Return([]model.User{
			{ID: "u1", Email: strPtr("one@example.com")},
			{ID: "u2", Email: strPtr("two@example.com")},
		}, nil)

		links := new(mockLinkRepo)
		links.On("FindByEmail", mock.Anything, "one@example.com").Return([]model.DashboardLink{
			{ID: "l1", Email: "one@example.com", Page: model.PageDashboard, Link: "https://bi.example.com/1"},
		}, nil)
		links.On("FindByEmail", mock.Anything, "two@example.com").Return([]model.DashboardLink{}, nil)

		svc := newAdminService(t, new(mockAdminRepo), users, links)
		results, err := svc.SearchUsers(ctx, "exam")
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Len(t, results[0].Links, 1)
		assert.Empty(t, results[1].Links)
	})

	t.Run("mobile-only users skip the link lookup", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("Search", mock.Anything, "5550").Return([]model.User{
			{ID: "u3", MobileNumber: strPtr("+15550000001")},
		}, nil)

		links := new(mockLinkRepo)

		svc := newAdminService(t, new(mockAdminRepo), users, links)
		results, err := svc.SearchUsers(ctx, "5550")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Nil(t, results[0].Email)
		assert.Empty(t, results[0].Links)
		links.AssertExpectations(t)
	})

	t.Run("repeated query is served from cache", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("Search", mock.Anything, "exam").Return([]model.User{{ID: "u1", Email: strPtr("one@example.com")}}, nil).Once()

		links := new(mockLinkRepo)
		links.On("FindByEmail", mock.Anything, "one@example.com").Return([]model.DashboardLink{}, nil).Once()

		svc := newAdminService(t, new(mockAdminRepo), users, links)

		first, err := svc.SearchUsers(ctx, "exam")
		require.NoError(t, err)
		second, err := svc.SearchUsers(ctx, "EXAM ")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		users.AssertExpectations(t)
		links.AssertExpectations(t)
	})

	t.Run("blank query rejected", func(t *testing.T) {
		svc := newAdminService(t, new(mockAdminRepo), new(mockUserRepo), new(mockLinkRepo))
		_, err := svc.SearchUsers(ctx, "   ")
		assertCode(t, err, apperrors.ErrCodeMissingRequired)
	})
}

func TestUpsertLink(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns a link for a known user", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("FindByEmail", mock.Anything, "user@example.com").
			Return(&model.User{ID: "u1", Email: strPtr("user@example.com")}, nil)

		links := new(mockLinkRepo)
		links.On("Upsert", mock.Anything, model.UpsertDashboardLinkParams{
			Email: "user@example.com",
			Page:  model.PageRevenue,
			Link:  "https://bi.example.com/rev",
		}).Return(&model.DashboardLink{ID: "l1", Page: model.PageRevenue}, nil)

		svc := newAdminService(t, new(mockAdminRepo), users, links)
		saved, err := svc.UpsertLink(ctx, "User@Example.com", "Revenue", "https://bi.example.com/rev")
		require.NoError(t, err)
		assert.Equal(t, "l1", saved.ID)
		links.AssertExpectations(t)
	})

	t.Run("unknown page rejected", func(t *testing.T) {
		svc := newAdminService(t, new(mockAdminRepo), new(mockUserRepo), new(mockLinkRepo))
		_, err := svc.UpsertLink(ctx, "user@example.com", "settings", "https://bi.example.com/x")
		appErr := assertCode(t, err, apperrors.ErrCodeValidation)
		assert.Equal(t, "Invalid page specified.", appErr.Message)
	})

	t.Run("non-http link rejected", func(t *testing.T) {
		svc := newAdminService(t, new(mockAdminRepo), new(mockUserRepo), new(mockLinkRepo))
		_, err := svc.UpsertLink(ctx, "user@example.com", "dashboard", "javascript:alert(1)")
		assertCode(t, err, apperrors.ErrCodeValidation)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

		svc := newAdminService(t, new(mockAdminRepo), users, new(mockLinkRepo))
		_, err := svc.UpsertLink(ctx, "ghost@example.com", "dashboard", "https://bi.example.com/x")
		assertCode(t, err, apperrors.ErrCodeNotFound)
	})
}
