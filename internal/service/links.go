package service

import (
	"context"
	"strings"

	"github.com/finsight/portal-server-go/internal/cache"
	apperrors "github.com/finsight/portal-server-go/internal/errors"
	"github.com/finsight/portal-server-go/internal/model"
	"github.com/finsight/portal-server-go/internal/repository"
)

// LinkService is the read path for configured dashboard links, fronted by a
// bounded TTL cache. Admin updates do not invalidate entries; staleness is
// bounded by the cache TTL.
type LinkService struct {
	linkRepo  repository.DashboardLinkRepository
	linkCache *cache.Cache[*model.DashboardLink]
}

func NewLinkService(
	linkRepo repository.DashboardLinkRepository,
	linkCache *cache.Cache[*model.DashboardLink],
) *LinkService {
	return &LinkService{
		linkRepo:  linkRepo,
		linkCache: linkCache,
	}
}

func linkCacheKey(email string, page model.Page) string {
	return email + ":" + string(page)
}

// GetLink returns the configured link for (email, page), from cache when a
// fresh entry exists, otherwise from the registry (populating the cache).
func (s *LinkService) GetLink(ctx context.Context, email string, page model.Page) (*model.DashboardLink, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	key := linkCacheKey(normalized, page)

	if cached, ok := s.linkCache.Get(key); ok {
		return cached, nil
	}

	link, err := s.linkRepo.FindByEmailAndPage(ctx, normalized, page)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if link == nil {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "No dashboard link configured for this page.")
	}

	s.linkCache.Set(key, link)
	return link, nil
}
