package service

import (
	"context"
	"fmt"
	"strings"

	"pokegram/feed/internal/cache"
	"pokegram/feed/internal/client"
	"pokegram/feed/internal/domain"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// searchWindow is how many listing entries Search filters. Matches past
	// this window are not found.
	searchWindow = 1000

	DefaultSearchLimit = 10
)

type Service struct {
	client      client.PokeAPIClient
	detailCache cache.DetailCache
}

// NewService builds the resource service. detailCache may be nil.
func NewService(client client.PokeAPIClient, detailCache cache.DetailCache) *Service {
	return &Service{
		client:      client,
		detailCache: detailCache,
	}
}

func (s *Service) ListPage(ctx context.Context, offset, limit int) (*domain.ListingPage, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must be >= 0, got %d", domain.ErrInvalidArgument, offset)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be > 0, got %d", domain.ErrInvalidArgument, limit)
	}

	page, err := s.client.GetPokemonList(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	if len(page.Items) > limit {
		log.Warnf("⚠️ Listing returned %d items for limit %d, truncating", len(page.Items), limit)
		page.Items = page.Items[:limit]
	}

	return page, nil
}

// Fetcher adapts ListPage to the cursor-driven signature used by list controllers.
func (s *Service) Fetcher() func(ctx context.Context, cursor domain.Cursor) (*domain.ListingPage, error) {
	return func(ctx context.Context, cursor domain.Cursor) (*domain.ListingPage, error) {
		return s.ListPage(ctx, cursor.Offset, cursor.Limit)
	}
}

func (s *Service) GetDetail(ctx context.Context, name string) (*domain.ItemDetail, error) {
	if s.detailCache != nil {
		detail, ok, err := s.detailCache.Get(ctx, name)
		if err != nil {
			log.Warnf("⚠️ Detail cache read failed for %s: %v", name, err)
		} else if ok {
			log.Debugf("Detail cache hit for %s", name)
			return detail, nil
		}
	}

	detail, err := s.client.GetPokemonDetail(ctx, name)
	if err != nil {
		return nil, err
	}

	if s.detailCache != nil {
		if err := s.detailCache.Set(ctx, name, detail); err != nil {
			log.Warnf("⚠️ Detail cache write failed for %s: %v", name, err)
		}
	}

	return detail, nil
}

// Search returns details of items whose name contains query, case-insensitively,
// in listing order. A failure of any single detail fetch fails the whole search.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*domain.ItemDetail, error) {
	if strings.TrimSpace(query) == "" {
		return []*domain.ItemDetail{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	page, err := s.client.GetPokemonList(ctx, 0, searchWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch search window: %w", err)
	}

	needle := strings.ToLower(query)
	matches := make([]domain.ItemRef, 0, limit)
	for _, item := range page.Items {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			matches = append(matches, item)
			if len(matches) == limit {
				break
			}
		}
	}

	log.Debugf("Search %q matched %d items, fetching details", query, len(matches))

	results := make([]*domain.ItemDetail, len(matches))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range matches {
		g.Go(func() error {
			detail, err := s.GetDetail(gctx, item.Name)
			if err != nil {
				return fmt.Errorf("failed to fetch details for %s: %w", item.Name, err)
			}
			results[i] = detail
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
