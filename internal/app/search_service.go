package app

import (
	"context"
	"strings"

	"github.com/slabhouse/marketplace/internal/domain"
)

type SearchRepository interface {
	SuggestPlayers(ctx context.Context, query string, limit int) ([]string, error)
	SuggestSets(ctx context.Context, query string, limit int) ([]string, error)
	PopularPlayers(ctx context.Context, limit int) ([]domain.NameCount, error)
	PopularSets(ctx context.Context, limit int) ([]domain.NameCount, error)
	FilterOptions(ctx context.Context) (domain.FilterOptions, error)
}

// SuggestCache is a short-TTL cache for search responses. Implementations
// report a miss rather than an error when the backend is unreachable.
type SuggestCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

const suggestLimit = 10

// SearchService serves marketplace autocomplete and filter options over
// available cards, with an optional cache-aside layer in front.
type SearchService struct {
	repo  SearchRepository
	cache SuggestCache
}

// NewSearchService builds the service; cache may be nil to query directly.
func NewSearchService(repo SearchRepository, cache SuggestCache) *SearchService {
	return &SearchService{
		repo:  repo,
		cache: cache,
	}
}

type Suggestions struct {
	Players []string
	Sets    []string
}

// Suggest returns distinct player and set names of available cards matching
// query. kind is "player", "set" or "all" (the default).
func (s *SearchService) Suggest(ctx context.Context, query, kind string) (Suggestions, error) {
	if kind == "" {
		kind = "all"
	}

	key := "suggest:" + kind + ":" + strings.ToLower(query)
	var cached Suggestions
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	var result Suggestions
	if kind == "player" || kind == "all" {
		players, err := s.repo.SuggestPlayers(ctx, query, suggestLimit)
		if err != nil {
			return Suggestions{}, err
		}
		result.Players = players
	}
	if kind == "set" || kind == "all" {
		sets, err := s.repo.SuggestSets(ctx, query, suggestLimit)
		if err != nil {
			return Suggestions{}, err
		}
		result.Sets = sets
	}

	s.cacheSet(ctx, key, result)
	return result, nil
}

// Popular returns the most common player and set names among available cards,
// with how many cards each covers.
func (s *SearchService) Popular(ctx context.Context) (domain.PopularNames, error) {
	const key = "search:popular"

	var cached domain.PopularNames
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	var result domain.PopularNames
	players, err := s.repo.PopularPlayers(ctx, suggestLimit)
	if err != nil {
		return domain.PopularNames{}, err
	}
	result.Players = players

	sets, err := s.repo.PopularSets(ctx, suggestLimit)
	if err != nil {
		return domain.PopularNames{}, err
	}
	result.Sets = sets

	s.cacheSet(ctx, key, result)
	return result, nil
}

// FilterOptions returns the distinct filter values and price range currently
// present among available cards.
func (s *SearchService) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	const key = "search:filters"

	var cached domain.FilterOptions
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	options, err := s.repo.FilterOptions(ctx)
	if err != nil {
		return domain.FilterOptions{}, err
	}

	s.cacheSet(ctx, key, options)
	return options, nil
}

// Cache failures degrade to direct queries; suggestions are advisory.
func (s *SearchService) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	return err == nil && hit
}

func (s *SearchService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Set(ctx, key, value)
}
