package quote

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tranenterprises/MotivationFiles2.0-sub001/internal/cache"
)

// Source is the backend client the service wraps: the hosted database
// behind the quote archive. Implementations live outside this package.
type Source interface {
	Today(ctx context.Context) (Quote, error)
	Archive(ctx context.Context, page, limit int, category string) (Page, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, q Quote) (Quote, error)
}

// TTLPolicy holds the per-query cache lifetimes.
type TTLPolicy struct {
	Today   time.Duration
	Archive time.Duration
	Count   time.Duration
}

// DefaultTTLPolicy returns the lifetimes used when the caller does not
// supply its own.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		Today:   time.Hour,
		Archive: 10 * time.Minute,
		Count:   5 * time.Minute,
	}
}

// Service answers quote reads through the cache and invalidates it
// after writes. Cache failures never surface to callers; source
// failures always do.
type Service struct {
	source Source
	cache  *cache.Manager
	ttl    TTLPolicy
	now    func() time.Time
	logger *log.Logger
}

// NewService creates a quote service over a backend source and a cache
// manager.
func NewService(source Source, cm *cache.Manager, ttl TTLPolicy, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	if ttl == (TTLPolicy{}) {
		ttl = DefaultTTLPolicy()
	}
	return &Service{
		source: source,
		cache:  cm,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// Today returns the quote for the current date. The result is kept in
// the persistent tier so it survives restarts for the rest of the day.
func (s *Service) Today(ctx context.Context) (Quote, error) {
	key := cache.TodayQuoteKey(s.now())
	return cache.WithCache(ctx, s.cache, key, s.ttl.Today, cache.TierPersistent, s.source.Today)
}

// Archive returns one page of the archive, optionally filtered by
// category. Pages are session-scoped: they stay warm while a visitor
// browses and die with the session.
func (s *Service) Archive(ctx context.Context, page, limit int, category string) (Page, error) {
	key := cache.ArchiveKey(page, limit, category)
	return cache.WithCache(ctx, s.cache, key, s.ttl.Archive, cache.TierSession,
		func(ctx context.Context) (Page, error) {
			return s.source.Archive(ctx, page, limit, category)
		})
}

// Count returns the total number of quotes in the archive.
func (s *Service) Count(ctx context.Context) (int, error) {
	return cache.WithCache(ctx, s.cache, cache.QuoteCountKey(), s.ttl.Count, cache.TierEphemeral, s.source.Count)
}

// Create writes a new quote through the source, then drops every cached
// read the write made stale. The invalidation is best-effort like the
// rest of the cache; a created quote is never lost to a cache problem.
func (s *Service) Create(ctx context.Context, q Quote) (Quote, error) {
	created, err := s.source.Create(ctx, q)
	if err != nil {
		return Quote{}, err
	}

	s.cache.Invalidate("today_quote", "archive", "quote_count")
	s.logger.Debug("invalidated cached reads after quote create", "id", created.ID)

	return created, nil
}
