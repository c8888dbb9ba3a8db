package videos

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tubeview/tubeview/internal/users"
)

// defaultFreshness is the window after which a cached page counts as a miss.
const defaultFreshness = 5 * time.Minute

// ChannelFetcher loads a channel profile by username. Satisfied by
// users.Service.
type ChannelFetcher interface {
	Channel(ctx context.Context, username string) (users.Channel, error)
}

type pageEntry struct {
	videos     []Video
	totalPages int
	fetchedAt  time.Time
}

// PageResult is a cache hit: one stored feed page.
type PageResult struct {
	Videos     []Video
	TotalPages int
}

// StoreOption configures the Store.
type StoreOption func(*Store)

// WithFreshness overrides the page freshness window.
func WithFreshness(d time.Duration) StoreOption {
	return func(s *Store) { s.freshness = d }
}

// WithClock overrides the time source (used in tests).
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithStoreLogger sets the logger for background fetch failures.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// Store is the session-scoped video list cache: feed pages keyed by page
// number with a freshness window, plus a channel-profile side cache keyed by
// username. Entries are superseded, never evicted.
type Store struct {
	fetcher   ChannelFetcher
	freshness time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu     sync.RWMutex
	pages  map[int]pageEntry
	owners map[string]users.Channel

	fetches sync.WaitGroup
}

// NewStore creates a video cache backed by the given channel fetcher.
func NewStore(fetcher ChannelFetcher, opts ...StoreOption) *Store {
	s := &Store{
		fetcher:   fetcher,
		freshness: defaultFreshness,
		now:       time.Now,
		logger:    slog.Default(),
		pages:     make(map[int]pageEntry),
		owners:    make(map[string]users.Channel),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetPage returns the cached page iff it exists and is still inside the
// freshness window.
func (s *Store) GetPage(page int) (PageResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.pages[page]
	if !ok || s.now().Sub(entry.fetchedAt) >= s.freshness {
		return PageResult{}, false
	}
	return PageResult{Videos: entry.videos, TotalPages: entry.totalPages}, true
}

// SetPage stores or overwrites a feed page and schedules background
// channel-profile fetches for owners not yet in the side cache. Fetch
// failures are logged, never returned.
func (s *Store) SetPage(ctx context.Context, page int, result ListResult) {
	s.mu.Lock()
	s.pages[page] = pageEntry{
		videos:     result.Videos,
		totalPages: result.TotalPages,
		fetchedAt:  s.now(),
	}

	var missing []string
	seen := make(map[string]bool)
	for _, video := range result.Videos {
		username := video.Owner.Username
		if username == "" || seen[username] {
			continue
		}
		seen[username] = true
		if _, ok := s.owners[username]; !ok {
			missing = append(missing, username)
		}
	}
	s.mu.Unlock()

	for _, username := range missing {
		s.fetches.Add(1)
		go func(username string) {
			defer s.fetches.Done()
			channel, err := s.fetcher.Channel(ctx, username)
			if err != nil {
				s.logger.Warn("channel profile fetch failed",
					slog.String("username", username),
					slog.Any("error", err),
				)
				return
			}
			s.SetOwner(username, channel)
		}(username)
	}
}

// Owner returns the cached channel profile for a username.
func (s *Store) Owner(username string) (users.Channel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	channel, ok := s.owners[username]
	return channel, ok
}

// SetOwner stores a channel profile in the side cache.
func (s *Store) SetOwner(username string, channel users.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners[username] = channel
}

// Clear drops all cached pages. Channel profiles survive for the session;
// only an explicit refetch replaces them.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = make(map[int]pageEntry)
}

// Wait blocks until every scheduled background profile fetch has settled.
func (s *Store) Wait() {
	s.fetches.Wait()
}

// MergePages concatenates pages in order, the append policy used by
// load-more callers. Replace-on-page-1 is the caller's other choice; the
// cache enforces neither.
func MergePages(pages ...[]Video) []Video {
	var merged []Video
	for _, page := range pages {
		merged = append(merged, page...)
	}
	return merged
}
