package cache

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/eko/gocache/lib/v4/codec"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/skillswap/skillswap/internal/config"
	"github.com/skillswap/skillswap/internal/database"
)

// ProfileCachePrefix is the key prefix of cached public profiles.
const ProfileCachePrefix = "profile-"

// ProfileCache caches users by ID for the public profile endpoint.
// Lookups never fail; any cache error counts as a miss.
//
// Every Invalidate bumps a per-user version. Set only stores a row read at
// the current version, so a read that raced with an update cannot put the
// pre-update row back after the invalidation.
type ProfileCache struct {
	users *PrefixedCache[database.User]
	ttl   time.Duration

	mu       sync.Mutex
	versions map[string]uint64
}

// NewProfileCache returns a ProfileCache backed by the configured store.
func NewProfileCache(cfg *config.CacheConfig) *ProfileCache {
	if cfg == nil {
		cfg = &config.CacheConfig{Type: config.CacheTypeMemory}
	}
	ttl := time.Duration(cfg.TTL) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProfileCache{
		users:    NewPrefixedCache[database.User](newCacheInstanceByType(cfg), cfg.Type, ProfileCachePrefix),
		ttl:      ttl,
		versions: make(map[string]uint64),
	}
}

// Get returns the cached user or false on a miss.
func (p *ProfileCache) Get(ctx context.Context, id string) (*database.User, bool) {
	user, err := p.users.Get(ctx, id)
	if err != nil {
		return nil, false
	}
	return &user, true
}

// Version returns the current version of id. Read it before loading the
// row that is later passed to Set.
func (p *ProfileCache) Version(id string) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.versions[id]
}

// Set caches user under its ID unless the entry was invalidated after
// version was read. It reports whether the user was stored.
func (p *ProfileCache) Set(ctx context.Context, user *database.User, version uint64) bool {
	if user == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.versions[user.ID] != version {
		log.Debug("skipping stale profile", "user", user.ID)
		return false
	}
	if err := p.users.Set(ctx, user.ID, *user, store.WithExpiration(p.ttl)); err != nil {
		log.Warn("failed to cache profile", "user", user.ID, "error", err)
		return false
	}
	return true
}

// Invalidate drops the cached entry for id.
func (p *ProfileCache) Invalidate(ctx context.Context, id string) {
	p.mu.Lock()
	p.versions[id]++
	p.mu.Unlock()

	if err := p.users.Delete(ctx, id); err != nil {
		log.Warn("failed to invalidate cached profile", "user", id, "error", err)
	}
}

// Stats holds the hit/miss counters of a named cache.
type Stats struct {
	*codec.Stats
	CacheName string `json:"cacheName"`
}

// GetStats returns the counters of the profile cache.
func (p *ProfileCache) GetStats() *Stats {
	return &Stats{
		Stats:     p.users.GetStats(),
		CacheName: "profiles",
	}
}
