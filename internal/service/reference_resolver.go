package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/diabetes-prediction-engine/internal/domain"
)

// TypeInfoCache is the shared cache tier, implemented by external.CacheClient.
type TypeInfoCache interface {
	GetTypeInfo(ctx context.Context, name string) (*domain.DiabetesTypeInfo, bool, error)
	SetTypeInfo(ctx context.Context, info *domain.DiabetesTypeInfo, ttl time.Duration) error
	InvalidateTypeInfo(ctx context.Context, name string) error
}

// ReferenceResolver resolves diabetes type reference data through a memory
// tier, an optional Redis tier and the backing repository.
type ReferenceResolver struct {
	repo        domain.DiabetesTypeRepository
	memoryCache *lru.Cache
	sharedCache TypeInfoCache

	memoryTTL time.Duration
	sharedTTL time.Duration

	logger  *logrus.Logger
	stats   *CacheStats
	statsMu sync.RWMutex
}

// CacheStats represents cache performance statistics
type CacheStats struct {
	MemoryHits    int64     `json:"memory_hits"`
	MemoryMisses  int64     `json:"memory_misses"`
	SharedHits    int64     `json:"shared_hits"`
	SharedMisses  int64     `json:"shared_misses"`
	StoreLookups  int64     `json:"store_lookups"`
	NotFound      int64     `json:"not_found"`
	TotalRequests int64     `json:"total_requests"`
	ErrorCount    int64     `json:"error_count"`
	LastReset     time.Time `json:"last_reset"`
}

// ReferenceResolverConfig configures the cache tiers.
type ReferenceResolverConfig struct {
	MemoryEntries int
	MemoryTTL     time.Duration
	SharedTTL     time.Duration
}

// NewReferenceResolver creates a resolver. sharedCache may be nil.
func NewReferenceResolver(
	config ReferenceResolverConfig,
	repo domain.DiabetesTypeRepository,
	sharedCache TypeInfoCache,
	logger *logrus.Logger,
) (*ReferenceResolver, error) {
	if config.MemoryEntries <= 0 {
		config.MemoryEntries = 128
	}
	if config.MemoryTTL <= 0 {
		config.MemoryTTL = 15 * time.Minute
	}
	if config.SharedTTL <= 0 {
		config.SharedTTL = 24 * time.Hour
	}

	memoryCache, err := lru.New(config.MemoryEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}

	return &ReferenceResolver{
		repo:        repo,
		memoryCache: memoryCache,
		sharedCache: sharedCache,
		memoryTTL:   config.MemoryTTL,
		sharedTTL:   config.SharedTTL,
		logger:      logger,
		stats:       &CacheStats{LastReset: time.Now()},
	}, nil
}

// LookupDiabetesInfo implements domain.DiabetesInfoLookup. A miss in every
// tier returns an error wrapping domain.ErrNotFound.
func (r *ReferenceResolver) LookupDiabetesInfo(ctx context.Context, name string) (*domain.DiabetesTypeInfo, error) {
	r.incrementStat(func(s *CacheStats) { s.TotalRequests++ })

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("diabetes type name cannot be empty: %w", domain.ErrNotFound)
	}

	if info := r.getFromMemory(name); info != nil {
		r.incrementStat(func(s *CacheStats) { s.MemoryHits++ })
		return info, nil
	}
	r.incrementStat(func(s *CacheStats) { s.MemoryMisses++ })

	if info := r.getFromShared(ctx, name); info != nil {
		r.incrementStat(func(s *CacheStats) { s.SharedHits++ })
		r.logger.WithFields(logrus.Fields{
			"diabetes_type": name,
			"cache_tier":    "redis",
		}).Debug("Cache hit in Redis")
		r.setInMemory(name, info)
		return info, nil
	}
	if r.sharedCache != nil {
		r.incrementStat(func(s *CacheStats) { s.SharedMisses++ })
	}

	r.incrementStat(func(s *CacheStats) { s.StoreLookups++ })
	info, err := r.repo.FindByCanonicalName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.incrementStat(func(s *CacheStats) { s.NotFound++ })
			return nil, err
		}
		r.incrementStat(func(s *CacheStats) { s.ErrorCount++ })
		return nil, fmt.Errorf("failed to look up diabetes type %s: %w", name, err)
	}

	r.setInMemory(name, info)
	r.setInShared(ctx, info)
	return info, nil
}

// Warm loads the given types into the cache tiers concurrently. Types that
// are missing from the store are skipped.
func (r *ReferenceResolver) Warm(ctx context.Context, names []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	var mu sync.Mutex
	loaded := 0
	for _, name := range names {
		g.Go(func() error {
			if _, err := r.LookupDiabetesInfo(ctx, name); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil
				}
				return err
			}
			mu.Lock()
			loaded++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to warm reference cache: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"requested": len(names),
		"loaded":    loaded,
	}).Info("Warmed reference cache")
	return nil
}

// Invalidate drops a type from both cache tiers.
func (r *ReferenceResolver) Invalidate(ctx context.Context, name string) error {
	r.memoryCache.Remove(name)
	if r.sharedCache != nil {
		if err := r.sharedCache.InvalidateTypeInfo(ctx, name); err != nil {
			return fmt.Errorf("failed to invalidate shared cache: %w", err)
		}
	}
	return nil
}

// GetCacheStats returns cache performance statistics
func (r *ReferenceResolver) GetCacheStats() CacheStats {
	r.statsMu.RLock()
	defer r.statsMu.RUnlock()
	return *r.stats
}

type cacheEntry struct {
	info   *domain.DiabetesTypeInfo
	expiry time.Time
}

func (e *cacheEntry) isExpired() bool {
	return time.Now().After(e.expiry)
}

func (r *ReferenceResolver) getFromMemory(name string) *domain.DiabetesTypeInfo {
	if value, ok := r.memoryCache.Get(name); ok {
		if entry, ok := value.(*cacheEntry); ok && !entry.isExpired() {
			return entry.info
		}
		r.memoryCache.Remove(name)
	}
	return nil
}

func (r *ReferenceResolver) setInMemory(name string, info *domain.DiabetesTypeInfo) {
	r.memoryCache.Add(name, &cacheEntry{
		info:   info,
		expiry: time.Now().Add(r.memoryTTL),
	})
}

func (r *ReferenceResolver) getFromShared(ctx context.Context, name string) *domain.DiabetesTypeInfo {
	if r.sharedCache == nil {
		return nil
	}
	info, found, err := r.sharedCache.GetTypeInfo(ctx, name)
	if err != nil {
		r.logger.WithError(err).Warn("Redis cache read failed")
		return nil
	}
	if !found {
		return nil
	}
	return info
}

func (r *ReferenceResolver) setInShared(ctx context.Context, info *domain.DiabetesTypeInfo) {
	if r.sharedCache == nil {
		return
	}
	if err := r.sharedCache.SetTypeInfo(ctx, info, r.sharedTTL); err != nil {
		r.logger.WithError(err).Warn("Redis cache write failed")
	}
}

func (r *ReferenceResolver) incrementStat(update func(*CacheStats)) {
	r.statsMu.Lock()
	defer r.statsMu.Unlock()
	update(r.stats)
}
