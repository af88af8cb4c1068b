package meshstore

import (
	"context"
	"io"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultCacheSize = 64

type MetricsSnapshot struct {
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	OriginReads uint64 `json:"origin_reads"`
	OriginErr   uint64 `json:"origin_errors"`
	Entries     int    `json:"entries"`
}

// CachedStore is a read-through LRU in front of an origin store. Meshes are
// immutable once published, so entries never expire; Put refreshes the entry.
type CachedStore struct {
	origin Store
	cache  *lru.Cache[string, []byte]

	hits        atomic.Uint64
	misses      atomic.Uint64
	originReads atomic.Uint64
	originErr   atomic.Uint64
}

func NewCachedStore(origin Store, size int) (*CachedStore, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &CachedStore{origin: origin, cache: cache}, nil
}

func (s *CachedStore) Get(ctx context.Context, name string) ([]byte, error) {
	key, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	if data, ok := s.cache.Get(key); ok {
		s.hits.Add(1)
		return data, nil
	}
	s.misses.Add(1)
	s.originReads.Add(1)
	data, err := s.origin.Get(ctx, key)
	if err != nil {
		s.originErr.Add(1)
		return nil, err
	}
	s.cache.Add(key, data)
	return data, nil
}

func (s *CachedStore) Put(ctx context.Context, name string, data []byte) error {
	key, err := cleanName(name)
	if err != nil {
		return err
	}
	if err := s.origin.Put(ctx, key, data); err != nil {
		return err
	}
	s.cache.Add(key, data)
	return nil
}

func (s *CachedStore) Metrics() MetricsSnapshot {
	return MetricsSnapshot{
		Hits:        s.hits.Load(),
		Misses:      s.misses.Load(),
		OriginReads: s.originReads.Load(),
		OriginErr:   s.originErr.Load(),
		Entries:     s.cache.Len(),
	}
}

// Close purges the cache and closes the origin when it holds resources.
func (s *CachedStore) Close() error {
	s.cache.Purge()
	if c, ok := s.origin.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
