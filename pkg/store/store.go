// Package store persists page images. Pages live in a pebble keyspace
// addressed by ksuid page IDs, with a ristretto read cache in front so hot
// pages skip the LSM lookup.
package store

import (
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/dgraph-io/ristretto/v2"
	"github.com/segmentio/ksuid"
)

// ErrPageNotFound is returned when no page exists under the requested ID.
var ErrPageNotFound = &StoreError{"page not found"}

// StoreError represents a page store error.
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}

// Key prefixes separating the page and metadata namespaces.
const (
	pagePrefix = 'p'
	metaPrefix = 'm'
)

// PageStoreConfig holds configuration for the page store.
type PageStoreConfig struct {
	Path       string // pebble database directory
	CacheBytes int64  // read cache budget; 64MB when zero
}

// PageStore stores page images durably and serves repeated reads from an
// in-memory cache.
type PageStore struct {
	db    *pebble.DB
	cache *ristretto.Cache[string, []byte]
}

// NewPageStore opens (or creates) a page store at cfg.Path.
func NewPageStore(cfg PageStoreConfig) (*PageStore, error) {
	db, err := pebble.Open(cfg.Path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("store: opening pebble at %s: %w", cfg.Path, err)
	}

	cacheBytes := cfg.CacheBytes
	if cacheBytes == 0 {
		cacheBytes = 64 << 20
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 1e5,
		MaxCost:     cacheBytes,
		BufferItems: 64,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: creating page cache: %w", err)
	}

	return &PageStore{db: db, cache: cache}, nil
}

// Create stores a new page image under a fresh ID.
func (s *PageStore) Create(img []byte) (ksuid.KSUID, error) {
	id := ksuid.New()
	if err := s.db.Set(pageKey(id), img, pebble.NoSync); err != nil {
		return ksuid.Nil, err
	}
	return id, nil
}

// Read returns the page image stored under id. The returned slice is owned
// by the caller.
func (s *PageStore) Read(id ksuid.KSUID) ([]byte, error) {
	if img, ok := s.cache.Get(id.String()); ok {
		// The cached slice is shared; hand out a copy.
		return append([]byte(nil), img...), nil
	}

	data, closer, err := s.db.Get(pageKey(id))
	if err == pebble.ErrNotFound {
		return nil, ErrPageNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	img := append([]byte(nil), data...)
	s.cache.Set(id.String(), img, int64(len(img)))
	return append([]byte(nil), img...), nil
}

// Update overwrites the page image under id.
func (s *PageStore) Update(id ksuid.KSUID, img []byte) error {
	s.cache.Del(id.String())
	return s.db.Set(pageKey(id), img, pebble.NoSync)
}

// Delete removes the page under id. Deleting an absent page is not an
// error.
func (s *PageStore) Delete(id ksuid.KSUID) error {
	s.cache.Del(id.String())
	return s.db.Delete(pageKey(id), pebble.NoSync)
}

// PutMeta stores an arbitrary metadata blob (e.g. a snapshot manifest)
// under a name in a namespace separate from pages.
func (s *PageStore) PutMeta(name string, data []byte) error {
	return s.db.Set(metaKey(name), data, pebble.Sync)
}

// GetMeta returns the metadata blob stored under name.
func (s *PageStore) GetMeta(name string) ([]byte, error) {
	data, closer, err := s.db.Get(metaKey(name))
	if err == pebble.ErrNotFound {
		return nil, ErrPageNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), data...), nil
}

// Close releases the cache and the underlying database.
func (s *PageStore) Close() error {
	s.cache.Close()
	return s.db.Close()
}

func pageKey(id ksuid.KSUID) []byte {
	return append([]byte{pagePrefix}, id.Bytes()...)
}

func metaKey(name string) []byte {
	return append([]byte{metaPrefix}, name...)
}
