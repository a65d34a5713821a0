package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/peterbourgon/diskv/v3"
)

// diskCacheSize bounds the in-memory read cache of DiskStore.
const diskCacheSize = 8 << 20

// DiskStore implements the Store interface with one JSON file per key.
type DiskStore struct {
	d *diskv.Diskv
}

// NewDiskStore returns a DiskStore rooted at basePath. Keys map to files
// directly under basePath.
func NewDiskStore(basePath string) *DiskStore {
	d := diskv.New(diskv.Options{
		BasePath:     basePath,
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: diskCacheSize,
	})
	return &DiskStore{d: d}
}

// Load decodes the file stored under key into dest.
func (s *DiskStore) Load(_ context.Context, key string, dest any) (bool, error) {
	if !s.d.Has(key) {
		return false, nil
	}

	data, err := s.d.Read(key)
	if err != nil {
		return false, fmt.Errorf("loading %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// Save writes the JSON encoding of value under key.
func (s *DiskStore) Save(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	if err := s.d.Write(key, data); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *DiskStore) Delete(_ context.Context, key string) error {
	if !s.d.Has(key) {
		return nil
	}
	if err := s.d.Erase(key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// Close is a no-op; every write is already on disk.
func (s *DiskStore) Close() error {
	return nil
}
