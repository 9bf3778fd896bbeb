package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
)

// Store persists cache entries. Implementations treat unreadable entries as
// absent rather than failing reads.
type Store interface {
	// Get loads the entry for key. Corrupt entries are removed and reported
	// as absent.
	Get(key Key) (Entry, bool)

	// Put stores the entry for key, replacing any previous one.
	Put(key Key, entry Entry) error

	// Delete removes the entry for key, if present.
	Delete(key Key)

	// List enumerates stored entries with their sizes, in key order.
	List() []StoredEntry
}

// StoredEntry is one entry as reported by Store.List.
type StoredEntry struct {
	Key   Key
	Size  int64
	Entry Entry
}

// FileStore keeps one JSON file per entry under a single directory, named
// <kind>_<scope>.json.
type FileStore struct {
	dir string
}

// NewFileStore creates the cache directory if needed and returns a store
// over it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// DefaultDir returns the default cache directory, ~/.ghproj/cache.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".ghproj", "cache")
	}
	return filepath.Join(home, ".ghproj", "cache")
}

func (s *FileStore) path(key Key) string {
	stem := strings.ReplaceAll(key.String(), string(os.PathSeparator), "-")
	return filepath.Join(s.dir, stem+".json")
}

func (s *FileStore) Get(key Key) (Entry, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return Entry{}, false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Corrupt entry: drop it so the next write starts clean.
		os.Remove(s.path(key))
		return Entry{}, false
	}
	return entry, true
}

func (s *FileStore) Put(key Key, entry Entry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(s.path(key), bytes.NewReader(data))
}

func (s *FileStore) Delete(key Key) {
	os.Remove(s.path(key))
}

func (s *FileStore) List() []StoredEntry {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil
	}
	sort.Strings(paths)

	var out []StoredEntry
	for _, p := range paths {
		key, ok := keyFromStem(strings.TrimSuffix(filepath.Base(p), ".json"))
		if !ok {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		entry, ok := s.Get(key)
		if !ok {
			continue
		}
		out = append(out, StoredEntry{Key: key, Size: info.Size(), Entry: entry})
	}
	return out
}

// keyFromStem parses a file stem like "items_PVT_abc" back into a Key. Kinds
// never contain underscores, so the first one splits kind from scope.
func keyFromStem(stem string) (Key, bool) {
	kind, scope, ok := strings.Cut(stem, "_")
	if !ok {
		return Key{}, false
	}
	switch Kind(kind) {
	case KindItems, KindStatuses, KindWorkflows:
		return Key{Kind: Kind(kind), Scope: scope}, true
	}
	return Key{}, false
}

// MemStore is an in-memory Store used in tests and when the on-disk cache
// is disabled.
type MemStore struct {
	mu      sync.Mutex
	entries map[Key]Entry
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[Key]Entry)}
}

func (s *MemStore) Get(key Key) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	return entry, ok
}

func (s *MemStore) Put(key Key, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	return nil
}

func (s *MemStore) Delete(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

func (s *MemStore) List() []StoredEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]StoredEntry, 0, len(s.entries))
	for key, entry := range s.entries {
		data, err := json.Marshal(entry)
		if err != nil {
			continue
		}
		out = append(out, StoredEntry{Key: key, Size: int64(len(data)), Entry: entry})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.String() < out[j].Key.String()
	})
	return out
}
