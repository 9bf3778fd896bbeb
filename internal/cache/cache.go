// Package cache implements the tiered local cache that keeps shell
// completion fast. Each cached collection is a list of strings stamped with
// a write time; readers get it back only while it is younger than its
// kind's TTL. Cache trouble is never allowed to break an operation: reads
// miss, writes are swallowed.
package cache

import (
	"log/slog"
	"strings"
	"time"
)

// Kind identifies a cached collection and pins its TTL tier.
type Kind string

const (
	KindItems     Kind = "items"
	KindStatuses  Kind = "statuses"
	KindWorkflows Kind = "workflows"
)

const (
	// TTLFast bounds statuses and workflows, which are cheap to refetch.
	TTLFast = time.Hour

	// TTLSlow bounds item IDs, which are expensive to list on big boards.
	TTLSlow = 24 * time.Hour
)

// TTL returns the expiry tier for the kind.
func (k Kind) TTL() time.Duration {
	if k == KindItems {
		return TTLSlow
	}
	return TTLFast
}

// Key names one cached collection: what it holds and which board or
// repository it belongs to.
type Key struct {
	Kind  Kind
	Scope string
}

// String returns the stable file stem for the key, e.g. "items_PVT_abc".
func (k Key) String() string {
	return string(k.Kind) + "_" + k.Scope
}

// ItemsKey returns the key for a project's item IDs.
func ItemsKey(projectID string) Key {
	return Key{Kind: KindItems, Scope: projectID}
}

// StatusesKey returns the key for a project's status names.
func StatusesKey(projectID string) Key {
	return Key{Kind: KindStatuses, Scope: projectID}
}

// WorkflowsKey returns the key for a repository's workflow file names.
func WorkflowsKey(owner, repo string) Key {
	return Key{Kind: KindWorkflows, Scope: owner + "_" + repo}
}

// Entry is the serialized form of one cached collection.
type Entry struct {
	Timestamp float64  `json:"timestamp"` // unix seconds at write time
	Items     []string `json:"items"`
}

// Age returns how long ago the entry was written.
func (e Entry) Age(now time.Time) time.Duration {
	return time.Duration((float64(now.UnixNano())/1e9 - e.Timestamp) * float64(time.Second))
}

// Cache reads and writes completion collections through a Store, applying
// the TTL tier of each key's kind.
type Cache struct {
	store  Store
	logger *slog.Logger
}

// New creates a Cache over store.
func New(store Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{store: store, logger: logger}
}

// Get returns the cached items for key while the entry is younger than the
// kind's TTL. Missing, corrupt, or expired entries report ok false.
func (c *Cache) Get(key Key) ([]string, bool) {
	entry, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	if age := entry.Age(time.Now()); age < 0 || age >= key.Kind.TTL() {
		return nil, false
	}
	return entry.Items, true
}

// Set stores items under key with the current timestamp. Write failures are
// logged and swallowed; a cold cache only costs the next caller a fetch.
func (c *Cache) Set(key Key, items []string) {
	entry := Entry{
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
		Items:     items,
	}
	if err := c.store.Put(key, entry); err != nil {
		c.logger.Debug("cache write failed", "key", key.String(), "error", err)
	}
}

// Clear removes entries whose key contains pattern, or every entry when
// pattern is empty. It returns how many entries were removed.
func (c *Cache) Clear(pattern string) int {
	removed := 0
	for _, info := range c.store.List() {
		if pattern != "" && !strings.Contains(info.Key.String(), pattern) {
			continue
		}
		c.store.Delete(info.Key)
		removed++
	}
	return removed
}

// EntryInfo reports the state of one cache entry.
type EntryInfo struct {
	Key       Key
	Size      int64
	Age       time.Duration
	ValidFast bool
	ValidSlow bool
}

// Info describes every stored entry with its size, age, and validity under
// both TTL tiers.
func (c *Cache) Info() []EntryInfo {
	now := time.Now()
	var out []EntryInfo
	for _, info := range c.store.List() {
		age := info.Entry.Age(now)
		out = append(out, EntryInfo{
			Key:       info.Key,
			Size:      info.Size,
			Age:       age,
			ValidFast: age >= 0 && age < TTLFast,
			ValidSlow: age >= 0 && age < TTLSlow,
		})
	}
	return out
}
