// Package cache holds per (identity, folder) listing partitions. A partition
// belongs to one email and credential pair; invalidation drops the partitions
// of every credential seen for an email.
//
// A partition is either absent or fully populated from one fetch. Partitions
// are immutable once stored; every write swaps the whole value under the lock,
// so a reader never observes a partially updated listing. Expired partitions
// are removed lazily on access and by Sweep.
package cache

import (
	"sync"
	"time"

	"github.com/customeros/mailadmin/internal/models"
)

const DefaultTTL = 5 * time.Minute

type partitionKey struct {
	identity   string
	credential string
	folder     string
}

type ListingCache struct {
	mu         sync.Mutex
	partitions map[partitionKey]*models.Partition
	ttl        time.Duration
	now        func() time.Time
}

type Option func(*ListingCache)

// WithClock replaces time.Now, used to simulate staleness.
func WithClock(now func() time.Time) Option {
	return func(c *ListingCache) {
		c.now = now
	}
}

func NewListingCache(ttl time.Duration, opts ...Option) *ListingCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &ListingCache{
		partitions: make(map[partitionKey]*models.Partition),
		ttl:        ttl,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func keyOf(identity models.Identity, folder string) partitionKey {
	return partitionKey{identity: identity.Key(), credential: identity.Fingerprint(), folder: folder}
}

func (c *ListingCache) expired(p *models.Partition) bool {
	return c.now().Sub(p.FetchedAt) >= c.ttl
}

// Get returns the partition if it is younger than the TTL. A stale partition
// is removed and reported absent.
func (c *ListingCache) Get(identity models.Identity, folder string) (*models.Partition, bool) {
	key := keyOf(identity, folder)

	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.partitions[key]
	if !ok {
		return nil, false
	}
	if c.expired(p) {
		delete(c.partitions, key)
		return nil, false
	}
	return p, true
}

// Put replaces the partition for (identity, folder) with a freshly fetched listing.
func (c *ListingCache) Put(identity models.Identity, folder string, entries []*models.EmailSummary, totalCount int) *models.Partition {
	stored := make([]*models.EmailSummary, len(entries))
	copy(stored, entries)

	p := &models.Partition{
		Entries:    stored,
		TotalCount: totalCount,
		FetchedAt:  c.now(),
	}

	c.mu.Lock()
	c.partitions[keyOf(identity, folder)] = p
	c.mu.Unlock()

	return p
}

// Invalidate drops the folder's partitions for identity's email, whatever
// credential they were fetched with.
func (c *ListingCache) Invalidate(identity models.Identity, folder string) {
	owner := identity.Key()

	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.partitions {
		if key.identity == owner && key.folder == folder {
			delete(c.partitions, key)
		}
	}
}

// InvalidateAll drops every partition owned by identity's email and returns
// how many were removed.
func (c *ListingCache) InvalidateAll(identity models.Identity) int {
	owner := identity.Key()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.partitions {
		if key.identity == owner {
			delete(c.partitions, key)
			removed++
		}
	}
	return removed
}

// FindEntry looks up a listing entry in a live partition.
func (c *ListingCache) FindEntry(identity models.Identity, folder string, uid uint32) (*models.EmailSummary, bool) {
	p, ok := c.Get(identity, folder)
	if !ok {
		return nil, false
	}
	return p.Find(uid)
}

// AttachDetail swaps in a copy of the live partition whose entry for uid
// carries detail. It is a no-op when the partition or entry is gone.
func (c *ListingCache) AttachDetail(identity models.Identity, folder string, uid uint32, detail *models.EmailDetail) bool {
	key := keyOf(identity, folder)

	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.partitions[key]
	if !ok {
		return false
	}
	if c.expired(p) {
		delete(c.partitions, key)
		return false
	}
	patched, ok := p.WithDetail(uid, detail)
	if !ok {
		return false
	}
	c.partitions[key] = patched
	return true
}

// Sweep removes every expired partition.
func (c *ListingCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, p := range c.partitions {
		if c.expired(p) {
			delete(c.partitions, key)
			removed++
		}
	}
	return removed
}

func (c *ListingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.partitions)
}

// Folders lists the cached folders for identity, for diagnostics.
func (c *ListingCache) Folders(identity models.Identity) []string {
	owner := keyOf(identity, "")

	c.mu.Lock()
	defer c.mu.Unlock()

	var folders []string
	for key := range c.partitions {
		if key.identity == owner.identity && key.credential == owner.credential {
			folders = append(folders, key.folder)
		}
	}
	return folders
}

// Shutdown drains all partitions.
func (c *ListingCache) Shutdown() {
	c.mu.Lock()
	c.partitions = make(map[partitionKey]*models.Partition)
	c.mu.Unlock()
}

func (c *ListingCache) TTL() time.Duration {
	return c.ttl
}
