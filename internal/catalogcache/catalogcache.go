// Package catalogcache is a bounded, in-process cache in front of
// internal/catalog.Store (spec §5: "the Word Catalog... is cached
// in-process with bounded memory"). Grounded on the tiered L1 layer in
// hrygo-memos' store/cache/tiered.go, generalized from its two-tier
// memory+Redis design down to the single in-process tier this domain
// needs, with go.uber.org/atomic hit/miss counters in place of the
// teacher pack's unimplemented (zeroed) stats fields.
package catalogcache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/example/vocabadapt/internal/catalog"
	"github.com/example/vocabadapt/pkg/models"
)

// Cache wraps a catalog.Reader with a bounded, TTL-expiring by-id cache.
// ByUnit and NearestByDifficulty pass through uncached: the Sorting Hat's
// nearest-difficulty search already scans the full catalog in one query,
// and caching per-unit listings would need invalidation plumbing this
// read-only catalog never needs since words never change after seeding.
type Cache struct {
	reader catalog.Reader

	mu       sync.Mutex
	maxItems int
	ttl      time.Duration
	entries  map[int64]*list.Element
	order    *list.List // front = most recently used

	hits   *atomic.Int64
	misses *atomic.Int64
}

type entry struct {
	id        int64
	word      models.Word
	expiresAt time.Time
}

// New wraps reader with a cache bounded to maxItems, each entry valid for ttl.
func New(reader catalog.Reader, maxItems int, ttl time.Duration) *Cache {
	return &Cache{
		reader:   reader,
		maxItems: maxItems,
		ttl:      ttl,
		entries:  make(map[int64]*list.Element),
		order:    list.New(),
		hits:     atomic.NewInt64(0),
		misses:   atomic.NewInt64(0),
	}
}

func (c *Cache) ByID(ctx context.Context, id int64) (models.Word, error) {
	if w, ok := c.get(id); ok {
		c.hits.Inc()
		return w, nil
	}
	c.misses.Inc()

	w, err := c.reader.ByID(ctx, id)
	if err != nil {
		return models.Word{}, err
	}
	c.set(id, w)
	return w, nil
}

func (c *Cache) ByUnit(ctx context.Context, unit int) ([]models.Word, error) {
	return c.reader.ByUnit(ctx, unit)
}

func (c *Cache) NearestByDifficulty(ctx context.Context, target int, exclude map[int64]struct{}) (models.Word, error) {
	return c.reader.NearestByDifficulty(ctx, target, exclude)
}

func (c *Cache) Count(ctx context.Context) (int, error) {
	return c.reader.Count(ctx)
}

// Stats reports cumulative hit/miss counts since the cache was created.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Clear evicts every cached entry. Used by the background sweep to force a
// periodic refresh rather than relying solely on per-entry TTL expiry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int64]*list.Element)
	c.order.Init()
}

func (c *Cache) get(id int64) (models.Word, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[id]
	if !ok {
		return models.Word{}, false
	}
	e := el.Value.(*entry)
	if time.Now().After(e.expiresAt) {
		c.order.Remove(el)
		delete(c.entries, id)
		return models.Word{}, false
	}
	c.order.MoveToFront(el)
	return e.word, true
}

func (c *Cache) set(id int64, w models.Word) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[id]; ok {
		el.Value.(*entry).word = w
		el.Value.(*entry).expiresAt = time.Now().Add(c.ttl)
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&entry{id: id, word: w, expiresAt: time.Now().Add(c.ttl)})
	c.entries[id] = el

	for c.order.Len() > c.maxItems {
		back := c.order.Back()
		if back == nil {
			break
		}
		c.order.Remove(back)
		delete(c.entries, back.Value.(*entry).id)
	}
}

var _ catalog.Reader = (*Cache)(nil)
