// Package cache keeps bound expressions so that a tree document shared by
// many evaluations is decoded and bound once.
//
// # Example
//
//	c := cache.New(1024)
//	expr, err := c.Load(doc, ev)
//	result, err := ev.Evaluate(ctx, expr, state, evaluator.Options{})
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/sandrolain/goadaptive/pkg/treeio"
	"github.com/sandrolain/goadaptive/pkg/types"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 256

// Binder binds a decoded tree. *evaluator.Evaluator implements it.
type Binder interface {
	Bind(root *types.Node) (*types.Expression, error)
}

type entry struct {
	key  string
	expr *types.Expression
}

// Cache is an LRU of bound expressions. It is safe for concurrent use.
//
// Entries are only valid for the evaluator that bound them; use one cache
// per evaluator.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
	stats    Stats
}

// Stats counts lookups.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// New returns a cache holding at most capacity expressions.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Key returns the cache key of a tree document.
func Key(doc []byte) string {
	sum := sha256.Sum256(doc)
	return hex.EncodeToString(sum[:])
}

// Get returns the expression stored under key and marks it most recently
// used.
func (c *Cache) Get(key string) (*types.Expression, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	c.ll.MoveToFront(el)
	return el.Value.(*entry).expr, true
}

// Set stores expr under key, evicting the least recently used entry when
// the cache is full.
func (c *Cache) Set(key string, expr *types.Expression) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry).expr = expr
		c.ll.MoveToFront(el)
		return
	}
	if c.ll.Len() >= c.capacity {
		if last := c.ll.Back(); last != nil {
			c.ll.Remove(last)
			delete(c.items, last.Value.(*entry).key)
			c.stats.Evictions++
		}
	}
	c.items[key] = c.ll.PushFront(&entry{key: key, expr: expr})
}

// GetOrBind returns the expression for key, calling bind on a miss.
// Errors are not cached.
func (c *Cache) GetOrBind(key string, bind func() (*types.Expression, error)) (*types.Expression, error) {
	if expr, ok := c.Get(key); ok {
		return expr, nil
	}
	expr, err := bind()
	if err != nil {
		return nil, err
	}
	c.Set(key, expr)
	return expr, nil
}

// Load decodes and binds a tree document, reusing a previous result for an
// identical document.
func (c *Cache) Load(doc []byte, b Binder) (*types.Expression, error) {
	return c.GetOrBind(Key(doc), func() (*types.Expression, error) {
		root, err := treeio.Decode(doc)
		if err != nil {
			return nil, err
		}
		return b.Bind(root)
	})
}

// Len returns the number of cached expressions.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Stats returns the lookup counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Invalidate removes one entry.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element, c.capacity)
}
