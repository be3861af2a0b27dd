// Package schema keeps the per-graph id→name tables used by compact replies.
//
// A compact reply names labels, property keys and relationship types by
// their numeric id. The ids are positions in three server-side lists that
// only ever grow: db.labels(), db.propertyKeys() and db.relationshipTypes()
// return the names in id order. A Catalog holds a copy of those lists for
// one graph and answers reply.Resolver lookups from it.
//
// When a reply refers to an id the Catalog has not seen yet, the client
// refreshes the affected list and decodes again. Catalogs for many graphs are
// kept in a Cache that drops idle graphs after a TTL.
package schema

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/orneryd/redisgraphio/pkg/cache"
	"github.com/orneryd/redisgraphio/pkg/reply"
)

// Kinds lists every id space in refresh order.
var Kinds = []reply.IDKind{reply.LabelID, reply.PropertyKeyID, reply.RelationshipTypeID}

// Procedure returns the procedure listing the names of kind.
func Procedure(kind reply.IDKind) string {
	switch kind {
	case reply.LabelID:
		return "db.labels"
	case reply.PropertyKeyID:
		return "db.propertyKeys"
	case reply.RelationshipTypeID:
		return "db.relationshipTypes"
	}
	return ""
}

// Fetcher loads the current names of one id space, in id order.
type Fetcher func(ctx context.Context, kind reply.IDKind) ([]string, error)

// Catalog is the id→name table of one graph. It is safe for concurrent use.
type Catalog struct {
	mu        sync.RWMutex
	names     [3][]string
	refreshed time.Time
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog { return &Catalog{} }

// Resolve implements reply.Resolver.
func (c *Catalog) Resolve(kind reply.IDKind, id int64) (string, bool) {
	if int(kind) >= len(c.names) || id < 0 {
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := c.names[kind]
	if id >= int64(len(names)) {
		return "", false
	}
	return names[id], true
}

// Set replaces the names of one id space.
func (c *Catalog) Set(kind reply.IDKind, names []string) {
	if int(kind) >= len(c.names) {
		return
	}
	cp := make([]string, len(names))
	copy(cp, names)

	c.mu.Lock()
	c.names[kind] = cp
	c.refreshed = time.Now()
	c.mu.Unlock()
}

// Names returns a copy of the names of one id space.
func (c *Catalog) Names(kind reply.IDKind) []string {
	if int(kind) >= len(c.names) {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	cp := make([]string, len(c.names[kind]))
	copy(cp, c.names[kind])
	return cp
}

// Len returns the number of known names of one id space.
func (c *Catalog) Len(kind reply.IDKind) int {
	if int(kind) >= len(c.names) {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names[kind])
}

// RefreshedAt returns when the catalog was last updated.
func (c *Catalog) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshed
}

// Refresh reloads the given id spaces (all of them when none are given)
// through fetch.
func (c *Catalog) Refresh(ctx context.Context, fetch Fetcher, kinds ...reply.IDKind) error {
	if len(kinds) == 0 {
		kinds = Kinds
	}
	for _, kind := range kinds {
		names, err := fetch(ctx, kind)
		if err != nil {
			return fmt.Errorf("refresh %s names: %w", kind, err)
		}
		c.Set(kind, names)
	}
	return nil
}

// Reset forgets every name.
func (c *Catalog) Reset() {
	c.mu.Lock()
	c.names = [3][]string{}
	c.refreshed = time.Time{}
	c.mu.Unlock()
}

// Cache holds one Catalog per graph name.
type Cache struct {
	lru *cache.Cache[string, *Catalog]
}

// NewCache creates a catalog cache for up to maxGraphs graphs. Catalogs not
// used for ttl are dropped and rebuilt on next use (0 keeps them forever).
func NewCache(maxGraphs int, ttl time.Duration) *Cache {
	return &Cache{lru: cache.New[string, *Catalog](maxGraphs, ttl)}
}

// Catalog returns the catalog of graph, creating an empty one if needed.
func (c *Cache) Catalog(graph string) *Catalog {
	return c.lru.GetOrCreate(graph, NewCatalog)
}

// Forget drops the catalog of graph, e.g. after the graph was deleted.
func (c *Cache) Forget(graph string) { c.lru.Remove(graph) }

// Stats returns the underlying cache statistics.
func (c *Cache) Stats() cache.Stats { return c.lru.Stats() }
