/*
Package urid maps URIs to compact integer identifiers.

Plugins resolve every URI they care about once, at instantiation, and
compare plain integers afterwards. The zero URID is never assigned and means
"not mapped".
*/
package urid

import "sync"

type (
	// URID is an integer identifier of a mapped URI.
	URID uint32

	// Mapper maps URIs to URIDs and back. Implementations must return the
	// same URID for the same URI for the whole lifetime of the mapper.
	Mapper interface {
		Map(uri string) URID
		Unmap(u URID) string
	}

	// Cache is a Mapper backed by a map. It is safe for concurrent use.
	Cache struct {
		mu   sync.RWMutex
		ids  map[string]URID
		uris []string
	}
)

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		ids: make(map[string]URID),
		// index 0 is reserved for unmapped
		uris: []string{""},
	}
}

// Map returns the URID of provided URI, assigning a new one if the URI
// wasn't mapped before. Empty URI is never mapped.
func (c *Cache) Map(uri string) URID {
	if uri == "" {
		return 0
	}
	c.mu.RLock()
	id, ok := c.ids[uri]
	c.mu.RUnlock()
	if ok {
		return id
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.ids[uri]; ok {
		return id
	}
	id = URID(len(c.uris))
	c.ids[uri] = id
	c.uris = append(c.uris, uri)
	return id
}

// Unmap returns the URI of provided URID. Empty string is returned for
// unknown identifiers.
func (c *Cache) Unmap(u URID) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if int(u) >= len(c.uris) {
		return ""
	}
	return c.uris[u]
}

// Len returns number of mapped URIs.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ids)
}
