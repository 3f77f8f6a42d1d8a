package semtok

import "sync"

// Cache holds the last stream sent for each document so delta requests can be
// answered against it.
type Cache struct {
	mu      sync.Mutex
	streams map[string]*Stream
}

func NewCache() *Cache {
	return &Cache{streams: make(map[string]*Stream)}
}

// Put replaces the entry for uri.
func (c *Cache) Put(uri string, s *Stream) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.streams[uri] = s
}

// Get returns the cached stream for uri only if it is the one identified by
// resultID. Any other id is stale.
func (c *Cache) Get(uri string, resultID string) (*Stream, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.streams[uri]
	if !ok || resultID == "" || s.ResultID != resultID {
		return nil, false
	}
	return s, true
}

// Latest returns whatever is cached for uri.
func (c *Cache) Latest(uri string) (*Stream, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.streams[uri]
	return s, ok
}

func (c *Cache) Forget(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.streams, uri)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.streams)
}
