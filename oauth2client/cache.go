package oauth2client

import "sync"

// TokenCache stores access tokens minted by a Provider, keyed by client ID.
// Entries have no expiry; callers own token lifetime. Implementations must be
// safe for concurrent use.
type TokenCache interface {
	Get(clientID string) (string, bool)
	Set(clientID, accessToken string)
	Delete(clientID string)
}

// MemoryCache is an in-process TokenCache guarded by a RWMutex.
// The zero value is ready to use.
type MemoryCache struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{tokens: make(map[string]string)}
}

// Get returns the cached access token for clientID.
func (c *MemoryCache) Get(clientID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	token, ok := c.tokens[clientID]
	return token, ok
}

// Set stores accessToken for clientID, replacing any previous value.
func (c *MemoryCache) Set(clientID, accessToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tokens == nil {
		c.tokens = make(map[string]string)
	}
	c.tokens[clientID] = accessToken
}

// Delete removes the cached token for clientID.
func (c *MemoryCache) Delete(clientID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tokens, clientID)
}
