package twitter

import (
	"sync/atomic"
	"time"
)

// DefaultGuestTokenTTL is how long an issued guest token is reused.
const DefaultGuestTokenTTL = time.Hour

type guestTokenRecord struct {
	token  string
	expiry time.Time
}

// GuestTokenCache holds one guest token shared by concurrent resolutions.
// The record is replaced atomically; two racing refreshes only cost an
// extra token request, the later Set wins.
type GuestTokenCache struct {
	ttl time.Duration
	now func() time.Time
	rec atomic.Pointer[guestTokenRecord]
}

// NewGuestTokenCache creates an empty cache. A non-positive ttl uses DefaultGuestTokenTTL.
func NewGuestTokenCache(ttl time.Duration) *GuestTokenCache {
	if ttl <= 0 {
		ttl = DefaultGuestTokenTTL
	}
	return &GuestTokenCache{ttl: ttl, now: time.Now}
}

// Get returns the cached token if it is present and unexpired.
func (c *GuestTokenCache) Get() (string, bool) {
	r := c.rec.Load()
	if r == nil || r.token == "" || !c.now().Before(r.expiry) {
		return "", false
	}
	return r.token, true
}

// Set stores token with a fresh expiry.
func (c *GuestTokenCache) Set(token string) {
	c.rec.Store(&guestTokenRecord{token: token, expiry: c.now().Add(c.ttl)})
}

// Clear drops the cached token.
func (c *GuestTokenCache) Clear() {
	c.rec.Store(nil)
}

// IsExpired reports whether there is no usable token.
func (c *GuestTokenCache) IsExpired() bool {
	_, ok := c.Get()
	return !ok
}

// Expiry returns when the cached token expires, or the zero time when empty.
func (c *GuestTokenCache) Expiry() time.Time {
	if r := c.rec.Load(); r != nil {
		return r.expiry
	}
	return time.Time{}
}
