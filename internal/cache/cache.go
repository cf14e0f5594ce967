// Package cache holds decoded GET responses between requests so that
// repeated reads of the same list do not go back to the API until a write
// invalidates them.
package cache

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultSize bounds the number of cached responses
	DefaultSize = 256
)

// QueryCache stores raw response bodies keyed by request path and query
type QueryCache struct {
	lru *expirable.LRU[string, []byte]
}

// New creates a cache. A non-positive size falls back to DefaultSize.
func New(size int, ttl time.Duration) *QueryCache {
	if size <= 0 {
		size = DefaultSize
	}
	return &QueryCache{
		lru: expirable.NewLRU[string, []byte](size, nil, ttl),
	}
}

// Get returns the cached body for key
func (c *QueryCache) Get(key string) ([]byte, bool) {
	return c.lru.Get(key)
}

// Set stores a copy of body under key
func (c *QueryCache) Set(key string, body []byte) {
	c.lru.Add(key, append([]byte(nil), body...))
}

// Invalidate drops every entry under one of the path prefixes and returns
// how many were removed. A prefix covers whole path segments only, so
// /ledger/1 covers /ledger/1/accounts but not /ledger/10.
func (c *QueryCache) Invalidate(prefixes ...string) int {
	removed := 0
	for _, key := range c.lru.Keys() {
		for _, prefix := range prefixes {
			if covers(prefix, key) {
				if c.lru.Remove(key) {
					removed++
				}
				break
			}
		}
	}
	return removed
}

func covers(prefix, key string) bool {
	if !strings.HasPrefix(key, prefix) {
		return false
	}
	if len(key) == len(prefix) || strings.HasSuffix(prefix, "/") {
		return true
	}
	next := key[len(prefix)]
	return next == '/' || next == '?'
}

// Purge empties the cache
func (c *QueryCache) Purge() {
	c.lru.Purge()
}

// Len returns the number of live entries
func (c *QueryCache) Len() int {
	return c.lru.Len()
}
