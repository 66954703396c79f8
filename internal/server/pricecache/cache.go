// Package pricecache holds a bounded, expiring cache of per-card price
// statistics so that deck detail requests do not recompute aggregates on
// every call. Entries are keyed by user and normalized card name and are
// dropped whenever the user's inventory changes.
package pricecache

import (
	"strings"
	"time"

	"github.com/avelmore/deckvault/internal/server/models"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// keySep never occurs in user IDs (UUIDs) or card names.
const keySep = "\x00"

type Cache struct {
	lru *expirable.LRU[string, models.CardPriceStats]
}

// New creates a cache bounded to size entries, each expiring after ttl.
func New(size int, ttl time.Duration) *Cache {
	return &Cache{
		lru: expirable.NewLRU[string, models.CardPriceStats](size, nil, ttl),
	}
}

func key(userID, normalizedName string) string {
	return userID + keySep + normalizedName
}

// Get returns the cached stats for a user's card, if present and fresh.
func (c *Cache) Get(userID, normalizedName string) (models.CardPriceStats, bool) {
	return c.lru.Get(key(userID, normalizedName))
}

// Set stores stats for a user's card.
func (c *Cache) Set(userID, normalizedName string, stats models.CardPriceStats) {
	c.lru.Add(key(userID, normalizedName), stats)
}

// InvalidateUser drops every entry belonging to userID. Called after any
// inventory or reservation mutation for that user.
func (c *Cache) InvalidateUser(userID string) {
	prefix := userID + keySep
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.lru.Remove(k)
		}
	}
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}
