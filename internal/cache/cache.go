// Package cache provides in-process TTL caches shared across pipeline runs.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching
type Cache[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V, ttl time.Duration)
	Delete(key string)
	Clear()
}

// Key builds a namespaced cache key; long parts are hashed
func Key(namespace string, parts ...string) string {
	raw := strings.Join(parts, "\x00")
	if len(raw) > 128 {
		hash := sha256.Sum256([]byte(raw))
		raw = hex.EncodeToString(hash[:])
	}
	return "factcheck:v1:" + namespace + ":" + raw
}
