package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/nounclass/internal/model"
)

// Cache stores fetched corpus bodies by key
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// keyVersion changes whenever the stored body format changes
const keyVersion = "v1"

// Key derives the cache key for a fetched URL
func Key(rawURL string) string {
	hash := sha256.Sum256([]byte(rawURL))
	return "nounclass:text:" + keyVersion + ":" + hex.EncodeToString(hash[:])
}

// New builds the cache described by cfg: memory in front of disk.
// It returns nil when caching is disabled.
func New(cfg model.CacheConfig, logger *zap.Logger) Cache {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Dir == "" {
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL, logger)
}
