package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrItemTooLarge is returned when a clip exceeds the tier capacity
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCorrupted is returned when a stored clip cannot be decoded
	ErrCorrupted = errors.New("cache data corrupted")
)

// Level identifies a cache tier.
type Level int

const (
	// LevelMemory is the in-process LRU
	LevelMemory Level = iota

	// LevelDisk is the persistent compressed store
	LevelDisk
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case LevelMemory:
		return "memory"
	case LevelDisk:
		return "disk"
	default:
		return "unknown"
	}
}

// Stats holds counters for one tier.
type Stats struct {
	Capacity  int64
	Size      int64
	Items     int64
	Hits      int64
	Misses    int64
	Evictions int64
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Config sizes the two tiers.
type Config struct {
	MemoryCapacity   int64         // bytes
	DiskCapacity     int64         // bytes, compressed
	Dir              string        // disk tier directory
	CompressionLevel int           // zstd level, 1-22
	TTL              time.Duration // disk entries older than this are pruned on open
}

// DefaultConfig returns the cache configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		MemoryCapacity:   64 * 1024 * 1024,
		DiskCapacity:     512 * 1024 * 1024,
		CompressionLevel: 3,
		TTL:              30 * 24 * time.Hour,
	}
}

// Store is the subset of cache behaviour the speech layer needs.
type Store interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
	Delete(key string)
}

// Key derives a stable cache key for a clip.
func Key(text, language, tld string, slow bool) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%t", text, language, tld, slow)))
	return hex.EncodeToString(hash[:16])
}
