package cache

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
)

// Manager layers the memory cache over the disk cache. Disk hits are
// promoted to memory; puts go to both tiers.
type Manager struct {
	memory *MemoryCache
	disk   *DiskCache
	logger *log.Logger

	mu         sync.Mutex
	promotions int64
}

// ManagerStats aggregates both tiers.
type ManagerStats struct {
	Memory     Stats
	Disk       Stats
	Promotions int64
	Dir        string
}

// DefaultDir returns the per-user cache directory for clips.
func DefaultDir() (string, error) {
	scope := gap.NewScope(gap.User, "focusbox")
	dirs, err := scope.CacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve cache directory: %w", err)
	}
	return filepath.Join(dirs, "clips"), nil
}

// NewManager opens both tiers. Disk entries older than cfg.TTL are pruned.
func NewManager(cfg Config, logger *log.Logger) (*Manager, error) {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Dir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		cfg.Dir = dir
	}

	disk, err := NewDiskCache(cfg.Dir, cfg.DiskCapacity, cfg.CompressionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create disk cache: %w", err)
	}
	if cfg.TTL > 0 {
		if n := disk.RemoveOlderThan(time.Now().Add(-cfg.TTL)); n > 0 {
			logger.Debug("pruned expired clips", "count", n, "dir", cfg.Dir)
		}
	}

	return &Manager{
		memory: NewMemoryCache(cfg.MemoryCapacity),
		disk:   disk,
		logger: logger,
	}, nil
}

// Get looks in memory, then on disk.
func (m *Manager) Get(key string) ([]byte, bool) {
	if data, ok := m.memory.Get(key); ok {
		return data, true
	}
	data, ok := m.disk.Get(key)
	if !ok {
		return nil, false
	}
	if err := m.memory.Put(key, data); err == nil {
		m.mu.Lock()
		m.promotions++
		m.mu.Unlock()
	}
	return data, true
}

// Put writes value to both tiers. A clip too large for one tier is still
// stored in the other.
func (m *Manager) Put(key string, value []byte) error {
	var errs []error
	if err := m.memory.Put(key, value); err != nil && !errors.Is(err, ErrItemTooLarge) {
		errs = append(errs, fmt.Errorf("memory: %w", err))
	}
	if err := m.disk.Put(key, value); err != nil && !errors.Is(err, ErrItemTooLarge) {
		errs = append(errs, fmt.Errorf("disk: %w", err))
	}
	return errors.Join(errs...)
}

// Delete removes key from both tiers.
func (m *Manager) Delete(key string) {
	m.memory.Delete(key)
	m.disk.Delete(key)
}

// Clear empties both tiers.
func (m *Manager) Clear() error {
	m.memory.Clear()
	if err := m.disk.Clear(); err != nil {
		return fmt.Errorf("disk clear: %w", err)
	}
	return nil
}

// Tier returns the counters of one tier.
func (s ManagerStats) Tier(l Level) Stats {
	if l == LevelDisk {
		return s.Disk
	}
	return s.Memory
}

// Stats returns counters for both tiers.
func (m *Manager) Stats() ManagerStats {
	m.mu.Lock()
	promotions := m.promotions
	m.mu.Unlock()

	return ManagerStats{
		Memory:     m.memory.Stats(),
		Disk:       m.disk.Stats(),
		Promotions: promotions,
		Dir:        m.disk.Dir(),
	}
}

// Close releases the disk tier.
func (m *Manager) Close() error {
	if err := m.disk.Close(); err != nil {
		return fmt.Errorf("failed to close disk cache: %w", err)
	}
	return nil
}

var _ Store = (*Manager)(nil)
