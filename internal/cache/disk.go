package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

const diskExt = ".pcm.zst"

// DiskCache keeps one zstd-compressed file per clip. The directory is the
// index: it is scanned on open and file modification times track recency.
type DiskCache struct {
	dir      string
	capacity int64
	size     int64

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	entries map[string]*diskEntry

	mu    sync.Mutex
	stats Stats
}

type diskEntry struct {
	size     int64 // compressed bytes on disk
	accessed time.Time
}

// NewDiskCache opens (creating if needed) a cache rooted at dir.
func NewDiskCache(dir string, capacity int64, level int) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if level <= 0 {
		level = 3
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	dc := &DiskCache{
		dir:      dir,
		capacity: capacity,
		encoder:  enc,
		decoder:  dec,
		entries:  make(map[string]*diskEntry),
	}
	if err := dc.scan(); err != nil {
		return nil, err
	}
	return dc, nil
}

// Dir returns the cache directory.
func (dc *DiskCache) Dir() string {
	return dc.dir
}

// Get reads and decompresses the clip for key.
func (dc *DiskCache) Get(key string) ([]byte, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entry, ok := dc.entries[key]
	if !ok {
		dc.stats.Misses++
		return nil, false
	}

	path := dc.path(key)
	compressed, err := os.ReadFile(path)
	if err != nil {
		dc.drop(key)
		dc.stats.Misses++
		return nil, false
	}
	data, err := dc.decoder.DecodeAll(compressed, nil)
	if err != nil {
		dc.drop(key)
		dc.stats.Misses++
		return nil, false
	}

	now := time.Now()
	entry.accessed = now
	_ = os.Chtimes(path, now, now)
	dc.stats.Hits++
	return data, true
}

// Put compresses value and writes it under key, evicting the least recently
// used files to stay within capacity.
func (dc *DiskCache) Put(key string, value []byte) error {
	compressed := dc.encoder.EncodeAll(value, nil)
	n := int64(len(compressed))

	dc.mu.Lock()
	defer dc.mu.Unlock()

	if n > dc.capacity {
		return ErrItemTooLarge
	}
	if _, ok := dc.entries[key]; ok {
		dc.drop(key)
	}
	for dc.size+n > dc.capacity && len(dc.entries) > 0 {
		dc.evictOldest()
	}

	if err := writeAtomic(dc.path(key), compressed); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	dc.entries[key] = &diskEntry{size: n, accessed: time.Now()}
	dc.size += n
	return nil
}

// Delete removes key if present.
func (dc *DiskCache) Delete(key string) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if _, ok := dc.entries[key]; ok {
		dc.drop(key)
	}
}

// Clear removes every cached clip from disk.
func (dc *DiskCache) Clear() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	var errs []error
	for key := range dc.entries {
		if err := os.Remove(dc.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	dc.entries = make(map[string]*diskEntry)
	dc.size = 0
	return errors.Join(errs...)
}

// RemoveOlderThan deletes clips last used before cutoff.
func (dc *DiskCache) RemoveOlderThan(cutoff time.Time) int {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	removed := 0
	for key, entry := range dc.entries {
		if entry.accessed.Before(cutoff) {
			dc.drop(key)
			removed++
		}
	}
	return removed
}

// Stats returns a snapshot of the counters.
func (dc *DiskCache) Stats() Stats {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	s := dc.stats
	s.Capacity = dc.capacity
	s.Size = dc.size
	s.Items = int64(len(dc.entries))
	return s
}

// Close releases the zstd coders.
func (dc *DiskCache) Close() error {
	dc.decoder.Close()
	return dc.encoder.Close()
}

func (dc *DiskCache) path(key string) string {
	return filepath.Join(dc.dir, key+diskExt)
}

// scan rebuilds the entry table from the directory and trims it to capacity.
func (dc *DiskCache) scan() error {
	files, err := os.ReadDir(dc.dir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasSuffix(name, diskExt) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		key := strings.TrimSuffix(name, diskExt)
		dc.entries[key] = &diskEntry{size: info.Size(), accessed: info.ModTime()}
		dc.size += info.Size()
	}
	for dc.size > dc.capacity && len(dc.entries) > 0 {
		dc.evictOldest()
	}
	return nil
}

// evictOldest must be called with mu held.
func (dc *DiskCache) evictOldest() {
	var oldest string
	var oldestAt time.Time
	for key, entry := range dc.entries {
		if oldest == "" || entry.accessed.Before(oldestAt) {
			oldest, oldestAt = key, entry.accessed
		}
	}
	if oldest != "" {
		dc.drop(oldest)
		dc.stats.Evictions++
	}
}

// drop must be called with mu held.
func (dc *DiskCache) drop(key string) {
	entry := dc.entries[key]
	_ = os.Remove(dc.path(key))
	delete(dc.entries, key)
	dc.size -= entry.size
}

// writeAtomic writes to a temp file in the same directory and renames it.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil { //nolint:gosec
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
