package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		MemoryCapacity:   1024,
		DiskCapacity:     1 << 20,
		Dir:              t.TempDir(),
		CompressionLevel: 3,
	}
}

func TestManager_BasicOperations(t *testing.T) {
	m, err := NewManager(testConfig(t), nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	key := Key("Focus, 1 minutes left", "en", "com", false)
	value := bytes.Repeat([]byte{1, 2, 3, 4}, 64)

	if err := m.Put(key, value); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok := m.Get(key)
	if !ok || !bytes.Equal(got, value) {
		t.Fatalf("Get = %v, %v", len(got), ok)
	}

	m.Delete(key)
	if _, ok := m.Get(key); ok {
		t.Error("key still present after Delete")
	}
}

func TestManager_Tiers(t *testing.T) {
	m, err := NewManager(testConfig(t), nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	if err := m.Put("small", []byte("pcm")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	// Too large for the 1 KiB memory tier, kept on disk only.
	if err := m.Put("large", bytes.Repeat([]byte{7}, 4096)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	stats := m.Stats()
	tests := []struct {
		level Level
		name  string
		items int64
	}{
		{LevelMemory, "memory", 1},
		{LevelDisk, "disk", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.level.String() != tt.name {
				t.Errorf("String() = %q", tt.level.String())
			}
			if got := stats.Tier(tt.level).Items; got != tt.items {
				t.Errorf("Items = %d, want %d", got, tt.items)
			}
		})
	}
	if Level(9).String() != "unknown" {
		t.Error("unknown level not reported")
	}
}

func TestManager_DiskPersistsAndPromotes(t *testing.T) {
	cfg := testConfig(t)
	value := bytes.Repeat([]byte("pcm"), 100)

	first, err := NewManager(cfg, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := first.Put("clip", value); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := NewManager(cfg, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	got, ok := second.Get("clip")
	if !ok || !bytes.Equal(got, value) {
		t.Fatal("clip not read back from disk")
	}
	stats := second.Stats()
	if stats.Disk.Hits != 1 || stats.Promotions != 1 {
		t.Errorf("Stats = %+v", stats)
	}

	// Second lookup is served from memory.
	if _, ok := second.Get("clip"); !ok {
		t.Fatal("promoted clip missing")
	}
	if s := second.Stats(); s.Memory.Hits != 1 || s.Disk.Hits != 1 {
		t.Errorf("after promotion: %+v", s)
	}
}

func TestManager_LargeClipSkipsMemory(t *testing.T) {
	m, err := NewManager(testConfig(t), nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	big := make([]byte, 4096)
	if err := m.Put("big", big); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if m.Stats().Memory.Items != 0 {
		t.Error("clip larger than memory capacity was stored in memory")
	}
	if _, ok := m.Get("big"); !ok {
		t.Error("clip not served from disk")
	}
}

func TestManager_Clear(t *testing.T) {
	cfg := testConfig(t)
	m, err := NewManager(cfg, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	for _, k := range []string{"a", "b", "c"} {
		if err := m.Put(k, []byte(k)); err != nil {
			t.Fatalf("Put %s: %v", k, err)
		}
	}
	if err := m.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	files, _ := filepath.Glob(filepath.Join(cfg.Dir, "*"+diskExt))
	if len(files) != 0 {
		t.Errorf("%d files left after Clear", len(files))
	}
	if s := m.Stats(); s.Memory.Items != 0 || s.Disk.Items != 0 {
		t.Errorf("Stats after Clear = %+v", s)
	}
}

func TestManager_TTLPrunesOnOpen(t *testing.T) {
	cfg := testConfig(t)
	m, err := NewManager(cfg, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := m.Put("stale", []byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	_ = m.Close()

	old := time.Now().Add(-48 * time.Hour)
	path := filepath.Join(cfg.Dir, "stale"+diskExt)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	cfg.TTL = 24 * time.Hour
	m, err = NewManager(cfg, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer m.Close()

	if _, ok := m.Get("stale"); ok {
		t.Error("expired clip was not pruned")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expired file still on disk: %v", err)
	}
}

func TestDiskCache_EvictsOldest(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, 1<<20, 1)
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}
	defer dc.Close()

	// Incompressible-ish payloads so sizes are predictable enough.
	payload := func(seed byte) []byte {
		b := make([]byte, 2048)
		for i := range b {
			b[i] = byte(i*31) ^ seed
		}
		return b
	}
	if err := dc.Put("first", payload(1)); err != nil {
		t.Fatal(err)
	}
	size := dc.Stats().Size
	dc.capacity = size*2 + size/2

	if err := dc.Put("second", payload(2)); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, ok := dc.Get("first"); !ok {
		t.Fatal("first missing")
	}
	if err := dc.Put("third", payload(3)); err != nil {
		t.Fatal(err)
	}

	if _, ok := dc.entries["second"]; ok {
		t.Error("least recently used clip was not evicted")
	}
	if _, ok := dc.entries["first"]; !ok {
		t.Error("recently used clip was evicted")
	}
}
