package storage

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store for tests and previews.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool
	calls MemoryCalls

	// FailCopy, when set, is returned by every CopyFile call.
	FailCopy error
	// FailWrite, when set, is returned by every WriteText call.
	FailWrite error
}

// MemoryCalls tracks method invocations for test verification.
type MemoryCalls struct {
	EnsureDir    int
	ClearDir     int
	ListDirNames int
	CopyFile     int
	WriteText    int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

// Describe implements Store.
func (m *MemoryStore) Describe() string { return "memory" }

// EnsureDir implements Store.
func (m *MemoryStore) EnsureDir(_ context.Context, dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.EnsureDir++
	m.addDirs(Key(dir))
	return nil
}

// ClearDir implements Store.
func (m *MemoryStore) ClearDir(_ context.Context, dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.ClearDir++
	prefix := dirPrefix(Key(dir))
	for k := range m.files {
		if strings.HasPrefix(k, prefix) {
			delete(m.files, k)
		}
	}
	for k := range m.dirs {
		if prefix != "" && strings.HasPrefix(k, prefix) {
			delete(m.dirs, k)
		}
	}
	return nil
}

// ListDirNames implements Store.
func (m *MemoryStore) ListDirNames(_ context.Context, dir string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.ListDirNames++
	prefix := dirPrefix(Key(dir))
	seen := map[string]bool{}
	for k := range m.dirs {
		if !strings.HasPrefix(k, prefix) || k == strings.TrimSuffix(prefix, "/") {
			continue
		}
		name, _, _ := strings.Cut(strings.TrimPrefix(k, prefix), "/")
		if name != "" {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// CopyFile implements Store.
func (m *MemoryStore) CopyFile(_ context.Context, src, dest string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.CopyFile++
	if m.FailCopy != nil {
		return m.FailCopy
	}
	// #nosec G304 -- test helper reading fixture files
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	m.put(Key(dest), data)
	return nil
}

// WriteText implements Store.
func (m *MemoryStore) WriteText(_ context.Context, content, dest string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.WriteText++
	if m.FailWrite != nil {
		return m.FailWrite
	}
	m.put(Key(dest), []byte(content))
	return nil
}

// Read returns the content stored at a virtual path.
func (m *MemoryStore) Read(virtual string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[Key(virtual)]
	return data, ok
}

// Files returns all stored file keys, sorted.
func (m *MemoryStore) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.files))
	for k := range m.files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Calls returns a snapshot of the invocation counters.
func (m *MemoryStore) Calls() MemoryCalls {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

func (m *MemoryStore) put(key string, data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)
	m.files[key] = cp
	if i := strings.LastIndex(key, "/"); i > 0 {
		m.addDirs(key[:i])
	}
}

func (m *MemoryStore) addDirs(key string) {
	for key != "" {
		m.dirs[key] = true
		i := strings.LastIndex(key, "/")
		if i < 0 {
			return
		}
		key = key[:i]
	}
}

func dirPrefix(key string) string {
	if key == "" {
		return ""
	}
	return key + "/"
}
