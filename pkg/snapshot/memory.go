package snapshot

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps snapshots in memory. Useful for tests and for undo
// history within a process.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem
}

type memoryItem struct {
	data     []byte
	modified time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryItem)}
}

func (m *MemoryStore) Put(_ context.Context, name string, data []byte) error {
	if err := validName(name); err != nil {
		return err
	}
	cp := make([]byte, len(data))
	copy(cp, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[name] = memoryItem{data: cp, modified: time.Now()}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[name]
	if !ok {
		return nil, notFound(name)
	}
	cp := make([]byte, len(item.data))
	copy(cp, item.data)
	return cp, nil
}

func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, name)
	return nil
}

func (m *MemoryStore) List(context.Context) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]Info, 0, len(m.items))
	for name, item := range m.items {
		infos = append(infos, Info{Name: name, Size: int64(len(item.data)), Modified: item.modified})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

var _ Store = (*MemoryStore)(nil)
