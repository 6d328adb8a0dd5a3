package testsupport

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"digestcast/internal/objectstore"
)

// MemoryStore is an in-memory objectstore.Store that records public flags
// and can be told to fail on specific keys.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	public  map[string]bool
	puts    []string
	failPut map[string]error
	failGet map[string]error
	listErr error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: map[string][]byte{},
		public:  map[string]bool{},
		failPut: map[string]error{},
		failGet: map[string]error{},
	}
}

// Seed stores data under key without recording a put.
func (m *MemoryStore) Seed(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
}

// FailPut makes Put on key return err.
func (m *MemoryStore) FailPut(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPut[key] = err
}

// FailGet makes Get on key return err.
func (m *MemoryStore) FailGet(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failGet[key] = err
}

// FailList makes every List call return err.
func (m *MemoryStore) FailList(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

func (m *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var keys []string
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failGet[key]; err != nil {
		return nil, err
	}
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("memory store: get %q: %w", key, objectstore.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) Put(_ context.Context, key string, body io.Reader, opts objectstore.PutOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failPut[key]; err != nil {
		return err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	m.public[key] = opts.Public
	m.puts = append(m.puts, key)
	return nil
}

// Object returns the stored body for key.
func (m *MemoryStore) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}

// IsPublic reports whether the last Put on key asked for public access.
func (m *MemoryStore) IsPublic(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.public[key]
}

// Puts returns the keys written so far, in call order.
func (m *MemoryStore) Puts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.puts...)
}
