package services

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStorage is an in-process ObjectStorage used by tests and by local
// runs without an S3 bucket
type MemoryStorage struct {
	objects map[string][]byte
	types   map[string]string
	mu      sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (m *MemoryStorage) PutObject(_ context.Context, key, contentType string, body []byte) error {
	data := make([]byte, len(body))
	copy(data, body)

	m.mu.Lock()
	m.objects[key] = data
	m.types[key] = contentType
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) PresignGet(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	_, exists := m.objects[key]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("object not found in memory storage: %s", key)
	}
	return fmt.Sprintf("memory://exports/%s", key), nil
}

func (m *MemoryStorage) DeleteObject(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	delete(m.types, key)
	m.mu.Unlock()
	return nil
}

// Object returns a stored object and its content type
func (m *MemoryStorage) Object(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	return data, m.types[key], ok
}

// Keys returns every stored key
func (m *MemoryStorage) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}
