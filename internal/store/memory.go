// internal/store/memory.go
package store

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory implements ObjectStore with in-process maps. It is intended for
// development (no bucket configured) and tests.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memoryObject

	// Failure injection for tests. When set, the corresponding operation
	// returns the error instead of touching the maps.
	FailList    error
	FailGet     error
	FailPut     error
	FailExists  error
	FailPresign error
}

type memoryObject struct {
	data         []byte
	contentType  string
	lastModified time.Time
}

// NewMemory creates an empty in-memory object store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memoryObject)}
}

// PutObject seeds an object with an explicit modification time. Test helper.
func (m *Memory) PutObject(key string, data []byte, lastModified time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: data, lastModified: lastModified}
}

// List returns all objects under the prefix in ascending key order,
// matching the lexicographic order an S3 listing produces.
func (m *Memory) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	if m.FailList != nil {
		return nil, m.FailList
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var objects []ObjectInfo
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, ObjectInfo{
				Key:          key,
				Size:         int64(len(obj.data)),
				LastModified: obj.lastModified,
			})
		}
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// Get retrieves a stored object body.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if m.FailGet != nil {
		return nil, m.FailGet
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	return data, nil
}

// Put stores an object body, replacing any previous one.
func (m *Memory) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if m.FailPut != nil {
		return m.FailPut
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	data := make([]byte, len(body))
	copy(data, body)
	m.objects[key] = memoryObject{data: data, contentType: contentType, lastModified: time.Now().UTC()}
	return nil
}

// Exists reports prefix existence with the same semantics as the S3 probe.
func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	if m.FailExists != nil {
		return false, m.FailExists
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for k := range m.objects {
		if strings.HasPrefix(k, key) {
			return true, nil
		}
	}
	return false, nil
}

// PresignGet returns a synthetic URL carrying the key and expiry; it is
// not fetchable but lets callers exercise the enrichment flow.
func (m *Memory) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	if m.FailPresign != nil {
		return "", m.FailPresign
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.objects[key]; !ok {
		return "", ErrNotFound
	}
	return fmt.Sprintf("https://memory.invalid/%s?X-Expires=%d", url.PathEscape(key), int(expires.Seconds())), nil
}
