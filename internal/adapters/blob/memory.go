package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

type memEntry struct {
	info Info
	data []byte
}

// Memory guarda los blobs en memoria del proceso.
type Memory struct {
	mu   sync.RWMutex
	objs map[string]memEntry
}

func NewMemory() *Memory { return &Memory{objs: make(map[string]memEntry)} }

func (m *Memory) Driver() Driver { return DriverMemory }

func (m *Memory) Put(_ context.Context, key string, r io.Reader, contentType string) (Info, error) {
	if key == "" {
		return Info{}, ErrBadKey
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return Info{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.objs[key]; exists {
		return Info{}, fmt.Errorf("%w: %s", ErrExists, key)
	}
	info := Info{Key: key, Size: int64(len(b)), ContentType: contentType}
	m.objs[key] = memEntry{info: info, data: b}
	return info, nil
}

func (m *Memory) Get(_ context.Context, key string) (Info, io.ReadCloser, error) {
	m.mu.RLock()
	obj, ok := m.objs[key]
	m.mu.RUnlock()
	if !ok {
		return Info{}, nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	// los bytes guardados no se mutan, alcanza con un reader nuevo
	return obj.info, io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objs[key]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	delete(m.objs, key)
	return nil
}
