package storagemock

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"innovation-portal/internal/domain/storage"
)

var _ storage.FileStore = (*Mem)(nil)

var ErrInjected = errors.New("storagemock: injected failure")

// Mem keeps objects in memory. FailOn makes the Put for any key containing it fail.
// BeforePut, when set, runs at the start of every Put.
type Mem struct {
	mu        sync.Mutex
	objects   map[string][]byte
	FailOn    string
	BeforePut func(key string)
	Deleted   []string
}

func NewMem() *Mem { return &Mem{objects: map[string][]byte{}} }

func (m *Mem) Put(_ context.Context, key string, body io.Reader, _ string) (storage.Object, error) {
	if m.BeforePut != nil {
		m.BeforePut(key)
	}
	if m.FailOn != "" && strings.Contains(key, m.FailOn) {
		return storage.Object{}, ErrInjected
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return storage.Object{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = b
	return storage.Object{Key: key, URL: "/files/" + key, Size: int64(len(b))}, nil
}

func (m *Mem) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, key)
	if _, ok := m.objects[key]; !ok {
		return storage.ErrNotFound
	}
	delete(m.objects, key)
	return nil
}

func (m *Mem) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	return out
}

// Upload builds an in-memory storage.Upload.
func Upload(name, contentType, body string) storage.Upload {
	return storage.Upload{
		FileName:    name,
		ContentType: contentType,
		Size:        int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewBufferString(body)), nil
		},
	}
}
