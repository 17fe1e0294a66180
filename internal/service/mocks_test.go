package service

import (
	"context"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/phrazzld/tarea-api/internal/domain"
	"github.com/phrazzld/tarea-api/internal/store"
)

// opLog records the order of store operations across mocks so tests can
// assert sequencing (e.g. deletes complete before the record persists).
type opLog struct {
	mu  sync.Mutex
	ops []string
}

func (l *opLog) record(op string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ops = append(l.ops, op)
}

func (l *opLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.ops...)
}

// mockTareaStore is an in-memory store.TareaStore.
type mockTareaStore struct {
	log     *opLog
	mu      sync.Mutex
	tareas  map[string]*domain.Tarea
	putErr  error
	getErr  error
	delErr  error
	scanErr error
}

func newMockTareaStore(log *opLog) *mockTareaStore {
	return &mockTareaStore{log: log, tareas: make(map[string]*domain.Tarea)}
}

func (m *mockTareaStore) Put(ctx context.Context, tarea *domain.Tarea) error {
	m.log.record("put:" + tarea.ID)
	if m.putErr != nil {
		return m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tarea
	m.tareas[tarea.ID] = &cp
	return nil
}

func (m *mockTareaStore) GetByID(ctx context.Context, id string) (*domain.Tarea, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tarea, ok := m.tareas[id]
	if !ok {
		return nil, store.ErrTareaNotFound
	}
	cp := *tarea
	return &cp, nil
}

func (m *mockTareaStore) Delete(ctx context.Context, id string) error {
	m.log.record("delete-record:" + id)
	if m.delErr != nil {
		return m.delErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tareas, id)
	return nil
}

func (m *mockTareaStore) ScanAll(ctx context.Context) ([]*domain.Tarea, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Tarea, 0, len(m.tareas))
	for _, tarea := range m.tareas {
		cp := *tarea
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockTareaStore) List(ctx context.Context, cursor string, limit int32) ([]*domain.Tarea, string, error) {
	tareas, err := m.ScanAll(ctx)
	return tareas, "", err
}

// mockObjectStore is an in-memory store.ObjectStore tracking uploads,
// deletions, and per-key download counters.
type mockObjectStore struct {
	log        *opLog
	mu         sync.Mutex
	objects    map[string]map[string]string // key -> metadata
	deleted    []string
	putErr     error
	delErr     map[string]error
	presignErr error
	incrErr    error
}

func newMockObjectStore(log *opLog) *mockObjectStore {
	return &mockObjectStore{
		log:     log,
		objects: make(map[string]map[string]string),
		delErr:  make(map[string]error),
	}
}

func (m *mockObjectStore) Put(ctx context.Context, key string, body io.Reader, contentType string, meta map[string]string) error {
	m.log.record("put-object:" + key)
	if m.putErr != nil {
		return m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(map[string]string, len(meta))
	for k, v := range meta {
		cp[k] = v
	}
	m.objects[key] = cp
	return nil
}

func (m *mockObjectStore) Delete(ctx context.Context, key string) error {
	m.log.record("delete-object:" + key)
	if err := m.delErr[key]; err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *mockObjectStore) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	if m.presignErr != nil {
		return "", m.presignErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return "", store.ErrFileNotFound
	}
	return "https://signed.example/" + key, nil
}

func (m *mockObjectStore) Metadata(ctx context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	meta, ok := m.objects[key]
	if !ok {
		return nil, store.ErrFileNotFound
	}
	return meta, nil
}

func (m *mockObjectStore) IncrementDownloadCount(ctx context.Context, key string) (int, error) {
	if m.incrErr != nil {
		return 0, m.incrErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	meta, ok := m.objects[key]
	if !ok {
		return 0, store.ErrFileNotFound
	}
	count, _ := strconv.Atoi(meta[store.MetaDownloadCount])
	count++
	meta[store.MetaDownloadCount] = strconv.Itoa(count)
	return count, nil
}

// mockNotifier records published messages.
type mockNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (m *mockNotifier) Publish(ctx context.Context, message string) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
	return nil
}

func (m *mockNotifier) published() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}
