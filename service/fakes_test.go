package service_test

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"

	"emperror.dev/errors"

	"github.com/tnqbao/gau-filestore-service/entity"
	"github.com/tnqbao/gau-filestore-service/service"
)

type memBlobs struct {
	mu   sync.Mutex
	data map[string][]byte

	existsAlways bool
	existsCalls  int
	createErrs   []error
	removeErr    error
}

func (m *memBlobs) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

func newMemBlobs() *memBlobs {
	return &memBlobs{data: map[string][]byte{}}
}

func (m *memBlobs) Create(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.createErrs) > 0 {
		err := m.createErrs[0]
		m.createErrs = m.createErrs[1:]
		return err
	}
	if _, ok := m.data[name]; ok {
		return service.ErrBlobExists
	}
	m.data[name] = append([]byte(nil), data...)
	return nil
}

func (m *memBlobs) Exists(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.existsCalls++
	if m.existsAlways {
		return true, nil
	}
	_, ok := m.data[name]
	return ok, nil
}

func (m *memBlobs) Open(_ context.Context, name string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.data[name]
	if !ok {
		return nil, service.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memBlobs) Remove(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.data, name)
	return nil
}

func (m *memBlobs) Names(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.data))
	for name := range m.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

type memRecords struct {
	mu      sync.Mutex
	records []entity.FileRecord
	nextID  uint

	createErr error
	// beforeCreate runs ahead of every insert.
	beforeCreate func()
}

func newMemRecords() *memRecords {
	return &memRecords{}
}

func (m *memRecords) Create(ctx context.Context, record *entity.FileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.beforeCreate != nil {
		m.beforeCreate()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.createErr != nil {
		return m.createErr
	}
	for _, r := range m.records {
		if r.Name == record.Name {
			return service.ErrConflict
		}
	}
	m.nextID++
	record.ID = m.nextID
	m.records = append(m.records, *record)
	return nil
}

func (m *memRecords) FindByName(_ context.Context, name string) (*entity.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.records {
		if r.Name == name {
			found := r
			return &found, nil
		}
	}
	return nil, errors.WithDetails(service.ErrNotFound, "name", name)
}

func (m *memRecords) ListAll(context.Context) ([]entity.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]entity.FileRecord(nil), m.records...), nil
}

func (m *memRecords) DeleteByName(_ context.Context, name string, then func() error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, r := range m.records {
		if r.Name != name {
			continue
		}
		if err := then(); err != nil {
			return err
		}
		m.records = append(m.records[:i], m.records[i+1:]...)
		return nil
	}
	return service.ErrNotFound
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.FileEvent
	names  []string
}

func (p *recordingPublisher) PublishFileEvent(_ context.Context, event entity.FileEvent, record entity.FileRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)
	p.names = append(p.names, record.Name)
	return nil
}

func ptr(s string) *string {
	return &s
}
