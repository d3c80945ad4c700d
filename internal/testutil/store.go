// Package testutil holds in-memory fakes shared by the package tests.
package testutil

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"

	"github.com/ecommerce-api/internal/events"
	"github.com/ecommerce-api/internal/model"
	"github.com/google/uuid"
)

// MemoryStore is a repo.DocumentStore kept in process memory. Records go
// through a JSON round trip so stored values look like decoded documents.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]model.Document

	DBName string
	// Err fails every read and write when set.
	Err     error
	PingErr error
	ListErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]model.Document), DBName: "memory"}
}

func (m *MemoryStore) CreateDocument(ctx context.Context, collection string, record any) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return "", err
	}
	doc := model.Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", err
	}

	id := uuid.New()
	doc[model.NativeIDKey] = id

	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[collection] = append(m.docs[collection], doc)
	return id.String(), nil
}

func (m *MemoryStore) GetDocuments(ctx context.Context, collection string, filter map[string]any, limit int64) ([]model.Document, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Document
	for _, doc := range m.docs[collection] {
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
		if !matches(doc, filter) {
			continue
		}
		cp := make(model.Document, len(doc))
		for k, v := range doc {
			cp[k] = v
		}
		out = append(out, cp)
	}
	return out, nil
}

func (m *MemoryStore) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs[collection])
}

func (m *MemoryStore) Name() string {
	return m.DBName
}

func (m *MemoryStore) ListCollectionNames(ctx context.Context) ([]string, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.docs))
	for name := range m.docs {
		names = append(names, name)
	}
	return names, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return m.PingErr
}

func (m *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func matches(doc model.Document, filter map[string]any) bool {
	for k, want := range filter {
		if !reflect.DeepEqual(doc[k], want) {
			return false
		}
	}
	return true
}

// RecordingPublisher remembers every published event and the channel it
// would have gone to.
type RecordingPublisher struct {
	mu       sync.Mutex
	Channels []string
	Events   []model.CreatedEvent
}

func (p *RecordingPublisher) PublishCreated(ctx context.Context, event model.CreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Channels = append(p.Channels, events.CreatedChannel(event.Collection))
	p.Events = append(p.Events, event)
	return nil
}
