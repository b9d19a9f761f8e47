package docstore

import (
	"context"
	"sort"
	"sync"

	"github.com/Veraticus/the-spice-must-sync/internal/service"
)

// Memory is an in-process DocumentStore. It is safe for concurrent use and is
// meant for tests and offline demos.
type Memory struct {
	docs map[string]service.Document
	mu   sync.RWMutex
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]service.Document)}
}

// Get implements service.DocumentStore.
func (m *Memory) Get(_ context.Context, path string) (service.Document, error) {
	_, id, err := checkDocumentPath(path)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[path]
	if !ok {
		return nil, nil
	}
	return withID(cloneDocument(doc), id), nil
}

// Set implements service.DocumentStore.
func (m *Memory) Set(_ context.Context, path string, doc service.Document, opts ...service.SetOption) error {
	if _, _, err := checkDocumentPath(path); err != nil {
		return err
	}
	o := service.ApplySetOptions(opts...)

	m.mu.Lock()
	defer m.mu.Unlock()

	if o.Merge {
		m.docs[path] = mergeDocument(m.docs[path], doc)
		return nil
	}
	m.docs[path] = cloneDocument(doc)
	return nil
}

// Delete implements service.DocumentStore.
func (m *Memory) Delete(_ context.Context, path string) error {
	if _, _, err := checkDocumentPath(path); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.docs, path)
	return nil
}

// List implements service.DocumentStore. Documents are returned in path order.
func (m *Memory) List(_ context.Context, collectionPath string) ([]service.Document, error) {
	if err := checkCollectionPath(collectionPath); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var paths []string
	for p := range m.docs {
		collection, _, err := checkDocumentPath(p)
		if err == nil && collection == collectionPath {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	docs := make([]service.Document, 0, len(paths))
	for _, p := range paths {
		_, id, _ := checkDocumentPath(p)
		docs = append(docs, withID(cloneDocument(m.docs[p]), id))
	}
	return docs, nil
}

// Len returns the number of stored documents.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}
