// Package repository stores learning resources.
package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/neurolearn/shell/internal/domain/resource"
	"github.com/swaggest/usecase"
	"github.com/swaggest/usecase/status"
)

// ErrNotFound is the cause of a failed lookup.
var ErrNotFound = errors.New("resource not found")

func notFound(id resource.Identity) error {
	return usecase.Error{
		StatusCode: status.NotFound,
		Value:      ErrNotFound,
		Context: map[string]interface{}{
			"id": id.ID,
		},
	}
}

// Memory keeps resources in process memory.
type Memory struct {
	mu     sync.Mutex
	lastID int
	list   map[resource.Identity]resource.Entity
}

// ResourceCreator provides resource.Creator.
func (m *Memory) ResourceCreator() resource.Creator {
	return m
}

// ResourceFinder provides resource.Finder.
func (m *Memory) ResourceFinder() resource.Finder {
	return m
}

// Find lists resources in id order.
func (m *Memory) Find(ctx context.Context) ([]resource.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]resource.Entity, 0, len(m.list))
	for _, r := range m.list {
		result = append(result, r)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// FindByID reads a resource.
func (m *Memory) FindByID(ctx context.Context, id resource.Identity) (resource.Entity, error) {
	if err := ctx.Err(); err != nil {
		return resource.Entity{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r, found := m.list[id]
	if !found {
		return resource.Entity{}, notFound(id)
	}

	return r, nil
}

// Create stores a resource under the next id.
func (m *Memory) Create(ctx context.Context, value resource.Value) (resource.Entity, error) {
	if err := ctx.Err(); err != nil {
		return resource.Entity{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastID++

	if m.list == nil {
		m.list = make(map[resource.Identity]resource.Entity, 1)
	}

	r := resource.Entity{}
	r.Value = value
	r.ID = m.lastID
	r.CreatedAt = time.Now().UTC()
	m.list[r.Identity] = r

	return r, nil
}
