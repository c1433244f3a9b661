package devserver

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devhell/todo/internal/model"
)

// ErrNotFound is returned for unknown ids or ids owned by another user.
var ErrNotFound = errors.New("todo not found")

// Store keeps todos per owner. List returns them in creation order.
type Store interface {
	List(ctx context.Context, owner string) ([]model.Todo, error)
	Get(ctx context.Context, owner, id string) (model.Todo, error)
	Create(ctx context.Context, owner string, in model.TodoInput) (model.Todo, error)
	Update(ctx context.Context, owner, id string, in model.TodoInput) (model.Todo, error)
	Delete(ctx context.Context, owner, id string) error
}

// MemoryStore is a Store held in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	todos map[string][]model.Todo // owner -> todos in creation order
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		todos: make(map[string][]model.Todo),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) List(ctx context.Context, owner string) ([]model.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Todo, len(s.todos[owner]))
	copy(out, s.todos[owner])
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, owner, id string) (model.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.todos[owner] {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Todo{}, ErrNotFound
}

func (s *MemoryStore) Create(ctx context.Context, owner string, in model.TodoInput) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	t := model.Todo{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.todos[owner] = append(s.todos[owner], t)
	return t, nil
}

func (s *MemoryStore) Update(ctx context.Context, owner, id string, in model.TodoInput) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.todos[owner] {
		if t.ID == id {
			t.Title = in.Title
			t.Description = in.Description
			t.UpdatedAt = s.now()
			s.todos[owner][i] = t
			return t, nil
		}
	}
	return model.Todo{}, ErrNotFound
}

func (s *MemoryStore) Delete(ctx context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	todos := s.todos[owner]
	for i, t := range todos {
		if t.ID == id {
			s.todos[owner] = append(todos[:i], todos[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
