package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/docdrop-io/apiserver/types"
)

// MemoryUserRepository is a map-backed user registry guarded by a single
// RWMutex. Good enough for dev mode and tests; it makes no consistency
// promises beyond serializing individual operations.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]types.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]types.User)}
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (types.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[email]
	if !ok {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryUserRepository) Create(_ context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Email]; exists {
		return types.User{}, ErrDuplicate
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.Email] = user
	return user, nil
}

func (r *MemoryUserRepository) SetVerified(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok {
		return ErrNotFound
	}
	user.Verified = true
	user.UpdatedAt = time.Now()
	r.users[email] = user
	return nil
}

// MemoryFileRepository is a map-backed file registry guarded by a single
// RWMutex.
type MemoryFileRepository struct {
	mu    sync.RWMutex
	files map[string]types.FileRecord
}

func NewMemoryFileRepository() *MemoryFileRepository {
	return &MemoryFileRepository{files: make(map[string]types.FileRecord)}
}

func (r *MemoryFileRepository) Get(_ context.Context, id string) (types.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.files[id]
	if !ok {
		return types.FileRecord{}, ErrNotFound
	}
	return record, nil
}

func (r *MemoryFileRepository) List(_ context.Context) ([]types.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]types.FileRecord, 0, len(r.files))
	for _, record := range r.files {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

func (r *MemoryFileRepository) Create(_ context.Context, record types.FileRecord) (types.FileRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.files[record.ID]; exists {
		return types.FileRecord{}, ErrDuplicate
	}
	record.CreatedAt = time.Now()
	r.files[record.ID] = record
	return record, nil
}

func (r *MemoryFileRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.files[id]; !ok {
		return ErrNotFound
	}
	delete(r.files, id)
	return nil
}
