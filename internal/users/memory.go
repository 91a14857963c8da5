package users

import (
	"context"
	"strconv"
	"sync"

	"github.com/linglong/blog-admin/internal/models"
)

// MemoryRepository keeps users in a map. Used in tests and as a
// fallback when no MongoDB is configured.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*models.User
	seq   int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*models.User)}
}

func (r *MemoryRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.store[username]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryRepository) Upsert(ctx context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.store[u.Username]
	if ok {
		existing.HashedPassword = u.HashedPassword
		existing.UpdatedAt = u.UpdatedAt
		cp := *existing
		return &cp, nil
	}
	r.seq++
	cp := *u
	cp.ID = "user_" + strconv.Itoa(r.seq)
	r.store[u.Username] = &cp
	out := cp
	return &out, nil
}
