package patients

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is a simple in-memory repository useful for tests.
// It is not intended for production use.

type MemoryRepo struct {
	mu       sync.Mutex
	byID     map[string]Patient
	ordering []string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: map[string]Patient{}}
}

func (r *MemoryRepo) Create(ctx context.Context, p Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.ordering {
		if id != p.ID && r.byID[id].Phone == p.Phone {
			return ErrDuplicatePhone
		}
	}
	if _, ok := r.byID[p.ID]; !ok {
		r.ordering = append(r.ordering, p.ID)
	}
	r.byID[p.ID] = p
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return Patient{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepo) GetByPhone(ctx context.Context, phone string) (Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.ordering {
		if p := r.byID[id]; p.Phone == phone {
			return p, nil
		}
	}
	return Patient{}, ErrNotFound
}

func (r *MemoryRepo) List(ctx context.Context) ([]Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Patient, 0, len(r.ordering))
	for _, id := range r.ordering {
		out = append(out, r.byID[id])
	}
	return out, nil
}

func (r *MemoryRepo) UpdateCallSchedule(ctx context.Context, id, schedule string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	p.CallSchedule = schedule
	p.UpdatedAt = time.Now().UTC()
	r.byID[id] = p
	return nil
}
