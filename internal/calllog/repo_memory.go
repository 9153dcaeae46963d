package calllog

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is a simple in-memory repository useful for tests.
// It is not intended for production use.

type MemoryRepo struct {
	mu   sync.Mutex
	logs map[string]CallLog
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{logs: map[string]CallLog{}}
}

func (r *MemoryRepo) Create(ctx context.Context, l CallLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs[l.ID] = l
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (CallLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.logs[id]
	if !ok {
		return CallLog{}, ErrNotFound
	}
	return l, nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, id string, u StatusUpdate, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.logs[id]
	if !ok {
		return ErrNotFound
	}
	l.Status = u.Status
	if u.Provider != "" {
		l.Provider = u.Provider
	}
	if u.ProviderCallID != "" {
		l.ProviderCallID = u.ProviderCallID
	}
	if u.CompletedTime != nil {
		l.CompletedTime = u.CompletedTime
	}
	l.UpdatedAt = now
	r.logs[id] = l
	return nil
}

func (r *MemoryRepo) ListByPatient(ctx context.Context, patientID string) ([]CallLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []CallLog
	for _, l := range r.logs {
		if l.PatientID == patientID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepo) ListBetween(ctx context.Context, from, to time.Time) ([]CallLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []CallLog
	for _, l := range r.logs {
		if !l.CreatedAt.Before(from) && l.CreatedAt.Before(to) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
