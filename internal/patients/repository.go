package patients

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("patients: not found")
	ErrDuplicatePhone = errors.New("patients: phone already registered")
)

// Repository is the persistence contract for patient records.
type Repository interface {
	Create(ctx context.Context, p Patient) error
	GetByID(ctx context.Context, id string) (Patient, error)
	GetByPhone(ctx context.Context, phone string) (Patient, error)
	List(ctx context.Context) ([]Patient, error)
	UpdateCallSchedule(ctx context.Context, id, schedule string) error
}
