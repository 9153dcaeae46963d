package calllog

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("calllog: not found")
	ErrInvalidRecord = errors.New("calllog: invalid record")
)

// StatusUpdate carries the mutable fields of a status transition.
type StatusUpdate struct {
	Status         Status
	Provider       string
	ProviderCallID string
	CompletedTime  *time.Time
}

// Repository is the persistence contract for call logs.
// Rows are append-then-update: created once, then only status fields change.
type Repository interface {
	Create(ctx context.Context, l CallLog) error
	GetByID(ctx context.Context, id string) (CallLog, error)
	UpdateStatus(ctx context.Context, id string, u StatusUpdate, now time.Time) error
	ListByPatient(ctx context.Context, patientID string) ([]CallLog, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]CallLog, error)
}
