package calllog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service owns call-log lifecycle: create once, then status transitions.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// CreateRequest seeds one call-log row.
type CreateRequest struct {
	PatientID     string
	CallType      string
	Status        Status
	MessageText   string
	ScheduledTime time.Time
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (CallLog, error) {
	if req.PatientID == "" || req.MessageText == "" {
		return CallLog{}, ErrInvalidRecord
	}
	if req.Status == "" {
		req.Status = StatusScheduled
	}
	if !ValidStatus(req.Status) {
		return CallLog{}, ErrInvalidRecord
	}

	now := s.clock().UTC()
	l := CallLog{
		ID:            uuid.NewString(),
		PatientID:     req.PatientID,
		CallType:      req.CallType,
		Status:        req.Status,
		MessageText:   req.MessageText,
		ScheduledTime: req.ScheduledTime,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return CallLog{}, err
	}
	return l, nil
}

// MarkCompleted records a successful call and its provider identifier.
func (s *Service) MarkCompleted(ctx context.Context, id, provider, providerCallID string) error {
	now := s.clock().UTC()
	return s.repo.UpdateStatus(ctx, id, StatusUpdate{
		Status:         StatusCompleted,
		Provider:       provider,
		ProviderCallID: providerCallID,
		CompletedTime:  &now,
	}, now)
}

// MarkFailed records a failed call attempt.
func (s *Service) MarkFailed(ctx context.Context, id string) error {
	now := s.clock().UTC()
	return s.repo.UpdateStatus(ctx, id, StatusUpdate{Status: StatusFailed}, now)
}

func (s *Service) GetByID(ctx context.Context, id string) (CallLog, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]CallLog, error) {
	return s.repo.ListByPatient(ctx, patientID)
}
