package reporting

import (
	"context"
	"errors"
	"time"

	"carecall-platform/internal/calllog"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts data access for reporting. Both calllog repositories
// satisfy it, so summaries run against whatever store the API is wired to.
type Repository interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]calllog.CallLog, error)
	ListByPatient(ctx context.Context, patientID string) ([]calllog.CallLog, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) CallsSummary(ctx context.Context, req CallsSummaryRequest) (CallsSummary, error) {
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return CallsSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return CallsSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListBetween(ctx, req.Range.From, req.Range.To)
	if err != nil {
		return CallsSummary{}, err
	}

	out := CallsSummary{CallType: req.CallType, ByCallType: map[string]int{}}
	for _, l := range rows {
		if req.CallType != "" && l.CallType != req.CallType {
			continue
		}
		out.TotalCalls++
		out.ByCallType[l.CallType]++
		switch l.Status {
		case calllog.StatusScheduled:
			out.ScheduledCalls++
		case calllog.StatusQueued:
			out.QueuedCalls++
		case calllog.StatusInProgress:
			out.InProgressCalls++
		case calllog.StatusCompleted:
			out.CompletedCalls++
		case calllog.StatusFailed:
			out.FailedCalls++
		}
	}
	if out.TotalCalls > 0 {
		out.CompletionRate = float64(out.CompletedCalls) / float64(out.TotalCalls)
	}
	return out, nil
}

func (s *Service) PatientActivity(ctx context.Context, req PatientActivityRequest) (PatientActivity, error) {
	if req.PatientID == "" {
		return PatientActivity{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return PatientActivity{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListByPatient(ctx, req.PatientID)
	if err != nil {
		return PatientActivity{}, err
	}

	out := PatientActivity{PatientID: req.PatientID}
	for _, l := range rows {
		if !req.Range.From.IsZero() && l.CreatedAt.Before(req.Range.From) {
			continue
		}
		if !req.Range.To.IsZero() && !l.CreatedAt.Before(req.Range.To) {
			continue
		}
		out.TotalCalls++
		switch l.Status {
		case calllog.StatusCompleted:
			out.CompletedCalls++
			if l.CompletedTime != nil && (out.LastCompleted == nil || l.CompletedTime.After(*out.LastCompleted)) {
				t := *l.CompletedTime
				out.LastCompleted = &t
			}
		case calllog.StatusFailed:
			out.FailedCalls++
		}
	}
	return out, nil
}
