package calls

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"carecall-platform/internal/calllog"
	"carecall-platform/internal/messages"
	"carecall-platform/internal/patients"
	"carecall-platform/internal/telephony"
)

// Service orchestrates outbound patient calls and SMS.
//
// Flow per call: normalize the destination, build the spoken message, record
// a call-log row, take the per-destination dial guard, hand the call to the
// first available voice provider, then settle the log row.
//
// Provider order expresses preference: the conversational agent first when
// enabled, programmable voice as fallback. An unavailable provider is skipped,
// not an error; only all-unavailable degrades to ErrProviderUnavailable.

var (
	ErrInvalidRequest  = errors.New("calls: invalid request")
	ErrDialInProgress  = errors.New("calls: dial already in progress for destination")
	ErrPatientNotFound = errors.New("calls: patient not found")
)

// PatientDirectory is the narrow read capability this service needs.
type PatientDirectory interface {
	GetByID(ctx context.Context, id string) (patients.Patient, error)
}

// CallRecorder persists call attempts and their outcomes.
type CallRecorder interface {
	Create(ctx context.Context, req calllog.CreateRequest) (calllog.CallLog, error)
	MarkCompleted(ctx context.Context, id, provider, providerCallID string) error
	MarkFailed(ctx context.Context, id string) error
}

// DialGuard caps concurrent dials per destination.
type DialGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type Service struct {
	directory PatientDirectory
	recorder  CallRecorder
	voice     []telephony.VoiceProvider
	sms       telephony.MessageProvider
	guard     DialGuard
	log       *slog.Logger
	clock     func() time.Time
}

func NewService(
	directory PatientDirectory,
	recorder CallRecorder,
	voice []telephony.VoiceProvider,
	sms telephony.MessageProvider,
	guard DialGuard,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		directory: directory,
		recorder:  recorder,
		voice:     voice,
		sms:       sms,
		guard:     guard,
		log:       log,
		clock:     time.Now,
	}
}

// PlaceCallRequest is constructed per invocation and never persisted.
type PlaceCallRequest struct {
	To        string            `json:"to"`
	PatientID string            `json:"patient_id,omitempty"`
	Category  messages.Category `json:"category,omitempty"`

	MedicationName  string `json:"medication_name,omitempty"`
	OverrideMessage string `json:"override_message,omitempty"`
}

type PlaceCallResult struct {
	CallLogID      string `json:"call_log_id,omitempty"`
	Provider       string `json:"provider"`
	ProviderCallID string `json:"provider_call_id"`
	Message        string `json:"message"`
}

func (s *Service) PlaceCall(ctx context.Context, req PlaceCallRequest) (PlaceCallResult, error) {
	to := telephony.FormatE164(req.To)
	if !telephony.IsE164(to) {
		return PlaceCallResult{}, fmt.Errorf("%w: destination %q", ErrInvalidRequest, req.To)
	}
	if req.Category != "" && !messages.KnownCategory(req.Category) {
		return PlaceCallResult{}, fmt.Errorf("%w: category %q", ErrInvalidRequest, req.Category)
	}

	var name string
	if req.PatientID != "" {
		p, err := s.directory.GetByID(ctx, req.PatientID)
		if err != nil {
			if errors.Is(err, patients.ErrNotFound) {
				return PlaceCallResult{}, ErrPatientNotFound
			}
			return PlaceCallResult{}, fmt.Errorf("calls: patient lookup: %w", err)
		}
		name = p.Name
	}

	message := messages.Build(messages.BuildRequest{
		Category:       req.Category,
		Name:           name,
		MedicationName: req.MedicationName,
		Override:       req.OverrideMessage,
	})

	var logID string
	if req.PatientID != "" {
		l, err := s.recorder.Create(ctx, calllog.CreateRequest{
			PatientID:     req.PatientID,
			CallType:      callType(req.Category),
			Status:        calllog.StatusQueued,
			MessageText:   message,
			ScheduledTime: s.clock().UTC(),
		})
		if err != nil {
			return PlaceCallResult{}, fmt.Errorf("calls: record call: %w", err)
		}
		logID = l.ID
	}

	if s.guard != nil {
		ok, err := s.guard.Acquire(ctx, "dial:"+to)
		if err != nil {
			s.log.Warn("dial guard unavailable, proceeding unguarded", "err", err)
		} else if !ok {
			s.settleFailure(ctx, logID)
			return PlaceCallResult{}, ErrDialInProgress
		} else {
			defer func() {
				if relErr := s.guard.Release(ctx, "dial:"+to); relErr != nil {
					s.log.Warn("dial guard release failed", "err", relErr)
				}
			}()
		}
	}

	res, err := s.dial(ctx, telephony.OutboundCallRequest{To: to, Message: message, PatientID: req.PatientID})
	if err != nil {
		s.settleFailure(ctx, logID)
		return PlaceCallResult{}, err
	}

	if logID != "" {
		if err := s.recorder.MarkCompleted(ctx, logID, res.Provider, res.ProviderCallID); err != nil {
			s.log.Error("call placed but log update failed", "call_log_id", logID, "err", err)
		}
	}
	s.log.Info("call placed", "to", to, "provider", res.Provider, "provider_call_id", res.ProviderCallID)

	return PlaceCallResult{
		CallLogID:      logID,
		Provider:       res.Provider,
		ProviderCallID: res.ProviderCallID,
		Message:        message,
	}, nil
}

func (s *Service) dial(ctx context.Context, req telephony.OutboundCallRequest) (telephony.OutboundCallResult, error) {
	for _, p := range s.voice {
		res, err := p.PlaceCall(ctx, req)
		if err == nil {
			return res, nil
		}
		if errors.Is(err, telephony.ErrProviderUnavailable) {
			s.log.Debug("voice provider unavailable", "provider", p.Name())
			continue
		}
		s.log.Error("voice provider call failed", "provider", p.Name(), "err", err)
		return telephony.OutboundCallResult{}, err
	}
	return telephony.OutboundCallResult{}, telephony.ErrProviderUnavailable
}

func (s *Service) settleFailure(ctx context.Context, logID string) {
	if logID == "" {
		return
	}
	if err := s.recorder.MarkFailed(ctx, logID); err != nil {
		s.log.Error("call log failure update failed", "call_log_id", logID, "err", err)
	}
}

// SendSMS delivers a text message through the message provider.
func (s *Service) SendSMS(ctx context.Context, to, body string) (telephony.SMSResult, error) {
	dest := telephony.FormatE164(to)
	if !telephony.IsE164(dest) {
		return telephony.SMSResult{}, fmt.Errorf("%w: destination %q", ErrInvalidRequest, to)
	}
	if body == "" {
		return telephony.SMSResult{}, fmt.Errorf("%w: empty body", ErrInvalidRequest)
	}
	if s.sms == nil {
		return telephony.SMSResult{}, telephony.ErrProviderUnavailable
	}
	res, err := s.sms.SendSMS(ctx, telephony.SMSRequest{To: dest, Body: body})
	if err != nil {
		return telephony.SMSResult{}, err
	}
	s.log.Info("sms sent", "to", dest, "provider", res.Provider, "provider_message_id", res.ProviderMessageID)
	return res, nil
}

func callType(c messages.Category) string {
	if c == "" {
		return string(messages.CategoryCustom)
	}
	return string(c)
}
