package calls

import (
	"context"
	"errors"
	"testing"

	"carecall-platform/internal/calllog"
	"carecall-platform/internal/messages"
	"carecall-platform/internal/patients"
	"carecall-platform/internal/telephony"
)

type fakeProvider struct {
	name   string
	err    error
	callID string
	calls  []telephony.OutboundCallRequest
	sms    []telephony.SMSRequest
}

func (f *fakeProvider) Name() string                              { return f.name }
func (f *fakeProvider) HealthCheck(ctx context.Context) error     { return f.err }
func (f *fakeProvider) PlaceCall(ctx context.Context, req telephony.OutboundCallRequest) (telephony.OutboundCallResult, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return telephony.OutboundCallResult{}, f.err
	}
	return telephony.OutboundCallResult{Provider: f.name, ProviderCallID: f.callID}, nil
}
func (f *fakeProvider) SendSMS(ctx context.Context, req telephony.SMSRequest) (telephony.SMSResult, error) {
	f.sms = append(f.sms, req)
	if f.err != nil {
		return telephony.SMSResult{}, f.err
	}
	return telephony.SMSResult{Provider: f.name, ProviderMessageID: "SM1"}, nil
}

type fakeGuard struct {
	denied    bool
	acquired  []string
	released  []string
	returnErr error
}

func (g *fakeGuard) Acquire(ctx context.Context, key string) (bool, error) {
	g.acquired = append(g.acquired, key)
	return !g.denied, g.returnErr
}
func (g *fakeGuard) Release(ctx context.Context, key string) error {
	g.released = append(g.released, key)
	return nil
}

func newTestService(t *testing.T, voice []telephony.VoiceProvider, sms telephony.MessageProvider, guard DialGuard) (*Service, *patients.Service, *calllog.Service) {
	t.Helper()
	patientSvc := patients.NewService(patients.NewMemoryRepo(), nil, nil)
	logSvc := calllog.NewService(calllog.NewMemoryRepo())
	return NewService(patientSvc, logSvc, voice, sms, guard, nil), patientSvc, logSvc
}

func seedPatient(t *testing.T, svc *patients.Service) patients.Patient {
	t.Helper()
	p, err := svc.Create(context.Background(), patients.Patient{Name: "Maria", Phone: "+14436222793"})
	if err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	return p
}

func TestPlaceCall_HappyPath(t *testing.T) {
	provider := &fakeProvider{name: "twilio", callID: "CA1"}
	guard := &fakeGuard{}
	svc, patientSvc, logSvc := newTestService(t, []telephony.VoiceProvider{provider}, provider, guard)
	p := seedPatient(t, patientSvc)

	res, err := svc.PlaceCall(context.Background(), PlaceCallRequest{
		To:             "443-622-2793",
		PatientID:      p.ID,
		Category:       messages.CategoryMedicationReminder,
		MedicationName: "prenatal vitamins",
	})
	if err != nil {
		t.Fatalf("place call: %v", err)
	}
	if res.Provider != "twilio" || res.ProviderCallID != "CA1" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(provider.calls) != 1 || provider.calls[0].To != "+14436222793" {
		t.Fatalf("destination not normalized: %+v", provider.calls)
	}
	if len(guard.acquired) != 1 || guard.acquired[0] != "dial:+14436222793" {
		t.Fatalf("guard not taken per destination: %v", guard.acquired)
	}
	if len(guard.released) != 1 {
		t.Fatalf("guard not released: %v", guard.released)
	}

	l, err := logSvc.GetByID(context.Background(), res.CallLogID)
	if err != nil {
		t.Fatalf("log lookup: %v", err)
	}
	if l.Status != calllog.StatusCompleted || l.ProviderCallID != "CA1" {
		t.Fatalf("log not settled: %+v", l)
	}
	if l.MessageText != res.Message {
		t.Fatalf("log message mismatch: %q vs %q", l.MessageText, res.Message)
	}
}

func TestPlaceCall_InvalidDestination(t *testing.T) {
	svc, _, _ := newTestService(t, nil, nil, nil)
	if _, err := svc.PlaceCall(context.Background(), PlaceCallRequest{To: "abc"}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestPlaceCall_UnknownCategory(t *testing.T) {
	svc, _, _ := newTestService(t, nil, nil, nil)
	_, err := svc.PlaceCall(context.Background(), PlaceCallRequest{To: "443-622-2793", Category: "telemarketing"})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestPlaceCall_UnknownPatient(t *testing.T) {
	provider := &fakeProvider{name: "twilio", callID: "CA1"}
	svc, _, _ := newTestService(t, []telephony.VoiceProvider{provider}, nil, nil)

	_, err := svc.PlaceCall(context.Background(), PlaceCallRequest{To: "443-622-2793", PatientID: "missing"})
	if !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
	if len(provider.calls) != 0 {
		t.Fatalf("no call should be placed for unknown patient")
	}
}

func TestPlaceCall_FallsBackToNextProvider(t *testing.T) {
	down := &fakeProvider{name: "elevenlabs", err: telephony.ErrProviderUnavailable}
	up := &fakeProvider{name: "twilio", callID: "CA2"}
	svc, patientSvc, _ := newTestService(t, []telephony.VoiceProvider{down, up}, nil, nil)
	p := seedPatient(t, patientSvc)

	res, err := svc.PlaceCall(context.Background(), PlaceCallRequest{To: "443-622-2793", PatientID: p.ID})
	if err != nil {
		t.Fatalf("place call: %v", err)
	}
	if res.Provider != "twilio" {
		t.Fatalf("expected fallback provider, got %s", res.Provider)
	}
}

func TestPlaceCall_AllProvidersDownMarksFailed(t *testing.T) {
	down := &fakeProvider{name: "twilio", err: telephony.ErrProviderUnavailable}
	svc, patientSvc, logSvc := newTestService(t, []telephony.VoiceProvider{down}, nil, nil)
	p := seedPatient(t, patientSvc)

	_, err := svc.PlaceCall(context.Background(), PlaceCallRequest{To: "443-622-2793", PatientID: p.ID})
	if !errors.Is(err, telephony.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}

	logs, err := logSvc.ListByPatient(context.Background(), p.ID)
	if err != nil || len(logs) != 1 {
		t.Fatalf("expected 1 log: %v %d", err, len(logs))
	}
	if logs[0].Status != calllog.StatusFailed {
		t.Fatalf("log should be failed, got %s", logs[0].Status)
	}
}

func TestPlaceCall_VendorErrorMarksFailed(t *testing.T) {
	broken := &fakeProvider{name: "twilio", err: errors.New("vendor exploded")}
	svc, patientSvc, logSvc := newTestService(t, []telephony.VoiceProvider{broken}, nil, nil)
	p := seedPatient(t, patientSvc)

	if _, err := svc.PlaceCall(context.Background(), PlaceCallRequest{To: "443-622-2793", PatientID: p.ID}); err == nil {
		t.Fatalf("expected vendor error")
	}

	logs, _ := logSvc.ListByPatient(context.Background(), p.ID)
	if len(logs) != 1 || logs[0].Status != calllog.StatusFailed {
		t.Fatalf("log should be failed: %+v", logs)
	}
}

func TestPlaceCall_DialGuardRejects(t *testing.T) {
	provider := &fakeProvider{name: "twilio", callID: "CA1"}
	guard := &fakeGuard{denied: true}
	svc, patientSvc, logSvc := newTestService(t, []telephony.VoiceProvider{provider}, nil, guard)
	p := seedPatient(t, patientSvc)

	_, err := svc.PlaceCall(context.Background(), PlaceCallRequest{To: "443-622-2793", PatientID: p.ID})
	if !errors.Is(err, ErrDialInProgress) {
		t.Fatalf("expected ErrDialInProgress, got %v", err)
	}
	if len(provider.calls) != 0 {
		t.Fatalf("guarded destination must not be dialed")
	}
	logs, _ := logSvc.ListByPatient(context.Background(), p.ID)
	if len(logs) != 1 || logs[0].Status != calllog.StatusFailed {
		t.Fatalf("rejected dial should settle the log as failed: %+v", logs)
	}
}

func TestPlaceCall_GuardErrorProceedsUnguarded(t *testing.T) {
	provider := &fakeProvider{name: "twilio", callID: "CA1"}
	guard := &fakeGuard{returnErr: errors.New("redis down")}
	svc, patientSvc, _ := newTestService(t, []telephony.VoiceProvider{provider}, nil, guard)
	p := seedPatient(t, patientSvc)

	if _, err := svc.PlaceCall(context.Background(), PlaceCallRequest{To: "443-622-2793", PatientID: p.ID}); err != nil {
		t.Fatalf("guard outage must not block calls: %v", err)
	}
	if len(provider.calls) != 1 {
		t.Fatalf("call should still be placed")
	}
	if len(guard.released) != 0 {
		t.Fatalf("nothing to release when acquire failed")
	}
}

func TestSendSMS(t *testing.T) {
	provider := &fakeProvider{name: "twilio"}
	svc, _, _ := newTestService(t, nil, provider, nil)

	res, err := svc.SendSMS(context.Background(), "443-622-2793", "Your appointment is tomorrow.")
	if err != nil {
		t.Fatalf("send sms: %v", err)
	}
	if res.ProviderMessageID != "SM1" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(provider.sms) != 1 || provider.sms[0].To != "+14436222793" {
		t.Fatalf("destination not normalized: %+v", provider.sms)
	}

	if _, err := svc.SendSMS(context.Background(), "443-622-2793", ""); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("empty body should be invalid, got %v", err)
	}

	noSMS, _, _ := newTestService(t, nil, nil, nil)
	if _, err := noSMS.SendSMS(context.Background(), "443-622-2793", "hi"); !errors.Is(err, telephony.ErrProviderUnavailable) {
		t.Fatalf("nil provider should be unavailable, got %v", err)
	}
}
