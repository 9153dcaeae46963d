package reporting

import (
	"context"
	"testing"
	"time"

	"carecall-platform/internal/calllog"
)

func seedLogs(t *testing.T, repo *calllog.MemoryRepo, logs []calllog.CallLog) {
	t.Helper()
	for _, l := range logs {
		if err := repo.Create(context.Background(), l); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestReporting_CallsSummaryCountsByStatus(t *testing.T) {
	repo := calllog.NewMemoryRepo()
	now := time.Unix(1700000000, 0).UTC()
	done := now.Add(5 * time.Minute)
	seedLogs(t, repo, []calllog.CallLog{
		{ID: "l1", PatientID: "p1", CallType: "medication_reminder", Status: calllog.StatusCompleted, CompletedTime: &done, CreatedAt: now},
		{ID: "l2", PatientID: "p1", CallType: "medication_reminder", Status: calllog.StatusFailed, CreatedAt: now.Add(time.Minute)},
		{ID: "l3", PatientID: "p2", CallType: "weekly_checkin", Status: calllog.StatusCompleted, CreatedAt: now.Add(2 * time.Minute)},
		{ID: "l4", PatientID: "p2", CallType: "weekly_checkin", Status: calllog.StatusQueued, CreatedAt: now.Add(48 * time.Hour)},
	})

	svc := NewService(repo)
	out, err := svc.CallsSummary(context.Background(), CallsSummaryRequest{
		Range: TimeRange{From: now.Add(-time.Hour), To: now.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalCalls != 3 {
		t.Fatalf("expected 3 calls in range, got %d", out.TotalCalls)
	}
	if out.CompletedCalls != 2 || out.FailedCalls != 1 {
		t.Fatalf("unexpected status counts: %+v", out)
	}
	if out.ByCallType["medication_reminder"] != 2 || out.ByCallType["weekly_checkin"] != 1 {
		t.Fatalf("unexpected call type counts: %+v", out.ByCallType)
	}
	if out.CompletionRate < 0.66 || out.CompletionRate > 0.67 {
		t.Fatalf("unexpected completion rate: %f", out.CompletionRate)
	}
}

func TestReporting_CallsSummaryFiltersByCallType(t *testing.T) {
	repo := calllog.NewMemoryRepo()
	now := time.Unix(1700000000, 0).UTC()
	seedLogs(t, repo, []calllog.CallLog{
		{ID: "l1", PatientID: "p1", CallType: "medication_reminder", Status: calllog.StatusCompleted, CreatedAt: now},
		{ID: "l2", PatientID: "p1", CallType: "custom", Status: calllog.StatusCompleted, CreatedAt: now},
	})

	svc := NewService(repo)
	out, err := svc.CallsSummary(context.Background(), CallsSummaryRequest{
		Range:    TimeRange{From: now.Add(-time.Hour), To: now.Add(time.Hour)},
		CallType: "custom",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalCalls != 1 || out.ByCallType["custom"] != 1 {
		t.Fatalf("expected only custom calls, got %+v", out)
	}
}

func TestReporting_CallsSummaryRejectsBadRange(t *testing.T) {
	svc := NewService(calllog.NewMemoryRepo())
	_, err := svc.CallsSummary(context.Background(), CallsSummaryRequest{})
	if err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestReporting_PatientActivity(t *testing.T) {
	repo := calllog.NewMemoryRepo()
	now := time.Unix(1700000000, 0).UTC()
	first := now.Add(time.Minute)
	second := now.Add(10 * time.Minute)
	seedLogs(t, repo, []calllog.CallLog{
		{ID: "l1", PatientID: "p1", Status: calllog.StatusCompleted, CompletedTime: &first, CreatedAt: now},
		{ID: "l2", PatientID: "p1", Status: calllog.StatusCompleted, CompletedTime: &second, CreatedAt: now.Add(5 * time.Minute)},
		{ID: "l3", PatientID: "p1", Status: calllog.StatusFailed, CreatedAt: now.Add(6 * time.Minute)},
		{ID: "l4", PatientID: "p2", Status: calllog.StatusCompleted, CreatedAt: now},
	})

	svc := NewService(repo)
	out, err := svc.PatientActivity(context.Background(), PatientActivityRequest{PatientID: "p1"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalCalls != 3 || out.CompletedCalls != 2 || out.FailedCalls != 1 {
		t.Fatalf("unexpected activity: %+v", out)
	}
	if out.LastCompleted == nil || !out.LastCompleted.Equal(second) {
		t.Fatalf("expected last completed %v, got %v", second, out.LastCompleted)
	}
}
