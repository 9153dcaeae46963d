package patients

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newCachedService(t *testing.T) (*Service, *MemoryRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	repo := NewMemoryRepo()
	return NewService(repo, rdb, nil), repo, mr
}

func TestService_CreateAssignsIDAndTimestamps(t *testing.T) {
	svc, _, _ := newCachedService(t)

	p, err := svc.Create(context.Background(), Patient{Name: "Maria", Phone: "+15550001111"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("expected generated id")
	}
	if p.CreatedAt.IsZero() || !p.CreatedAt.Equal(p.UpdatedAt) {
		t.Fatalf("unexpected timestamps: %+v", p)
	}
	if p.CreatedAt.Location() != time.UTC {
		t.Fatalf("timestamps must be UTC, got %v", p.CreatedAt.Location())
	}
}

func TestService_CreateRejectsMissingFields(t *testing.T) {
	svc, _, _ := newCachedService(t)

	if _, err := svc.Create(context.Background(), Patient{Name: "Maria"}); !errors.Is(err, ErrInvalidPatient) {
		t.Fatalf("expected ErrInvalidPatient, got %v", err)
	}
	if _, err := svc.Create(context.Background(), Patient{Phone: "+1555"}); !errors.Is(err, ErrInvalidPatient) {
		t.Fatalf("expected ErrInvalidPatient, got %v", err)
	}
}

func TestService_CreateRejectsDuplicatePhone(t *testing.T) {
	svc, _, _ := newCachedService(t)

	if _, err := svc.Create(context.Background(), Patient{Name: "Maria", Phone: "+15550001111"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(context.Background(), Patient{Name: "Ana", Phone: "+15550001111"}); !errors.Is(err, ErrDuplicatePhone) {
		t.Fatalf("expected ErrDuplicatePhone, got %v", err)
	}
}

func TestService_GetByPhoneUsesCache(t *testing.T) {
	svc, repo, mr := newCachedService(t)

	created, err := svc.Create(context.Background(), Patient{Name: "Maria", Phone: "+15550001111"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// First lookup populates the cache.
	got, err := svc.GetByPhone(context.Background(), "+15550001111")
	if err != nil || got.ID != created.ID {
		t.Fatalf("lookup: %v %+v", err, got)
	}
	if !mr.Exists("patients:phone:+15550001111") {
		t.Fatalf("expected cache entry after lookup")
	}

	// Second lookup is served from cache even if the row disappears.
	delete(repo.byID, created.ID)
	repo.ordering = nil
	got, err = svc.GetByPhone(context.Background(), "+15550001111")
	if err != nil || got.ID != created.ID {
		t.Fatalf("cached lookup: %v %+v", err, got)
	}
}

func TestService_GetByPhoneSurvivesRedisOutage(t *testing.T) {
	svc, _, mr := newCachedService(t)

	if _, err := svc.Create(context.Background(), Patient{Name: "Maria", Phone: "+15550001111"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	mr.Close()

	got, err := svc.GetByPhone(context.Background(), "+15550001111")
	if err != nil {
		t.Fatalf("lookup must fall through to repository: %v", err)
	}
	if got.Name != "Maria" {
		t.Fatalf("unexpected patient: %+v", got)
	}
}

func TestService_GetByPhoneUnknownCaller(t *testing.T) {
	svc, _, _ := newCachedService(t)

	if _, err := svc.GetByPhone(context.Background(), "+19999999999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GetByPhone(context.Background(), ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty phone is ErrNotFound, got %v", err)
	}
}

func TestService_UpdateCallScheduleInvalidatesCache(t *testing.T) {
	svc, _, mr := newCachedService(t)

	created, err := svc.Create(context.Background(), Patient{Name: "Maria", Phone: "+15550001111"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.GetByPhone(context.Background(), "+15550001111"); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	schedule := `[{"scheduled_time":"2026-03-11T08:00:00Z","message_text":"Take your medicine"}]`
	if err := svc.UpdateCallSchedule(context.Background(), created.ID, schedule); err != nil {
		t.Fatalf("update schedule: %v", err)
	}
	if mr.Exists("patients:phone:+15550001111") {
		t.Fatalf("cache entry should be invalidated after schedule update")
	}

	got, err := svc.GetByPhone(context.Background(), "+15550001111")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if parsed := svc.Schedule(got); len(parsed) != 1 || parsed[0].MessageText != "Take your medicine" {
		t.Fatalf("unexpected schedule: %+v", parsed)
	}
}
