package patients

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Service fronts the patient repository with a Redis phone-lookup cache.
//
// The inbound voice webhook resolves every caller by phone number, so that
// lookup is the hot path. Cache misses and cache failures both fall through
// to the repository; Redis being down degrades latency, not correctness.
type Service struct {
	repo     Repository
	rdb      *redis.Client
	cacheTTL time.Duration
	log      *slog.Logger
	clock    func() time.Time
}

var ErrInvalidPatient = errors.New("patients: invalid patient")

func NewService(repo Repository, rdb *redis.Client, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:     repo,
		rdb:      rdb,
		cacheTTL: 5 * time.Minute,
		log:      log,
		clock:    time.Now,
	}
}

func (s *Service) Create(ctx context.Context, p Patient) (Patient, error) {
	if p.Name == "" || p.Phone == "" {
		return Patient{}, ErrInvalidPatient
	}
	now := s.clock().UTC()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.repo.Create(ctx, p); err != nil {
		return Patient{}, err
	}
	s.invalidatePhone(ctx, p.Phone)
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Patient, error) {
	return s.repo.List(ctx)
}

// GetByPhone resolves a caller to a patient, consulting the cache first.
func (s *Service) GetByPhone(ctx context.Context, phone string) (Patient, error) {
	if phone == "" {
		return Patient{}, ErrNotFound
	}

	if p, ok := s.cacheGet(ctx, phone); ok {
		return p, nil
	}

	p, err := s.repo.GetByPhone(ctx, phone)
	if err != nil {
		return Patient{}, err
	}
	s.cacheSet(ctx, p)
	return p, nil
}

// UpdateCallSchedule replaces a patient's stored schedule and drops the cache
// entry so the next inbound call sees the new schedule.
func (s *Service) UpdateCallSchedule(ctx context.Context, id, schedule string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateCallSchedule(ctx, id, schedule); err != nil {
		return err
	}
	s.invalidatePhone(ctx, p.Phone)
	return nil
}

// Schedule returns the parsed call schedule; malformed data is empty, never an error.
func (s *Service) Schedule(p Patient) []ScheduledCall {
	return ParseSchedule(p.CallSchedule)
}

func cacheKey(phone string) string { return "patients:phone:" + phone }

func (s *Service) cacheGet(ctx context.Context, phone string) (Patient, bool) {
	if s.rdb == nil {
		return Patient{}, false
	}
	raw, err := s.rdb.Get(ctx, cacheKey(phone)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Debug("patient cache read failed", "err", err)
		}
		return Patient{}, false
	}
	var p Patient
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.log.Debug("patient cache decode failed", "err", err)
		return Patient{}, false
	}
	return p, true
}

func (s *Service) cacheSet(ctx context.Context, p Patient) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, cacheKey(p.Phone), raw, s.cacheTTL).Err(); err != nil {
		s.log.Debug("patient cache write failed", "err", err)
	}
}

func (s *Service) invalidatePhone(ctx context.Context, phone string) {
	if s.rdb == nil || phone == "" {
		return
	}
	if err := s.rdb.Del(ctx, cacheKey(phone)).Err(); err != nil {
		s.log.Debug("patient cache invalidate failed", "err", err)
	}
}
