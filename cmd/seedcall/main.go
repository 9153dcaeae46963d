package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"carecall-platform/internal/calllog"
	"carecall-platform/internal/config"
	"carecall-platform/internal/messages"
	"carecall-platform/internal/patients"
	"carecall-platform/internal/telephony"
	"carecall-platform/internal/twilioclient"
	"carecall-platform/pkg/logger"
	"carecall-platform/pkg/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// seedcall creates (or reuses) a test patient, records a call log scheduled
// for the next 7:31 AM, then places the call immediately with an inline call
// document so no public webhook URL is needed.
func main() {
	var (
		phone = flag.String("phone", "443-622-2793", "destination phone number, any format")
		name  = flag.String("name", "Test Patient", "patient name to seed")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, cfg, log, *phone, *name); err != nil {
		log.Error("seedcall failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger, rawPhone, name string) error {
	if !cfg.Twilio.Enabled {
		return errors.New("TWILIO_ENABLED must be set for seedcall")
	}

	db, err := utils.OpenPostgres(ctx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer db.Close()

	patientSvc := patients.NewService(patients.NewPostgresRepo(db), nil, log)
	callLogSvc := calllog.NewService(calllog.NewPostgresRepo(db))

	phone := telephony.FormatE164(rawPhone)
	if !telephony.IsE164(phone) {
		return fmt.Errorf("phone %q did not normalize to E.164", rawPhone)
	}
	log.Info("phone normalized", "phone", phone)

	p, err := patientSvc.GetByPhone(ctx, phone)
	switch {
	case err == nil:
		log.Info("patient already exists", "name", p.Name, "id", p.ID)
	case errors.Is(err, patients.ErrNotFound):
		p, err = patientSvc.Create(ctx, patients.Patient{
			Name:                name,
			Phone:               phone,
			GestationalAgeWeeks: 20,
			RiskCategory:        "low",
		})
		if err != nil {
			return fmt.Errorf("create patient: %w", err)
		}
		log.Info("patient created", "id", p.ID)
	default:
		return fmt.Errorf("patient lookup: %w", err)
	}

	// Next 7:31 AM local time; tomorrow if it already passed.
	now := time.Now()
	callTime := time.Date(now.Year(), now.Month(), now.Day(), 7, 31, 0, 0, now.Location())
	if callTime.Before(now) {
		callTime = callTime.Add(24 * time.Hour)
	}
	log.Info("call scheduled", "at", callTime.Format("2006-01-02 15:04:05"))

	messageText := messages.Build(messages.BuildRequest{
		Category: messages.CategoryWeeklyCheckin,
		Name:     p.Name,
	})

	l, err := callLogSvc.Create(ctx, calllog.CreateRequest{
		PatientID:     p.ID,
		CallType:      "test_call",
		Status:        calllog.StatusScheduled,
		MessageText:   messageText,
		ScheduledTime: callTime.UTC(),
	})
	if err != nil {
		return fmt.Errorf("create call log: %w", err)
	}
	log.Info("call log created", "id", l.ID)

	client, err := twilioclient.New(twilioclient.Config{
		AccountSID: cfg.Twilio.AccountSID,
		AuthToken:  cfg.Twilio.AuthToken,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("twilio client: %w", err)
	}

	// Inline call document; webhook mode would require a public SERVER_URL.
	provider := telephony.NewTwilioProvider(client, telephony.TwilioProviderOptions{
		FromNumber: cfg.Twilio.FromNumber,
		Render:     telephony.RenderSettings{Voice: cfg.Care.Voice, Language: cfg.Care.Language},
	})

	log.Info("placing call now", "to", phone, "from", cfg.Twilio.FromNumber)
	res, err := provider.PlaceCall(ctx, telephony.OutboundCallRequest{
		To:        phone,
		Message:   messageText,
		PatientID: p.ID,
	})
	if err != nil {
		if markErr := callLogSvc.MarkFailed(ctx, l.ID); markErr != nil {
			log.Error("call log failure update failed", "err", markErr)
		}
		return fmt.Errorf("place call: %w", err)
	}

	if err := callLogSvc.MarkCompleted(ctx, l.ID, res.Provider, res.ProviderCallID); err != nil {
		log.Error("call log completion update failed", "err", err)
	}
	log.Info("call initiated", "call_sid", res.ProviderCallID)
	return nil
}
