package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carecall-platform/internal/auth"
	"carecall-platform/internal/calllog"
	"carecall-platform/internal/calls"
	"carecall-platform/internal/config"
	"carecall-platform/internal/elevenlabs"
	"carecall-platform/internal/httpapi"
	"carecall-platform/internal/inbound"
	"carecall-platform/internal/patients"
	"carecall-platform/internal/reporting"
	"carecall-platform/internal/telephony"
	"carecall-platform/internal/twilioclient"
	"carecall-platform/pkg/logger"
	"carecall-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Provider clients. A disabled provider stays nil; its adapter then
	// reports unavailable instead of failing call placement outright.
	var twilioClient *twilioclient.Client
	if cfg.Twilio.Enabled {
		twilioClient, err = twilioclient.New(twilioclient.Config{
			AccountSID: cfg.Twilio.AccountSID,
			AuthToken:  cfg.Twilio.AuthToken,
			MaxRetries: 2,
			Logger:     log,
		})
		if err != nil {
			log.Error("twilio client init failed", "err", err)
			os.Exit(1)
		}
	}

	var elevenClient *elevenlabs.Client
	if cfg.ElevenLabs.Enabled {
		elevenClient, err = elevenlabs.New(elevenlabs.Config{
			APIKey:        cfg.ElevenLabs.APIKey,
			AgentID:       cfg.ElevenLabs.AgentID,
			PhoneNumberID: cfg.ElevenLabs.PhoneNumberID,
			MaxRetries:    2,
			Logger:        log,
		})
		if err != nil {
			log.Error("elevenlabs client init failed", "err", err)
			os.Exit(1)
		}
	}

	render := telephony.RenderSettings{Voice: cfg.Care.Voice, Language: cfg.Care.Language}

	twilioProvider := telephony.NewTwilioProvider(twilioClient, telephony.TwilioProviderOptions{
		FromNumber:     cfg.Twilio.FromNumber,
		WebhookBaseURL: cfg.Twilio.WebhookBaseURL,
		Render:         render,
	})
	elevenProvider := telephony.NewElevenLabsProvider(elevenClient)

	// Services
	patientSvc := patients.NewService(patients.NewPostgresRepo(db), rdb, log)
	callLogSvc := calllog.NewService(calllog.NewPostgresRepo(db))
	reportSvc := reporting.NewService(calllog.NewPostgresRepo(db))

	// Conversational agent first when enabled, programmable voice as fallback.
	voice := []telephony.VoiceProvider{elevenProvider, twilioProvider}
	callSvc := calls.NewService(patientSvc, callLogSvc, voice, twilioProvider, calls.NewRedisDialGuard(rdb), log)

	builder := inbound.ResponseBuilder{
		Patients:    patientSvc,
		OrgName:     cfg.Care.OrgName,
		EnableDTMF:  cfg.Care.EnableDTMF,
		KeypressURL: "/webhooks/twilio/keypress",
	}
	if cfg.ElevenLabs.Enabled {
		builder.Agent = elevenClient
	}

	webhook := telephony.TwilioWebhookHandler{Builder: builder, Render: render}
	handlers := httpapi.Handlers{
		Auth:     authManager,
		Calls:    callSvc,
		Patients: patientSvc,
		Logs:     callLogSvc,
		Reports:  reportSvc,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, auth.RequireAccessToken(authManager), handlers, webhook, db, rdb)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
