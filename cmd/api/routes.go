package main

import (
	"database/sql"
	"time"

	"carecall-platform/internal/auth"
	"carecall-platform/internal/httpapi"
	"carecall-platform/internal/rbac"
	"carecall-platform/internal/telephony"
	"carecall-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(
	r *gin.Engine,
	authMW gin.HandlerFunc,
	h httpapi.Handlers,
	webhook telephony.TwilioWebhookHandler,
	db *sql.DB,
	rdb *redis.Client,
) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), db, 2*time.Second); err != nil {
			c.JSON(503, gin.H{"status": "degraded", "postgres": err.Error()})
			return
		}
		if err := rdb.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(503, gin.H{"status": "degraded", "redis": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Provider webhooks (public).
	// NOTE: These endpoints should be protected by Twilio signature validation in production.
	r.POST("/webhooks/twilio/voice", webhook.HandleInboundCall)
	r.POST("/webhooks/twilio/keypress", webhook.HandleKeypress)
	r.POST("/webhooks/twilio/recording", webhook.HandleRecording)

	// Token issuance stays outside the auth middleware.
	r.POST("/v1/auth/login", h.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		v1.GET("/me", func(c *gin.Context) {
			uid, _ := auth.UserID(c.Request.Context())
			role, _ := auth.Role(c.Request.Context())
			c.JSON(200, gin.H{"user_id": uid, "role": role})
		})

		callGroup := v1.Group("/calls")
		callGroup.Use(rbac.RequireAnyRole(rbac.RoleCareCoordinator, rbac.RoleClinician))
		{
			callGroup.POST("", h.PlaceCall)
		}

		messages := v1.Group("/messages")
		messages.Use(rbac.RequireAnyRole(rbac.RoleCareCoordinator, rbac.RoleClinician))
		{
			messages.POST("", h.SendSMS)
		}

		patientGroup := v1.Group("/patients")
		patientGroup.Use(rbac.RequireAnyRole(rbac.RoleCareCoordinator, rbac.RoleClinician, rbac.RoleAnalyst))
		{
			patientGroup.GET("", h.ListPatients)
			patientGroup.POST("", h.CreatePatient)
			patientGroup.GET("/:patient_id", h.GetPatient)
			patientGroup.PUT("/:patient_id/schedule", h.UpdatePatientSchedule)
			patientGroup.GET("/:patient_id/calls", h.GetPatientCalls)
		}

		reports := v1.Group("/reports")
		reports.Use(rbac.RequireAnyRole(rbac.RoleAnalyst))
		{
			reports.GET("/calls", h.CallsReport)
			reports.GET("/patients/:patient_id", h.PatientActivityReport)
		}
	}
}
