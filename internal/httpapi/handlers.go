package httpapi

import (
	"errors"
	"net/http"
	"time"

	"carecall-platform/internal/auth"
	"carecall-platform/internal/calllog"
	"carecall-platform/internal/calls"
	"carecall-platform/internal/patients"
	"carecall-platform/internal/rbac"
	"carecall-platform/internal/reporting"
	"carecall-platform/internal/telephony"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth     *auth.Manager
	Calls    *calls.Service
	Patients *patients.Service
	Logs     *calllog.Service
	Reports  *reporting.Service
}

// --- Auth ---

type loginRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, role required"})
		return
	}
	if !rbac.KnownRole(req.Role) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Calls ---

// PlaceCall starts an outbound call to a patient or a raw destination number.
func (h Handlers) PlaceCall(c *gin.Context) {
	if h.Calls == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "calls not configured"})
		return
	}
	var req calls.PlaceCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	res, err := h.Calls.PlaceCall(c.Request.Context(), req)
	if err != nil {
		abortCallError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type sendSMSRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

func (h Handlers) SendSMS(c *gin.Context) {
	if h.Calls == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "calls not configured"})
		return
	}
	var req sendSMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	res, err := h.Calls.SendSMS(c.Request.Context(), req.To, req.Body)
	if err != nil {
		abortCallError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func abortCallError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, calls.ErrInvalidRequest):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, calls.ErrPatientNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "patient not found"})
	case errors.Is(err, calls.ErrDialInProgress):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "dial already in progress"})
	case errors.Is(err, telephony.ErrProviderUnavailable):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "no voice provider available"})
	default:
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "call placement failed"})
	}
}

// --- Patients ---

type createPatientRequest struct {
	Name                string   `json:"name"`
	Phone               string   `json:"phone"`
	GestationalAgeWeeks int      `json:"gestational_age_weeks,omitempty"`
	RiskFactors         []string `json:"risk_factors,omitempty"`
	Medications         []string `json:"medications,omitempty"`
	RiskCategory        string   `json:"risk_category,omitempty"`
	CallSchedule        string   `json:"call_schedule,omitempty"`
}

func (h Handlers) CreatePatient(c *gin.Context) {
	if h.Patients == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "patients not configured"})
		return
	}
	var req createPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := h.Patients.Create(c.Request.Context(), patients.Patient{
		Name:                req.Name,
		Phone:               telephony.FormatE164(req.Phone),
		GestationalAgeWeeks: req.GestationalAgeWeeks,
		RiskFactors:         req.RiskFactors,
		Medications:         req.Medications,
		RiskCategory:        req.RiskCategory,
		CallSchedule:        req.CallSchedule,
	})
	if err != nil {
		if errors.Is(err, patients.ErrInvalidPatient) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "name and phone required"})
			return
		}
		if errors.Is(err, patients.ErrDuplicatePhone) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "phone already registered"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "patient creation failed"})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h Handlers) ListPatients(c *gin.Context) {
	if h.Patients == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "patients not configured"})
		return
	}
	list, err := h.Patients.List(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "patient list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"patients": list})
}

func (h Handlers) GetPatient(c *gin.Context) {
	if h.Patients == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "patients not configured"})
		return
	}
	p, err := h.Patients.GetByID(c.Request.Context(), c.Param("patient_id"))
	if err != nil {
		if errors.Is(err, patients.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "patient not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "patient lookup failed"})
		return
	}
	c.JSON(http.StatusOK, p)
}

type updateScheduleRequest struct {
	CallSchedule string `json:"call_schedule"`
}

func (h Handlers) UpdatePatientSchedule(c *gin.Context) {
	if h.Patients == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "patients not configured"})
		return
	}
	var req updateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := h.Patients.UpdateCallSchedule(c.Request.Context(), c.Param("patient_id"), req.CallSchedule); err != nil {
		if errors.Is(err, patients.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "patient not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "schedule update failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Handlers) GetPatientCalls(c *gin.Context) {
	if h.Logs == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call logs not configured"})
		return
	}
	logs, err := h.Logs.ListByPatient(c.Request.Context(), c.Param("patient_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call log list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": logs})
}

// --- Reports ---

func (h Handlers) CallsReport(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}
	rng, err := parseRange(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.Reports.CallsSummary(c.Request.Context(), reporting.CallsSummaryRequest{
		Range:    rng,
		CallType: c.Query("call_type"),
	})
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid range"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) PatientActivityReport(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}
	var rng reporting.TimeRange
	if c.Query("from") != "" || c.Query("to") != "" {
		parsed, err := parseRange(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		rng = parsed
	}
	out, err := h.Reports.PatientActivity(c.Request.Context(), reporting.PatientActivityRequest{
		PatientID: c.Param("patient_id"),
		Range:     rng,
	})
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "patient_id required"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func parseRange(c *gin.Context) (reporting.TimeRange, error) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		return reporting.TimeRange{}, errors.New("from must be RFC3339")
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		return reporting.TimeRange{}, errors.New("to must be RFC3339")
	}
	return reporting.TimeRange{From: from, To: to}, nil
}
