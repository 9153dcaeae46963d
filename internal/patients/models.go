package patients

import "time"

// Patient is the stored care-recipient record.
//
// This service is read-mostly: patients are created by intake tooling and the
// seeding command; the calling flows only look them up.
//
// CallSchedule holds the serialized upcoming-call sequence exactly as written
// by the scheduler that owns it. It is parsed tolerantly on read
// (see ParseSchedule); malformed data never surfaces as an error.
type Patient struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`

	// Phone is E.164.
	Phone string `json:"phone" db:"phone"`

	GestationalAgeWeeks int      `json:"gestational_age_weeks,omitempty" db:"gestational_age_weeks"`
	RiskFactors         []string `json:"risk_factors,omitempty" db:"risk_factors"`
	Medications         []string `json:"medications,omitempty" db:"medications"`
	RiskCategory        string   `json:"risk_category,omitempty" db:"risk_category"`

	CallSchedule string `json:"call_schedule,omitempty" db:"call_schedule"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
