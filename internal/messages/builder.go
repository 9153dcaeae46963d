package messages

import (
	"fmt"
	"strings"
)

// Call message templating.
//
// Contract:
// - Pure function of its inputs; no side effects, no error path.
// - Always returns non-empty text.
// - An override wins verbatim; otherwise the category plus available patient
//   fields pick the template.

type Category string

const (
	CategoryMedicationReminder Category = "medication_reminder"
	CategoryWeeklyCheckin      Category = "weekly_checkin"
	CategoryGeneralCheckin     Category = "general_checkin"
	CategoryCustom             Category = "custom"
)

// KnownCategory reports whether c is one of the supported call categories.
func KnownCategory(c Category) bool {
	switch c {
	case CategoryMedicationReminder, CategoryWeeklyCheckin, CategoryGeneralCheckin, CategoryCustom:
		return true
	default:
		return false
	}
}

type BuildRequest struct {
	Category       Category
	Name           string
	MedicationName string
	Override       string
}

// Build selects the spoken message for an outbound call.
func Build(req BuildRequest) string {
	if o := strings.TrimSpace(req.Override); o != "" {
		return o
	}

	name := strings.TrimSpace(req.Name)
	medication := strings.TrimSpace(req.MedicationName)

	switch {
	case req.Category == CategoryMedicationReminder && name != "" && medication != "":
		return fmt.Sprintf("Hello %s, this is your health assistant. Please remember to take your %s today.", name, medication)
	case (req.Category == CategoryWeeklyCheckin || req.Category == CategoryGeneralCheckin) && name != "":
		return fmt.Sprintf("Hello %s, this is your health assistant. How are you feeling today? I'm calling to check in on your health and see if you have any questions or concerns.", name)
	case name != "":
		return fmt.Sprintf("Hello %s, this is your health assistant. How can I help you today?", name)
	default:
		return "Hello, this is your health assistant. How can I help you today?"
	}
}
