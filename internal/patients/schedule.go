package patients

import (
	"encoding/json"
	"strings"
	"time"
)

// ScheduledCall is one entry of a patient's stored call schedule.
type ScheduledCall struct {
	ScheduledTime time.Time `json:"scheduled_time"`
	MessageText   string    `json:"message_text"`
}

type rawScheduleEntry struct {
	ScheduledTime string `json:"scheduled_time"`
	MessageText   string `json:"message_text"`
}

// ParseSchedule decodes a serialized call schedule.
//
// Failure semantics: malformed input of any shape yields an empty schedule,
// never an error. Individual entries that are not objects, or whose timestamp
// does not parse, are dropped; the rest survive in stored order.
func ParseSchedule(raw string) []ScheduledCall {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}

	out := make([]ScheduledCall, 0, len(items))
	for _, item := range items {
		var e rawScheduleEntry
		if err := json.Unmarshal(item, &e); err != nil {
			continue
		}
		t, ok := parseScheduleTime(e.ScheduledTime)
		if !ok {
			continue
		}
		out = append(out, ScheduledCall{ScheduledTime: t, MessageText: e.MessageText})
	}
	return out
}

// NextUpcoming returns the first entry strictly after now, in stored order.
// Stored order is schedule order; entries are deliberately not sorted.
func NextUpcoming(entries []ScheduledCall, now time.Time) (ScheduledCall, bool) {
	for _, e := range entries {
		if e.ScheduledTime.After(now) {
			return e, true
		}
	}
	return ScheduledCall{}, false
}

// Schedules are written by tooling that may or may not include a timezone.
var scheduleTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseScheduleTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range scheduleTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
