package messages

import (
	"strings"
	"testing"
)

func TestBuild_OverrideWinsVerbatim(t *testing.T) {
	out := Build(BuildRequest{
		Category: CategoryMedicationReminder,
		Name:     "Maria",
		Override: "Custom script, read exactly.",
	})
	if out != "Custom script, read exactly." {
		t.Fatalf("override not verbatim: %q", out)
	}
}

func TestBuild_MedicationReminder(t *testing.T) {
	out := Build(BuildRequest{
		Category:       CategoryMedicationReminder,
		Name:           "Maria",
		MedicationName: "prenatal vitamins",
	})
	if !strings.Contains(out, "Maria") || !strings.Contains(out, "prenatal vitamins") {
		t.Fatalf("expected name and medication in message, got %q", out)
	}
	if !strings.Contains(out, "remember to take") {
		t.Fatalf("unexpected template: %q", out)
	}
}

func TestBuild_MedicationWithoutMedicationFallsBack(t *testing.T) {
	out := Build(BuildRequest{Category: CategoryMedicationReminder, Name: "Maria"})
	if strings.Contains(out, "remember to take") {
		t.Fatalf("medication template without a medication: %q", out)
	}
	if !strings.Contains(out, "Maria") {
		t.Fatalf("expected personalized fallback, got %q", out)
	}
}

func TestBuild_CheckinCategories(t *testing.T) {
	for _, cat := range []Category{CategoryWeeklyCheckin, CategoryGeneralCheckin} {
		out := Build(BuildRequest{Category: cat, Name: "Maria"})
		if !strings.Contains(out, "How are you feeling today?") {
			t.Fatalf("category %s: unexpected template %q", cat, out)
		}
	}
}

func TestBuild_NeverEmpty(t *testing.T) {
	cases := []BuildRequest{
		{},
		{Category: CategoryCustom},
		{Category: CategoryMedicationReminder},
		{Name: "  "},
		{Override: "   "},
	}
	for i, req := range cases {
		if out := Build(req); strings.TrimSpace(out) == "" {
			t.Fatalf("case %d: empty message", i)
		}
	}
}

func TestKnownCategory(t *testing.T) {
	if !KnownCategory(CategoryWeeklyCheckin) {
		t.Fatalf("weekly_checkin should be known")
	}
	if KnownCategory("telemarketing") {
		t.Fatalf("unknown category accepted")
	}
}
