package scheduler

import (
	"testing"
	"time"

	"github.com/hostelia/backoffice-api-go/pkg/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveCoverage_OverrideWins(t *testing.T) {
	monday := day(2026, time.June, 1)

	rules := []models.CoverageRule{
		{Weekday: int(time.Monday), ShiftCode: models.ShiftMorning, RequiredStaff: 1},
	}
	overrides := []models.CoverageOverride{
		{Date: monday, ShiftCode: models.ShiftMorning, RequiredStaff: 3},
	}

	reqs := ResolveCoverage(monday, rules, overrides)
	if len(reqs) != 1 {
		t.Fatalf("Expected 1 requirement, got %d", len(reqs))
	}
	if reqs[0].RequiredStaff != 3 {
		t.Errorf("Expected override to win with 3 staff, got %d", reqs[0].RequiredStaff)
	}
}

func TestResolveCoverage_OverrideOnlyMatchingDate(t *testing.T) {
	monday := day(2026, time.June, 1)
	nextMonday := day(2026, time.June, 8)

	rules := []models.CoverageRule{
		{Weekday: int(time.Monday), ShiftCode: models.ShiftMorning, RequiredStaff: 1},
	}
	overrides := []models.CoverageOverride{
		{Date: monday, ShiftCode: models.ShiftMorning, RequiredStaff: 3},
	}

	reqs := ResolveCoverage(nextMonday, rules, overrides)
	if len(reqs) != 1 || reqs[0].RequiredStaff != 1 {
		t.Errorf("Expected the day rule to apply on other Mondays, got %+v", reqs)
	}
}

func TestResolveCoverage_ZeroRequiredSkipped(t *testing.T) {
	monday := day(2026, time.June, 1)

	rules := []models.CoverageRule{
		{Weekday: int(time.Monday), ShiftCode: models.ShiftMorning, RequiredStaff: 1},
		{Weekday: int(time.Monday), ShiftCode: models.ShiftNight, RequiredStaff: 0},
	}
	// An override dropping the requirement to zero removes the shift need
	overrides := []models.CoverageOverride{
		{Date: monday, ShiftCode: models.ShiftMorning, RequiredStaff: 0},
	}

	reqs := ResolveCoverage(monday, rules, overrides)
	if len(reqs) != 0 {
		t.Errorf("Expected no requirements, got %+v", reqs)
	}
}

func TestResolveCoverage_StationsAreSeparateKeys(t *testing.T) {
	monday := day(2026, time.June, 1)

	rules := []models.CoverageRule{
		{Weekday: int(time.Monday), ShiftCode: models.ShiftMorning, Station: "BAR", RequiredStaff: 1},
		{Weekday: int(time.Monday), ShiftCode: models.ShiftMorning, Station: "KITCHEN", RequiredStaff: 2},
	}
	overrides := []models.CoverageOverride{
		{Date: monday, ShiftCode: models.ShiftMorning, Station: "BAR", RequiredStaff: 4},
	}

	reqs := ResolveCoverage(monday, rules, overrides)
	if len(reqs) != 2 {
		t.Fatalf("Expected 2 requirements, got %d", len(reqs))
	}
	for _, r := range reqs {
		switch r.Station {
		case "BAR":
			if r.RequiredStaff != 4 {
				t.Errorf("BAR: expected 4, got %d", r.RequiredStaff)
			}
		case "KITCHEN":
			if r.RequiredStaff != 2 {
				t.Errorf("KITCHEN: expected 2, got %d", r.RequiredStaff)
			}
		}
	}
}

func TestResolveCoverage_DefaultWeek(t *testing.T) {
	cases := []struct {
		date            time.Time
		morningRequired int
	}{
		{day(2026, time.June, 1), 1}, // Monday
		{day(2026, time.June, 4), 1}, // Thursday
		{day(2026, time.June, 5), 2}, // Friday
		{day(2026, time.June, 6), 2}, // Saturday
		{day(2026, time.June, 7), 1}, // Sunday
	}

	for _, tc := range cases {
		reqs := ResolveCoverage(tc.date, nil, nil)
		if len(reqs) != 2 {
			t.Fatalf("%s: expected 2 default requirements, got %d", tc.date.Format(models.DateLayout), len(reqs))
		}
		var morning, afternoon int
		for _, r := range reqs {
			switch r.ShiftCode {
			case models.ShiftMorning:
				morning = r.RequiredStaff
			case models.ShiftAfternoon:
				afternoon = r.RequiredStaff
			}
		}
		if morning != tc.morningRequired {
			t.Errorf("%s: expected %d MORNING, got %d", tc.date.Format(models.DateLayout), tc.morningRequired, morning)
		}
		if afternoon != 1 {
			t.Errorf("%s: expected 1 AFTERNOON, got %d", tc.date.Format(models.DateLayout), afternoon)
		}
	}
}
