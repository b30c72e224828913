package scheduler

import (
	"sort"
	"time"

	"github.com/hostelia/backoffice-api-go/pkg/models"
)

// Requirement is the effective staffing need for one shift on one date.
type Requirement struct {
	ShiftCode     string
	Station       string
	RequiredStaff int
}

// coverageKey identifies a requirement within a single date.
func coverageKey(shiftCode, station string) string {
	return shiftCode + "|" + station
}

// ResolveCoverage merges weekly day rules with date overrides into the
// effective requirements for one date. Overrides win over day rules with
// the same (shift_code, station) key. If the organization has no day
// rules at all, a built-in default week applies. Requirements that end
// up with required_staff <= 0 are dropped.
//
// Weekdays follow time.Weekday (0 = Sunday) throughout.
func ResolveCoverage(date time.Time, rules []models.CoverageRule, overrides []models.CoverageOverride) []Requirement {
	weekday := int(date.Weekday())
	merged := make(map[string]Requirement)

	if len(rules) == 0 {
		for _, r := range defaultWeekCoverage(date.Weekday()) {
			merged[coverageKey(r.ShiftCode, r.Station)] = r
		}
	} else {
		for _, r := range rules {
			if r.Weekday != weekday {
				continue
			}
			merged[coverageKey(r.ShiftCode, r.Station)] = Requirement{
				ShiftCode:     r.ShiftCode,
				Station:       r.Station,
				RequiredStaff: r.RequiredStaff,
			}
		}
	}

	dateKey := date.Format(models.DateLayout)
	for _, o := range overrides {
		if o.Date.Format(models.DateLayout) != dateKey {
			continue
		}
		merged[coverageKey(o.ShiftCode, o.Station)] = Requirement{
			ShiftCode:     o.ShiftCode,
			Station:       o.Station,
			RequiredStaff: o.RequiredStaff,
		}
	}

	out := make([]Requirement, 0, len(merged))
	for _, r := range merged {
		if r.RequiredStaff <= 0 {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ShiftCode != out[j].ShiftCode {
			return out[i].ShiftCode < out[j].ShiftCode
		}
		return out[i].Station < out[j].Station
	})
	return out
}

// defaultWeekCoverage is the built-in schedule used when an organization
// has configured no day rules: one MORNING and one AFTERNOON every day,
// with a second MORNING slot on Fridays and Saturdays.
func defaultWeekCoverage(weekday time.Weekday) []Requirement {
	morning := 1
	if weekday == time.Friday || weekday == time.Saturday {
		morning = 2
	}
	return []Requirement{
		{ShiftCode: models.ShiftMorning, RequiredStaff: morning},
		{ShiftCode: models.ShiftAfternoon, RequiredStaff: 1},
	}
}
