package scheduler

import (
	"time"

	"github.com/hostelia/backoffice-api-go/pkg/models"
)

// weekendPair is a Saturday plus the following Sunday, both in range.
type weekendPair struct {
	saturday time.Time
	sunday   time.Time
}

// weekendPairsIn enumerates the weekend pairs of the range in
// chronological order.
func weekendPairsIn(from, to time.Time) []weekendPair {
	var pairs []weekendPair
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.Weekday() != time.Saturday {
			continue
		}
		sunday := d.AddDate(0, 0, 1)
		if sunday.After(to) {
			continue
		}
		pairs = append(pairs, weekendPair{saturday: d, sunday: sunday})
	}
	return pairs
}

// planWeekends reserves, per staff member, at most one full weekend on
// which the strict pass must not assign them. Staff whose approved time
// off already covers an entire weekend pair are skipped; otherwise the
// first pair free of both time off and locked assignments is blocked.
func planWeekends(
	from, to time.Time,
	staff []models.StaffProfile,
	timeOff map[string][]models.StaffTimeOff,
	shiftsByDate map[string][]*models.Shift,
) map[string]map[string]bool {
	pairs := weekendPairsIn(from, to)
	blocked := make(map[string]map[string]bool, len(staff))
	if len(pairs) == 0 {
		return blocked
	}

	for _, member := range staff {
		if hasWeekendTimeOff(timeOff[member.ID], pairs) {
			continue
		}
		for _, pair := range pairs {
			if timeOffOn(timeOff[member.ID], pair.saturday) || timeOffOn(timeOff[member.ID], pair.sunday) {
				continue
			}
			if lockedOn(shiftsByDate, pair.saturday, member.ID) || lockedOn(shiftsByDate, pair.sunday, member.ID) {
				continue
			}
			blocked[member.ID] = map[string]bool{
				dateKey(pair.saturday): true,
				dateKey(pair.sunday):   true,
			}
			break
		}
	}
	return blocked
}

func hasWeekendTimeOff(timeOff []models.StaffTimeOff, pairs []weekendPair) bool {
	for _, pair := range pairs {
		if timeOffOn(timeOff, pair.saturday) && timeOffOn(timeOff, pair.sunday) {
			return true
		}
	}
	return false
}

func timeOffOn(timeOff []models.StaffTimeOff, date time.Time) bool {
	for _, to := range timeOff {
		if to.Covers(date) {
			return true
		}
	}
	return false
}

// lockedOn reports whether the staff member holds a locked assignment on
// any MORNING or AFTERNOON shift of the date.
func lockedOn(shiftsByDate map[string][]*models.Shift, date time.Time, staffID string) bool {
	for _, shift := range shiftsByDate[dateKey(date)] {
		if shift.ShiftCode != models.ShiftMorning && shift.ShiftCode != models.ShiftAfternoon {
			continue
		}
		if shift.LockedStaff()[staffID] {
			return true
		}
	}
	return false
}
