package scheduler

import (
	"time"

	"github.com/hostelia/backoffice-api-go/pkg/models"
)

// ruleID tags each eligibility rule so the strict and relaxed rule sets
// can share one implementation per constraint.
type ruleID string

const (
	ruleNotLocked      ruleID = "not_locked_into_shift"
	ruleTimeOff        ruleID = "approved_time_off"
	ruleWeekendOff     ruleID = "weekend_off"
	ruleOneShiftPerDay ruleID = "one_shift_per_day"
	ruleAllowedCodes   ruleID = "allowed_shift_codes"
	ruleRestConflict   ruleID = "rest_conflict"
	ruleMaxConsecutive ruleID = "max_consecutive_days"
)

// eligibilityRule decides whether one staff member may take one shift.
type eligibilityRule struct {
	id     ruleID
	allows func(r *run, staffID string, shift *models.Shift) bool
}

// strictRules is the full constraint set used on the first pass.
func strictRules() []eligibilityRule {
	return []eligibilityRule{
		{ruleNotLocked, allowsNotLocked},
		{ruleTimeOff, allowsTimeOff},
		{ruleWeekendOff, allowsWeekendOff},
		{ruleOneShiftPerDay, allowsOneShiftPerDay},
		{ruleAllowedCodes, allowsShiftCode},
		{ruleRestConflict, allowsRest},
		{ruleMaxConsecutive, allowsConsecutive},
	}
}

// relaxedRules drops the soft constraints (weekend protection, rest
// turnaround, consecutive-day limit) and keeps the hard ones.
func relaxedRules() []eligibilityRule {
	return []eligibilityRule{
		{ruleNotLocked, allowsNotLocked},
		{ruleTimeOff, allowsTimeOff},
		{ruleOneShiftPerDay, allowsOneShiftPerDay},
		{ruleAllowedCodes, allowsShiftCode},
	}
}

func (r *run) eligible(staffID string, shift *models.Shift, rules []eligibilityRule) bool {
	for _, rule := range rules {
		if !rule.allows(r, staffID, shift) {
			return false
		}
	}
	return true
}

func allowsNotLocked(r *run, staffID string, shift *models.Shift) bool {
	return !shift.LockedStaff()[staffID]
}

func allowsTimeOff(r *run, staffID string, shift *models.Shift) bool {
	for _, to := range r.timeOff[staffID] {
		if to.Covers(shift.Date) {
			return false
		}
	}
	return true
}

func allowsWeekendOff(r *run, staffID string, shift *models.Shift) bool {
	return !r.weekendBlock[staffID][dateKey(shift.Date)]
}

func allowsOneShiftPerDay(r *run, staffID string, shift *models.Shift) bool {
	return !r.assignedDates[staffID][dateKey(shift.Date)]
}

func allowsShiftCode(r *run, staffID string, shift *models.Shift) bool {
	allowed := r.allowedCodes[staffID]
	if len(allowed) == 0 {
		return true
	}
	return allowed[shift.ShiftCode]
}

// allowsRest rejects a MORNING shift when the staff member worked an
// AFTERNOON the immediately preceding day: the turnaround would be too
// short.
func allowsRest(r *run, staffID string, shift *models.Shift) bool {
	if shift.ShiftCode != models.ShiftMorning {
		return true
	}
	prev := dateKey(shift.Date.AddDate(0, 0, -1))
	return !r.workedCodes[staffID][prev][models.ShiftAfternoon]
}

func allowsConsecutive(r *run, staffID string, shift *models.Shift) bool {
	max := r.maxConsecutive[staffID]
	if max <= 0 {
		return true
	}
	return consecutiveRunWith(r.assignedDates[staffID], shift.Date) <= max
}

// consecutiveRunWith computes the longest run of calendar-consecutive
// dates that would result from adding date to the set.
func consecutiveRunWith(dates map[string]bool, date time.Time) int {
	length := 1
	for d := date.AddDate(0, 0, -1); dates[dateKey(d)]; d = d.AddDate(0, 0, -1) {
		length++
	}
	for d := date.AddDate(0, 0, 1); dates[dateKey(d)]; d = d.AddDate(0, 0, 1) {
		length++
	}
	return length
}
