package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shift codes with built-in template times. Organizations may define
// additional codes through ShiftTemplate rows.
const (
	ShiftMorning   = "MORNING"
	ShiftAfternoon = "AFTERNOON"
	ShiftNight     = "NIGHT"
)

// Schedule month statuses
const (
	MonthDraft     = "DRAFT"
	MonthPublished = "PUBLISHED"
)

// Shift and assignment statuses
const (
	ShiftPlanned       = "PLANNED"
	AssignmentAssigned = "ASSIGNED"
)

// Time off statuses; the generator only reads APPROVED rows.
const (
	TimeOffPending  = "PENDING"
	TimeOffApproved = "APPROVED"
	TimeOffRejected = "REJECTED"
)

// DateLayout is the canonical date format used for bookkeeping keys and
// warning messages.
const DateLayout = "2006-01-02"

// Organization is a tenant of the back office.
type Organization struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// ScheduleMonth identifies one organization + calendar month under
// generation. Created by back-office CRUD; the generator only reads it.
type ScheduleMonth struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID string    `gorm:"type:uuid;index;not null" json:"organization_id"`
	Year           int       `gorm:"not null" json:"year"`
	Month          int       `gorm:"not null" json:"month"`
	Status         string    `gorm:"default:DRAFT" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func (m *ScheduleMonth) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Range returns the first and last day of the calendar month, UTC.
func (m *ScheduleMonth) Range() (time.Time, time.Time) {
	first := time.Date(m.Year, time.Month(m.Month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last
}

// CoverageRule is a weekly recurring staffing requirement.
// Weekday follows time.Weekday: 0 = Sunday.
type CoverageRule struct {
	ID             string `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID string `gorm:"type:uuid;index;not null" json:"organization_id"`
	Weekday        int    `gorm:"not null" json:"weekday"`
	ShiftCode      string `gorm:"not null" json:"shift_code"`
	Station        string `json:"station,omitempty"`
	RequiredStaff  int    `gorm:"not null" json:"required_staff"`
}

func (r *CoverageRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// CoverageOverride is a date-specific requirement that supersedes the
// weekly rule with the same (shift_code, station) key on that date.
type CoverageOverride struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID string    `gorm:"type:uuid;index;not null" json:"organization_id"`
	Date           time.Time `gorm:"not null" json:"date"`
	ShiftCode      string    `gorm:"not null" json:"shift_code"`
	Station        string    `json:"station,omitempty"`
	RequiredStaff  int       `gorm:"not null" json:"required_staff"`
}

func (o *CoverageOverride) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// ShiftTemplate maps a shift code to default start/end times ("HH:MM")
// for one organization.
type ShiftTemplate struct {
	ID             string `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID string `gorm:"type:uuid;index;not null" json:"organization_id"`
	ShiftCode      string `gorm:"not null" json:"shift_code"`
	StartTime      string `gorm:"not null" json:"start_time"`
	EndTime        string `gorm:"not null" json:"end_time"`
}

func (t *ShiftTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Shift is a concrete scheduled work period, unique within its month by
// (date, shift_code, station).
type Shift struct {
	ID              string            `gorm:"type:uuid;primaryKey" json:"id"`
	ScheduleMonthID string            `gorm:"type:uuid;index;not null" json:"schedule_month_id"`
	Date            time.Time         `gorm:"index;not null" json:"date"`
	ShiftCode       string            `gorm:"not null" json:"shift_code"`
	Station         string            `json:"station,omitempty"`
	StartTime       string            `json:"start_time"`
	EndTime         string            `json:"end_time"`
	Status          string            `gorm:"default:PLANNED" json:"status"`
	Assignments     []ShiftAssignment `gorm:"foreignKey:ShiftID" json:"assignments,omitempty"`
}

func (s *Shift) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// LockedStaff returns the set of staff IDs locked into this shift.
func (s *Shift) LockedStaff() map[string]bool {
	locked := make(map[string]bool)
	for _, a := range s.Assignments {
		if a.Locked {
			locked[a.StaffID] = true
		}
	}
	return locked
}

// ShiftAssignment links one staff member to one shift. Locked rows are
// manually curated and must survive regeneration untouched.
type ShiftAssignment struct {
	ID      string `gorm:"type:uuid;primaryKey" json:"id"`
	ShiftID string `gorm:"type:uuid;index;not null" json:"shift_id"`
	StaffID string `gorm:"type:uuid;index;not null" json:"staff_id"`
	Status  string `gorm:"default:ASSIGNED" json:"status"`
	Locked  bool   `gorm:"default:false" json:"locked"`
}

func (a *ShiftAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// StaffProfile is an employee of the organization. Only active staff
// participate in generation.
type StaffProfile struct {
	ID             string `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID string `gorm:"type:uuid;index;not null" json:"organization_id"`
	Name           string `gorm:"not null" json:"name"`
	Active         bool   `gorm:"default:true" json:"active"`
}

func (p *StaffProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// StaffScheduleRule holds per-staff scheduling constraints.
// AllowedShiftCodes is comma separated; empty means unrestricted.
// MaxConsecutiveDays of 0 means no limit.
type StaffScheduleRule struct {
	ID                 string `gorm:"type:uuid;primaryKey" json:"id"`
	StaffID            string `gorm:"type:uuid;uniqueIndex;not null" json:"staff_id"`
	AllowedShiftCodes  string `json:"allowed_shift_codes"`
	MaxConsecutiveDays int    `json:"max_consecutive_days"`
}

func (r *StaffScheduleRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// StaffTimeOff is an inclusive date range during which the staff member
// must not be assigned. Only APPROVED rows block assignment.
type StaffTimeOff struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	StaffID   string    `gorm:"type:uuid;index;not null" json:"staff_id"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	Status    string    `gorm:"default:PENDING" json:"status"`
}

func (t *StaffTimeOff) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Covers reports whether the time off includes the given date.
func (t *StaffTimeOff) Covers(date time.Time) bool {
	return !date.Before(t.StartDate) && !date.After(t.EndDate)
}

// GenerateRequest is the engine invocation contract. From/To optionally
// narrow the regeneration window within the month.
type GenerateRequest struct {
	MonthID         string     `json:"month_id"`
	OrganizationIDs []string   `json:"organization_ids"`
	From            *time.Time `json:"from,omitempty"`
	To              *time.Time `json:"to,omitempty"`
}

// GenerateResult is what the engine returns: counts plus a diagnostic
// trail of non-fatal warnings.
type GenerateResult struct {
	CreatedShifts      int      `json:"created_shifts"`
	CreatedAssignments int      `json:"created_assignments"`
	Warnings           []string `json:"warnings"`
}
