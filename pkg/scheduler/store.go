package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/hostelia/backoffice-api-go/pkg/models"
)

// ErrMonthNotFound is returned when the schedule month does not exist or
// does not belong to the caller's organization(s). It is the only error
// that aborts a generation run.
var ErrMonthNotFound = errors.New("schedule month not found")

// Store is the data layer the generator runs against. Reads load the
// month's world state; writes apply the purge-then-refill cycle.
type Store interface {
	ScheduleMonth(ctx context.Context, monthID string, orgIDs []string) (*models.ScheduleMonth, error)
	CoverageRules(ctx context.Context, orgID string) ([]models.CoverageRule, error)
	CoverageOverrides(ctx context.Context, orgID string, from, to time.Time) ([]models.CoverageOverride, error)
	ShiftTemplates(ctx context.Context, orgID string) ([]models.ShiftTemplate, error)
	ActiveStaff(ctx context.Context, orgID string) ([]models.StaffProfile, error)
	StaffScheduleRules(ctx context.Context, orgID string) ([]models.StaffScheduleRule, error)
	ApprovedTimeOff(ctx context.Context, staffIDs []string, from, to time.Time) ([]models.StaffTimeOff, error)
	ShiftsInRange(ctx context.Context, monthID string, from, to time.Time) ([]models.Shift, error)

	DeleteUnlockedAssignments(ctx context.Context, shiftIDs []string) error
	DeleteShift(ctx context.Context, shiftID string) error
	CreateShift(ctx context.Context, shift *models.Shift) error
	CreateAssignments(ctx context.Context, assignments []models.ShiftAssignment) error
}
