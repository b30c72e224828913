package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hostelia/backoffice-api-go/pkg/models"
	"github.com/hostelia/backoffice-api-go/pkg/scheduler"
)

// GormStore implements scheduler.Store on a gorm database.
type GormStore struct {
	DB *gorm.DB
}

// New creates a store over the given database handle.
func New(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) ScheduleMonth(ctx context.Context, monthID string, orgIDs []string) (*models.ScheduleMonth, error) {
	q := s.DB.WithContext(ctx).Where("id = ?", monthID)
	if len(orgIDs) > 0 {
		q = q.Where("organization_id IN ?", orgIDs)
	}

	var month models.ScheduleMonth
	if err := q.First(&month).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", scheduler.ErrMonthNotFound, monthID)
		}
		return nil, err
	}
	return &month, nil
}

func (s *GormStore) CoverageRules(ctx context.Context, orgID string) ([]models.CoverageRule, error) {
	var rules []models.CoverageRule
	err := s.DB.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("weekday, shift_code, station").
		Find(&rules).Error
	return rules, err
}

func (s *GormStore) CoverageOverrides(ctx context.Context, orgID string, from, to time.Time) ([]models.CoverageOverride, error) {
	var overrides []models.CoverageOverride
	err := s.DB.WithContext(ctx).
		Where("organization_id = ? AND date BETWEEN ? AND ?", orgID, from, to).
		Order("date, shift_code, station").
		Find(&overrides).Error
	return overrides, err
}

func (s *GormStore) ShiftTemplates(ctx context.Context, orgID string) ([]models.ShiftTemplate, error) {
	var templates []models.ShiftTemplate
	err := s.DB.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Find(&templates).Error
	return templates, err
}

func (s *GormStore) ActiveStaff(ctx context.Context, orgID string) ([]models.StaffProfile, error) {
	var staff []models.StaffProfile
	err := s.DB.WithContext(ctx).
		Where("organization_id = ? AND active = ?", orgID, true).
		Order("name, id").
		Find(&staff).Error
	return staff, err
}

func (s *GormStore) StaffScheduleRules(ctx context.Context, orgID string) ([]models.StaffScheduleRule, error) {
	var rules []models.StaffScheduleRule
	err := s.DB.WithContext(ctx).
		Joins("JOIN staff_profiles ON staff_profiles.id = staff_schedule_rules.staff_id").
		Where("staff_profiles.organization_id = ?", orgID).
		Find(&rules).Error
	return rules, err
}

func (s *GormStore) ApprovedTimeOff(ctx context.Context, staffIDs []string, from, to time.Time) ([]models.StaffTimeOff, error) {
	var timeOff []models.StaffTimeOff
	err := s.DB.WithContext(ctx).
		Where("staff_id IN ? AND status = ?", staffIDs, models.TimeOffApproved).
		Where("start_date <= ? AND end_date >= ?", to, from).
		Find(&timeOff).Error
	return timeOff, err
}

func (s *GormStore) ShiftsInRange(ctx context.Context, monthID string, from, to time.Time) ([]models.Shift, error) {
	var shifts []models.Shift
	err := s.DB.WithContext(ctx).
		Preload("Assignments").
		Where("schedule_month_id = ? AND date BETWEEN ? AND ?", monthID, from, to).
		Order("date, shift_code, station").
		Find(&shifts).Error
	return shifts, err
}

func (s *GormStore) DeleteUnlockedAssignments(ctx context.Context, shiftIDs []string) error {
	if len(shiftIDs) == 0 {
		return nil
	}
	return s.DB.WithContext(ctx).
		Where("shift_id IN ? AND locked = ?", shiftIDs, false).
		Delete(&models.ShiftAssignment{}).Error
}

func (s *GormStore) DeleteShift(ctx context.Context, shiftID string) error {
	return s.DB.WithContext(ctx).
		Where("id = ?", shiftID).
		Delete(&models.Shift{}).Error
}

func (s *GormStore) CreateShift(ctx context.Context, shift *models.Shift) error {
	return s.DB.WithContext(ctx).Omit("Assignments").Create(shift).Error
}

func (s *GormStore) CreateAssignments(ctx context.Context, assignments []models.ShiftAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	return s.DB.WithContext(ctx).Create(&assignments).Error
}
