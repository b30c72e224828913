package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/hostelia/backoffice-api-go/pkg/models"
)

// memStore is an in-memory Store for exercising the generator without a
// database.
type memStore struct {
	month      *models.ScheduleMonth
	rules      []models.CoverageRule
	overrides  []models.CoverageOverride
	templates  []models.ShiftTemplate
	staff      []models.StaffProfile
	staffRules []models.StaffScheduleRule
	timeOff    []models.StaffTimeOff

	shifts    map[string]*models.Shift
	shiftSeq  int
	assignSeq int

	failAssignments bool
	failShifts      bool
}

func newMemStore(month *models.ScheduleMonth) *memStore {
	return &memStore{
		month:  month,
		shifts: make(map[string]*models.Shift),
	}
}

func (m *memStore) ScheduleMonth(ctx context.Context, monthID string, orgIDs []string) (*models.ScheduleMonth, error) {
	if m.month == nil || m.month.ID != monthID {
		return nil, fmt.Errorf("%w: %s", ErrMonthNotFound, monthID)
	}
	if len(orgIDs) > 0 {
		found := false
		for _, id := range orgIDs {
			if id == m.month.OrganizationID {
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrMonthNotFound, monthID)
		}
	}
	month := *m.month
	return &month, nil
}

func (m *memStore) CoverageRules(ctx context.Context, orgID string) ([]models.CoverageRule, error) {
	return m.rules, nil
}

func (m *memStore) CoverageOverrides(ctx context.Context, orgID string, from, to time.Time) ([]models.CoverageOverride, error) {
	return m.overrides, nil
}

func (m *memStore) ShiftTemplates(ctx context.Context, orgID string) ([]models.ShiftTemplate, error) {
	return m.templates, nil
}

func (m *memStore) ActiveStaff(ctx context.Context, orgID string) ([]models.StaffProfile, error) {
	var active []models.StaffProfile
	for _, s := range m.staff {
		if s.Active {
			active = append(active, s)
		}
	}
	return active, nil
}

func (m *memStore) StaffScheduleRules(ctx context.Context, orgID string) ([]models.StaffScheduleRule, error) {
	return m.staffRules, nil
}

func (m *memStore) ApprovedTimeOff(ctx context.Context, staffIDs []string, from, to time.Time) ([]models.StaffTimeOff, error) {
	ids := make(map[string]bool, len(staffIDs))
	for _, id := range staffIDs {
		ids[id] = true
	}
	var out []models.StaffTimeOff
	for _, to2 := range m.timeOff {
		if to2.Status == models.TimeOffApproved && ids[to2.StaffID] &&
			!to2.StartDate.After(to) && !to2.EndDate.Before(from) {
			out = append(out, to2)
		}
	}
	return out, nil
}

func (m *memStore) ShiftsInRange(ctx context.Context, monthID string, from, to time.Time) ([]models.Shift, error) {
	var out []models.Shift
	for _, s := range m.shifts {
		if s.ScheduleMonthID != monthID || s.Date.Before(from) || s.Date.After(to) {
			continue
		}
		copied := *s
		copied.Assignments = append([]models.ShiftAssignment(nil), s.Assignments...)
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) DeleteUnlockedAssignments(ctx context.Context, shiftIDs []string) error {
	ids := make(map[string]bool, len(shiftIDs))
	for _, id := range shiftIDs {
		ids[id] = true
	}
	for _, s := range m.shifts {
		if !ids[s.ID] {
			continue
		}
		kept := s.Assignments[:0]
		for _, a := range s.Assignments {
			if a.Locked {
				kept = append(kept, a)
			}
		}
		s.Assignments = kept
	}
	return nil
}

func (m *memStore) DeleteShift(ctx context.Context, shiftID string) error {
	delete(m.shifts, shiftID)
	return nil
}

func (m *memStore) CreateShift(ctx context.Context, shift *models.Shift) error {
	if m.failShifts {
		return errors.New("insert failed")
	}
	m.shiftSeq++
	shift.ID = fmt.Sprintf("shift-%d", m.shiftSeq)
	stored := *shift
	m.shifts[shift.ID] = &stored
	return nil
}

func (m *memStore) CreateAssignments(ctx context.Context, assignments []models.ShiftAssignment) error {
	if m.failAssignments {
		return errors.New("insert failed")
	}
	for i := range assignments {
		m.assignSeq++
		assignments[i].ID = fmt.Sprintf("assign-%d", m.assignSeq)
		shift, ok := m.shifts[assignments[i].ShiftID]
		if !ok {
			return errors.New("unknown shift")
		}
		shift.Assignments = append(shift.Assignments, assignments[i])
	}
	return nil
}

func testMonth() *models.ScheduleMonth {
	return &models.ScheduleMonth{
		ID:             "month-1",
		OrganizationID: "org-1",
		Year:           2026,
		Month:          6,
		Status:         models.MonthDraft,
	}
}

func staffN(n int) []models.StaffProfile {
	staff := make([]models.StaffProfile, 0, n)
	for i := 1; i <= n; i++ {
		staff = append(staff, models.StaffProfile{
			ID:             fmt.Sprintf("staff-%d", i),
			OrganizationID: "org-1",
			Name:           fmt.Sprintf("Staff %d", i),
			Active:         true,
		})
	}
	return staff
}

func generate(t *testing.T, store *memStore, req models.GenerateRequest) *models.GenerateResult {
	t.Helper()
	result, err := NewGenerator(store).Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return result
}

func window(from, to time.Time) models.GenerateRequest {
	return models.GenerateRequest{
		MonthID:         "month-1",
		OrganizationIDs: []string{"org-1"},
		From:            &from,
		To:              &to,
	}
}

func hasWarning(result *models.GenerateResult, fragment string) bool {
	for _, w := range result.Warnings {
		if strings.Contains(w, fragment) {
			return true
		}
	}
	return false
}

func TestGenerate_MonthNotFound(t *testing.T) {
	store := newMemStore(testMonth())

	_, err := NewGenerator(store).Generate(context.Background(), models.GenerateRequest{
		MonthID:         "month-2",
		OrganizationIDs: []string{"org-1"},
	})
	if !errors.Is(err, ErrMonthNotFound) {
		t.Errorf("Expected ErrMonthNotFound for unknown month, got %v", err)
	}

	_, err = NewGenerator(store).Generate(context.Background(), models.GenerateRequest{
		MonthID:         "month-1",
		OrganizationIDs: []string{"org-2"},
	})
	if !errors.Is(err, ErrMonthNotFound) {
		t.Errorf("Expected ErrMonthNotFound for foreign organization, got %v", err)
	}
}

func TestGenerate_NoActiveStaff(t *testing.T) {
	store := newMemStore(testMonth())
	store.staff = []models.StaffProfile{
		{ID: "staff-1", OrganizationID: "org-1", Name: "Inactive", Active: false},
	}

	result := generate(t, store, window(day(2026, time.June, 1), day(2026, time.June, 7)))

	if result.CreatedShifts != 0 || result.CreatedAssignments != 0 {
		t.Errorf("Expected no work done, got %d shifts / %d assignments", result.CreatedShifts, result.CreatedAssignments)
	}
	if !hasWarning(result, "personal activo") {
		t.Errorf("Expected a no-active-staff warning, got %v", result.Warnings)
	}
	if len(store.shifts) != 0 {
		t.Errorf("Expected nothing persisted, got %d shifts", len(store.shifts))
	}
}

func TestGenerate_DefaultCoverage(t *testing.T) {
	store := newMemStore(testMonth())
	store.staff = staffN(3)

	// Monday through Friday; no weekend pair in range
	result := generate(t, store, window(day(2026, time.June, 1), day(2026, time.June, 5)))

	// 1 MORNING + 1 AFTERNOON per day
	if result.CreatedShifts != 10 {
		t.Errorf("Expected 10 shifts, got %d", result.CreatedShifts)
	}
	// Friday needs a second MORNING slot
	if result.CreatedAssignments != 11 {
		t.Errorf("Expected 11 assignments, got %d", result.CreatedAssignments)
	}

	friday := findShift(store, "2026-06-05", models.ShiftMorning, "")
	if friday == nil {
		t.Fatal("Expected a Friday MORNING shift")
	}
	if len(friday.Assignments) != 2 {
		t.Errorf("Expected 2 staff on Friday MORNING, got %d", len(friday.Assignments))
	}
	if friday.StartTime != "06:00" || friday.EndTime != "14:00" {
		t.Errorf("Expected builtin MORNING times, got %s-%s", friday.StartTime, friday.EndTime)
	}
}

func TestGenerate_OverridePrecedence(t *testing.T) {
	store := newMemStore(testMonth())
	store.staff = staffN(4)
	store.rules = []models.CoverageRule{
		{OrganizationID: "org-1", Weekday: int(time.Monday), ShiftCode: models.ShiftMorning, RequiredStaff: 1},
	}
	store.overrides = []models.CoverageOverride{
		{OrganizationID: "org-1", Date: day(2026, time.June, 1), ShiftCode: models.ShiftMorning, RequiredStaff: 3},
	}

	result := generate(t, store, window(day(2026, time.June, 1), day(2026, time.June, 1)))

	if result.CreatedShifts != 1 {
		t.Fatalf("Expected 1 shift, got %d", result.CreatedShifts)
	}
	if result.CreatedAssignments != 3 {
		t.Errorf("Expected the override headcount of 3, got %d", result.CreatedAssignments)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", result.Warnings)
	}
}

func TestGenerate_ShortfallWarning(t *testing.T) {
	store := newMemStore(testMonth())
	store.staff = staffN(1)
	store.rules = []models.CoverageRule{
		{OrganizationID: "org-1", Weekday: int(time.Monday), ShiftCode: models.ShiftMorning, RequiredStaff: 2},
	}

	result := generate(t, store, window(day(2026, time.June, 1), day(2026, time.June, 1)))

	if result.CreatedAssignments != 1 {
		t.Errorf("Expected 1 assignment, got %d", result.CreatedAssignments)
	}
	if !hasWarning(result, "Cobertura incompleta 2026-06-01 MORNING: 1/2") {
		t.Errorf("Expected a 1/2 shortfall warning, got %v", result.Warnings)
	}
}

func TestGenerate_RestConflictRelaxed(t *testing.T) {
	store := newMemStore(testMonth())
	store.staff = staffN(1)
	store.rules = []models.CoverageRule{
		{OrganizationID: "org-1", Weekday: int(time.Monday), ShiftCode: models.ShiftAfternoon, RequiredStaff: 1},
		{OrganizationID: "org-1", Weekday: int(time.Tuesday), ShiftCode: models.ShiftMorning, RequiredStaff: 1},
	}

	// The only staff member works Monday AFTERNOON; the strict pass must
	// refuse Tuesday MORNING and the relaxed fallback fills it with a
	// warning.
	result := generate(t, store, window(day(2026, time.June, 1), day(2026, time.June, 2)))

	if result.CreatedAssignments != 2 {
		t.Errorf("Expected both shifts filled, got %d assignments", result.CreatedAssignments)
	}
	if !hasWarning(result, "Relaxed rules for 2026-06-02 MORNING (1 asignaciones)") {
		t.Errorf("Expected a relaxation warning, got %v", result.Warnings)
	}
}

func TestGenerate_RestConflictPrefersRestedStaff(t *testing.T) {
	store := newMemStore(testMonth())
	store.staff = staffN(2)
	store.rules = []models.CoverageRule{
		{OrganizationID: "org-1", Weekday: int(time.Monday), ShiftCode: models.ShiftAfternoon, RequiredStaff: 1},
		{OrganizationID: "org-1", Weekday: int(time.Tuesday), ShiftCode: models.ShiftMorning, RequiredStaff: 1},
	}

	result := generate(t, store, window(day(2026, time.June, 1), day(2026, time.June, 2)))

	if len(result.Warnings) != 0 {
		t.Errorf("Expected no warnings with a second staff member, got %v", result.Warnings)
	}

	monday := findShift(store, "2026-06-01", models.ShiftAfternoon, "")
	tuesday := findShift(store, "2026-06-02", models.ShiftMorning, "")
	if monday == nil || tuesday == nil {
		t.Fatal("Expected both shifts to exist")
	}
	if monday.Assignments[0].StaffID == tuesday.Assignments[0].StaffID {
		t.Error("Expected the Tuesday MORNING to go to the rested staff member")
	}
}

func TestGenerate_NoDoubleBooking(t *testing.T) {
	store := newMemStore(testMonth())
	store.staff = staffN(5)

	generate(t, store, window(day(2026, time.June, 1), day(2026, time.June, 30)))

	booked := make(map[string]map[string]int)
	for _, shift := range store.shifts {
		key := shift.Date.Format(models.DateLayout)
		for _, a := range shift.Assignments {
			if booked[a.StaffID] == nil {
				booked[a.StaffID] = make(map[string]int)
			}
			booked[a.StaffID][key]++
			if booked[a.StaffID][key] > 1 {
				t.Errorf("Staff %s double-booked on %s", a.StaffID, key)
			}
		}
	}
}

func TestGenerate_WeekendProtection(t *testing.T) {
	store := newMemStore(testMonth())
	store.staff = staffN(4)
	store.rules = []models.CoverageRule{
		{OrganizationID: "org-1", Weekday: int(time.Saturday), ShiftCode: models.ShiftMorning, RequiredStaff: 1},
		{OrganizationID: "org-1", Weekday: int(time.Sunday), ShiftCode: models.ShiftMorning, RequiredStaff: 1},
	}

	generate(t, store, window(day(2026, time.June, 1), day(2026, time.June, 30)))

	// Every staff member should keep at least one full weekend free.
	weekends := [][2]string{
		{"2026-06-06", "2026-06-07"},
		{"2026-06-13", "2026-06-14"},
		{"2026-06-20", "2026-06-21"},
		{"2026-06-27", "2026-06-28"},
	}
	for _, member := range store.staff {
		free := 0
		for _, weekend := range weekends {
			if !workedOn(store, member.ID, weekend[0]) && !workedOn(store, member.ID, weekend[1]) {
				free++
			}
		}
		if free == 0 {
			t.Errorf("Staff %s has no free weekend", member.ID)
		}
	}
}

func TestGenerate_TimeOffBlocksAssignment(t *testing.T) {
	store := newMemStore(testMonth())
	store.staff = staffN(2)
	store.timeOff = []models.StaffTimeOff{
		{
			StaffID:   "staff-1",
			StartDate: day(2026, time.June, 1),
			EndDate:   day(2026, time.June, 5),
			Status:    models.TimeOffApproved,
		},
	}

	generate(t, store, window(day(2026, time.June, 1), day(2026, time.June, 5)))

	for _, shift := range store.shifts {
		for _, a := range shift.Assignments {
			if a.StaffID == "staff-1" {
				t.Errorf("Staff on approved time off assigned on %s", shift.Date.Format(models.DateLayout))
			}
		}
	}
}

func TestGenerate_AllowedCodesRespected(t *testing.T) {
	store := newMemStore(testMonth())
	store.staff = staffN(2)
	store.staffRules = []models.StaffScheduleRule{
		{StaffID: "staff-1", AllowedShiftCodes: models.ShiftAfternoon},
	}

	generate(t, store, window(day(2026, time.June, 1), day(2026, time.June, 5)))

	for _, shift := range store.shifts {
		if shift.ShiftCode == models.ShiftAfternoon {
			continue
		}
		for _, a := range shift.Assignments {
			if a.StaffID == "staff-1" {
				t.Errorf("Staff restricted to AFTERNOON assigned %s on %s", shift.ShiftCode, shift.Date.Format(models.DateLayout))
			}
		}
	}
}

func TestGenerate_IdempotentOnLockedData(t *testing.T) {
	store := newMemStore(testMonth())
	store.staff = staffN(3)
	req := window(day(2026, time.June, 1), day(2026, time.June, 7))

	generate(t, store, req)

	// Lock the Monday MORNING assignment by hand, as a planner would.
	monday := findShift(store, "2026-06-01", models.ShiftMorning, "")
	if monday == nil || len(monday.Assignments) == 0 {
		t.Fatal("Expected a staffed Monday MORNING shift")
	}
	monday.Assignments[0].Locked = true
	lockedShiftID := monday.ID
	lockedAssignID := monday.Assignments[0].ID
	lockedStaffID := monday.Assignments[0].StaffID

	for i := 0; i < 2; i++ {
		generate(t, store, req)

		shift := findShift(store, "2026-06-01", models.ShiftMorning, "")
		if shift == nil {
			t.Fatal("Locked shift deleted by regeneration")
		}
		if shift.ID != lockedShiftID {
			t.Errorf("Locked shift replaced: %s != %s", shift.ID, lockedShiftID)
		}
		var locked *models.ShiftAssignment
		seen := make(map[string]int)
		for j := range shift.Assignments {
			a := &shift.Assignments[j]
			seen[a.StaffID]++
			if a.Locked {
				locked = a
			}
		}
		if locked == nil || locked.ID != lockedAssignID {
			t.Errorf("Locked assignment not preserved, got %+v", shift.Assignments)
		}
		if seen[lockedStaffID] != 1 {
			t.Errorf("Locked staff assigned %d times to the same shift", seen[lockedStaffID])
		}
	}
}

func TestGenerate_PersistFailureIsWarning(t *testing.T) {
	store := newMemStore(testMonth())
	store.staff = staffN(2)
	store.failAssignments = true

	result := generate(t, store, window(day(2026, time.June, 1), day(2026, time.June, 1)))

	if result.CreatedAssignments != 0 {
		t.Errorf("Expected no assignments counted, got %d", result.CreatedAssignments)
	}
	if !hasWarning(result, "Error guardando asignaciones") {
		t.Errorf("Expected a persistence warning, got %v", result.Warnings)
	}
	// Shifts were still created; the run kept going.
	if result.CreatedShifts != 2 {
		t.Errorf("Expected shifts despite assignment failures, got %d", result.CreatedShifts)
	}
}

func TestGenerate_ShiftFailureIsWarning(t *testing.T) {
	store := newMemStore(testMonth())
	store.staff = staffN(2)
	store.failShifts = true

	result := generate(t, store, window(day(2026, time.June, 1), day(2026, time.June, 1)))

	if result.CreatedShifts != 0 || result.CreatedAssignments != 0 {
		t.Errorf("Expected nothing created, got %d/%d", result.CreatedShifts, result.CreatedAssignments)
	}
	if !hasWarning(result, "Error creando turno") {
		t.Errorf("Expected shift creation warnings, got %v", result.Warnings)
	}
}

func findShift(store *memStore, date, code, station string) *models.Shift {
	for _, s := range store.shifts {
		if s.Date.Format(models.DateLayout) == date && s.ShiftCode == code && s.Station == station {
			return s
		}
	}
	return nil
}

func workedOn(store *memStore, staffID, date string) bool {
	for _, s := range store.shifts {
		if s.Date.Format(models.DateLayout) != date {
			continue
		}
		for _, a := range s.Assignments {
			if a.StaffID == staffID {
				return true
			}
		}
	}
	return false
}
