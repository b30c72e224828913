package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hostelia/backoffice-api-go/pkg/models"
)

// Generator regenerates the roster of one schedule month: it purges
// non-locked data in range, then refills every date from coverage rules
// under the staff constraints. Locked assignments, and shifts holding
// them, survive every run.
//
// Runs are synchronous and self-contained; callers must serialize
// generation per month (concurrent runs over the same month would purge
// each other's work). Different months are independent.
type Generator struct {
	store Store
}

// NewGenerator creates a generator backed by the given data layer.
func NewGenerator(store Store) *Generator {
	return &Generator{store: store}
}

// run holds the per-invocation bookkeeping. Everything here is owned by
// a single Generate call and discarded afterwards.
type run struct {
	store Store
	month *models.ScheduleMonth
	from  time.Time
	to    time.Time

	staff          []models.StaffProfile
	allowedCodes   map[string]map[string]bool
	maxConsecutive map[string]int
	timeOff        map[string][]models.StaffTimeOff

	catalog      *TemplateCatalog
	rules        []models.CoverageRule
	overrides    []models.CoverageOverride
	shiftsByKey  map[string]*models.Shift
	shiftsByDate map[string][]*models.Shift

	// per-staff state accumulated while filling
	assignedDates map[string]map[string]bool
	workedCodes   map[string]map[string]map[string]bool
	counts        map[string]int
	weekendBlock  map[string]map[string]bool

	result models.GenerateResult
}

func dateKey(d time.Time) string {
	return d.Format(models.DateLayout)
}

func shiftKey(date time.Time, shiftCode, station string) string {
	return dateKey(date) + "|" + shiftCode + "|" + station
}

// Generate runs the full cycle for one month. Only a failed month
// lookup returns an error; every other failure is absorbed into the
// result's warnings so the caller always gets a best-effort roster.
func (g *Generator) Generate(ctx context.Context, req models.GenerateRequest) (*models.GenerateResult, error) {
	month, err := g.store.ScheduleMonth(ctx, req.MonthID, req.OrganizationIDs)
	if err != nil {
		return nil, err
	}

	from, to := month.Range()
	if req.From != nil {
		from = truncateToDay(*req.From)
	}
	if req.To != nil {
		to = truncateToDay(*req.To)
	}

	r := &run{
		store:         g.store,
		month:         month,
		from:          from,
		to:            to,
		assignedDates: make(map[string]map[string]bool),
		workedCodes:   make(map[string]map[string]map[string]bool),
		counts:        make(map[string]int),
		shiftsByKey:   make(map[string]*models.Shift),
		shiftsByDate:  make(map[string][]*models.Shift),
	}

	if err := r.load(ctx); err != nil {
		return nil, err
	}

	if len(r.staff) == 0 {
		r.warnf("No hay personal activo; no se generaron turnos")
		res := r.result
		return &res, nil
	}

	r.purge(ctx)
	r.weekendBlock = planWeekends(r.from, r.to, r.staff, r.timeOff, r.shiftsByDate)
	r.fill(ctx)

	res := r.result
	return &res, nil
}

// load pulls the month's world state from the data layer.
func (r *run) load(ctx context.Context) error {
	orgID := r.month.OrganizationID

	staff, err := r.store.ActiveStaff(ctx, orgID)
	if err != nil {
		return fmt.Errorf("load active staff: %w", err)
	}
	r.staff = staff

	rules, err := r.store.CoverageRules(ctx, orgID)
	if err != nil {
		return fmt.Errorf("load coverage rules: %w", err)
	}
	r.rules = rules

	overrides, err := r.store.CoverageOverrides(ctx, orgID, r.from, r.to)
	if err != nil {
		return fmt.Errorf("load coverage overrides: %w", err)
	}
	r.overrides = overrides

	templates, err := r.store.ShiftTemplates(ctx, orgID)
	if err != nil {
		return fmt.Errorf("load shift templates: %w", err)
	}
	r.catalog = NewTemplateCatalog(templates)

	scheduleRules, err := r.store.StaffScheduleRules(ctx, orgID)
	if err != nil {
		return fmt.Errorf("load staff rules: %w", err)
	}
	r.allowedCodes = make(map[string]map[string]bool)
	r.maxConsecutive = make(map[string]int)
	for _, sr := range scheduleRules {
		r.allowedCodes[sr.StaffID] = parseShiftCodes(sr.AllowedShiftCodes)
		r.maxConsecutive[sr.StaffID] = sr.MaxConsecutiveDays
	}

	staffIDs := make([]string, 0, len(staff))
	for _, s := range staff {
		staffIDs = append(staffIDs, s.ID)
	}
	r.timeOff = make(map[string][]models.StaffTimeOff)
	if len(staffIDs) > 0 {
		timeOff, err := r.store.ApprovedTimeOff(ctx, staffIDs, r.from, r.to)
		if err != nil {
			return fmt.Errorf("load time off: %w", err)
		}
		for _, to := range timeOff {
			r.timeOff[to.StaffID] = append(r.timeOff[to.StaffID], to)
		}
	}

	shifts, err := r.store.ShiftsInRange(ctx, r.month.ID, r.from, r.to)
	if err != nil {
		return fmt.Errorf("load shifts: %w", err)
	}
	for i := range shifts {
		r.indexShift(&shifts[i])
	}
	return nil
}

// purge deletes every non-locked assignment in range, then drops shifts
// left with no assignments at all. Shifts keeping at least one locked
// assignment stay, and their locked staff are pre-credited into the
// fairness, rest, and consecutive-day bookkeeping.
func (r *run) purge(ctx context.Context) {
	if len(r.shiftsByKey) == 0 {
		return
	}

	shiftIDs := make([]string, 0, len(r.shiftsByKey))
	for _, shift := range r.shiftsByKey {
		shiftIDs = append(shiftIDs, shift.ID)
	}
	if err := r.store.DeleteUnlockedAssignments(ctx, shiftIDs); err != nil {
		r.warnf("Error limpiando asignaciones previas: %v", err)
		log.Printf("purge assignments month=%s: %v", r.month.ID, err)
		return
	}

	for key, shift := range r.shiftsByKey {
		locked := shift.Assignments[:0]
		for _, a := range shift.Assignments {
			if a.Locked {
				locked = append(locked, a)
			}
		}
		shift.Assignments = locked

		if len(shift.Assignments) == 0 {
			if err := r.store.DeleteShift(ctx, shift.ID); err != nil {
				r.warnf("Error eliminando turno %s %s: %v", dateKey(shift.Date), shift.ShiftCode, err)
				log.Printf("purge shift %s: %v", shift.ID, err)
				continue
			}
			r.dropShift(key, shift)
			continue
		}

		for _, a := range shift.Assignments {
			r.credit(a.StaffID, shift.Date, shift.ShiftCode)
		}
	}
}

// fill walks the range date by date, resolves the effective coverage and
// materializes + staffs each required shift.
func (r *run) fill(ctx context.Context) {
	for d := r.from; !d.After(r.to); d = d.AddDate(0, 0, 1) {
		for _, req := range ResolveCoverage(d, r.rules, r.overrides) {
			shift, err := r.ensureShift(ctx, d, req)
			if err != nil {
				r.warnf("Error creando turno %s %s: %v", dateKey(d), req.ShiftCode, err)
				log.Printf("create shift %s %s: %v", dateKey(d), req.ShiftCode, err)
				continue
			}
			r.fillShift(ctx, shift, req.RequiredStaff)
		}
	}
}

// ensureShift finds the shift for the (date, code, station) key or
// creates it with template times. A shift key is never duplicated.
func (r *run) ensureShift(ctx context.Context, date time.Time, req Requirement) (*models.Shift, error) {
	key := shiftKey(date, req.ShiftCode, req.Station)
	if shift, ok := r.shiftsByKey[key]; ok {
		return shift, nil
	}

	start, end := r.catalog.Times(req.ShiftCode)
	shift := &models.Shift{
		ScheduleMonthID: r.month.ID,
		Date:            date,
		ShiftCode:       req.ShiftCode,
		Station:         req.Station,
		StartTime:       start,
		EndTime:         end,
		Status:          models.ShiftPlanned,
	}
	if err := r.store.CreateShift(ctx, shift); err != nil {
		return nil, err
	}
	r.indexShift(shift)
	r.result.CreatedShifts++
	return shift, nil
}

// credit records that the staff member works the shift code on the date.
func (r *run) credit(staffID string, date time.Time, shiftCode string) {
	key := dateKey(date)
	if r.assignedDates[staffID] == nil {
		r.assignedDates[staffID] = make(map[string]bool)
	}
	r.assignedDates[staffID][key] = true

	if r.workedCodes[staffID] == nil {
		r.workedCodes[staffID] = make(map[string]map[string]bool)
	}
	if r.workedCodes[staffID][key] == nil {
		r.workedCodes[staffID][key] = make(map[string]bool)
	}
	r.workedCodes[staffID][key][shiftCode] = true

	r.counts[staffID]++
}

func (r *run) indexShift(shift *models.Shift) {
	r.shiftsByKey[shiftKey(shift.Date, shift.ShiftCode, shift.Station)] = shift
	key := dateKey(shift.Date)
	r.shiftsByDate[key] = append(r.shiftsByDate[key], shift)
}

func (r *run) dropShift(key string, shift *models.Shift) {
	delete(r.shiftsByKey, key)
	day := dateKey(shift.Date)
	kept := r.shiftsByDate[day][:0]
	for _, s := range r.shiftsByDate[day] {
		if s != shift {
			kept = append(kept, s)
		}
	}
	r.shiftsByDate[day] = kept
}

func (r *run) warnf(format string, args ...any) {
	r.result.Warnings = append(r.result.Warnings, fmt.Sprintf(format, args...))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parseShiftCodes splits a comma separated code list into a set. An
// empty list means unrestricted and yields a nil set.
func parseShiftCodes(raw string) map[string]bool {
	var set map[string]bool
	for _, part := range strings.Split(raw, ",") {
		code := strings.TrimSpace(part)
		if code == "" {
			continue
		}
		if set == nil {
			set = make(map[string]bool)
		}
		set[code] = true
	}
	return set
}
