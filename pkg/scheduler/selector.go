package scheduler

import (
	"context"
	"log"
	"sort"

	"github.com/hostelia/backoffice-api-go/pkg/models"
)

// fillShift staffs the open slots of one shift. The strict pass applies
// the full rule set with a fewest-assignments-first fairness sort; if it
// comes up short, a relaxed pass drops the soft constraints to reach the
// headcount, and any remaining shortfall is reported as a warning
// instead of being papered over.
func (r *run) fillShift(ctx context.Context, shift *models.Shift, required int) {
	remaining := required - len(shift.LockedStaff())
	if remaining <= 0 {
		return
	}

	chosen := r.pick(shift, strictRules(), remaining, nil)

	if len(chosen) < remaining {
		relaxed := r.pick(shift, relaxedRules(), remaining-len(chosen), chosen)
		if len(relaxed) > 0 {
			r.warnf("Relaxed rules for %s %s (%d asignaciones)", dateKey(shift.Date), shift.ShiftCode, len(relaxed))
			chosen = append(chosen, relaxed...)
		}
	}

	if len(chosen) < remaining {
		filled := required - remaining + len(chosen)
		r.warnf("Cobertura incompleta %s %s: %d/%d", dateKey(shift.Date), shift.ShiftCode, filled, required)
	}
	if len(chosen) == 0 {
		return
	}

	assignments := make([]models.ShiftAssignment, 0, len(chosen))
	for _, staffID := range chosen {
		assignments = append(assignments, models.ShiftAssignment{
			ShiftID: shift.ID,
			StaffID: staffID,
			Status:  models.AssignmentAssigned,
			Locked:  false,
		})
	}
	if err := r.store.CreateAssignments(ctx, assignments); err != nil {
		r.warnf("Error guardando asignaciones %s %s: %v", dateKey(shift.Date), shift.ShiftCode, err)
		log.Printf("create assignments %s %s: %v", dateKey(shift.Date), shift.ShiftCode, err)
		return
	}

	shift.Assignments = append(shift.Assignments, assignments...)
	for _, staffID := range chosen {
		r.credit(staffID, shift.Date, shift.ShiftCode)
	}
	r.result.CreatedAssignments += len(assignments)
}

// pick selects up to want staff passing the rule set, fairest first.
// Ties on the running assignment count break on staff ID so runs are
// reproducible.
func (r *run) pick(shift *models.Shift, rules []eligibilityRule, want int, exclude []string) []string {
	excluded := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	var candidates []string
	for _, member := range r.staff {
		if excluded[member.ID] {
			continue
		}
		if r.eligible(member.ID, shift, rules) {
			candidates = append(candidates, member.ID)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if r.counts[candidates[i]] != r.counts[candidates[j]] {
			return r.counts[candidates[i]] < r.counts[candidates[j]]
		}
		return candidates[i] < candidates[j]
	})

	if len(candidates) > want {
		candidates = candidates[:want]
	}
	return candidates
}
