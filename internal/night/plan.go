package night

import "sort"

// NightStep is one entry of the frozen night plan: a StepId bound to its
// role, schema and constraint metadata.
type NightStep struct {
	StepID      StepId
	RoleID      RoleId
	Schema      SchemaKind
	Constraints []ConstraintTag
}

// BuildPlan derives the ordered list of NightSteps for a seated template.
// Roles absent from the seating are omitted; the result is frozen for the
// night (spec.md §4.2) — callers must not mutate the returned slice.
//
// Generalizes wolverix night_coordinator.go's hand-ordered five-role
// sequence into a priority-number sort over the whole catalog, so adding a
// role to the catalog never requires touching this function.
func BuildPlan(players map[Seat]Player) []NightStep {
	present := make(map[RoleId]bool, len(players))
	for _, p := range players {
		present[p.Role] = true
	}

	type ordered struct {
		id       StepId
		priority int
	}
	var steps []ordered
	for id, def := range stepRegistry {
		if !present[def.Role] {
			continue
		}
		steps = append(steps, ordered{id: id, priority: def.Priority})
	}

	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].priority < steps[j].priority
	})

	plan := make([]NightStep, 0, len(steps))
	for _, s := range steps {
		def := stepRegistry[s.id]
		plan = append(plan, NightStep{
			StepID:      s.id,
			RoleID:      def.Role,
			Schema:      def.Schema,
			Constraints: append([]ConstraintTag(nil), def.Constraints...),
		})
	}
	return plan
}

// StepInPlan reports whether id is a member of plan, and the definition if
// so. Used by the validator to enforce step_mismatch.
func StepInPlan(plan []NightStep, id StepId) (NightStep, bool) {
	for _, s := range plan {
		if s.StepID == id {
			return s, true
		}
	}
	return NightStep{}, false
}
