package night

import "time"

// Decision is C9's closed result: advance one step, end the night, or do
// nothing (with a reason).
type Decision string

const (
	DecisionAdvance  Decision = "advance"
	DecisionEndNight Decision = "end_night"
	DecisionNone     Decision = "none"
)

// ProgressionTracker deduplicates repeated Evaluate calls against the same
// (revision, currentStepId) pair, per spec.md §4.9. A nil tracker disables
// dedup (every call is evaluated fresh).
type ProgressionTracker struct {
	lastRevision uint64
	lastStep     *StepId
	seen         bool
}

func (t *ProgressionTracker) alreadyProcessed(revision uint64, step *StepId) bool {
	if t == nil {
		return false
	}
	same := t.seen && t.lastRevision == revision && samplePtr(t.lastStep, step)
	return same
}

func (t *ProgressionTracker) record(revision uint64, step *StepId) {
	if t == nil {
		return
	}
	t.lastRevision = revision
	t.lastStep = cloneStepPtr(step)
	t.seen = true
}

func samplePtr(a, b *StepId) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Evaluate is C9: a pure advisor over a state snapshot. now is the
// caller's clock reading, needed only to judge the wolfVoteDeadline gate.
func Evaluate(state *GameState, revision uint64, now time.Time, tracker *ProgressionTracker, isHost bool) (Decision, RejectReason) {
	if state == nil {
		return DecisionNone, ReasonNoState
	}
	if !isHost {
		return DecisionNone, ReasonNotHost
	}
	if state.Status != StatusOngoing {
		return DecisionNone, ReasonNotOngoing
	}
	if tracker.alreadyProcessed(revision, state.CurrentStepID) {
		return DecisionNone, ReasonAlreadyProcessed
	}
	if state.IsAudioPlaying {
		return DecisionNone, ReasonAudioPlaying
	}
	if len(state.PendingRevealAcks) > 0 {
		return DecisionNone, ReasonPendingRevealAcks
	}

	if state.CurrentStepID == nil {
		if len(state.Plan) == 0 {
			return DecisionNone, ReasonNoMoreSteps
		}
		return DecisionEndNight, ReasonNone
	}

	step, ok := StepInPlan(state.Plan, *state.CurrentStepID)
	if !ok {
		return DecisionNone, ReasonInvalidStateTransition
	}

	if step.StepID == StepWolfRobotLearn && state.WolfRobotReveal != nil {
		if resolveRoleForChecks(state, state.WolfRobotReveal.TargetSeat) == RoleHunter && !state.WolfRobotHunterStatusViewed {
			return DecisionNone, ReasonWolfRobotHunterStatusNotViewed
		}
	}

	if step.StepID == StepWolfKill {
		deadlinePassed := state.WolfVoteDeadline != nil && !now.Before(*state.WolfVoteDeadline)
		// The lead wolf may submit the tallied target as a single ACTION
		// instead of every wolf casting an individual WOLF_VOTE (spec.md
		// §4.6) — that alone satisfies the step regardless of how many
		// wolves are alive or nightmare-blocked.
		complete := state.CurrentNightResults.WolfTallySubmitted || WolfVoteComplete(state) || deadlinePassed
		if !complete {
			if state.WolfVoteDeadline != nil {
				return DecisionNone, ReasonWolfVoteCountdown
			}
			return DecisionNone, ReasonStepNotComplete
		}
	} else if !stepComplete(state, step.StepID) {
		return DecisionNone, ReasonStepNotComplete
	}

	if isLastStep(state.Plan, step.StepID) {
		return DecisionEndNight, ReasonNone
	}
	return DecisionAdvance, ReasonNone
}

func stepComplete(state *GameState, id StepId) bool {
	for _, a := range state.Actions {
		if a.SchemaID == id {
			return true
		}
	}
	return false
}

func isLastStep(plan []NightStep, id StepId) bool {
	if len(plan) == 0 {
		return true
	}
	return plan[len(plan)-1].StepID == id
}
