package night

import "time"

// StartNight freezes the plan from the current seating and enters Running
// at the first step (spec.md §3 Lifecycle). It is a no-op if the game is
// not in lobby.
func StartNight(state GameState) (GameState, RejectReason) {
	if state.Status != StatusLobby {
		return state, ReasonInvalidStateTransition
	}

	next := state.Clone()
	next.Plan = BuildPlan(next.Players)
	next.Status = StatusOngoing
	next.Revision = state.Revision + 1
	next.CurrentNightResults = newNightResults()
	next.WitchContext = WitchContext{SavePotionAvailable: true, PoisonPotionAvailable: true}
	next.WolfRobotHunterStatusViewed = true

	if len(next.Plan) > 0 {
		id := next.Plan[0].StepID
		next.CurrentStepID = &id
		next.IsAudioPlaying = true
	}

	return next, ReasonNone
}

// SetAudioPlaying is the transport layer's hook for toggling the
// audio-play gate (spec.md §4.8 transition (e)); there is no PlayerMessage
// variant for this because it is driven by the host's own media player
// finishing narration, not by a player action.
func SetAudioPlaying(state GameState, playing bool) GameState {
	if state.IsAudioPlaying == playing {
		return state
	}
	next := state.Clone()
	next.IsAudioPlaying = playing
	next.Revision = state.Revision + 1
	return next
}

// AdvanceOutcome is what Advance produces: either a new state plus which
// decision was taken, or the unchanged state plus why it was refused.
type AdvanceOutcome struct {
	State    GameState
	Decision Decision
	Reason   RejectReason
}

// Advance is C8's single entry point for host-driven progression. It
// consults the progression evaluator (C9); on `advance` it moves
// CurrentStepID to the next step in the frozen plan (re-arming the
// audio-play gate); on `end_night` it runs the death calculator (C7) and
// closes the game. callerUID identifies who is asking, compared against
// the game's own HostUID — a plain data comparison, not an auth check
// (internal/middleware's token check is what decides whether callerUID is
// trustworthy).
func Advance(state GameState, callerUID string, now time.Time, tracker *ProgressionTracker) AdvanceOutcome {
	isHost := callerUID == state.HostUID
	decision, reason := Evaluate(&state, state.Revision, now, tracker, isHost)
	tracker.record(state.Revision, state.CurrentStepID)

	switch decision {
	case DecisionAdvance:
		return AdvanceOutcome{State: advanceStep(state), Decision: decision}
	case DecisionEndNight:
		return AdvanceOutcome{State: endNight(state), Decision: decision}
	default:
		return AdvanceOutcome{State: state, Decision: DecisionNone, Reason: reason}
	}
}

func advanceStep(state GameState) GameState {
	next := state.Clone()
	next.Revision = state.Revision + 1

	idx := -1
	for i, s := range next.Plan {
		if next.CurrentStepID != nil && s.StepID == *next.CurrentStepID {
			idx = i
			break
		}
	}

	if idx < 0 || idx+1 >= len(next.Plan) {
		next.CurrentStepID = nil
		return next
	}

	id := next.Plan[idx+1].StepID
	next.CurrentStepID = &id
	next.IsAudioPlaying = true
	return next
}

func endNight(state GameState) GameState {
	next := state.Clone()
	next.Revision = state.Revision + 1
	next.LastNightDeaths = CalculateDeaths(&next)
	next.Status = StatusEnded
	next.CurrentStepID = nil
	return next
}
