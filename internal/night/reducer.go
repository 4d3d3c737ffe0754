package night

// Reduce is C5: a pure function (State, AcceptedAction) → State'. The
// caller (engine.go) must have already validated msg with Validate; Reduce
// performs no further rejection, only state transcription. It always
// returns a state with Revision = input.Revision + 1.
//
// Reduce never reads the clock, random source, or any external sink — it
// only touches the GameState value handed to it, mirroring wolverix
// action_processor.go's per-action DB write collapsed into an in-memory
// overwrite (see DESIGN.md C5).
func Reduce(state GameState, msg PlayerMessage) GameState {
	next := state.Clone()
	next.Revision = state.Revision + 1

	switch msg.Kind {
	case MessageAction:
		reduceAction(&next, msg)
	case MessageWolfVote:
		reduceWolfVote(&next, msg)
	case MessageRevealAck:
		reduceRevealAck(&next, msg)
	case MessageWolfRobotHunterStatusViewed:
		next.WolfRobotHunterStatusViewed = true
	}

	return next
}

func recordAction(state *GameState, stepID StepId, msg PlayerMessage) {
	entry := RecordedAction{
		ActorSeat:  msg.Seat,
		SchemaID:   stepID,
		TargetSeat: clonePtr(msg.Target),
		Extra:      msg.Extra,
	}
	for i, a := range state.Actions {
		if a.SchemaID == stepID {
			state.Actions[i] = entry
			return
		}
	}
	state.Actions = append(state.Actions, entry)
}

func reduceAction(state *GameState, msg PlayerMessage) {
	step, ok := currentStep(state)
	if !ok {
		return
	}

	recordAction(state, step.StepID, msg)

	switch step.StepID {
	case StepNightmareBlock:
		state.CurrentNightResults.BlockedSeat = clonePtr(msg.Target)
	case StepWolfQueenCharm:
		state.CurrentNightResults.CharmedSeat = clonePtr(msg.Target)
	case StepDreamcatcherDream:
		state.CurrentNightResults.DreamcatcherDreamSeat = clonePtr(msg.Target)
	case StepGuardProtect:
		state.CurrentNightResults.GuardedSeat = clonePtr(msg.Target)
	case StepMagicianSwap:
		if len(msg.Extra.SwapTargets) == 2 {
			pair := [2]Seat{msg.Extra.SwapTargets[0], msg.Extra.SwapTargets[1]}
			state.CurrentNightResults.SwappedSeats = &pair
		} else {
			state.CurrentNightResults.SwappedSeats = nil
		}
	case StepWolfKill:
		state.CurrentNightResults.WolfTallySubmitted = true
		if msg.Target != nil {
			state.CurrentNightResults.WolfVotesBySeat[msg.Seat] = *msg.Target
		} else {
			delete(state.CurrentNightResults.WolfVotesBySeat, msg.Seat)
		}
	case StepWitchAction:
		if save, ok := msg.Extra.StepResults["save"]; ok {
			state.CurrentNightResults.SavedSeat = clonePtr(save)
			if save != nil {
				state.WitchContext.SavePotionAvailable = false
			}
		}
		if poison, ok := msg.Extra.StepResults["poison"]; ok {
			state.CurrentNightResults.PoisonedSeat = clonePtr(poison)
			if poison != nil {
				state.WitchContext.PoisonPotionAvailable = false
			}
		}
	case StepWolfRobotLearn:
		state.WolfRobotContext.LearnedSeat = clonePtr(msg.Target)
	case StepCelebrityDream:
		state.CurrentNightResults.CelebrityDreamSeat = clonePtr(msg.Target)
	case StepPiperHypnotize:
		state.CurrentNightResults.HypnotizedSeats = append([]Seat(nil), msg.Extra.MultiTargets...)
		state.HypnotizedSeats = mergeSeats(state.HypnotizedSeats, msg.Extra.MultiTargets)
	}

	if _, hasReveal := RevealKindFor(step.StepID); hasReveal && msg.Target != nil {
		if !hasPendingReveal(state, step.StepID) {
			state.PendingRevealAcks = append(state.PendingRevealAcks, step.StepID)
		}
	}
}

func reduceWolfVote(state *GameState, msg PlayerMessage) {
	step, ok := currentStep(state)
	if !ok || step.StepID != StepWolfKill {
		return
	}
	if msg.Target != nil {
		state.CurrentNightResults.WolfVotesBySeat[msg.Seat] = *msg.Target
	} else {
		delete(state.CurrentNightResults.WolfVotesBySeat, msg.Seat)
	}
}

func reduceRevealAck(state *GameState, msg PlayerMessage) {
	stepID := stepIdForRole(state, msg.AckRole)
	filtered := state.PendingRevealAcks[:0]
	for _, p := range state.PendingRevealAcks {
		if p != stepID {
			filtered = append(filtered, p)
		}
	}
	state.PendingRevealAcks = filtered
}

func mergeSeats(existing, additions []Seat) []Seat {
	seen := make(map[Seat]bool, len(existing))
	out := append([]Seat(nil), existing...)
	for _, s := range existing {
		seen[s] = true
	}
	for _, s := range additions {
		if !seen[s] {
			out = append(out, s)
			seen[s] = true
		}
	}
	return out
}
