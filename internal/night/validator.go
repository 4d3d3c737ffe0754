package night

// RejectReason is the closed taxonomy of why a message was refused
// (spec.md §7 / §4.4). Never a raw error for expected rejections.
type RejectReason string

const (
	ReasonNone RejectReason = ""

	// Protocol errors.
	ReasonUnknownMessage        RejectReason = "unknown_message"
	ReasonSchemaShapeMismatch   RejectReason = "schema_shape_mismatch"
	ReasonDuplicateWithinStep   RejectReason = "duplicate_within_step"

	// Sequencing errors.
	ReasonStepMismatch     RejectReason = "step_mismatch"
	ReasonNotOngoing       RejectReason = "not_ongoing"
	ReasonAlreadyProcessed RejectReason = "already_processed"

	// Authorization errors.
	ReasonSeatRoleMismatch  RejectReason = "seat_role_mismatch"
	ReasonNotWolfParticipant RejectReason = "not_wolf_participant"
	ReasonNotHost           RejectReason = "not_host"

	// Rule violations.
	ReasonConstraintViolated RejectReason = "constraint_violated"
	ReasonNightmareBlocked   RejectReason = "nightmare_blocked"

	// Gate errors.
	ReasonAudioPlaying                    RejectReason = "audio_playing"
	ReasonPendingRevealAcks                RejectReason = "pending_reveal_acks"
	ReasonWolfVoteCountdown                RejectReason = "wolf_vote_countdown"
	ReasonWolfRobotHunterStatusNotViewed   RejectReason = "wolfrobot_hunter_status_not_viewed"

	// Irrecoverable.
	ReasonInvalidStateTransition RejectReason = "invalid_state_transition"

	// Progression-evaluator-only reasons (spec.md §4.9).
	ReasonNoState        RejectReason = "no_state"
	ReasonStepNotComplete RejectReason = "step_not_complete"
	ReasonNoMoreSteps     RejectReason = "no_more_steps"
)

// ValidationResult is what the validator returns: acceptance, or a reason
// plus (for constraint violations) which tag tripped.
type ValidationResult struct {
	Accepted      bool
	Reason        RejectReason
	ConstraintTag ConstraintTag
}

func accept() ValidationResult { return ValidationResult{Accepted: true} }

func reject(reason RejectReason) ValidationResult {
	return ValidationResult{Accepted: false, Reason: reason}
}

func rejectConstraint(tag ConstraintTag) ValidationResult {
	return ValidationResult{Accepted: false, Reason: ReasonConstraintViolated, ConstraintTag: tag}
}

// Validate is C4's stateless gate: (state, msg) → accept | reject(reason).
// It never mutates state.
func Validate(state *GameState, msg PlayerMessage) ValidationResult {
	if state.Status != StatusOngoing && msg.Kind != MessageAdvance {
		return reject(ReasonNotOngoing)
	}

	switch msg.Kind {
	case MessageAction:
		return validateAction(state, msg)
	case MessageWolfVote:
		return validateWolfVote(state, msg)
	case MessageRevealAck:
		return validateRevealAck(state, msg)
	case MessageWolfRobotHunterStatusViewed:
		return validateHunterStatusViewed(state, msg)
	default:
		return reject(ReasonUnknownMessage)
	}
}

func currentStep(state *GameState) (NightStep, bool) {
	if state.CurrentStepID == nil {
		return NightStep{}, false
	}
	return StepInPlan(state.Plan, *state.CurrentStepID)
}

func isSkip(msg PlayerMessage) bool {
	if msg.Target != nil {
		return false
	}
	if len(msg.Extra.SwapTargets) > 0 || len(msg.Extra.MultiTargets) > 0 {
		return false
	}
	if msg.Extra.Confirmed != nil && *msg.Extra.Confirmed {
		return false
	}
	for _, v := range msg.Extra.StepResults {
		if v != nil {
			return false
		}
	}
	return true
}

func validateAction(state *GameState, msg PlayerMessage) ValidationResult {
	step, ok := currentStep(state)
	if !ok || step.RoleID != msg.Role {
		return reject(ReasonStepMismatch)
	}

	player, ok := state.Players[msg.Seat]
	if !ok || player.Role != msg.Role {
		return reject(ReasonSeatRoleMismatch)
	}

	if blocked := state.CurrentNightResults.BlockedSeat; blocked != nil && *blocked == msg.Seat && !isSkip(msg) {
		return reject(ReasonNightmareBlocked)
	}

	if res := validateShape(step.Schema, msg); !res.Accepted {
		return res
	}

	if res := validateConstraints(state, step, msg); !res.Accepted {
		return res
	}

	if hasPendingReveal(state, step.StepID) && !isSkip(msg) {
		return reject(ReasonDuplicateWithinStep)
	}

	return accept()
}

func hasPendingReveal(state *GameState, id StepId) bool {
	for _, p := range state.PendingRevealAcks {
		if p == id {
			return true
		}
	}
	return false
}

func validateShape(schema SchemaKind, msg PlayerMessage) ValidationResult {
	switch schema {
	case SchemaChooseSeat, SchemaWolfVote:
		return accept()
	case SchemaSwap:
		if msg.Target != nil {
			return reject(ReasonSchemaShapeMismatch)
		}
		if len(msg.Extra.SwapTargets) == 0 {
			return accept()
		}
		if len(msg.Extra.SwapTargets) != 2 || msg.Extra.SwapTargets[0] == msg.Extra.SwapTargets[1] {
			return reject(ReasonSchemaShapeMismatch)
		}
		return accept()
	case SchemaCompound:
		if msg.Target != nil {
			return reject(ReasonSchemaShapeMismatch)
		}
		if msg.Extra.StepResults == nil {
			return reject(ReasonSchemaShapeMismatch)
		}
		return accept()
	case SchemaConfirm:
		if msg.Target != nil || msg.Extra.Confirmed == nil {
			return reject(ReasonSchemaShapeMismatch)
		}
		return accept()
	case SchemaMultiChooseSeat:
		if msg.Target != nil {
			return reject(ReasonSchemaShapeMismatch)
		}
		return accept()
	default:
		return reject(ReasonSchemaShapeMismatch)
	}
}

func validateConstraints(state *GameState, step NightStep, msg PlayerMessage) ValidationResult {
	targets := targetsOf(msg)
	for _, tag := range step.Constraints {
		for _, t := range targets {
			switch tag {
			case ConstraintNotSelf:
				if t == msg.Seat {
					return rejectConstraint(tag)
				}
			case ConstraintAliveTarget:
				p, ok := state.Players[t]
				if !ok || !p.Alive {
					return rejectConstraint(tag)
				}
			case ConstraintWolfTeamOnly:
				p, ok := state.Players[t]
				if !ok || TeamOf(p.Role) != TeamWolf {
					return rejectConstraint(tag)
				}
			case ConstraintNotImmuneToCheck:
				p, ok := state.Players[t]
				if ok && IsImmuneToWolfKill(p.Role) {
					return rejectConstraint(tag)
				}
			}
		}
	}
	return accept()
}

func targetsOf(msg PlayerMessage) []Seat {
	var out []Seat
	if msg.Target != nil {
		out = append(out, *msg.Target)
	}
	out = append(out, msg.Extra.SwapTargets...)
	out = append(out, msg.Extra.MultiTargets...)
	for _, v := range msg.Extra.StepResults {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

func validateWolfVote(state *GameState, msg PlayerMessage) ValidationResult {
	step, ok := currentStep(state)
	if !ok || step.StepID != StepWolfKill {
		return reject(ReasonStepMismatch)
	}

	voter, ok := state.Players[msg.Seat]
	if !ok || !DoesRoleParticipateInWolfVote(voter.Role) {
		return reject(ReasonNotWolfParticipant)
	}

	if blocked := state.CurrentNightResults.BlockedSeat; blocked != nil && *blocked == msg.Seat && msg.Target != nil {
		return reject(ReasonNightmareBlocked)
	}

	if msg.Target != nil {
		target, ok := state.Players[*msg.Target]
		if !ok || !target.Alive {
			return rejectConstraint(ConstraintAliveTarget)
		}
		if IsImmuneToWolfKill(target.Role) {
			return rejectConstraint(ConstraintNotImmuneToCheck)
		}
	}

	return accept()
}

func validateRevealAck(state *GameState, msg PlayerMessage) ValidationResult {
	if !hasPendingReveal(state, stepIdForRole(state, msg.AckRole)) {
		return reject(ReasonStepMismatch)
	}
	player, ok := state.Players[msg.Seat]
	if !ok || player.Role != msg.AckRole {
		return reject(ReasonSeatRoleMismatch)
	}
	if msg.AckRevision != state.Revision {
		return reject(ReasonAlreadyProcessed)
	}
	return accept()
}

func stepIdForRole(state *GameState, role RoleId) StepId {
	for _, s := range state.Plan {
		if s.RoleID == role {
			if _, hasReveal := RevealKindFor(s.StepID); hasReveal {
				return s.StepID
			}
		}
	}
	return ""
}

func validateHunterStatusViewed(state *GameState, msg PlayerMessage) ValidationResult {
	if state.WolfRobotContext.LearnedSeat == nil || state.WolfRobotReveal == nil {
		return reject(ReasonStepMismatch)
	}
	return accept()
}
