package night

import "sort"

// resolveRoleForChecks computes a seat's *apparent* role for identity-check
// purposes, honoring magician swap and wolf-robot disguise, without ever
// mutating the seat's stored role (spec.md §9: "do not mutate the
// player's stored role").
func resolveRoleForChecks(state *GameState, seat Seat) RoleId {
	role := state.Players[seat].Role

	if swap := state.CurrentNightResults.SwappedSeats; swap != nil {
		switch seat {
		case swap[0]:
			role = state.Players[swap[1]].Role
		case swap[1]:
			role = state.Players[swap[0]].Role
		}
	}

	if role == RoleWolfRobot && state.WolfRobotContext.DisguisedRole != "" {
		role = state.WolfRobotContext.DisguisedRole
	}

	return role
}

// PrivateEffectSend pairs a recipient seat with the payload to deliver.
type PrivateEffectSend struct {
	Seat    Seat
	Payload PrivateEffectPayload
}

// ResolveStep is C6: per-step side-effect computation run immediately
// after the reducer accepts an action for that step. It is pure: given the
// same state, stepID, config and Random draw it produces the same result.
// The caller is responsible for actually delivering the returned sends to
// a PrivateSink.
func ResolveStep(state GameState, stepID StepId, cfg NightConfig, rnd Random) (GameState, []PrivateEffectSend) {
	next := state.Clone()

	if stepID == StepWolfKill {
		resolveWolfTally(&next)
		return next, nil
	}

	kind, hasReveal := RevealKindFor(stepID)
	if !hasReveal {
		return next, nil
	}

	var targetSeat *Seat
	for _, a := range next.Actions {
		if a.SchemaID == stepID {
			targetSeat = a.TargetSeat
			break
		}
	}
	if targetSeat == nil {
		return next, nil
	}

	actorSeat := actorForStep(&next, stepID)
	result := computeCheckResult(&next, stepID, *targetSeat, cfg, rnd)

	record := &RevealRecord{TargetSeat: *targetSeat, Result: result, Revision: next.Revision}
	assignReveal(&next, kind, record)

	if stepID == StepWolfRobotLearn {
		next.WolfRobotContext.LearnedSeat = targetSeat
		if next.WolfRobotContext.DisguisedRole == "" {
			next.WolfRobotContext.DisguisedRole = resolveRoleForChecks(&next, *targetSeat)
		}
		if resolveRoleForChecks(&next, *targetSeat) == RoleHunter {
			next.WolfRobotHunterStatusViewed = false
		}
	}

	sends := []PrivateEffectSend{{
		Seat: actorSeat,
		Payload: PrivateEffectPayload{
			Kind:       kind,
			TargetSeat: *targetSeat,
			Result:     result,
		},
	}}
	return next, sends
}

func actorForStep(state *GameState, stepID StepId) Seat {
	role := RoleForStep(stepID)
	for seat, p := range state.Players {
		if p.Role == role {
			return seat
		}
	}
	return 0
}

func computeCheckResult(state *GameState, stepID StepId, target Seat, cfg NightConfig, rnd Random) string {
	apparent := resolveRoleForChecks(state, target)

	switch stepID {
	case StepSeerCheck:
		return teamLabel(TeamOf(apparent))
	case StepMirrorSeerCheck:
		return invertTeamLabel(teamLabel(TeamOf(apparent)))
	case StepDrunkSeerCheck:
		correct := teamLabel(TeamOf(apparent))
		if rnd != nil && rnd.Float64() < cfg.DrunkSeerThreshold {
			return correct
		}
		return invertTeamLabel(correct)
	case StepGargoyleCheck, StepPsychicCheck, StepPureWhiteCheck, StepWolfWitchCheck, StepWolfRobotLearn:
		return string(apparent)
	default:
		return string(apparent)
	}
}

func assignReveal(state *GameState, kind RevealKind, record *RevealRecord) {
	switch kind {
	case RevealSeer:
		state.SeerReveal = record
	case RevealMirrorSeer:
		state.MirrorSeerReveal = record
	case RevealDrunkSeer:
		state.DrunkSeerReveal = record
	case RevealGargoyle:
		state.GargoyleReveal = record
	case RevealPsychic:
		state.PsychicReveal = record
	case RevealWolfRobot:
		state.WolfRobotReveal = record
	case RevealPureWhite:
		state.PureWhiteReveal = record
	case RevealWolfWitch:
		state.WolfWitchReveal = record
	}
}

// resolveWolfTally recomputes the plurality wolf-kill target from
// WolfVotesBySeat (last-write-per-seat, P8), breaking ties by lowest
// target seat for determinism, and records the result both in
// CurrentNightResults and as the wolfKill step's single Actions entry.
// Also determines WolfKillDisabled: nightmare blocking any wolf-vote
// participant disables the whole night's kill (spec.md §8 S5). Mirrors
// the target into WitchContext.KilledSeat so the witch step (run later
// in the plan) knows who the wolves are killing when deciding her save.
func resolveWolfTally(state *GameState) {
	if blocked := state.CurrentNightResults.BlockedSeat; blocked != nil {
		if p, ok := state.Players[*blocked]; ok && DoesRoleParticipateInWolfVote(p.Role) {
			state.CurrentNightResults.WolfKillDisabled = true
		}
	}

	counts := make(map[Seat]int)
	for _, target := range state.CurrentNightResults.WolfVotesBySeat {
		counts[target]++
	}
	if len(counts) == 0 {
		state.CurrentNightResults.WolfKillTarget = nil
		state.WitchContext.KilledSeat = nil
	} else {
		targets := make([]Seat, 0, len(counts))
		for t := range counts {
			targets = append(targets, t)
		}
		sort.Slice(targets, func(i, j int) bool {
			if counts[targets[i]] != counts[targets[j]] {
				return counts[targets[i]] > counts[targets[j]]
			}
			return targets[i] < targets[j]
		})
		winner := targets[0]
		state.CurrentNightResults.WolfKillTarget = &winner
		state.WitchContext.KilledSeat = &winner
	}

	recordAction(state, StepWolfKill, PlayerMessage{
		Seat:   0,
		Target: clonePtr(state.CurrentNightResults.WolfKillTarget),
	})
}

// WolfVoteComplete reports whether every wolf-vote participant who is
// still alive and not nightmare-blocked has cast a vote — the trigger for
// the resolver's auto-advance suggestion under spec.md §4.6. A blocked
// seat can never cast a vote (validator.go rejects anything but skip from
// it), so it's excluded rather than stalling the step forever.
func WolfVoteComplete(state *GameState) bool {
	blocked := state.CurrentNightResults.BlockedSeat
	for seat, p := range state.Players {
		if !p.Alive || !DoesRoleParticipateInWolfVote(p.Role) {
			continue
		}
		if blocked != nil && *blocked == seat {
			continue
		}
		if _, voted := state.CurrentNightResults.WolfVotesBySeat[seat]; !voted {
			return false
		}
	}
	return true
}
