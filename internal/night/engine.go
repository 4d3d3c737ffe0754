package night

import "time"

// Engine threads a GameState through the pure C4-C10 functions and drives
// the injected collaborators. It replaces the "GameStateService.getInstance"
// singleton shape flagged in spec.md §9: callers construct one Engine per
// game and hold it explicitly — there is no process-wide mutable state
// here, only this struct's fields.
type Engine struct {
	state   GameState
	clock   Clock
	random  Random
	sink    PrivateSink
	bcast   Broadcast
	cfg     NightConfig
	tracker *ProgressionTracker
}

// NewEngine constructs a lobby-status game from a seating. Seats must be
// unique and every player's Role must be a catalog member (spec.md §6
// "Game-template configuration"); callers (internal/api) are responsible
// for producing a valid seating before calling this.
func NewEngine(roomCode, hostUID string, players map[Seat]Player, clock Clock, random Random, sink PrivateSink, bcast Broadcast, cfg NightConfig) *Engine {
	return &Engine{
		state: GameState{
			RoomCode: roomCode,
			HostUID:  hostUID,
			Status:   StatusLobby,
			Players:  players,
		},
		clock:   clock,
		random:  random,
		sink:    sink,
		bcast:   bcast,
		cfg:     cfg,
		tracker: &ProgressionTracker{},
	}
}

// State returns the current authoritative state as a Clone: its maps,
// slices and top-level pointers are copied, but each Actions entry's
// TargetSeat and Extra and each Plan step's Constraints still share
// storage with the engine's copy.
func (e *Engine) State() GameState {
	return e.state.Clone()
}

// Snapshot returns the canonical transport shape of the current state.
func (e *Engine) Snapshot() BroadcastGameState {
	return Normalize(e.state)
}

// StartNight freezes the plan and begins the first step, broadcasting the
// resulting state.
func (e *Engine) StartNight() RejectReason {
	next, reason := StartNight(e.state)
	if reason != ReasonNone {
		return reason
	}
	e.state = next
	e.publish()
	return ReasonNone
}

// Submit validates and applies one inbound PlayerMessage, running the
// resolver for the step it belongs to and delivering any private effects,
// then broadcasting the new state. It is the single entry point the
// transport layer calls for everything except ADVANCE (see AdvanceNight).
func (e *Engine) Submit(msg PlayerMessage) ValidationResult {
	result := Validate(&e.state, msg)
	if !result.Accepted {
		return result
	}

	e.state = Reduce(e.state, msg)

	if msg.Kind == MessageAction || msg.Kind == MessageWolfVote {
		if e.state.CurrentStepID != nil {
			next, sends := ResolveStep(e.state, *e.state.CurrentStepID, e.cfg, e.random)
			e.state = next
			for _, send := range sends {
				if e.sink != nil {
					e.sink.Send(send.Seat, send.Payload)
				}
			}
		}
	}

	e.publish()
	return result
}

// AdvanceNight handles the host's ADVANCE call: it consults the
// progression evaluator and, if permitted, moves to the next step or ends
// the night.
func (e *Engine) AdvanceNight(callerUID string) AdvanceOutcome {
	var now time.Time
	if e.clock != nil {
		now = e.clock.Now()
	}
	outcome := Advance(e.state, callerUID, now, e.tracker)
	e.state = outcome.State
	if outcome.Decision != DecisionNone {
		e.publish()
	}
	return outcome
}

// SetAudioPlaying is the transport layer's hook for the narration-finished
// signal (see controller.go).
func (e *Engine) SetAudioPlaying(playing bool) {
	e.state = SetAudioPlaying(e.state, playing)
	e.publish()
}

func (e *Engine) publish() {
	if e.bcast != nil {
		e.bcast.Broadcast(Normalize(e.state))
	}
}
