// Package night implements the authoritative night-phase state machine:
// role catalog, plan construction, message validation, reduction, resolver
// side effects, death calculation, flow control and snapshot normalization.
//
// Every exported function in this package is pure or depends only on the
// collaborators in collaborators.go. Nothing here touches a network,
// database, or filesystem.
package night

import "time"

// Seat identifies a player's chair at the table. Seats are small and dense
// (≤ 20 per game), so an unsigned byte is the natural representation.
type Seat uint8

// Status is the coarse lifecycle state of a game.
type Status string

const (
	StatusLobby   Status = "lobby"
	StatusOngoing Status = "ongoing"
	StatusEnded   Status = "ended"
)

// Player is one seated participant.
type Player struct {
	Seat        Seat
	UID         string
	DisplayName string
	Role        RoleId
	Alive       bool
}

// RevealRecord is the latest identity-check result of one kind.
type RevealRecord struct {
	TargetSeat Seat
	Result     string
	Revision   uint64
}

// WitchContext tracks the witch's one-time potions across the night.
type WitchContext struct {
	KilledSeat           *Seat
	SavePotionAvailable  bool
	PoisonPotionAvailable bool
}

// WolfRobotContext tracks what the wolf-robot has learned and who it
// disguises as for identity-check purposes once it has learned.
type WolfRobotContext struct {
	LearnedSeat   *Seat
	DisguisedRole RoleId
}

// ConfirmStatus is a generic role/status pair used by confirm-schema steps
// that need to remember their own outcome beyond the step's lifetime.
type ConfirmStatus struct {
	Role   RoleId
	Status string
}

// Extra carries the schema-specific payload of an ACTION message. Exactly
// the fields relevant to the current step's schema are populated; the rest
// stay at their zero value. This mirrors the wire shape in protocol.go
// instead of a type-switched union, because every schema's extra is a
// small, disjoint set of optional fields and a flexible struct keeps the
// validator and reducer table-driven instead of branching per role.
type Extra struct {
	// swap: ordered pair of distinct seats, or nil for skip.
	SwapTargets []Seat
	// compound (witch): named sub-results, each seat|null.
	StepResults map[string]*Seat
	// confirm.
	Confirmed *bool
	// multiChooseSeat (piper).
	MultiTargets []Seat
}

// NightResults is the per-step scratch space rebuilt fresh at the start of
// every night and mutated only by the reducer and the resolver layer
// (resolveWolfTally writes the wolf-kill fields).
type NightResults struct {
	WolfVotesBySeat map[Seat]Seat
	WolfKillTarget   *Seat
	WolfKillDisabled bool
	// WolfTallySubmitted is set when the lead wolf submits the tallied
	// kill target as a single ACTION (schema wolfVote) instead of each
	// wolf casting an individual WOLF_VOTE — spec.md §4.6's alternate
	// submission path. It alone satisfies the wolfKill step regardless of
	// how many wolves are still alive or blocked.
	WolfTallySubmitted bool
	BlockedSeat      *Seat
	GuardedSeat      *Seat
	SavedSeat        *Seat
	PoisonedSeat     *Seat
	SwappedSeats     *[2]Seat
	HypnotizedSeats  []Seat
	SilencedSeat     *Seat
	VotebannedSeat   *Seat
	// CharmedSeat and the two dream-link fields below generalize the
	// spec's "Role-context" bucket to carry the wolf-queen charm target,
	// the dreamcatcher's dreamt seat, and the celebrity's dream target —
	// all of which the death calculator (death.go rules 3-4-5) needs but
	// which the distilled state model folds into "Role-context" without
	// naming individually. See DESIGN.md C10.
	CharmedSeat            *Seat
	DreamcatcherDreamSeat  *Seat
	CelebrityDreamSeat     *Seat
}

func newNightResults() NightResults {
	return NightResults{WolfVotesBySeat: make(map[Seat]Seat)}
}

// RecordedAction is one append-only entry in the night's action log.
type RecordedAction struct {
	ActorSeat  Seat
	SchemaID   StepId
	TargetSeat *Seat
	Extra      Extra
}

// GameState is the full authoritative snapshot the core owns. It is never
// mutated in place outside of Clone-then-replace: every reducer call
// returns a new value.
type GameState struct {
	RoomCode string
	HostUID  string
	Status   Status
	Revision uint64

	Players map[Seat]Player

	CurrentStepID     *StepId
	IsAudioPlaying    bool
	PendingRevealAcks []StepId
	WolfVoteDeadline  *time.Time

	Actions             []RecordedAction
	CurrentNightResults NightResults

	SeerReveal        *RevealRecord
	MirrorSeerReveal  *RevealRecord
	DrunkSeerReveal   *RevealRecord
	GargoyleReveal    *RevealRecord
	PsychicReveal     *RevealRecord
	WolfRobotReveal   *RevealRecord
	PureWhiteReveal   *RevealRecord
	WolfWitchReveal   *RevealRecord

	WitchContext                WitchContext
	WolfRobotContext             WolfRobotContext
	WolfRobotHunterStatusViewed bool
	ConfirmStatus                *ConfirmStatus

	LastNightDeaths []Seat

	// HypnotizedSeats persists across nights (piper's charm does not
	// reset at night end), unlike CurrentNightResults.HypnotizedSeats
	// which is this night's newly-hypnotized set.
	HypnotizedSeats []Seat

	// Plan is frozen once the first night begins.
	Plan []NightStep
}

// Clone copies every map, slice and top-level pointer so callers can hand
// out a GameState without risking downstream mutation of the authoritative
// copy. The copy is one level deep for Actions and Plan: each
// RecordedAction's TargetSeat and Extra, and each NightStep's Constraints,
// are shared with the original.
func (s GameState) Clone() GameState {
	out := s

	out.Players = make(map[Seat]Player, len(s.Players))
	for k, v := range s.Players {
		out.Players[k] = v
	}

	out.PendingRevealAcks = append([]StepId(nil), s.PendingRevealAcks...)
	out.WolfVoteDeadline = clonePtr(s.WolfVoteDeadline)

	out.Actions = append([]RecordedAction(nil), s.Actions...)

	out.CurrentNightResults = s.CurrentNightResults.clone()

	out.SeerReveal = cloneReveal(s.SeerReveal)
	out.MirrorSeerReveal = cloneReveal(s.MirrorSeerReveal)
	out.DrunkSeerReveal = cloneReveal(s.DrunkSeerReveal)
	out.GargoyleReveal = cloneReveal(s.GargoyleReveal)
	out.PsychicReveal = cloneReveal(s.PsychicReveal)
	out.WolfRobotReveal = cloneReveal(s.WolfRobotReveal)
	out.PureWhiteReveal = cloneReveal(s.PureWhiteReveal)
	out.WolfWitchReveal = cloneReveal(s.WolfWitchReveal)

	out.WitchContext.KilledSeat = clonePtr(s.WitchContext.KilledSeat)
	out.WolfRobotContext.LearnedSeat = clonePtr(s.WolfRobotContext.LearnedSeat)
	if s.ConfirmStatus != nil {
		cs := *s.ConfirmStatus
		out.ConfirmStatus = &cs
	}

	out.LastNightDeaths = append([]Seat(nil), s.LastNightDeaths...)
	out.HypnotizedSeats = append([]Seat(nil), s.HypnotizedSeats...)
	out.Plan = append([]NightStep(nil), s.Plan...)
	out.CurrentStepID = cloneStepPtr(s.CurrentStepID)

	return out
}

func (nr NightResults) clone() NightResults {
	out := nr
	out.WolfVotesBySeat = make(map[Seat]Seat, len(nr.WolfVotesBySeat))
	for k, v := range nr.WolfVotesBySeat {
		out.WolfVotesBySeat[k] = v
	}
	out.WolfKillTarget = clonePtr(nr.WolfKillTarget)
	out.BlockedSeat = clonePtr(nr.BlockedSeat)
	out.GuardedSeat = clonePtr(nr.GuardedSeat)
	out.SavedSeat = clonePtr(nr.SavedSeat)
	out.PoisonedSeat = clonePtr(nr.PoisonedSeat)
	if nr.SwappedSeats != nil {
		cp := *nr.SwappedSeats
		out.SwappedSeats = &cp
	}
	out.HypnotizedSeats = append([]Seat(nil), nr.HypnotizedSeats...)
	out.SilencedSeat = clonePtr(nr.SilencedSeat)
	out.VotebannedSeat = clonePtr(nr.VotebannedSeat)
	out.CharmedSeat = clonePtr(nr.CharmedSeat)
	out.DreamcatcherDreamSeat = clonePtr(nr.DreamcatcherDreamSeat)
	out.CelebrityDreamSeat = clonePtr(nr.CelebrityDreamSeat)
	return out
}

func cloneReveal(r *RevealRecord) *RevealRecord {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func cloneStepPtr(p *StepId) *StepId {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// SeatPtr is a small convenience constructor used throughout the package
// and by callers building messages: &seat without a throwaway local.
func SeatPtr(s Seat) *Seat { return &s }
