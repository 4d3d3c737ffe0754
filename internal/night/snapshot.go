package night

import (
	"sort"
	"strconv"
)

// BroadcastPlayer is one seat's transport-facing shape.
type BroadcastPlayer struct {
	Seat        string `json:"seat"`
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	Alive       bool   `json:"alive"`
}

// BroadcastAction is one transport-facing Actions log entry.
type BroadcastAction struct {
	ActorSeat  string  `json:"actorSeat"`
	SchemaID   string  `json:"schemaId"`
	TargetSeat *string `json:"targetSeat"`
}

// BroadcastReveal is the transport shape of a RevealRecord.
type BroadcastReveal struct {
	TargetSeat string `json:"targetSeat"`
	Result     string `json:"result"`
	Revision   uint64 `json:"revision"`
}

// BroadcastNightResults is the transport shape of CurrentNightResults,
// string-keyed throughout.
type BroadcastNightResults struct {
	WolfVotesBySeat  map[string]string `json:"wolfVotesBySeat"`
	WolfKillTarget   *string           `json:"wolfKillTarget"`
	WolfKillDisabled bool              `json:"wolfKillDisabled"`
	BlockedSeat      *string           `json:"blockedSeat"`
	GuardedSeat      *string           `json:"guardedSeat"`
	SavedSeat        *string           `json:"savedSeat"`
	PoisonedSeat     *string           `json:"poisonedSeat"`
	SwappedSeats     []string          `json:"swappedSeats"`
	HypnotizedSeats  []string          `json:"hypnotizedSeats"`
	SilencedSeat     *string           `json:"silencedSeat"`
	VotebannedSeat   *string           `json:"votebannedSeat"`
	CharmedSeat           *string `json:"charmedSeat"`
	DreamcatcherDreamSeat *string `json:"dreamcatcherDreamSeat"`
	CelebrityDreamSeat    *string `json:"celebrityDreamSeat"`
}

// BroadcastGameState is the canonical, idempotent transport shape of
// GameState: every map key that holds a seat number is canonicalized to
// its string form (spec.md §4.10), and every optional field the core
// model carries is present explicitly (as null when absent) rather than
// omitted. Three parts of GameState are not carried: the frozen Plan,
// NightResults.WolfTallySubmitted, and each recorded action's Extra
// payload.
type BroadcastGameState struct {
	RoomCode string `json:"roomCode"`
	HostUID  string `json:"hostUid"`
	Status   string `json:"status"`
	Revision uint64 `json:"revision"`

	Players map[string]BroadcastPlayer `json:"players"`

	CurrentStepID     *string  `json:"currentStepId"`
	IsAudioPlaying    bool     `json:"isAudioPlaying"`
	PendingRevealAcks []string `json:"pendingRevealAcks"`
	WolfVoteDeadline  *int64   `json:"wolfVoteDeadline"`

	Actions             []BroadcastAction     `json:"actions"`
	CurrentNightResults BroadcastNightResults `json:"currentNightResults"`

	SeerReveal       *BroadcastReveal `json:"seerReveal"`
	MirrorSeerReveal *BroadcastReveal `json:"mirrorSeerReveal"`
	DrunkSeerReveal  *BroadcastReveal `json:"drunkSeerReveal"`
	GargoyleReveal   *BroadcastReveal `json:"gargoyleReveal"`
	PsychicReveal    *BroadcastReveal `json:"psychicReveal"`
	WolfRobotReveal  *BroadcastReveal `json:"wolfRobotReveal"`
	PureWhiteReveal  *BroadcastReveal `json:"pureWhiteReveal"`
	WolfWitchReveal  *BroadcastReveal `json:"wolfWitchReveal"`

	WitchContext struct {
		KilledSeat            *string `json:"killedSeat"`
		SavePotionAvailable   bool    `json:"savePotionAvailable"`
		PoisonPotionAvailable bool    `json:"poisonPotionAvailable"`
	} `json:"witchContext"`
	WolfRobotContext struct {
		LearnedSeat   *string `json:"learnedSeat"`
		DisguisedRole string  `json:"disguisedRole"`
	} `json:"wolfRobotContext"`
	WolfRobotHunterStatusViewed bool           `json:"wolfRobotHunterStatusViewed"`
	ConfirmStatus               *ConfirmStatus `json:"confirmStatus"`

	LastNightDeaths []string `json:"lastNightDeaths"`
	HypnotizedSeats []string `json:"hypnotizedSeats"`
}

func seatStr(s Seat) string { return strconv.Itoa(int(s)) }

func seatPtrStr(s *Seat) *string {
	if s == nil {
		return nil
	}
	v := seatStr(*s)
	return &v
}

func seatsStr(seats []Seat) []string {
	out := make([]string, len(seats))
	for i, s := range seats {
		out[i] = seatStr(s)
	}
	return out
}

// Normalize is C10: it builds the canonical, idempotent broadcast shape
// from a GameState. Calling it twice on the same GameState value always
// yields a structurally-equal result, and BroadcastGameState.Renormalize
// below is a literal identity — applying normalization to an
// already-normalized snapshot changes nothing, satisfying
// normalize(normalize(s)) = normalize(s) (spec.md P5).
func Normalize(state GameState) BroadcastGameState {
	out := BroadcastGameState{
		RoomCode: state.RoomCode,
		HostUID:  state.HostUID,
		Status:   string(state.Status),
		Revision: state.Revision,

		Players: make(map[string]BroadcastPlayer, len(state.Players)),

		CurrentStepID:     nil,
		IsAudioPlaying:    state.IsAudioPlaying,
		PendingRevealAcks: []string{},
		WolfVoteDeadline:  nil,

		Actions: make([]BroadcastAction, 0, len(state.Actions)),

		LastNightDeaths: seatsStr(state.LastNightDeaths),
		HypnotizedSeats: seatsStr(state.HypnotizedSeats),
	}

	seats := make([]Seat, 0, len(state.Players))
	for seat := range state.Players {
		seats = append(seats, seat)
	}
	sort.Slice(seats, func(i, j int) bool { return seats[i] < seats[j] })
	for _, seat := range seats {
		p := state.Players[seat]
		out.Players[seatStr(seat)] = BroadcastPlayer{
			Seat: seatStr(seat), UID: p.UID, DisplayName: p.DisplayName,
			Role: string(p.Role), Alive: p.Alive,
		}
	}

	if state.CurrentStepID != nil {
		v := string(*state.CurrentStepID)
		out.CurrentStepID = &v
	}
	for _, s := range state.PendingRevealAcks {
		out.PendingRevealAcks = append(out.PendingRevealAcks, string(s))
	}
	if state.WolfVoteDeadline != nil {
		v := state.WolfVoteDeadline.UnixMilli()
		out.WolfVoteDeadline = &v
	}

	for _, a := range state.Actions {
		out.Actions = append(out.Actions, BroadcastAction{
			ActorSeat:  seatStr(a.ActorSeat),
			SchemaID:   string(a.SchemaID),
			TargetSeat: seatPtrStr(a.TargetSeat),
		})
	}

	nr := state.CurrentNightResults
	votes := make(map[string]string, len(nr.WolfVotesBySeat))
	for k, v := range nr.WolfVotesBySeat {
		votes[seatStr(k)] = seatStr(v)
	}
	out.CurrentNightResults = BroadcastNightResults{
		WolfVotesBySeat:  votes,
		WolfKillTarget:   seatPtrStr(nr.WolfKillTarget),
		WolfKillDisabled: nr.WolfKillDisabled,
		BlockedSeat:      seatPtrStr(nr.BlockedSeat),
		GuardedSeat:      seatPtrStr(nr.GuardedSeat),
		SavedSeat:        seatPtrStr(nr.SavedSeat),
		PoisonedSeat:     seatPtrStr(nr.PoisonedSeat),
		HypnotizedSeats:  seatsStr(nr.HypnotizedSeats),
		SilencedSeat:     seatPtrStr(nr.SilencedSeat),
		VotebannedSeat:   seatPtrStr(nr.VotebannedSeat),
		CharmedSeat:            seatPtrStr(nr.CharmedSeat),
		DreamcatcherDreamSeat:  seatPtrStr(nr.DreamcatcherDreamSeat),
		CelebrityDreamSeat:     seatPtrStr(nr.CelebrityDreamSeat),
	}
	if nr.SwappedSeats != nil {
		out.CurrentNightResults.SwappedSeats = []string{seatStr(nr.SwappedSeats[0]), seatStr(nr.SwappedSeats[1])}
	} else {
		out.CurrentNightResults.SwappedSeats = []string{}
	}

	out.SeerReveal = normalizeReveal(state.SeerReveal)
	out.MirrorSeerReveal = normalizeReveal(state.MirrorSeerReveal)
	out.DrunkSeerReveal = normalizeReveal(state.DrunkSeerReveal)
	out.GargoyleReveal = normalizeReveal(state.GargoyleReveal)
	out.PsychicReveal = normalizeReveal(state.PsychicReveal)
	out.WolfRobotReveal = normalizeReveal(state.WolfRobotReveal)
	out.PureWhiteReveal = normalizeReveal(state.PureWhiteReveal)
	out.WolfWitchReveal = normalizeReveal(state.WolfWitchReveal)

	out.WitchContext.KilledSeat = seatPtrStr(state.WitchContext.KilledSeat)
	out.WitchContext.SavePotionAvailable = state.WitchContext.SavePotionAvailable
	out.WitchContext.PoisonPotionAvailable = state.WitchContext.PoisonPotionAvailable

	out.WolfRobotContext.LearnedSeat = seatPtrStr(state.WolfRobotContext.LearnedSeat)
	out.WolfRobotContext.DisguisedRole = string(state.WolfRobotContext.DisguisedRole)

	out.WolfRobotHunterStatusViewed = state.WolfRobotHunterStatusViewed
	out.ConfirmStatus = state.ConfirmStatus

	return out
}

func normalizeReveal(r *RevealRecord) *BroadcastReveal {
	if r == nil {
		return nil
	}
	return &BroadcastReveal{TargetSeat: seatStr(r.TargetSeat), Result: r.Result, Revision: r.Revision}
}

// Renormalize is the identity fixed point: BroadcastGameState is already
// canonical, so renormalizing it is a no-op. This is what makes
// Normalize(Normalize-equivalent input) stable — see P5.
func (b BroadcastGameState) Renormalize() BroadcastGameState { return b }
