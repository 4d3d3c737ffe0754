package night

// MessageKind is the closed tag of the inbound PlayerMessage union
// (spec.md §4.3). Generalizes wolverix models.go's WSMessageType /
// ActionType closed-string-enum shape.
type MessageKind string

const (
	MessageAction                       MessageKind = "ACTION"
	MessageWolfVote                     MessageKind = "WOLF_VOTE"
	MessageRevealAck                    MessageKind = "REVEAL_ACK"
	MessageWolfRobotHunterStatusViewed  MessageKind = "WOLF_ROBOT_HUNTER_STATUS_VIEWED"
	MessageAdvance                      MessageKind = "ADVANCE"
)

// PlayerMessage is the closed union of everything a client may send. Only
// the fields relevant to Kind are populated; the rest stay zero. A real
// transport (internal/transport) decodes wire JSON into this shape before
// handing it to the engine — see internal/transport for the envelope.
type PlayerMessage struct {
	Kind MessageKind

	Seat Seat

	// ACTION
	Role   RoleId
	Target *Seat
	Extra  Extra

	// WOLF_VOTE
	// Target above is reused; a value of nil means "clear my vote" (the
	// wire's target:-1 sentinel, translated at the transport boundary).

	// REVEAL_ACK
	AckRole     RoleId
	AckRevision uint64

	// ADVANCE has no payload beyond Seat. Host progression does not go
	// through Submit: Engine.AdvanceNight checks the caller's UID against
	// HostUID, not this Seat.
}

// HostEventKind is the closed tag of the outbound event union.
type HostEventKind string

const (
	EventStateSnapshot HostEventKind = "STATE_SNAPSHOT"
	EventPrivateEffect HostEventKind = "PRIVATE_EFFECT"
)

// PrivateEffectPayload is the body of a PRIVATE_EFFECT event.
type PrivateEffectPayload struct {
	Kind       RevealKind
	TargetSeat Seat
	Result     string
}

// HostEvent is one outbound message. Only one of Snapshot / PrivateEffect
// is populated, selected by Kind.
type HostEvent struct {
	Kind HostEventKind

	Snapshot *BroadcastGameState

	PrivateEffectTarget  Seat
	PrivateEffect        PrivateEffectPayload
}
