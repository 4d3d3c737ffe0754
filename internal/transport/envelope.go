package transport

import "github.com/nightloom/nightcore/internal/night"

// ActionEnvelope is the wire JSON shape clients send for both the REST
// PerformAction endpoint and the WSTypeNightAction websocket message — the
// one place that decodes untyped wire JSON into a night.PlayerMessage, per
// protocol.go's own note that this package owns that boundary. Seat is
// deliberately absent: the server always resolves the caller's seat from
// the authenticated user, never from client-supplied input.
type ActionEnvelope struct {
	Kind string `json:"kind"`

	Role         string          `json:"role,omitempty"`
	Target       *int            `json:"target,omitempty"`
	SwapTargets  []int           `json:"swapTargets,omitempty"`
	StepResults  map[string]*int `json:"stepResults,omitempty"`
	Confirmed    *bool           `json:"confirmed,omitempty"`
	MultiTargets []int           `json:"multiTargets,omitempty"`

	AckRole     string `json:"ackRole,omitempty"`
	AckRevision uint64 `json:"ackRevision,omitempty"`
}

// ToPlayerMessage builds the engine-facing message for one seat.
func (env ActionEnvelope) ToPlayerMessage(seat night.Seat) night.PlayerMessage {
	msg := night.PlayerMessage{
		Kind: night.MessageKind(env.Kind),
		Seat: seat,
		Role: night.RoleId(env.Role),
	}

	// WOLF_VOTE's target:-1 sentinel means "clear my vote" and stays nil.
	if env.Target != nil && !(msg.Kind == night.MessageWolfVote && *env.Target == -1) {
		t := night.Seat(*env.Target)
		msg.Target = &t
	}

	msg.Extra = night.Extra{
		SwapTargets:  intsToSeats(env.SwapTargets),
		Confirmed:    env.Confirmed,
		MultiTargets: intsToSeats(env.MultiTargets),
	}
	if env.StepResults != nil {
		results := make(map[string]*night.Seat, len(env.StepResults))
		for k, v := range env.StepResults {
			if v == nil {
				results[k] = nil
				continue
			}
			s := night.Seat(*v)
			results[k] = &s
		}
		msg.Extra.StepResults = results
	}

	if env.AckRole != "" {
		msg.AckRole = night.RoleId(env.AckRole)
		msg.AckRevision = env.AckRevision
	}

	return msg
}

func intsToSeats(in []int) []night.Seat {
	if in == nil {
		return nil
	}
	out := make([]night.Seat, len(in))
	for i, v := range in {
		out[i] = night.Seat(v)
	}
	return out
}
