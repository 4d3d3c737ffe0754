package api

import (
	"encoding/json"
	"log"

	"github.com/nightloom/nightcore/internal/night"
	"github.com/nightloom/nightcore/internal/transport"
)

// NewActionDispatcher builds the transport.Hub.ActionHandler hook: it
// resolves the room a WSTypeNightAction arrived on to its running session,
// decodes the envelope, and submits it the same way PerformAction does —
// the websocket path and the REST path converge on the same
// night.Engine.Submit/AdvanceNight calls.
func NewActionDispatcher(games *GameManager) func(transport.IncomingAction) {
	return func(action transport.IncomingAction) {
		engine, _, ok := games.GetByRoom(action.RoomID)
		if !ok {
			log.Printf("api: action for room %s with no running session, dropping", action.RoomID)
			return
		}

		var env transport.ActionEnvelope
		if err := json.Unmarshal(action.Payload, &env); err != nil {
			log.Printf("api: malformed action payload from %s: %v", action.UserID, err)
			return
		}

		callerUID := action.UserID.String()

		if night.MessageKind(env.Kind) == night.MessageAdvance {
			engine.AdvanceNight(callerUID)
			return
		}

		seat, ok := SeatForUID(engine, callerUID)
		if !ok {
			log.Printf("api: user %s is not seated in room %s, dropping action", action.UserID, action.RoomID)
			return
		}
		engine.Submit(env.ToPlayerMessage(seat))
	}
}
