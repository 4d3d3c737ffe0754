package transport

import (
	"log"

	"github.com/google/uuid"

	"github.com/nightloom/nightcore/internal/models"
	"github.com/nightloom/nightcore/internal/night"
)

// RoomChannel implements night.Broadcast and night.PrivateSink on top of a
// Hub, for exactly one room. The night core addresses players by Seat; a
// seat's occupant never changes once a night starts (only the role
// resolveRoleForChecks reports for that seat can, via magician swap or
// wolf-robot disguise), so a static Seat->uuid.UUID map built from the
// room's seating at StartSession time is all a RoomChannel ever needs —
// it does not have to read back through the engine it is wired into.
type RoomChannel struct {
	hub        *Hub
	roomID     uuid.UUID
	seatToUser map[night.Seat]uuid.UUID
}

// NewRoomChannel binds a Hub to one room, given the seating it was started
// with.
func NewRoomChannel(hub *Hub, roomID uuid.UUID, seatToUser map[night.Seat]uuid.UUID) *RoomChannel {
	return &RoomChannel{hub: hub, roomID: roomID, seatToUser: seatToUser}
}

// Broadcast sends a full STATE_SNAPSHOT to every client in the room.
func (rc *RoomChannel) Broadcast(state night.BroadcastGameState) {
	rc.hub.BroadcastToRoom(rc.roomID, models.WSTypeNightState, state)
}

// Send delivers a PRIVATE_EFFECT to the one seat's connected client, if any.
func (rc *RoomChannel) Send(seat night.Seat, payload night.PrivateEffectPayload) {
	userID, ok := rc.seatToUser[seat]
	if !ok {
		log.Printf("transport: no connected user for seat %d, dropping private effect", seat)
		return
	}
	rc.hub.SendToUser(rc.roomID, userID, models.WSTypeNightPrivateEffect, payload)
}
