package api

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nightloom/nightcore/internal/night"
)

// GameManager holds one night.Engine per active session, mirroring
// wolverix engine.go's in-process session map but keyed to the pure core
// instead of a DB-backed Engine. assignRoles below is the direct
// descendant of wolverix's own role-pool-then-shuffle routine.
type GameManager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*night.Engine
	byRoom   map[uuid.UUID]uuid.UUID
	cfg      night.NightConfig

	// ActiveSessions, if set, tracks session count for /metrics.
	ActiveSessions prometheus.Gauge
}

func NewGameManager(cfg night.NightConfig) *GameManager {
	return &GameManager{
		sessions: make(map[uuid.UUID]*night.Engine),
		byRoom:   make(map[uuid.UUID]uuid.UUID),
		cfg:      cfg,
	}
}

func (gm *GameManager) Get(sessionID uuid.UUID) (*night.Engine, bool) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	e, ok := gm.sessions[sessionID]
	return e, ok
}

// GetByRoom resolves the session currently running for a room, for callers
// (the transport hub's ActionHandler) that only know the room a websocket
// client connected to.
func (gm *GameManager) GetByRoom(roomID uuid.UUID) (*night.Engine, uuid.UUID, bool) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	sessionID, ok := gm.byRoom[roomID]
	if !ok {
		return nil, uuid.Nil, false
	}
	e, ok := gm.sessions[sessionID]
	return e, sessionID, ok
}

func (gm *GameManager) put(roomID, sessionID uuid.UUID, e *night.Engine) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.sessions[sessionID] = e
	gm.byRoom[roomID] = sessionID
	if gm.ActiveSessions != nil {
		gm.ActiveSessions.Inc()
	}
}

func (gm *GameManager) Remove(roomID, sessionID uuid.UUID) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	delete(gm.sessions, sessionID)
	delete(gm.byRoom, roomID)
	if gm.ActiveSessions != nil {
		gm.ActiveSessions.Dec()
	}
}

// roomPlayer is the seating-relevant slice of a joined room_players row.
type roomPlayer struct {
	UserID   uuid.UUID
	Position int
	Username string
}

// StartSession builds a seating from joined room players, assigns roles
// by the enabled-roles/werewolf-count ratio, constructs a fresh
// night.Engine, starts its night and registers it under a new session ID.
func (gm *GameManager) StartSession(roomID uuid.UUID, roomCode, hostUID string, players []roomPlayer, werewolfCount int, enabledRoles []string, sink night.PrivateSink, bcast night.Broadcast, clock night.Clock, rnd night.Random) (uuid.UUID, *night.Engine, error) {
	if len(players) < 6 {
		return uuid.Nil, nil, fmt.Errorf("not enough players to start game (minimum 6)")
	}

	seating, err := assignSeating(players, werewolfCount, enabledRoles)
	if err != nil {
		return uuid.Nil, nil, err
	}

	sessionID := uuid.New()
	engine := night.NewEngine(roomCode, hostUID, seating, clock, rnd, sink, bcast, gm.cfg)
	if reason := engine.StartNight(); reason != night.ReasonNone {
		return uuid.Nil, nil, fmt.Errorf("failed to start night: %s", reason)
	}

	gm.put(roomID, sessionID, engine)
	return sessionID, engine, nil
}

// assignSeating builds the role pool (werewolfCount wolves, one slot per
// enabled role, the rest villagers), shuffles it, and seats players in
// room position order — werewolfCount defaults via calculateWerewolfCount
// when zero, same ratio wolverix used.
func assignSeating(players []roomPlayer, werewolfCount int, enabledRoles []string) (map[night.Seat]night.Player, error) {
	playerCount := len(players)
	if werewolfCount == 0 {
		werewolfCount = calculateWerewolfCount(playerCount)
	}
	if len(enabledRoles) == 0 {
		enabledRoles = []string{"seer", "witch", "hunter", "guard"}
	}

	pool := make([]night.RoleId, 0, playerCount)
	for i := 0; i < werewolfCount; i++ {
		pool = append(pool, night.RoleWolf)
	}
	for _, name := range enabledRoles {
		pool = append(pool, night.RoleId(name))
	}
	for len(pool) < playerCount {
		pool = append(pool, night.RoleVillager)
	}
	if len(pool) > playerCount {
		return nil, fmt.Errorf("role pool (%d) exceeds seat count (%d)", len(pool), playerCount)
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	r.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	seating := make(map[night.Seat]night.Player, playerCount)
	for i, p := range players {
		seat := night.Seat(p.Position)
		seating[seat] = night.Player{
			Seat:        seat,
			UID:         p.UserID.String(),
			DisplayName: p.Username,
			Role:        pool[i],
			Alive:       true,
		}
	}
	return seating, nil
}

// SeatToUserMap builds the static Seat->uuid.UUID map a transport.RoomChannel
// needs, straight from room position — independent of the role shuffle, so
// it can be built before StartSession runs.
func SeatToUserMap(players []roomPlayer) map[night.Seat]uuid.UUID {
	m := make(map[night.Seat]uuid.UUID, len(players))
	for _, p := range players {
		m[night.Seat(p.Position)] = p.UserID
	}
	return m
}

// SeatForUID finds the seat a user occupies in a session, used to turn an
// authenticated caller into the Seat a PlayerMessage addresses — the
// server never trusts a client-supplied seat number.
func SeatForUID(e *night.Engine, uid string) (night.Seat, bool) {
	state := e.State()
	for seat, p := range state.Players {
		if p.UID == uid {
			return seat, true
		}
	}
	return 0, false
}

// calculateWerewolfCount mirrors wolverix's step table exactly.
func calculateWerewolfCount(playerCount int) int {
	switch {
	case playerCount <= 8:
		return 2
	case playerCount <= 12:
		return 3
	case playerCount <= 18:
		return 4
	default:
		return 5
	}
}
