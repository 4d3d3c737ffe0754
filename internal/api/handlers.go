package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	rtctokenbuilder "github.com/AgoraIO-Community/go-tokenbuilder/rtctokenbuilder"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nightloom/nightcore/internal/config"
	"github.com/nightloom/nightcore/internal/middleware"
	"github.com/nightloom/nightcore/internal/models"
	"github.com/nightloom/nightcore/internal/night"
	"github.com/nightloom/nightcore/internal/store"
	"github.com/nightloom/nightcore/internal/transport"
	"github.com/nightloom/nightcore/internal/voice"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Configure properly in production
	},
}

type Handler struct {
	store            *store.Store
	games            *GameManager
	voiceService     *voice.Service
	wsHub            *transport.Hub
	lifecycleManager RoomLifecycleManager
}

// RoomLifecycleManager interface for activity tracking
type RoomLifecycleManager interface {
	UpdateActivity(ctx context.Context, roomID uuid.UUID) error
	ExtendTimeout(ctx context.Context, roomID uuid.UUID, hostUserID uuid.UUID) error
}

func NewHandler(s *store.Store, games *GameManager, voiceService *voice.Service, wsHub *transport.Hub, lifecycleManager RoomLifecycleManager) *Handler {
	return &Handler{
		store:            s,
		games:            games,
		voiceService:     voiceService,
		wsHub:            wsHub,
		lifecycleManager: lifecycleManager,
	}
}

// ============================================================================
// ROOM HANDLERS
// ============================================================================

// CreateRoom creates a new game room
func (h *Handler) CreateRoom(c *gin.Context) {
	userID, _ := c.Get("user_id")
	log.Printf("✓ CreateRoom - User %v attempting to create room", userID)

	var req models.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("❌ CreateRoom - Invalid request body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Printf("✓ CreateRoom - Request parsed: name=%s, maxPlayers=%d, isPrivate=%v", req.Name, req.MaxPlayers, req.IsPrivate)

	// Set defaults
	if req.MaxPlayers == 0 {
		req.MaxPlayers = 12
	}

	// Validate MaxPlayers after setting default
	if req.MaxPlayers < 6 || req.MaxPlayers > 24 {
		log.Printf("❌ CreateRoom - Invalid MaxPlayers: %d (must be between 6 and 24)", req.MaxPlayers)
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_players must be between 6 and 24"})
		return
	}

	if req.Language == "" {
		req.Language = "en"
	}
	if req.Config.DayPhaseSeconds == 0 {
		req.Config.DayPhaseSeconds = 120
	}
	if req.Config.NightPhaseSeconds == 0 {
		req.Config.NightPhaseSeconds = 60
	}
	if req.Config.VotingSeconds == 0 {
		req.Config.VotingSeconds = 60
	}

	log.Printf("✓ CreateRoom - After defaults: maxPlayers=%d, language=%s", req.MaxPlayers, req.Language)

	ctx := context.Background()

	// Check if user is already in an active room
	var existingRoomCount int
	err := h.store.PG.QueryRow(ctx, `
		SELECT COUNT(*) FROM room_players rp
		JOIN rooms r ON rp.room_id = r.id
		WHERE rp.user_id = $1
		  AND rp.left_at IS NULL
		  AND r.status IN ('waiting', 'in_progress')
	`, userID).Scan(&existingRoomCount)

	if err != nil && err != sql.ErrNoRows {
		log.Printf("❌ CreateRoom - Failed to check existing rooms: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify room status"})
		return
	}

	if existingRoomCount > 0 {
		log.Printf("❌ CreateRoom - User %v already in an active room", userID)
		c.JSON(http.StatusBadRequest, gin.H{"error": "you are already in an active room. Please leave it before creating a new one"})
		return
	}

	// Generate unique room code
	roomCode := generateRoomCode()
	roomID := uuid.New()
	agoraChannelName := fmt.Sprintf("room_%s", roomID.String()[:8])

	// Validate channel name
	if err := h.voiceService.ValidateChannelName(agoraChannelName); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create voice channel"})
		return
	}

	configJSON, _ := json.Marshal(req.Config)

	// Create room in database
	_, err = h.store.PG.Exec(ctx, `
		INSERT INTO rooms (id, room_code, name, host_user_id, is_private, max_players,
			current_players, language, config, agora_channel_name, agora_app_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, roomID, roomCode, req.Name, userID, req.IsPrivate, req.MaxPlayers,
		1, req.Language, configJSON, agoraChannelName, h.voiceService.GetAppID(), "waiting")

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create room"})
		return
	}

	// Add host as player
	playerID := uuid.New()
	_, err = h.store.PG.Exec(ctx, `
		INSERT INTO room_players (id, room_id, user_id, is_ready, is_host, seat_position)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, playerID, roomID, userID, false, true, 0)

	if err != nil {
		log.Printf("❌ CreateRoom - Failed to add host to room: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add host to room"})
		return
	}

	// Fetch the host user details to include in response
	var hostUser models.User
	err = h.store.PG.QueryRow(ctx, `
		SELECT id, username, email, avatar_url, language, is_online
		FROM users WHERE id = $1
	`, userID).Scan(
		&hostUser.ID, &hostUser.Username, &hostUser.Email, &hostUser.AvatarURL,
		&hostUser.Language, &hostUser.IsOnline,
	)
	if err != nil {
		log.Printf("❌ CreateRoom - Failed to fetch host user: %v", err)
	}

	// Create room player object for host
	seatPos := 0
	hostPlayer := models.RoomPlayer{
		ID:           playerID,
		RoomID:       roomID,
		UserID:       userID.(uuid.UUID),
		IsReady:      false,
		IsHost:       true,
		SeatPosition: &seatPos,
		JoinedAt:     time.Now(),
		User:         &hostUser,
	}

	appID := h.voiceService.GetAppID()
	room := models.Room{
		ID:               roomID,
		RoomCode:         roomCode,
		Name:             req.Name,
		HostUserID:       userID.(uuid.UUID),
		Status:           models.RoomStatusWaiting,
		IsPrivate:        req.IsPrivate,
		MaxPlayers:       req.MaxPlayers,
		CurrentPlayers:   1,
		Language:         req.Language,
		Config:           req.Config,
		AgoraChannelName: agoraChannelName,
		AgoraAppID:       &appID,
		CreatedAt:        time.Now(),
		Players:          []models.RoomPlayer{hostPlayer},
	}

	log.Printf("✓ CreateRoom - Room created successfully: %s (code: %s) with %d players", room.Name, roomCode, len(room.Players))
	c.JSON(http.StatusCreated, room)
}

// GetRooms returns list of available rooms
func (h *Handler) GetRooms(c *gin.Context) {
	ctx := context.Background()

	rows, err := h.store.PG.Query(ctx, `
		SELECT r.id, r.room_code, r.name, r.host_user_id, r.status, r.is_private,
			r.max_players, r.current_players, r.language, r.created_at,
			u.username, u.avatar_url
		FROM rooms r
		JOIN users u ON r.host_user_id = u.id
		WHERE r.status = 'waiting' AND NOT r.is_private
		ORDER BY r.created_at DESC
		LIMIT 50
	`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch rooms"})
		return
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		var room models.Room
		var host models.User
		var avatarURL sql.NullString

		err := rows.Scan(&room.ID, &room.RoomCode, &room.Name, &room.HostUserID, &room.Status,
			&room.IsPrivate, &room.MaxPlayers, &room.CurrentPlayers, &room.Language, &room.CreatedAt,
			&host.Username, &avatarURL)
		if err != nil {
			continue
		}

		if avatarURL.Valid {
			host.AvatarURL = &avatarURL.String
		}
		host.ID = room.HostUserID
		room.Host = &host
		rooms = append(rooms, room)
	}

	c.JSON(http.StatusOK, rooms)
}

// GetRoom returns details of a specific room
func (h *Handler) GetRoom(c *gin.Context) {
	roomIDStr := c.Param("roomId")
	roomID, err := uuid.Parse(roomIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room ID"})
		return
	}

	ctx := context.Background()

	var room models.Room
	var configJSON json.RawMessage
	err = h.store.PG.QueryRow(ctx, `
		SELECT id, room_code, name, host_user_id, status, is_private,
			max_players, current_players, language, config, agora_channel_name,
			agora_app_id, created_at, started_at
		FROM rooms WHERE id = $1
	`, roomID).Scan(
		&room.ID, &room.RoomCode, &room.Name, &room.HostUserID, &room.Status,
		&room.IsPrivate, &room.MaxPlayers, &room.CurrentPlayers, &room.Language,
		&configJSON, &room.AgoraChannelName, &room.AgoraAppID, &room.CreatedAt, &room.StartedAt,
	)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	json.Unmarshal(configJSON, &room.Config)

	// Get players
	rows, err := h.store.PG.Query(ctx, `
		SELECT rp.id, rp.user_id, rp.is_ready, rp.is_host, rp.seat_position, rp.joined_at,
			u.username, u.avatar_url
		FROM room_players rp
		JOIN users u ON rp.user_id = u.id
		WHERE rp.room_id = $1 AND rp.left_at IS NULL
		ORDER BY rp.seat_position
	`, roomID)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var player models.RoomPlayer
			var user models.User
			var avatarURL sql.NullString
			rows.Scan(&player.ID, &player.UserID, &player.IsReady, &player.IsHost,
				&player.SeatPosition, &player.JoinedAt, &user.Username, &avatarURL)
			if avatarURL.Valid {
				user.AvatarURL = &avatarURL.String
			}
			user.ID = player.UserID
			player.User = &user
			room.Players = append(room.Players, player)
		}
	}

	c.JSON(http.StatusOK, room)
}

// JoinRoom allows a player to join a room
func (h *Handler) JoinRoom(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req models.JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("❌ JoinRoom - JSON bind error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Printf("✓ JoinRoom request - UserID: %v, RoomCode: %s", userID, req.RoomCode)

	ctx := context.Background()

	// Get room info
	var roomID uuid.UUID
	var currentPlayers, maxPlayers int
	var status string

	err := h.store.PG.QueryRow(ctx, `
		SELECT id, current_players, max_players, status
		FROM rooms WHERE room_code = $1
	`, req.RoomCode).Scan(&roomID, &currentPlayers, &maxPlayers, &status)

	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	if status != "waiting" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room is not accepting players"})
		return
	}

	if currentPlayers >= maxPlayers {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room is full"})
		return
	}

	// Check if user is already in ANY active room
	var existingRoomCount int
	err = h.store.PG.QueryRow(ctx, `
		SELECT COUNT(*) FROM room_players rp
		JOIN rooms r ON rp.room_id = r.id
		WHERE rp.user_id = $1
		  AND rp.left_at IS NULL
		  AND r.status IN ('waiting', 'in_progress')
	`, userID).Scan(&existingRoomCount)

	if err != nil && err != sql.ErrNoRows {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify room status"})
		return
	}

	if existingRoomCount > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "you are already in an active room. Please leave it before joining another"})
		return
	}

	// Add player to room
	_, err = h.store.PG.Exec(ctx, `
		INSERT INTO room_players (id, room_id, user_id, is_ready, is_host, seat_position)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), roomID, userID, false, false, currentPlayers)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join room"})
		return
	}

	// Update current players count
	h.store.PG.Exec(ctx, `
		UPDATE rooms SET current_players = current_players + 1 WHERE id = $1
	`, roomID)

	// Track room activity (player joined)
	if h.lifecycleManager != nil {
		h.lifecycleManager.UpdateActivity(ctx, roomID)
	}

	// Broadcast room update
	h.wsHub.BroadcastToRoom(roomID, models.WSTypeRoomUpdate, gin.H{
		"action":  "player_joined",
		"user_id": userID,
	})

	c.JSON(http.StatusOK, gin.H{"room_id": roomID})
}

// LeaveRoom removes a player from a room
func (h *Handler) LeaveRoom(c *gin.Context) {
	userID, _ := c.Get("user_id")
	roomIDStr := c.Param("roomId")

	roomID, err := uuid.Parse(roomIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room ID"})
		return
	}

	ctx := context.Background()

	// Mark player as left
	_, err = h.store.PG.Exec(ctx, `
		UPDATE room_players SET left_at = $1 WHERE room_id = $2 AND user_id = $3 AND left_at IS NULL
	`, time.Now(), roomID, userID)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to leave room"})
		return
	}

	// Update current players count
	h.store.PG.Exec(ctx, `
		UPDATE rooms SET current_players = current_players - 1 WHERE id = $1
	`, roomID)

	// Broadcast room update
	h.wsHub.BroadcastToRoom(roomID, models.WSTypeRoomUpdate, gin.H{
		"action":  "player_left",
		"user_id": userID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "left room"})
}

// SetReady toggles player ready status
func (h *Handler) SetReady(c *gin.Context) {
	userID, _ := c.Get("user_id")
	roomIDStr := c.Param("roomId")

	roomID, err := uuid.Parse(roomIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room ID"})
		return
	}

	var req struct {
		Ready bool `json:"ready"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := context.Background()

	_, err = h.store.PG.Exec(ctx, `
		UPDATE room_players SET is_ready = $1 WHERE room_id = $2 AND user_id = $3 AND left_at IS NULL
	`, req.Ready, roomID, userID)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update ready status"})
		return
	}

	// Track room activity (ready status changed)
	if h.lifecycleManager != nil {
		h.lifecycleManager.UpdateActivity(ctx, roomID)
	}

	// Broadcast room update
	h.wsHub.BroadcastToRoom(roomID, models.WSTypeRoomUpdate, gin.H{
		"action":  "player_ready",
		"user_id": userID,
		"ready":   req.Ready,
	})

	c.JSON(http.StatusOK, gin.H{"ready": req.Ready})
}

// KickPlayer removes a player from the room (host only)
func (h *Handler) KickPlayer(c *gin.Context) {
	userID, _ := c.Get("user_id")
	roomIDStr := c.Param("roomId")

	roomID, err := uuid.Parse(roomIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room ID"})
		return
	}

	var req struct {
		PlayerID uuid.UUID `json:"player_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := context.Background()

	// Verify user is host
	var hostUserID uuid.UUID
	err = h.store.PG.QueryRow(ctx, `
		SELECT host_user_id FROM rooms WHERE id = $1
	`, roomID).Scan(&hostUserID)

	if err != nil || hostUserID != userID.(uuid.UUID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only host can kick players"})
		return
	}

	// Cannot kick yourself
	if req.PlayerID == userID.(uuid.UUID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot kick yourself"})
		return
	}

	// Remove player
	_, err = h.store.PG.Exec(ctx, `
		UPDATE room_players SET left_at = $1 WHERE room_id = $2 AND user_id = $3 AND left_at IS NULL
	`, time.Now(), roomID, req.PlayerID)

	h.store.PG.Exec(ctx, `
		UPDATE rooms SET current_players = current_players - 1 WHERE id = $1
	`, roomID)

	// Broadcast kick
	h.wsHub.BroadcastToRoom(roomID, models.WSTypeRoomUpdate, gin.H{
		"action":  "player_kicked",
		"user_id": req.PlayerID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "player kicked"})
}

// ExtendRoomTimeout allows host to extend the room timeout
func (h *Handler) ExtendRoomTimeout(c *gin.Context) {
	userID, _ := c.Get("user_id")
	roomIDStr := c.Param("roomId")

	roomID, err := uuid.Parse(roomIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room ID"})
		return
	}

	ctx := context.Background()

	if h.lifecycleManager == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lifecycle manager not available"})
		return
	}

	// Extend the timeout
	err = h.lifecycleManager.ExtendTimeout(ctx, roomID, userID.(uuid.UUID))
	if err != nil {
		if err.Error() == "user is not the room host" {
			c.JSON(http.StatusForbidden, gin.H{"error": "only the host can extend room timeout"})
		} else if err.Error() == "room is not in waiting status" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "can only extend timeout for waiting rooms"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to extend timeout"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "room timeout extended successfully",
		"extended_minutes": 20,
	})
}

// StartGame freezes seating and seats a fresh night.Engine for the room.
func (h *Handler) StartGame(c *gin.Context) {
	userID, _ := c.Get("user_id")
	roomIDStr := c.Param("roomId")

	roomID, err := uuid.Parse(roomIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room ID"})
		return
	}

	ctx := context.Background()

	// Verify user is host and fetch the room's config
	var hostUserID uuid.UUID
	var roomCode string
	var configJSON json.RawMessage
	err = h.store.PG.QueryRow(ctx, `
		SELECT host_user_id, room_code, config FROM rooms WHERE id = $1
	`, roomID).Scan(&hostUserID, &roomCode, &configJSON)

	if err != nil || hostUserID != userID.(uuid.UUID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only host can start game"})
		return
	}

	var roomCfg models.RoomConfig
	json.Unmarshal(configJSON, &roomCfg)

	rows, err := h.store.PG.Query(ctx, `
		SELECT rp.user_id, rp.seat_position, u.username
		FROM room_players rp
		JOIN users u ON rp.user_id = u.id
		WHERE rp.room_id = $1 AND rp.left_at IS NULL
		ORDER BY rp.seat_position
	`, roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load players"})
		return
	}
	defer rows.Close()

	var players []roomPlayer
	for rows.Next() {
		var p roomPlayer
		if err := rows.Scan(&p.UserID, &p.Position, &p.Username); err != nil {
			continue
		}
		players = append(players, p)
	}

	seatToUser := SeatToUserMap(players)
	rc := transport.NewRoomChannel(h.wsHub, roomID, seatToUser)

	sessionID, _, err := h.games.StartSession(
		roomID, roomCode, hostUserID.String(), players,
		roomCfg.WerewolfCount, roomCfg.EnabledRoles,
		rc, rc, night.SystemClock{}, night.NewMathRandom(time.Now().UnixNano()),
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err = h.store.PG.Exec(ctx, `
		UPDATE rooms SET status = 'in_progress', started_at = $1 WHERE id = $2
	`, time.Now(), roomID)
	if err != nil {
		log.Printf("⚠️  StartGame - failed to mark room in_progress: %v", err)
	}

	if h.lifecycleManager != nil {
		h.lifecycleManager.UpdateActivity(ctx, roomID)
	}

	c.JSON(http.StatusOK, gin.H{"session_id": sessionID})
}

// ============================================================================
// GAME HANDLERS
// ============================================================================

// GetGameState returns the current night state, redacted for the requester.
func (h *Handler) GetGameState(c *gin.Context) {
	userID, _ := c.Get("user_id")
	sessionIDStr := c.Param("sessionId")

	sessionID, err := uuid.Parse(sessionIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	engine, ok := h.games.Get(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}

	state := engine.Snapshot()
	redacted := redactForViewer(state, userID.(uuid.UUID).String())

	c.JSON(http.StatusOK, redacted)
}

// PerformAction submits a player action, or the host's ADVANCE call, to the
// night.Engine running the session.
func (h *Handler) PerformAction(c *gin.Context) {
	userID, _ := c.Get("user_id")
	sessionIDStr := c.Param("sessionId")

	sessionID, err := uuid.Parse(sessionIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	var env transport.ActionEnvelope
	if err := c.ShouldBindJSON(&env); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	engine, ok := h.games.Get(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}

	callerUID := userID.(uuid.UUID).String()

	if night.MessageKind(env.Kind) == night.MessageAdvance {
		outcome := engine.AdvanceNight(callerUID)
		if outcome.Reason != night.ReasonNone {
			c.JSON(http.StatusBadRequest, gin.H{"error": string(outcome.Reason)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"decision": outcome.Decision})
		return
	}

	seat, ok := SeatForUID(engine, callerUID)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "caller is not seated in this session"})
		return
	}

	result := engine.Submit(env.ToPlayerMessage(seat))
	if !result.Accepted {
		c.JSON(http.StatusBadRequest, gin.H{"error": string(result.Reason), "constraint": result.ConstraintTag})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetGameHistory returns the history of events for a game
func (h *Handler) GetGameHistory(c *gin.Context) {
	sessionIDStr := c.Param("sessionId")

	sessionID, err := uuid.Parse(sessionIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	ctx := context.Background()

	rows, err := h.store.PG.Query(ctx, `
		SELECT id, phase_number, event_type, event_data, is_public, created_at
		FROM game_events
		WHERE session_id = $1 AND is_public = true
		ORDER BY created_at ASC
	`, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get history"})
		return
	}
	defer rows.Close()

	var events []models.GameEvent
	for rows.Next() {
		var event models.GameEvent
		var eventDataJSON json.RawMessage
		rows.Scan(&event.ID, &event.PhaseNumber, &event.EventType, &eventDataJSON, &event.IsPublic, &event.CreatedAt)
		json.Unmarshal(eventDataJSON, &event.EventData)
		event.SessionID = sessionID
		events = append(events, event)
	}

	c.JSON(http.StatusOK, events)
}

// ============================================================================
// AGORA TOKEN HANDLERS
// ============================================================================

// GetAgoraToken generates an Agora RTC token
func (h *Handler) GetAgoraToken(c *gin.Context) {
	var req models.AgoraTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("❌ GetAgoraToken - JSON bind error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// If UID is 0, Agora will auto-assign one
	if req.UID == 0 {
		log.Printf("✓ GetAgoraToken request - Channel: %s, UID: 0 (auto-assign)", req.ChannelName)
	} else {
		log.Printf("✓ GetAgoraToken request - Channel: %s, UID: %d", req.ChannelName, req.UID)
	}

	// Generate token
	token, err := h.voiceService.GenerateRTCToken(req.ChannelName, req.UID, rtctokenbuilder.RolePublisher)
	if err != nil {
		log.Printf("❌ GetAgoraToken - Token generation error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	response := models.AgoraTokenResponse{
		Token:       token,
		ChannelName: req.ChannelName,
		UID:         req.UID,
		ExpiresAt:   time.Now().Unix() + int64(h.voiceService.GetTokenExpiry()),
	}

	log.Printf("✓ GetAgoraToken - Token generated successfully for channel: %s", req.ChannelName)
	c.JSON(http.StatusOK, response)
}

// ============================================================================
// WEBSOCKET HANDLER
// ============================================================================

// HandleWebSocket upgrades HTTP to WebSocket
func (h *Handler) HandleWebSocket(c *gin.Context) {
	log.Printf("✓ WebSocket - Connection attempt from %s", c.ClientIP())

	// For WebSocket, try to get user_id from middleware first, then from token query param
	userID, exists := c.Get("user_id")
	if !exists {
		// Try to authenticate from query parameter token (for WebSocket compatibility)
		tokenString := c.Query("token")
		if tokenString == "" {
			log.Printf("❌ WebSocket - No token provided")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		cfg, err := config.Load()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
			return
		}

		claims, err := middleware.ParseToken(tokenString, cfg.JWT.Secret)
		if err != nil {
			log.Printf("❌ WebSocket - Invalid token: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		userID = claims.UserID
	}

	roomIDStr := c.Query("room_id")
	roomID, err := uuid.Parse(roomIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room ID"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := transport.NewClient(h.wsHub, conn, userID.(uuid.UUID), roomID)
	client.Register()

	go client.WritePump()
	go client.ReadPump()
}

// ============================================================================
// HELPER FUNCTIONS
// ============================================================================

func generateRoomCode() string {
	const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // Removed confusing chars
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	code := make([]byte, 6)
	for i := range code {
		code[i] = charset[rng.Intn(len(charset))]
	}
	return string(code)
}
