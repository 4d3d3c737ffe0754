package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// USER MODELS
// ============================================================================

type User struct {
	ID              uuid.UUID  `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	AvatarURL       *string    `json:"avatar_url,omitempty"`
	DisplayName     *string    `json:"display_name,omitempty"`
	Language        string     `json:"language"`
	IsOnline        bool       `json:"is_online"`
	ReputationScore int        `json:"reputation_score"`
	IsBanned        bool       `json:"is_banned"`
	BannedUntil     *time.Time `json:"banned_until,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	LastSeenAt      *time.Time `json:"last_seen_at,omitempty"`
}

type UserStats struct {
	UserID          uuid.UUID `json:"user_id"`
	TotalGames      int       `json:"total_games"`
	TotalWins       int       `json:"total_wins"`
	TotalLosses     int       `json:"total_losses"`
	GamesAsVillager int       `json:"games_as_villager"`
	GamesAsWerewolf int       `json:"games_as_werewolf"`
	GamesAsSeer     int       `json:"games_as_seer"`
	GamesAsWitch    int       `json:"games_as_witch"`
	GamesAsHunter   int       `json:"games_as_hunter"`
	VillagerWins    int       `json:"villager_wins"`
	WerewolfWins    int       `json:"werewolf_wins"`
	CurrentStreak   int       `json:"current_streak"`
	BestStreak      int       `json:"best_streak"`
	TotalKills      int       `json:"total_kills"`
	TotalDeaths     int       `json:"total_deaths"`
	MVPCount        int       `json:"mvp_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ============================================================================
// ROOM MODELS
// ============================================================================

type Room struct {
	ID                   uuid.UUID  `json:"id"`
	RoomCode             string     `json:"room_code"`
	Name                 string     `json:"name"`
	HostUserID           uuid.UUID  `json:"host_user_id"`
	Status               RoomStatus `json:"status"`
	IsPrivate            bool       `json:"is_private"`
	PasswordHash         *string    `json:"-"`
	MaxPlayers           int        `json:"max_players"`
	CurrentPlayers       int        `json:"current_players"`
	Language             string     `json:"language"`
	Config               RoomConfig `json:"config"`
	AgoraChannelName     string     `json:"agora_channel_name"`
	AgoraAppID           *string    `json:"agora_app_id,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	StartedAt            *time.Time `json:"started_at,omitempty"`
	FinishedAt           *time.Time `json:"finished_at,omitempty"`
	LastActivityAt       time.Time  `json:"last_activity_at"`
	TimeoutWarningSent   bool       `json:"timeout_warning_sent"`
	TimeoutExtendedCount int        `json:"timeout_extended_count"`

	// Joined data (not in DB)
	Host    *User        `json:"host,omitempty"`
	Players []RoomPlayer `json:"players,omitempty"`
}

type RoomStatus string

const (
	RoomStatusWaiting   RoomStatus = "waiting"
	RoomStatusPlaying   RoomStatus = "playing"
	RoomStatusFinished  RoomStatus = "finished"
	RoomStatusAbandoned RoomStatus = "abandoned"
)

type RoomConfig struct {
	EnabledRoles      []string `json:"enabled_roles"`
	WerewolfCount     int      `json:"werewolf_count"`
	DayPhaseSeconds   int      `json:"day_phase_seconds"`
	NightPhaseSeconds int      `json:"night_phase_seconds"`
	VotingSeconds     int      `json:"voting_seconds"`
	AllowSpectators   bool     `json:"allow_spectators"`
	RequireReady      bool     `json:"require_ready"`
}

type RoomPlayer struct {
	ID           uuid.UUID  `json:"id"`
	RoomID       uuid.UUID  `json:"room_id"`
	UserID       uuid.UUID  `json:"user_id"`
	IsReady      bool       `json:"is_ready"`
	IsHost       bool       `json:"is_host"`
	SeatPosition *int       `json:"seat_position,omitempty"`
	JoinedAt     time.Time  `json:"joined_at"`
	LeftAt       *time.Time `json:"left_at,omitempty"`

	// Joined data
	User *User `json:"user,omitempty"`
}

// ============================================================================
// EVENT MODELS
//
// GameEvent is a generic public-event log, independent of the night core's
// own richer GameState/BroadcastGameState — it's what GetGameHistory reads
// back from the game_events table after a session ends.
// ============================================================================

type GameEvent struct {
	ID          uuid.UUID `json:"id"`
	SessionID   uuid.UUID `json:"session_id"`
	PhaseNumber int       `json:"phase_number"`
	EventType   EventType `json:"event_type"`
	EventData   EventData `json:"event_data"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
}

type EventType string

const (
	EventPhaseChange    EventType = "phase_change"
	EventPlayerDeath    EventType = "player_death"
	EventRoleReveal     EventType = "role_reveal"
	EventGameEnd        EventType = "game_end"
	EventVoteComplete   EventType = "vote_complete"
	EventHunterTrigger  EventType = "hunter_trigger"
	EventLoverDeath     EventType = "lover_death"
	EventWitchAction    EventType = "witch_action"
	EventSeerDivination EventType = "seer_divination"
)

type EventData struct {
	PlayerID   *uuid.UUID     `json:"player_id,omitempty"`
	TargetID   *uuid.UUID     `json:"target_id,omitempty"`
	NewPhase   string         `json:"new_phase,omitempty"`
	Role       string         `json:"role,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	WinnerTeam string         `json:"winner_team,omitempty"`
	Message    string         `json:"message,omitempty"`
	VoteResult map[string]int `json:"vote_result,omitempty"`
}

// ============================================================================
// REQUEST/RESPONSE MODELS
// ============================================================================

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Language string `json:"language"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token        string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type CreateRoomRequest struct {
	Name       string     `json:"name" binding:"required,min=3,max=100"`
	IsPrivate  bool       `json:"is_private"`
	Password   string     `json:"password"`
	MaxPlayers int        `json:"max_players"`
	Language   string     `json:"language"`
	Config     RoomConfig `json:"config"`
}

type JoinRoomRequest struct {
	RoomCode string `json:"room_code" binding:"required"`
	Password string `json:"password"`
}

type RoomActionRequest struct {
	Action string `json:"action" binding:"required"` // start, kick, ready, config
	Data   any    `json:"data,omitempty"`
}

type AgoraTokenRequest struct {
	ChannelName string `json:"channel_name" binding:"required"`
	UID         uint32 `json:"uid"`
}

type AgoraTokenResponse struct {
	Token       string `json:"token"`
	ChannelName string `json:"channel_name"`
	UID         uint32 `json:"uid"`
	ExpiresAt   int64  `json:"expires_at"`
}

// ============================================================================
// WEBSOCKET MESSAGES
// ============================================================================

type WSMessageType string

const (
	WSTypeRoomUpdate   WSMessageType = "room_update"
	WSTypeGameUpdate   WSMessageType = "game_update"
	WSTypePhaseChange  WSMessageType = "phase_change"
	WSTypePlayerAction WSMessageType = "player_action"
	WSTypePlayerDeath  WSMessageType = "player_death"
	WSTypeGameEnd      WSMessageType = "game_end"
	WSTypeVoiceUpdate  WSMessageType = "voice_update"
	WSTypeRoleReveal   WSMessageType = "role_reveal"
	WSTypeTimer        WSMessageType = "timer"
	WSTypeChat         WSMessageType = "chat"
	WSTypeError        WSMessageType = "error"
	WSTypePing         WSMessageType = "ping"
	WSTypePong         WSMessageType = "pong"

	// Night-core wire types: a full snapshot broadcast to the room, a
	// single seat's private reveal, and a client-submitted action.
	WSTypeNightState         WSMessageType = "night_state"
	WSTypeNightPrivateEffect WSMessageType = "night_private_effect"
	WSTypeNightAction        WSMessageType = "night_action"
)

type WSMessage struct {
	Type      WSMessageType `json:"type"`
	Payload   any           `json:"payload"`
	Timestamp time.Time     `json:"timestamp"`
}

type WSErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
