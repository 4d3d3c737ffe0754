// Package voice assigns Agora RTC channels and tokens to seats. It does
// not carry audio itself — the night core's audio-playing gate (§C8) is
// narration, a separate concern from who can hear whom. What this package
// owns is channel membership: every seat starts on the room's main
// channel, and the wolves get a private channel for the duration of the
// wolfKill step.
package voice

import (
	"fmt"
	"time"

	rtctokenbuilder "github.com/AgoraIO-Community/go-tokenbuilder/rtctokenbuilder"

	"github.com/nightloom/nightcore/internal/config"
	"github.com/nightloom/nightcore/internal/night"
)

type Service struct {
	appID          string
	appCertificate string
	tokenExpiry    uint32
}

func NewService(cfg *config.AgoraConfig) *Service {
	return &Service{
		appID:          cfg.AppID,
		appCertificate: cfg.AppCertificate,
		tokenExpiry:    cfg.TokenExpiry,
	}
}

func (s *Service) GenerateRTCToken(channelName string, uid uint32, role rtctokenbuilder.Role) (string, error) {
	expireTime := uint32(time.Now().Unix()) + s.tokenExpiry
	token, err := rtctokenbuilder.BuildTokenWithUID(s.appID, s.appCertificate, channelName, uid, role, expireTime)
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}
	return token, nil
}

func (s *Service) GeneratePublisherToken(channelName string, uid uint32) (string, error) {
	return s.GenerateRTCToken(channelName, uid, rtctokenbuilder.RolePublisher)
}

func (s *Service) GenerateSubscriberToken(channelName string, uid uint32) (string, error) {
	return s.GenerateRTCToken(channelName, uid, rtctokenbuilder.RoleSubscriber)
}

func (s *Service) GetAppID() string {
	return s.appID
}

func (s *Service) GetTokenExpiry() uint32 {
	return s.tokenExpiry
}

// ValidateChannelName checks a room-supplied Agora channel name against
// Agora's naming rules before it's ever handed to the token builder.
func (s *Service) ValidateChannelName(channelName string) error {
	if len(channelName) == 0 {
		return fmt.Errorf("channel name cannot be empty")
	}
	if len(channelName) > 64 {
		return fmt.Errorf("channel name too long (max 64 characters)")
	}
	for _, char := range channelName {
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') || char == '_' || char == '-') {
			return fmt.Errorf("channel name contains invalid characters")
		}
	}
	return nil
}

// MainChannelName is the room-wide channel every seat publishes to outside
// of the wolf meeting.
func MainChannelName(roomCode string) string {
	return fmt.Sprintf("room-%s-main", roomCode)
}

// WolfChannelName is the private channel opened for the wolfKill step.
func WolfChannelName(roomCode string) string {
	return fmt.Sprintf("room-%s-wolves", roomCode)
}

// ChannelAssignment tells one seat which channel to publish/subscribe to
// for the step currently in front of the plan.
type ChannelAssignment struct {
	Seat        night.Seat
	ChannelName string
	Muted       bool
}

// AssignForStep decides, for the step a night.Engine snapshot reports as
// current, which channel every alive seat should be on. Only the wolfKill
// step moves wolves off the main channel; every other step, and every
// non-wolf seat, stays on the main channel.
func AssignForStep(state night.BroadcastGameState, roomCode string) []ChannelAssignment {
	main := MainChannelName(roomCode)
	wolfChannel := WolfChannelName(roomCode)

	onWolfStep := state.CurrentStepID != nil && *state.CurrentStepID == string(night.StepWolfKill)

	assignments := make([]ChannelAssignment, 0, len(state.Players))
	for seatKey, p := range state.Players {
		seat := nightSeatFromKey(seatKey)
		if !p.Alive {
			assignments = append(assignments, ChannelAssignment{Seat: seat, ChannelName: main, Muted: true})
			continue
		}
		if onWolfStep && isWolfRole(p.Role) {
			assignments = append(assignments, ChannelAssignment{Seat: seat, ChannelName: wolfChannel})
			continue
		}
		assignments = append(assignments, ChannelAssignment{Seat: seat, ChannelName: main})
	}
	return assignments
}

func nightSeatFromKey(key string) night.Seat {
	var n int
	fmt.Sscanf(key, "%d", &n)
	return night.Seat(n)
}

func isWolfRole(role string) bool {
	switch night.RoleId(role) {
	case night.RoleWolf, night.RoleWolfRobot, night.RoleWolfWitch, night.RoleWolfQueen:
		return true
	default:
		return false
	}
}
