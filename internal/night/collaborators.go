package night

import (
	"math/rand"
	"time"
)

// Clock is the only source of wall-clock time the core consumes, so it can
// be replaced with a fake in tests and driven deterministically.
type Clock interface {
	Now() time.Time
}

// Random is the only source of randomness the core consumes — used
// exclusively by the drunk-seer's coin flip (spec.md §4.6).
type Random interface {
	// Float64 returns a value in [0,1).
	Float64() float64
}

// PrivateSink delivers a PRIVATE_EFFECT to exactly one seat.
type PrivateSink interface {
	Send(seat Seat, payload PrivateEffectPayload)
}

// Broadcast delivers a full STATE_SNAPSHOT to every connected client.
type Broadcast interface {
	Broadcast(state BroadcastGameState)
}

// SystemClock is the real-time Clock, used by the wiring layer outside of
// tests.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// MathRandom wraps a seeded math/rand.Rand, grounded on wolverix
// engine.go's own rand.New(rand.NewSource(...)) usage for its role
// shuffle (see DESIGN.md C6) — the core reaches for the same stdlib
// source rather than a third-party PRNG library, since no example in the
// pack reaches for one either.
type MathRandom struct {
	r *rand.Rand
}

// NewMathRandom seeds a Random from the given seed. Callers that want
// non-deterministic behavior should seed with time.Now().UnixNano().
func NewMathRandom(seed int64) *MathRandom {
	return &MathRandom{r: rand.New(rand.NewSource(seed))}
}

func (m *MathRandom) Float64() float64 { return m.r.Float64() }

// FixedClock and FixedRandom are minimal test doubles used by the night
// package's own tests, grounded on the same "inject a fake collaborator"
// shape the interfaces above exist to support.
type FixedClock struct{ T time.Time }

func (f FixedClock) Now() time.Time { return f.T }

type FixedRandom struct{ V float64 }

func (f FixedRandom) Float64() float64 { return f.V }

// RecordingSink captures every PRIVATE_EFFECT it receives, for assertions
// in tests.
type RecordingSink struct {
	Sent []sentEffect
}

type sentEffect struct {
	Seat    Seat
	Payload PrivateEffectPayload
}

func (s *RecordingSink) Send(seat Seat, payload PrivateEffectPayload) {
	s.Sent = append(s.Sent, sentEffect{Seat: seat, Payload: payload})
}

// RecordingBroadcast captures every STATE_SNAPSHOT it receives.
type RecordingBroadcast struct {
	Sent []BroadcastGameState
}

func (b *RecordingBroadcast) Broadcast(state BroadcastGameState) {
	b.Sent = append(b.Sent, state)
}
