package night

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedSeating matches spec.md §8's 12-seat seed scenario: 0-3 villagers,
// 4-6 wolves, 7 nightmare, 8 seer, 9 witch, 10 hunter, 11 guard.
func seedSeating() map[Seat]Player {
	roles := map[Seat]RoleId{
		0: RoleVillager, 1: RoleVillager, 2: RoleVillager, 3: RoleVillager,
		4: RoleWolf, 5: RoleWolf, 6: RoleWolf,
		7: RoleNightmare,
		8: RoleSeer,
		9: RoleWitch,
		10: RoleHunter,
		11: RoleGuard,
	}
	players := make(map[Seat]Player, len(roles))
	for seat, role := range roles {
		players[seat] = Player{Seat: seat, UID: seatUID(seat), DisplayName: seatUID(seat), Role: role, Alive: true}
	}
	return players
}

func seatUID(s Seat) string {
	return "uid-" + string(rune('0'+s))
}

func newSeedEngine(t *testing.T) *Engine {
	t.Helper()
	players := seedSeating()
	sink := &RecordingSink{}
	bcast := &RecordingBroadcast{}
	e := NewEngine("ROOM1", "host-uid", players, FixedClock{T: time.Unix(0, 0)}, FixedRandom{V: 0.9}, sink, bcast, DefaultNightConfig())
	reason := e.StartNight()
	require.Equal(t, ReasonNone, reason)
	return e
}

func submitSkip(t *testing.T, e *Engine, seat Seat, role RoleId) {
	t.Helper()
	res := e.Submit(PlayerMessage{Kind: MessageAction, Seat: seat, Role: role})
	require.True(t, res.Accepted, "skip from seat %d should be accepted", seat)
}

func submitChoose(t *testing.T, e *Engine, seat Seat, role RoleId, target Seat) {
	t.Helper()
	res := e.Submit(PlayerMessage{Kind: MessageAction, Seat: seat, Role: role, Target: SeatPtr(target)})
	require.True(t, res.Accepted, "choice from seat %d should be accepted, got reason %v", seat, res.Reason)
}

func wolfVote(t *testing.T, e *Engine, seat Seat, target Seat) {
	t.Helper()
	res := e.Submit(PlayerMessage{Kind: MessageWolfVote, Seat: seat, Target: SeatPtr(target)})
	require.True(t, res.Accepted, "wolf vote from seat %d should be accepted, got reason %v", seat, res.Reason)
}

func advanceUntilDone(t *testing.T, e *Engine, maxSteps int) {
	t.Helper()
	for i := 0; i < maxSteps; i++ {
		if e.State().Status == StatusEnded {
			return
		}
		outcome := e.AdvanceNight("host-uid")
		if outcome.Decision == DecisionNone {
			t.Fatalf("advance blocked: %s (step %d)", outcome.Reason, i)
		}
	}
	t.Fatalf("night did not end within %d advances", maxSteps)
}

// S1 Baseline kill.
func TestScenario_S1_BaselineKill(t *testing.T) {
	e := newSeedEngine(t)

	submitChoose(t, e, 7, RoleNightmare, 0)
	advanceHostOnlyAdvance(t, e)

	submitSkip(t, e, 11, RoleGuard)
	advanceHostOnlyAdvance(t, e)

	wolfVote(t, e, 4, 1)
	wolfVote(t, e, 5, 1)
	wolfVote(t, e, 6, 1)
	advanceHostOnlyAdvance(t, e)

	submitWitchSkip(t, e)
	advanceHostOnlyAdvance(t, e)

	submitChoose(t, e, 8, RoleSeer, 4)
	ackCurrentReveal(t, e, 8, RoleSeer)
	advanceHostEndsNight(t, e)

	state := e.State()
	require.Equal(t, StatusEnded, state.Status)
	assert.Equal(t, []Seat{1}, state.LastNightDeaths)
	require.NotNil(t, state.SeerReveal)
	assert.Equal(t, teamLabelWolf, state.SeerReveal.Result)
}

// S2 Guard saves.
func TestScenario_S2_GuardSaves(t *testing.T) {
	e := newSeedEngine(t)

	submitChoose(t, e, 7, RoleNightmare, 0)
	advanceHostOnlyAdvance(t, e)

	submitChoose(t, e, 11, RoleGuard, 0)
	advanceHostOnlyAdvance(t, e)

	wolfVote(t, e, 4, 0)
	wolfVote(t, e, 5, 0)
	wolfVote(t, e, 6, 0)
	advanceHostOnlyAdvance(t, e)

	submitWitchSkip(t, e)
	advanceHostOnlyAdvance(t, e)

	submitChoose(t, e, 8, RoleSeer, 4)
	ackCurrentReveal(t, e, 8, RoleSeer)
	advanceHostEndsNight(t, e)

	assert.Empty(t, e.State().LastNightDeaths)
}

// S3 Double-save dies (same-guard-same-save rule).
func TestScenario_S3_DoubleSaveDies(t *testing.T) {
	e := newSeedEngine(t)

	submitChoose(t, e, 7, RoleNightmare, 0)
	advanceHostOnlyAdvance(t, e)

	submitChoose(t, e, 11, RoleGuard, 0)
	advanceHostOnlyAdvance(t, e)

	wolfVote(t, e, 4, 0)
	wolfVote(t, e, 5, 0)
	wolfVote(t, e, 6, 0)
	advanceHostOnlyAdvance(t, e)

	submitWitchSave(t, e, 0)
	advanceHostOnlyAdvance(t, e)

	submitChoose(t, e, 8, RoleSeer, 4)
	ackCurrentReveal(t, e, 8, RoleSeer)
	advanceHostEndsNight(t, e)

	assert.Equal(t, []Seat{0}, e.State().LastNightDeaths)
}

// S4 Nightmare blocks guard: the guard's non-skip ACTION is rejected, then
// the guard submits a skip to proceed.
func TestScenario_S4_NightmareBlocksGuard(t *testing.T) {
	e := newSeedEngine(t)

	submitChoose(t, e, 7, RoleNightmare, 11)
	advanceHostOnlyAdvance(t, e)

	res := e.Submit(PlayerMessage{Kind: MessageAction, Seat: 11, Role: RoleGuard, Target: SeatPtr(0)})
	require.False(t, res.Accepted)
	assert.Equal(t, ReasonNightmareBlocked, res.Reason)
	assert.Nil(t, e.State().CurrentNightResults.GuardedSeat)

	submitSkip(t, e, 11, RoleGuard)
	advanceHostOnlyAdvance(t, e)

	wolfVote(t, e, 4, 0)
	wolfVote(t, e, 5, 0)
	wolfVote(t, e, 6, 0)
	advanceHostOnlyAdvance(t, e)

	submitWitchSkip(t, e)
	advanceHostOnlyAdvance(t, e)

	submitChoose(t, e, 8, RoleSeer, 4)
	ackCurrentReveal(t, e, 8, RoleSeer)
	advanceHostEndsNight(t, e)

	assert.Equal(t, []Seat{0}, e.State().LastNightDeaths)
}

// S5 Nightmare blocks the wolf team: the whole kill is disabled.
func TestScenario_S5_NightmareBlocksWolfTeam(t *testing.T) {
	e := newSeedEngine(t)

	submitChoose(t, e, 7, RoleNightmare, 4)
	advanceHostOnlyAdvance(t, e)

	submitSkip(t, e, 11, RoleGuard)
	advanceHostOnlyAdvance(t, e)

	res := e.Submit(PlayerMessage{Kind: MessageAction, Seat: 5, Role: RoleWolf, Target: nil})
	require.True(t, res.Accepted)
	advanceHostOnlyAdvance(t, e)

	submitWitchSkip(t, e)
	advanceHostOnlyAdvance(t, e)

	submitChoose(t, e, 8, RoleSeer, 4)
	ackCurrentReveal(t, e, 8, RoleSeer)
	advanceHostEndsNight(t, e)

	state := e.State()
	assert.True(t, state.CurrentNightResults.WolfKillDisabled)
	assert.Empty(t, state.LastNightDeaths)
}

// S7 Seer revelation requires ack to advance.
func TestScenario_S7_RevealRequiresAck(t *testing.T) {
	e := newSeedEngine(t)

	submitSkip(t, e, 7, RoleNightmare)
	advanceHostOnlyAdvance(t, e)
	submitSkip(t, e, 11, RoleGuard)
	advanceHostOnlyAdvance(t, e)
	wolfVote(t, e, 4, 1)
	wolfVote(t, e, 5, 1)
	wolfVote(t, e, 6, 1)
	advanceHostOnlyAdvance(t, e)
	submitWitchSkip(t, e)
	advanceHostOnlyAdvance(t, e)

	submitChoose(t, e, 8, RoleSeer, 4)
	require.NotEmpty(t, e.State().PendingRevealAcks)

	outcome := hostAdvance(e, "host-uid")
	assert.Equal(t, DecisionNone, outcome.Decision)
	assert.Equal(t, ReasonPendingRevealAcks, outcome.Reason)

	ackCurrentReveal(t, e, 8, RoleSeer)
	outcome = hostAdvance(e, "host-uid")
	assert.Equal(t, DecisionEndNight, outcome.Decision)
}

func submitWitchSkip(t *testing.T, e *Engine) {
	t.Helper()
	res := e.Submit(PlayerMessage{
		Kind: MessageAction, Seat: 9, Role: RoleWitch,
		Extra: Extra{StepResults: map[string]*Seat{"save": nil, "poison": nil}},
	})
	require.True(t, res.Accepted)
}

func submitWitchSave(t *testing.T, e *Engine, target Seat) {
	t.Helper()
	res := e.Submit(PlayerMessage{
		Kind: MessageAction, Seat: 9, Role: RoleWitch,
		Extra: Extra{StepResults: map[string]*Seat{"save": SeatPtr(target), "poison": nil}},
	})
	require.True(t, res.Accepted)
}

func ackCurrentReveal(t *testing.T, e *Engine, seat Seat, role RoleId) {
	t.Helper()
	state := e.State()
	res := e.Submit(PlayerMessage{Kind: MessageRevealAck, Seat: seat, AckRole: role, AckRevision: state.Revision})
	require.True(t, res.Accepted, "reveal ack should be accepted, got %v", res.Reason)
}

// hostAdvance signals that the current step's narration has finished
// (every step entry arms the audio-play gate) and then asks to advance.
func hostAdvance(e *Engine, hostUID string) AdvanceOutcome {
	e.SetAudioPlaying(false)
	return e.AdvanceNight(hostUID)
}

func advanceHostOnlyAdvance(t *testing.T, e *Engine) {
	t.Helper()
	outcome := hostAdvance(e, "host-uid")
	require.Equal(t, DecisionAdvance, outcome.Decision, "expected advance, got none(%s)", outcome.Reason)
}

func advanceHostEndsNight(t *testing.T, e *Engine) {
	t.Helper()
	outcome := hostAdvance(e, "host-uid")
	require.Equal(t, DecisionEndNight, outcome.Decision, "expected end_night, got none(%s)", outcome.Reason)
}
