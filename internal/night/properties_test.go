package night

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S6 Witch poisons, witcher immune to her own poison.
func TestScenario_S6_WitchImmuneToOwnPoison(t *testing.T) {
	players := map[Seat]Player{
		0: {Seat: 0, UID: "u0", Role: RoleVillager, Alive: true},
		1: {Seat: 1, UID: "u1", Role: RoleVillager, Alive: true},
		7: {Seat: 7, UID: "u7", Role: RoleWitch, Alive: true},
	}
	sink := &RecordingSink{}
	bcast := &RecordingBroadcast{}
	e := NewEngine("ROOM2", "host", players, FixedClock{}, FixedRandom{V: 0.9}, sink, bcast, DefaultNightConfig())
	require.Equal(t, ReasonNone, e.StartNight())

	res := e.Submit(PlayerMessage{
		Kind: MessageAction, Seat: 7, Role: RoleWitch,
		Extra: Extra{StepResults: map[string]*Seat{"save": nil, "poison": SeatPtr(7)}},
	})
	require.True(t, res.Accepted)

	outcome := hostAdvance(e, "host")
	require.Equal(t, DecisionEndNight, outcome.Decision)
	assert.Empty(t, e.State().LastNightDeaths)
}

// P1 monotonic revision: every accepted message strictly increases Revision.
func TestProperty_P1_MonotonicRevision(t *testing.T) {
	e := newSeedEngine(t)
	last := e.State().Revision

	steps := []func(){
		func() { submitChoose(t, e, 7, RoleNightmare, 0) },
		func() { _ = hostAdvance(e, "host-uid") },
		func() { submitSkip(t, e, 11, RoleGuard) },
		func() { _ = hostAdvance(e, "host-uid") },
		func() { wolfVote(t, e, 4, 1) },
		func() { wolfVote(t, e, 5, 1) },
		func() { wolfVote(t, e, 6, 1) },
		func() { _ = hostAdvance(e, "host-uid") },
		func() { submitWitchSkip(t, e) },
	}
	for _, step := range steps {
		step()
		next := e.State().Revision
		assert.Greater(t, next, last)
		last = next
	}
}

// P3 single action per step: the Actions log never holds more than one
// entry per StepId, even after repeated wolf votes from many seats.
func TestProperty_P3_SingleActionPerStep(t *testing.T) {
	e := newSeedEngine(t)
	submitChoose(t, e, 7, RoleNightmare, 0)
	_ = hostAdvance(e, "host-uid")
	submitSkip(t, e, 11, RoleGuard)
	_ = hostAdvance(e, "host-uid")

	wolfVote(t, e, 4, 1)
	wolfVote(t, e, 5, 2)
	wolfVote(t, e, 6, 1)
	wolfVote(t, e, 4, 1) // seat 4 revotes, same target

	counts := map[StepId]int{}
	for _, a := range e.State().Actions {
		counts[a.SchemaID]++
	}
	for step, count := range counts {
		assert.LessOrEqualf(t, count, 1, "step %s has %d action entries", step, count)
	}
}

// P5 normalize idempotence.
func TestProperty_P5_NormalizeIdempotent(t *testing.T) {
	e := newSeedEngine(t)
	submitChoose(t, e, 7, RoleNightmare, 0)

	state := e.State()
	first := Normalize(state)
	second := Normalize(state)
	assert.Equal(t, first, second)
	assert.Equal(t, first, first.Renormalize())
}

// P6 nightmare-block no-op: a non-skip action from a blocked seat leaves
// the post-state identical to the pre-state.
func TestProperty_P6_NightmareBlockNoOp(t *testing.T) {
	e := newSeedEngine(t)
	submitChoose(t, e, 7, RoleNightmare, 11)
	_ = hostAdvance(e, "host-uid")

	before := e.State()
	res := e.Submit(PlayerMessage{Kind: MessageAction, Seat: 11, Role: RoleGuard, Target: SeatPtr(0)})
	require.False(t, res.Accepted)
	assert.Equal(t, ReasonNightmareBlocked, res.Reason)

	after := e.State()
	assert.Equal(t, before, after)
}

// P8 wolf-vote last-write: repeated WOLF_VOTE from the same seat leaves
// only the final target in the tally.
func TestProperty_P8_WolfVoteLastWrite(t *testing.T) {
	e := newSeedEngine(t)
	submitChoose(t, e, 7, RoleNightmare, 0)
	_ = hostAdvance(e, "host-uid")
	submitSkip(t, e, 11, RoleGuard)
	_ = hostAdvance(e, "host-uid")

	wolfVote(t, e, 4, 1)
	wolfVote(t, e, 4, 2)
	wolfVote(t, e, 4, 3)

	assert.Equal(t, Seat(3), e.State().CurrentNightResults.WolfVotesBySeat[4])
}

// P2 plan immutability: the plan built at StartNight never changes shape
// or order for the rest of the night, regardless of deaths, step
// resolution, or how many times it's read back through State().
func TestProperty_P2_PlanImmutability(t *testing.T) {
	e := newSeedEngine(t)
	original := e.State().Plan

	frozen := append([]NightStep(nil), original...)

	submitChoose(t, e, 7, RoleNightmare, 0)
	_ = hostAdvance(e, "host-uid")
	submitSkip(t, e, 11, RoleGuard)
	_ = hostAdvance(e, "host-uid")
	wolfVote(t, e, 4, 0)
	wolfVote(t, e, 5, 0)
	wolfVote(t, e, 6, 0)
	_ = hostAdvance(e, "host-uid")

	assert.Equal(t, frozen, e.State().Plan, "plan must not change shape across the night")

	// Mutating a caller's copy of the plan slice must not reach back into
	// engine state — State() hands out a Clone(), not a live reference.
	mutable := e.State().Plan
	if len(mutable) > 0 {
		mutable[0].StepID = StepId("tampered")
	}
	assert.Equal(t, frozen, e.State().Plan, "caller mutation of a returned Plan slice must not leak into engine state")
}

// P4 wolf-vote death determinism: the resolved wolf-kill target (and thus
// CalculateDeaths' output) depends only on the set of votes cast within
// the step, not the order seats submit them in.
func TestProperty_P4_DeathDeterminismUnderShuffledVotes(t *testing.T) {
	orders := [][]Seat{
		{4, 5, 6},
		{6, 4, 5},
		{5, 6, 4},
	}

	var results [][]Seat
	for _, order := range orders {
		e := newSeedEngine(t)
		submitChoose(t, e, 7, RoleNightmare, 0)
		_ = hostAdvance(e, "host-uid")
		submitSkip(t, e, 11, RoleGuard)
		_ = hostAdvance(e, "host-uid")

		for _, seat := range order {
			wolfVote(t, e, seat, 0)
		}
		_ = hostAdvance(e, "host-uid")
		submitWitchSkip(t, e)

		state := e.State()
		results = append(results, CalculateDeaths(&state))
	}

	for i := 1; i < len(results); i++ {
		assert.Equal(t, results[0], results[i], "death outcome must not depend on wolf-vote submission order")
	}
}

// P7 wolfrobot-hunter-gate: once the wolf-robot learns it is looking at the
// hunter, the flow cannot advance past wolfRobotLearn until the viewer
// acks the gate.
func TestProperty_P7_WolfRobotHunterGate(t *testing.T) {
	players := map[Seat]Player{
		0: {Seat: 0, UID: "u0", Role: RoleHunter, Alive: true},
		1: {Seat: 1, UID: "u1", Role: RoleWolfRobot, Alive: true},
		2: {Seat: 2, UID: "u2", Role: RoleVillager, Alive: true},
	}
	sink := &RecordingSink{}
	bcast := &RecordingBroadcast{}
	e := NewEngine("ROOM3", "host", players, FixedClock{T: time.Unix(0, 0)}, FixedRandom{}, sink, bcast, DefaultNightConfig())
	require.Equal(t, ReasonNone, e.StartNight())

	res := e.Submit(PlayerMessage{Kind: MessageAction, Seat: 1, Role: RoleWolfRobot, Target: SeatPtr(0)})
	require.True(t, res.Accepted)
	assert.False(t, e.State().WolfRobotHunterStatusViewed)

	ackCurrentReveal(t, e, 1, RoleWolfRobot)

	outcome := hostAdvance(e, "host")
	assert.Equal(t, DecisionNone, outcome.Decision)
	assert.Equal(t, ReasonWolfRobotHunterStatusNotViewed, outcome.Reason)

	res = e.Submit(PlayerMessage{Kind: MessageWolfRobotHunterStatusViewed, Seat: 1})
	require.True(t, res.Accepted)
	assert.True(t, e.State().WolfRobotHunterStatusViewed)

	outcome = hostAdvance(e, "host")
	assert.NotEqual(t, DecisionNone, outcome.Decision)
}
