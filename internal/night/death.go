package night

import "sort"

// CalculateDeaths is C7: a pure, total function from the night's recorded
// results to the sorted list of seats that die. Implements spec.md §4.7's
// seven rules in their fixed total order; ties are broken by rule index
// (the order the rules run in) then by seat ascending, which falls out
// naturally from applying the rules in sequence and sorting once at the
// end.
//
// Reads directly from CurrentNightResults, SeerReveal and Players rather than
// replaying the raw Actions log — those fields are themselves a pure,
// deterministic projection of Actions (written by Reduce/ResolveStep), so
// this is equivalent to "calculateDeaths(actions, roleSeatMap)" while
// avoiding re-deriving scratch state the reducer already computed.
func CalculateDeaths(state *GameState) []Seat {
	deaths := make(map[Seat]bool)
	nr := state.CurrentNightResults

	witchSeat, hasWitch := seatOfRole(state, RoleWitch)
	dreamcatcherSeat, hasDreamcatcher := seatOfRole(state, RoleDreamcatcher)
	wolfQueenSeat, hasWolfQueen := seatOfRole(state, RoleWolfQueen)
	celebritySeat, hasCelebrity := seatOfRole(state, RoleCelebrity)
	spiritKnightSeat, hasSpiritKnight := seatOfRole(state, RoleSpiritKnight)

	// Rule 1: wolf kill vs guard/save.
	if k := nr.WolfKillTarget; k != nil && !nr.WolfKillDisabled {
		g := nr.GuardedSeat != nil && *nr.GuardedSeat == *k
		s := nr.SavedSeat != nil && *nr.SavedSeat == *k
		if !(g != s) { // not (g XOR s)
			deaths[*k] = true
		}
	}

	// Rule 2: witch poison; the witcher is immune to her own poison.
	if p := nr.PoisonedSeat; p != nil {
		if !(hasWitch && *p == witchSeat) {
			deaths[*p] = true
		}
	}

	// Rule 3: dreamcatcher protection / link death.
	if d := nr.DreamcatcherDreamSeat; d != nil {
		delete(deaths, *d)
		if hasDreamcatcher && deaths[dreamcatcherSeat] {
			deaths[*d] = true
		}
	}

	// Rule 4: wolf-queen link.
	if hasWolfQueen && deaths[wolfQueenSeat] && nr.CharmedSeat != nil {
		deaths[*nr.CharmedSeat] = true
	}

	// Rule 5: celebrity link.
	if d := nr.CelebrityDreamSeat; d != nil {
		delete(deaths, *d)
		if hasCelebrity && deaths[celebritySeat] {
			deaths[*d] = true
		}
	}

	// Rule 6: magician swap of fates — if exactly one of the swapped
	// pair is dead, flip both.
	if swap := nr.SwappedSeats; swap != nil {
		a, b := swap[0], swap[1]
		if deaths[a] != deaths[b] {
			deaths[a], deaths[b] = deaths[b], deaths[a]
		}
	}

	// Rule 7: spirit-knight reflection; spirit-knight itself is immune.
	if hasSpiritKnight {
		if state.SeerReveal != nil && state.SeerReveal.TargetSeat == spiritKnightSeat {
			if seerSeat, ok := seatOfRole(state, RoleSeer); ok {
				deaths[seerSeat] = true
			}
		}
		if nr.PoisonedSeat != nil && *nr.PoisonedSeat == spiritKnightSeat {
			delete(deaths, spiritKnightSeat)
			if hasWitch {
				deaths[witchSeat] = true
			}
		}
	}

	out := make([]Seat, 0, len(deaths))
	for seat, dead := range deaths {
		if dead {
			out = append(out, seat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func seatOfRole(state *GameState, role RoleId) (Seat, bool) {
	for seat, p := range state.Players {
		if p.Role == role {
			return seat, true
		}
	}
	return 0, false
}
