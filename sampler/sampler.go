// Package sampler implements determinization: drawing a fully specified
// World consistent with a Game's known cards, known voids, and per-seat
// shape/HCP constraints, by rejection sampling over the hidden-card pool.
package sampler

import (
	"math/rand"

	"bridgecard/card"
	"bridgecard/deal"
	"bridgecard/playout"
	"bridgecard/state"
)

// Sampler is constructed from a single Game snapshot and reused across many
// Generate calls during a search.
type Sampler struct {
	game *state.Game

	known    [4]card.Mask
	needed   [4]int
	leftover []card.Card

	trick deal.Trick
	trump deal.Strain
	taken [2]int
}

// New builds a Sampler from the current game. The current (possibly
// partial) trick is unplayed on an internal copy so that every generated
// World starts at a trick boundary; the oracle is consulted later with the
// trick replayed back in via Synchronize.
func New(g *state.Game) *Sampler {
	s := &Sampler{
		game:  g,
		trick: deal.Trick{Leader: g.Trick().Leader},
		trump: g.Contract().Strain,
	}
	ns, ew := g.Taken()
	s.taken = [2]int{ns, ew}

	var hands [4]card.Mask
	for seat := deal.North; seat <= deal.West; seat++ {
		hands[seat] = g.Hand(seat)
	}
	// Restore this trick's already-played cards to their seat's hand so
	// every generated World starts at a trick boundary; Synchronize later
	// replays them back out through World.Play.
	trick := g.Trick()
	for i := 0; i < trick.Count; i++ {
		seat := trick.SeatOf(i)
		hands[seat] = hands[seat].Set(trick.Cards[i])
	}

	// Cards from earlier tricks are neither known nor in the pool, so each
	// seat still needs exactly its unpinned count.
	for seat := deal.North; seat <= deal.West; seat++ {
		s.known[seat] = hands[seat]
		s.needed[seat] = g.Unknown(seat)
	}
	s.leftover = g.Hidden().Cards()
	return s
}

// Generate draws a fully specified World consistent with known cards and
// voids, shuffling the hidden-card pool with rng. The caller supplies rng
// (the engine hands each worker its own stream drawn from the seeded
// global source) so that threads=1 searches are reproducible end to end;
// Generate itself never touches the process-global math/rand source. The
// second return value is false when a seat could not be filled to its
// needed count from available non-void leftovers — a degenerate draw that
// is rejected outright rather than handed to the caller with missing
// cards (spec open question: degenerate samples are rejected, not
// accepted-and-filtered).
func (s *Sampler) Generate(rng *rand.Rand) (*playout.World, bool) {
	pool := append([]card.Card(nil), s.leftover...)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	var seats [4]card.Mask
	for seat := deal.North; seat <= deal.West; seat++ {
		seats[seat] = s.known[seat]
	}

	for seat := deal.North; seat <= deal.West; seat++ {
		drawn := 0
		i := 0
		for drawn < s.needed[seat] && i < len(pool) {
			c := pool[i]
			if s.game.IsVoid(seat, c.Suit()) {
				i++
				continue
			}
			seats[seat] = seats[seat].Set(c)
			pool = append(pool[:i], pool[i+1:]...)
			drawn++
		}
		if drawn < s.needed[seat] {
			return nil, false
		}
	}

	return playout.New(seats, s.trump, s.trick, s.taken), true
}

// Filter reports whether the world's per-seat shape and HCP fall within
// every edited constraint on the originating game. Unedited seats are not
// checked. Ranges are inclusive.
func (s *Sampler) Filter(w *playout.World) bool {
	for seat := deal.North; seat <= deal.West; seat++ {
		c := s.game.Constraints(seat)
		if !c.Edited {
			continue
		}
		hand := w.Hand(seat)
		hcp := hand.HCP()
		if hcp < c.HCPMin || hcp > c.HCPMax {
			return false
		}
		for suit := card.Clubs; suit <= card.Spades; suit++ {
			n := hand.SuitCount(suit)
			if n < c.SuitMin[suit] || n > c.SuitMax[suit] {
				return false
			}
		}
	}
	return true
}

// Synchronize replays the game's current (possibly partial) trick into a
// freshly generated World, in order. Generate starts every World at a trick
// boundary with each seat's full remaining holding (including any card
// it has already played this trick, restored by New's precompute step); the
// replay here removes those cards from hand the normal way, through
// World.Play, so the world's leader, trick, and history key end up exactly
// where the live game's do.
func (s *Sampler) Synchronize(w *playout.World) {
	trick := s.game.Trick()
	for i := 0; i < trick.Count; i++ {
		w.Play(trick.Cards[i])
	}
}
