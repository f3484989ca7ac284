// Package state implements the authoritative, user-facing game state for a
// single card-play session: legal-move generation, play application, void
// inference, trick scoring, and undo/redo over full-state snapshots.
package state

import (
	"bridgecard/card"
	"bridgecard/deal"
)

// Constraint is a per-seat shape and HCP range used by the sampler to reject
// degenerate worlds. Ranges are inclusive; Edited marks whether the range
// has been narrowed from the default "anything goes" range and should
// actually be enforced.
type Constraint struct {
	SuitMin, SuitMax [4]int
	HCPMin, HCPMax   int
	Edited           bool
}

// DefaultConstraint returns an unconstrained range: 0..13 per suit, 0..37 HCP.
func DefaultConstraint() Constraint {
	return Constraint{
		SuitMin: [4]int{0, 0, 0, 0},
		SuitMax: [4]int{13, 13, 13, 13},
		HCPMin:  0,
		HCPMax:  37,
	}
}

type snapshot struct {
	hands    [4]card.Mask
	plays    [4]card.Mask
	hidden   card.Mask
	unknown  [4]int
	voids    uint16
	leader   deal.Seat
	trick    deal.Trick
	taken    [2]int
}

// Game is the mutable, authoritative card-play state. Zero value is not
// usable; construct with New.
type Game struct {
	hands   [4]card.Mask
	plays   [4]card.Mask
	hidden  card.Mask
	unknown [4]int
	voids   uint16
	leader  deal.Seat
	trick   deal.Trick
	taken   [2]int

	constraints [4]Constraint
	declarer    deal.Seat
	contract    deal.Contract

	undo []snapshot
	redo []snapshot
}

// New builds a Game from known hands (a deal.Hands, possibly with hidden
// cards), the declarer, and the contract. The opening leader is declarer's
// left-hand opponent. Each seat's unknown count is 13 minus its known cards;
// when the deal has no hidden cards, every seat's unknown count is 0.
func New(hands deal.Hands, declarer deal.Seat, contract deal.Contract) *Game {
	opener := declarer.Next()
	g := &Game{
		hands:    hands.Seats,
		hidden:   hands.Hidden,
		leader:   opener,
		trick:    deal.Trick{Leader: opener},
		declarer: declarer,
		contract: contract,
	}
	for seat := deal.North; seat <= deal.West; seat++ {
		g.constraints[seat] = DefaultConstraint()
		if hands.Hidden != 0 {
			known := hands.Seats[seat].Popcount()
			g.unknown[seat] = 13 - known
		}
	}
	return g
}

// Declarer returns the contract's declarer.
func (g *Game) Declarer() deal.Seat { return g.declarer }

// Contract returns the attached contract.
func (g *Game) Contract() deal.Contract { return g.contract }

// Leader returns the seat to act next.
func (g *Game) Leader() deal.Seat { return g.leader }

// Hand returns the known-card mask held by seat.
func (g *Game) Hand(seat deal.Seat) card.Mask { return g.hands[seat] }

// Hidden returns the mask of cards with no known holder.
func (g *Game) Hidden() card.Mask { return g.hidden }

// Unknown returns the count of cards seat holds that are not yet pinned.
func (g *Game) Unknown(seat deal.Seat) int { return g.unknown[seat] }

// Taken returns tricks won by (NS, EW).
func (g *Game) Taken() (ns, ew int) { return g.taken[deal.NS], g.taken[deal.EW] }

// Trick returns the current, possibly partial, trick.
func (g *Game) Trick() deal.Trick { return g.trick }

// Constraints returns the constraint for the given seat.
func (g *Game) Constraints(seat deal.Seat) Constraint { return g.constraints[seat] }

// SetConstraints overrides the constraint for the given seat and marks it
// edited so the sampler's Filter enforces it.
func (g *Game) SetConstraints(seat deal.Seat, c Constraint) {
	c.Edited = true
	g.constraints[seat] = c
}

// IsVoid reports whether seat is known void in suit.
func (g *Game) IsVoid(seat deal.Seat, suit card.Suit) bool {
	return g.voids&voidBit(seat, suit) != 0
}

func voidBit(seat deal.Seat, suit card.Suit) uint16 {
	return 1 << uint(int(seat)*4+int(suit))
}

func (g *Game) playedMask() card.Mask {
	return g.plays[0] | g.plays[1] | g.plays[2] | g.plays[3]
}

// IsLegal reports whether c is a legal play for the seat to act.
func (g *Game) IsLegal(c card.Card) bool {
	leader := g.leader
	owned := g.hands[leader].Has(c)
	fromHidden := g.hidden.Has(c) && g.unknown[leader] > 0
	if !owned && !fromHidden {
		return false
	}
	if g.IsVoid(leader, c.Suit()) {
		return false
	}
	if g.playedMask().Has(c) {
		return false
	}
	if g.trick.Count > 0 {
		lead := g.trick.LeadSuit()
		if g.holdsSuit(leader, lead) && c.Suit() != lead {
			return false
		}
	}
	return true
}

// holdsSuit reports whether seat has any card of suit among its known hand
// or its hidden-but-possibly-held pool.
func (g *Game) holdsSuit(seat deal.Seat, suit card.Suit) bool {
	if g.hands[seat].SuitCount(suit) > 0 {
		return true
	}
	if g.unknown[seat] > 0 && (g.hidden&card.SuitMask(suit)) != 0 {
		return true
	}
	return false
}

// GetMoves returns every legal card for the seat to act.
func (g *Game) GetMoves() []card.Card {
	leader := g.leader
	played := g.playedMask()
	pool := g.hands[leader] &^ played
	if g.unknown[leader] > 0 {
		pool |= g.hidden &^ played
	}
	if g.trick.Count > 0 {
		lead := g.trick.LeadSuit()
		if g.holdsSuit(leader, lead) {
			pool &= card.SuitMask(lead)
		}
	}
	moves := make([]card.Card, 0, pool.Popcount())
	for _, c := range pool.Cards() {
		if !g.IsVoid(leader, c.Suit()) {
			moves = append(moves, c)
		}
	}
	return moves
}

func (g *Game) snapshot() snapshot {
	return snapshot{
		hands:   g.hands,
		plays:   g.plays,
		hidden:  g.hidden,
		unknown: g.unknown,
		voids:   g.voids,
		leader:  g.leader,
		trick:   g.trick,
		taken:   g.taken,
	}
}

func (g *Game) restore(s snapshot) {
	g.hands = s.hands
	g.plays = s.plays
	g.hidden = s.hidden
	g.unknown = s.unknown
	g.voids = s.voids
	g.leader = s.leader
	g.trick = s.trick
	g.taken = s.taken
}

// Play applies a card for the seat to act. If check is true, the play must
// be legal (IsLegal); an illegal play returns false with no state change.
func (g *Game) Play(c card.Card, check bool) bool {
	if check && !g.IsLegal(c) {
		return false
	}
	g.undo = append(g.undo, g.snapshot())
	g.redo = g.redo[:0]

	leader := g.leader
	ledSuit := card.Suit(0)
	hadLead := g.trick.Count > 0
	if hadLead {
		ledSuit = g.trick.LeadSuit()
	}

	if g.hidden.Has(c) {
		g.hidden = g.hidden.Clear(c)
		g.unknown[leader]--
	}
	g.hands[leader] = g.hands[leader].Clear(c)
	g.plays[leader] = g.plays[leader].Set(c)
	g.trick.Add(c)

	if hadLead && c.Suit() != ledSuit {
		g.ApplyVoid(ledSuit)
	}

	if g.trick.Count == 4 {
		g.FinishTrick()
	} else {
		g.leader = leader.Next()
	}
	return true
}

// ApplyVoid marks the current leader void in suit, then propagates certainty
// if exactly one other seat has unresolved unknown cards: every hidden card
// of suit must belong to that seat.
func (g *Game) ApplyVoid(suit card.Suit) {
	leader := g.leader
	g.voids |= voidBit(leader, suit)

	candidate := -1
	count := 0
	for seat := deal.North; seat <= deal.West; seat++ {
		if seat == leader {
			continue
		}
		if g.unknown[seat] > 0 {
			count++
			candidate = int(seat)
		}
	}
	if count != 1 {
		return
	}
	seat := deal.Seat(candidate)
	suitHidden := g.hidden & card.SuitMask(suit)
	if suitHidden == 0 {
		return
	}
	n := suitHidden.Popcount()
	if n > g.unknown[seat] {
		n = g.unknown[seat]
	}
	moved := 0
	for _, c := range suitHidden.Cards() {
		if moved >= n {
			break
		}
		g.hidden = g.hidden.Clear(c)
		g.hands[seat] = g.hands[seat].Set(c)
		moved++
	}
	g.unknown[seat] -= moved
}

// FinishTrick scores the completed trick and starts a new one led by the
// winner.
func (g *Game) FinishTrick() {
	winner := g.trick.WinnerSeat(g.contract.Strain)
	g.taken[deal.SideOf(winner)]++
	g.trick = deal.Trick{Leader: winner}
	g.leader = winner
}

// Undo pops the most recent snapshot, pushing the current state to the redo
// stack. Returns false if there is nothing to undo.
func (g *Game) Undo() bool {
	if len(g.undo) == 0 {
		return false
	}
	cur := g.snapshot()
	last := g.undo[len(g.undo)-1]
	g.undo = g.undo[:len(g.undo)-1]
	g.redo = append(g.redo, cur)
	g.restore(last)
	return true
}

// Redo pops the most recent undone snapshot. Returns false if there is
// nothing to redo.
func (g *Game) Redo() bool {
	if len(g.redo) == 0 {
		return false
	}
	cur := g.snapshot()
	last := g.redo[len(g.redo)-1]
	g.redo = g.redo[:len(g.redo)-1]
	g.undo = append(g.undo, cur)
	g.restore(last)
	return true
}

// Clone deep-copies the game, including both history stacks, preserving
// LIFO order.
func (g *Game) Clone() *Game {
	clone := *g
	clone.undo = append([]snapshot(nil), g.undo...)
	clone.redo = append([]snapshot(nil), g.redo...)
	clone.constraints = g.constraints
	return &clone
}

// IsOver reports whether all 13 tricks have been taken.
func (g *Game) IsOver() bool {
	return g.taken[deal.NS]+g.taken[deal.EW] >= 13
}
