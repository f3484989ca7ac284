// Package playout implements World, the lightweight, destructively mutated
// playout state the tree search descends over: fully specified hands (no
// hidden cards), a running info-set key, and an oracle-backed trick count
// for terminal (or depth-truncated) evaluation.
package playout

import (
	"strings"

	"github.com/rs/zerolog/log"

	"bridgecard/card"
	"bridgecard/deal"
	"bridgecard/oracle"
)

// Key is the 96-bit information-set identifier: a 64-bit play-history word
// plus the leader-to-act identity and that seat's hand mask. The tree's
// node map indexes only on History; Leader and HandMask travel alongside
// for callers (role assignment, diagnostics) that need the fuller context.
type Key struct {
	History  uint64
	Leader   deal.Seat
	HandMask card.Mask
}

// World is a fully specified determinization: one hand per seat, a current
// trick, per-side trick counts, and the running history needed to consult
// the double-dummy oracle from wherever play has reached.
type World struct {
	hands [4]card.Mask
	trump deal.Strain
	trick deal.Trick
	taken [2]int
	leader deal.Seat

	origHands  [4]card.Mask
	origLeader deal.Seat

	history strings.Builder
	key     uint64
}

// New builds a World from fully specified per-seat hands, starting at the
// given (possibly partial) trick boundary.
func New(hands [4]card.Mask, trump deal.Strain, trick deal.Trick, taken [2]int) *World {
	return &World{
		hands:      hands,
		trump:      trump,
		trick:      trick,
		taken:      taken,
		leader:     trick.Leader,
		origHands:  hands,
		origLeader: trick.Leader,
	}
}

// Hand returns seat's current, fully known hand.
func (w *World) Hand(seat deal.Seat) card.Mask { return w.hands[seat] }

// Leader returns the seat to act next.
func (w *World) Leader() deal.Seat { return w.leader }

// Trick returns the current, possibly partial, trick.
func (w *World) Trick() deal.Trick { return w.trick }

// Taken returns tricks won so far by (NS, EW).
func (w *World) Taken() (ns, ew int) { return w.taken[deal.NS], w.taken[deal.EW] }

// GetMoves returns the legal cards for the seat to act: every card of the
// lead suit if the seat holds one, else the whole hand.
func (w *World) GetMoves() []card.Card {
	hand := w.hands[w.leader]
	if w.trick.Count > 0 {
		lead := w.trick.LeadSuit()
		if suited := hand & card.SuitMask(lead); suited != 0 {
			hand = suited
		}
	}
	return hand.Cards()
}

// Play removes c from the acting seat's hand, appends it to the current
// trick and the oracle-replay history, and folds it into the 64-bit
// play-history word (card_index:6 | seat:2 per play, shifted in temporal
// order). On the fourth card of a trick it scores the trick and advances
// the leader to the winner. Returns the resulting information-set key.
func (w *World) Play(c card.Card) Key {
	leader := w.leader
	w.hands[leader] = w.hands[leader].Clear(c)
	w.trick.Add(c)

	if w.history.Len() > 0 {
		w.history.WriteByte(' ')
	}
	w.history.WriteString(c.String())

	w.key = (w.key << 8) | (uint64(c) & 0x3F) | (uint64(leader) << 6)

	if w.trick.Count == 4 {
		w.finishTrick()
	} else {
		w.leader = leader.Next()
	}
	return Key{History: w.key, Leader: w.leader, HandMask: w.hands[w.leader]}
}

func (w *World) finishTrick() {
	winner := w.trick.WinnerSeat(w.trump)
	w.taken[deal.SideOf(winner)]++
	w.trick = deal.Trick{Leader: winner}
	w.leader = winner
}

// IsOver reports whether the world has run to completion: every hand is
// empty and no trick is in progress.
func (w *World) IsOver() bool {
	return w.trick.Count == 0 && w.hands[0]|w.hands[1]|w.hands[2]|w.hands[3] == 0
}

// Tricks returns the tricks won (so far, plus oracle-projected remaining)
// by the side of the seat currently on lead. If the world has already run
// to completion, no oracle call is made. A per-call oracle failure is not
// propagated (see the engine's error-handling policy): it is logged and
// treated as zero additional tricks.
func (w *World) Tricks(o oracle.Oracle) int {
	side := deal.SideOf(w.leader)
	if w.IsOver() {
		return w.taken[side]
	}

	handle, err := o.New(deal.Hands{Seats: w.origHands}, w.trump, w.origLeader)
	if err != nil {
		log.Error().Err(err).Msg("playout: oracle handle creation failed")
		return w.taken[side]
	}
	defer handle.Delete()

	if w.history.Len() > 0 {
		if err := handle.Exec(w.history.String()); err != nil {
			log.Error().Err(err).Msg("playout: oracle replay failed")
			return w.taken[side]
		}
	}

	remaining, err := handle.GetTricksToTake()
	if err != nil {
		log.Error().Err(err).Msg("playout: oracle query failed")
		return w.taken[side]
	}
	return w.taken[side] + remaining
}
