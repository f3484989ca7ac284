package oracle

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"bridgecard/card"
	"bridgecard/deal"
)

// TableOracle is an exhaustive (brute-force minimax) double-dummy solver.
// It is suitable for small residual hands — tests and the tail of a play —
// where an exponential search over the remaining cards is cheap; it is not
// meant to replace a native solver for full 13-card deals.
type TableOracle struct{}

// New returns a fresh TableOracle. It never fails to load since it has no
// external dependency, unlike a native adapter wrapping a shared library.
func New() *TableOracle {
	return &TableOracle{}
}

func (TableOracle) New(hands deal.Hands, strain deal.Strain, leader deal.Seat) (Handle, error) {
	if hands.Hidden != 0 {
		return nil, fmt.Errorf("oracle: deal has %d hidden cards, double-dummy requires a full deal", hands.Hidden.Popcount())
	}
	return &tableHandle{
		hands:  hands.Seats,
		strain: strain,
		leader: leader,
		trick:  deal.Trick{Leader: leader},
		cache:  make(map[uint64]int),
	}, nil
}

type tableHandle struct {
	hands   [4]card.Mask
	strain  deal.Strain
	leader  deal.Seat
	trick   deal.Trick
	cache   map[uint64]int
	deleted bool
}

func (h *tableHandle) Exec(command string) error {
	if h.deleted {
		return fmt.Errorf("oracle: handle already deleted")
	}
	for _, f := range strings.Fields(command) {
		c, err := card.Parse(f)
		if err != nil {
			return fmt.Errorf("oracle: bad play %q: %w", f, err)
		}
		if !h.hands[h.leader].Has(c) {
			return fmt.Errorf("oracle: seat %v does not hold %v", h.leader, c)
		}
		h.hands[h.leader] = h.hands[h.leader].Clear(c)
		h.trick.Add(c)
		if h.trick.Count == 4 {
			winner := h.trick.WinnerSeat(h.strain)
			h.trick = deal.Trick{Leader: winner}
			h.leader = winner
		} else {
			h.leader = h.leader.Next()
		}
	}
	return nil
}

func (h *tableHandle) GetTricksToTake() (int, error) {
	if h.deleted {
		return 0, fmt.Errorf("oracle: handle already deleted")
	}
	total := 0
	for _, m := range h.hands {
		if p := m.Popcount(); p > total {
			total = p
		}
	}
	nsTricks := h.solve(h.hands, h.trick, h.leader)
	if deal.SideOf(h.leader) == deal.NS {
		return nsTricks, nil
	}
	return total - nsTricks, nil
}

func (h *tableHandle) Delete() {
	h.deleted = true
	h.cache = nil
}

func legalMoves(hand card.Mask, trick deal.Trick) []card.Card {
	if trick.Count > 0 {
		lead := trick.LeadSuit()
		if suited := hand & card.SuitMask(lead); suited != 0 {
			return suited.Cards()
		}
	}
	return hand.Cards()
}

func handsEmpty(hands [4]card.Mask) bool {
	return hands[0]|hands[1]|hands[2]|hands[3] == 0
}

// solve returns the number of tricks NS wins from this position onward under
// optimal double-dummy play by both sides, memoized on the exact remaining
// holdings plus partial-trick state.
func (h *tableHandle) solve(hands [4]card.Mask, trick deal.Trick, leader deal.Seat) int {
	if trick.Count == 0 && handsEmpty(hands) {
		return 0
	}
	key := stateKey(hands, trick, leader)
	if v, ok := h.cache[key]; ok {
		return v
	}

	maximizing := deal.SideOf(leader) == deal.NS
	best := -1
	for _, c := range legalMoves(hands[leader], trick) {
		nextHands := hands
		nextHands[leader] = nextHands[leader].Clear(c)
		nextTrick := trick
		nextTrick.Add(c)

		var val int
		if nextTrick.Count == 4 {
			winner := nextTrick.WinnerSeat(h.strain)
			sub := h.solve(nextHands, deal.Trick{Leader: winner}, winner)
			if deal.SideOf(winner) == deal.NS {
				sub++
			}
			val = sub
		} else {
			val = h.solve(nextHands, nextTrick, leader.Next())
		}

		if best == -1 || (maximizing && val > best) || (!maximizing && val < best) {
			best = val
		}
	}

	h.cache[key] = best
	return best
}

func stateKey(hands [4]card.Mask, trick deal.Trick, leader deal.Seat) uint64 {
	var buf [4*8 + 3 + 4]byte
	off := 0
	for _, m := range hands {
		binary.LittleEndian.PutUint64(buf[off:], uint64(m))
		off += 8
	}
	buf[off] = byte(leader)
	off++
	buf[off] = byte(trick.Leader)
	off++
	buf[off] = byte(trick.Count)
	off++
	for i := 0; i < trick.Count; i++ {
		buf[off] = byte(trick.Cards[i])
		off++
	}
	return xxhash.Sum64(buf[:off])
}
