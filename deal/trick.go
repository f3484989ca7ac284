package deal

import "bridgecard/card"

// Trick is an in-progress or finished set of up to 4 plays.
type Trick struct {
	Cards  [4]card.Card
	Count  int
	Leader Seat
}

// LeadSuit returns the suit of the first card played this trick. Only valid
// when Count > 0.
func (t *Trick) LeadSuit() card.Suit {
	return t.Cards[0].Suit()
}

// SeatOf returns the seat that played the card at trick position i (0-based,
// 0 is the leader).
func (t *Trick) SeatOf(i int) Seat {
	return Seat((int(t.Leader) + i) % 4)
}

// Add appends c to the trick, played by the next seat to act. Invariant:
// Count <= 4 must hold after the call; callers are responsible for calling
// Winner/reset once Count reaches 4.
func (t *Trick) Add(c card.Card) {
	t.Cards[t.Count] = c
	t.Count++
}

// priority returns the trick-taking priority of suit s given the trump
// strain and lead suit: 2 if trump (and strain is a suit), 1 if lead suit,
// else 0.
func priority(s, lead card.Suit, trump Strain) int {
	if trump.IsTrump() && s == card.Suit(trump) {
		return 2
	}
	if s == lead {
		return 1
	}
	return 0
}

// Winner returns the trick position (0..3) of the winning card, given the
// contract's strain. Only valid when Count == 4.
func (t *Trick) Winner(trump Strain) int {
	lead := t.LeadSuit()
	best := 0
	bestKey := [2]int{priority(t.Cards[0].Suit(), lead, trump), t.Cards[0].Rank()}
	for i := 1; i < t.Count; i++ {
		key := [2]int{priority(t.Cards[i].Suit(), lead, trump), t.Cards[i].Rank()}
		if key[0] > bestKey[0] || (key[0] == bestKey[0] && key[1] > bestKey[1]) {
			bestKey = key
			best = i
		}
	}
	return best
}

// WinnerSeat returns the seat that won the trick, given the contract's
// strain. Only valid when Count == 4.
func (t *Trick) WinnerSeat(trump Strain) Seat {
	return t.SeatOf(t.Winner(trump))
}
