package deal

import (
	"fmt"
	"strings"

	"bridgecard/card"
)

// pbnSuitOrder is the fixed PBN field order within a hand: Spades, Hearts,
// Diamonds, Clubs.
var pbnSuitOrder = [4]card.Suit{card.Spades, card.Hearts, card.Diamonds, card.Clubs}

// Hands holds one 52-bit mask per seat, plus a mask of cards whose holder is
// unknown ("hidden").
type Hands struct {
	Seats  [4]card.Mask
	Hidden card.Mask
}

// ParsePBN parses a string of the form "N: <h0> <h1> <h2> <h3>", where the
// prefix names the seat the first hand belongs to and the remaining hands
// follow in clockwise order. Each hand is four dot-separated suit-rank runs
// in PBN order (S.H.D.C); "..." marks an unknown hand whose cards are
// folded into Hidden.
func ParsePBN(s string) (Hands, error) {
	var hands Hands
	s = strings.TrimSpace(s)
	colon := strings.IndexByte(s, ':')
	if colon < 0 {
		return hands, fmt.Errorf("deal: pbn %q missing seat prefix", s)
	}
	firstSeat, ok := ParseSeat(strings.TrimSpace(s[:colon]))
	if !ok {
		return hands, fmt.Errorf("deal: pbn %q has bad seat prefix", s)
	}
	fields := strings.Fields(s[colon+1:])
	if len(fields) != 4 {
		return hands, fmt.Errorf("deal: pbn %q must have exactly 4 hands", s)
	}

	seen := card.Mask(0)
	for i, field := range fields {
		seat := Seat((int(firstSeat) + i) % 4)
		if field == "..." {
			continue
		}
		mask, err := parsePBNHand(field)
		if err != nil {
			return hands, fmt.Errorf("deal: seat %v: %w", seat, err)
		}
		if mask&seen != 0 {
			return hands, fmt.Errorf("deal: pbn %q has duplicate cards", s)
		}
		seen |= mask
		hands.Seats[seat] = mask
	}
	hands.Hidden = card.Full52 &^ seen
	return hands, nil
}

func parsePBNHand(field string) (card.Mask, error) {
	suits := strings.Split(field, ".")
	if len(suits) != 4 {
		return 0, fmt.Errorf("hand %q must have 4 dot-separated suits", field)
	}
	var mask card.Mask
	for i, run := range suits {
		suit := pbnSuitOrder[i]
		for _, r := range run {
			rank, ok := rankFromPBNRune(r)
			if !ok {
				return 0, fmt.Errorf("hand %q has bad rank %q", field, string(r))
			}
			mask = mask.Set(card.New(suit, rank))
		}
	}
	return mask, nil
}

func rankFromPBNRune(r rune) (int, bool) {
	switch r {
	case 'A':
		return card.RankAce, true
	case 'K':
		return 13, true
	case 'Q':
		return 12, true
	case 'J':
		return 11, true
	case 'T':
		return 10, true
	case '9', '8', '7', '6', '5', '4', '3', '2':
		return int(r - '0'), true
	}
	return 0, false
}

// SerializePBN renders Hands back to PBN text with North listed first,
// always emitting all four hands ("..." for any seat with no assigned
// cards and a nonempty Hidden pool is not attempted — a fully specified
// deal is expected).
func SerializePBN(h Hands) string {
	var b strings.Builder
	b.WriteString("N:")
	for seat := North; seat <= West; seat++ {
		b.WriteByte(' ')
		b.WriteString(serializePBNHand(h.Seats[seat]))
	}
	return b.String()
}

func serializePBNHand(mask card.Mask) string {
	var b strings.Builder
	for i, suit := range pbnSuitOrder {
		if i > 0 {
			b.WriteByte('.')
		}
		cards := (mask & card.SuitMask(suit)).Cards()
		// Highest rank first, matching PBN convention.
		for i := len(cards) - 1; i >= 0; i-- {
			b.WriteString(rankToPBNRune(cards[i].Rank()))
		}
	}
	return b.String()
}

func rankToPBNRune(rank int) string {
	switch rank {
	case card.RankAce:
		return "A"
	case 13:
		return "K"
	case 12:
		return "Q"
	case 11:
		return "J"
	case 10:
		return "T"
	default:
		return string(rune('0' + rank))
	}
}
