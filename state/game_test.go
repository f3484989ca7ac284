package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridgecard/card"
	"bridgecard/deal"
)

func fullDeal(t *testing.T) deal.Hands {
	t.Helper()
	hands, err := deal.ParsePBN(
		"N: AT2.AK2.AK2.AK32 J9873.QJ3.QJ3.QJ Q4.T954.T954.T54 K65.876.876.9876")
	require.NoError(t, err)
	return hands
}

func TestNewGameOpeningLeader(t *testing.T) {
	hands := fullDeal(t)
	contract, err := deal.ParseContract("3NT")
	require.NoError(t, err)
	g := New(hands, deal.North, contract)
	assert.Equal(t, deal.East, g.Leader())
	assert.Equal(t, 0, g.Unknown(deal.North))
	// Trick.Leader must agree with Leader() from the very first card: the
	// sampler and playout.World both derive the acting seat from Trick(),
	// not Leader() directly, whenever the trick hasn't started yet.
	assert.Equal(t, deal.East, g.Trick().Leader)
}

func TestPlayUpdatesMasksAndAdvancesLeader(t *testing.T) {
	hands := fullDeal(t)
	contract, _ := deal.ParseContract("3NT")
	g := New(hands, deal.North, contract)

	lead := card.New(card.Spades, 11) // E's JS
	require.True(t, g.IsLegal(lead))
	require.True(t, g.Play(lead, true))

	assert.False(t, g.Hand(deal.East).Has(lead))
	assert.Equal(t, deal.South, g.Leader())
	assert.Equal(t, 1, g.Trick().Count)
}

func TestIllegalPlayNoStateChange(t *testing.T) {
	hands := fullDeal(t)
	contract, _ := deal.ParseContract("3NT")
	g := New(hands, deal.North, contract)

	before := g.snapshot()
	notHeld := card.New(card.Spades, 14) // N's AS, not E's to play
	ok := g.Play(notHeld, true)
	assert.False(t, ok)
	assert.Equal(t, before, g.snapshot())
}

func TestFollowSuitRequired(t *testing.T) {
	hands := fullDeal(t)
	contract, _ := deal.ParseContract("3NT")
	g := New(hands, deal.North, contract)

	require.True(t, g.Play(card.New(card.Spades, 11), true)) // E leads JS
	// S must follow spades; S holds Q4 so Q4 is the only spade.
	offSuit := card.New(card.Hearts, 10) // S's T of hearts
	assert.False(t, g.IsLegal(offSuit))
	onSuit := card.New(card.Spades, 4)
	assert.True(t, g.IsLegal(onSuit))
}

func TestApplyVoidSetsBitAndBlocksFutureLead(t *testing.T) {
	hands := fullDeal(t)
	contract, _ := deal.ParseContract("3NT")
	g := New(hands, deal.North, contract)

	require.True(t, g.Play(card.New(card.Spades, 11), true)) // E leads JS
	// S discards a diamond instead of following spades -> illegal via check,
	// so force it with check=false to exercise ApplyVoid directly.
	offSuit := card.New(card.Diamonds, 9)
	require.True(t, g.Play(offSuit, false))
	assert.True(t, g.IsVoid(deal.South, card.Spades))
}

func TestGetMovesRestrictsToLeadSuitWhenHeld(t *testing.T) {
	hands := fullDeal(t)
	contract, _ := deal.ParseContract("3NT")
	g := New(hands, deal.North, contract)

	require.True(t, g.Play(card.New(card.Spades, 11), true))
	for _, c := range g.GetMoves() {
		assert.Equal(t, card.Spades, c.Suit())
	}
}

func TestFinishTrickAwardsWinnerAndSetsNextLeader(t *testing.T) {
	hands := fullDeal(t)
	contract, _ := deal.ParseContract("3NT")
	g := New(hands, deal.North, contract)

	require.True(t, g.Play(card.New(card.Spades, 11), true)) // E: JS
	require.True(t, g.Play(card.New(card.Spades, 4), true))  // S: 4S
	require.True(t, g.Play(card.New(card.Spades, 5), true))  // W: 5S
	require.True(t, g.Play(card.New(card.Spades, 2), true))  // N: 2S

	ns, ew := g.Taken()
	assert.Equal(t, 0, ns)
	assert.Equal(t, 1, ew) // JS is highest; East (EW) wins the trick
	assert.Equal(t, deal.East, g.Leader())
	assert.Equal(t, 0, g.Trick().Count)
}

func TestUndoRedoRoundTrip(t *testing.T) {
	hands := fullDeal(t)
	contract, _ := deal.ParseContract("3NT")
	g := New(hands, deal.North, contract)

	before := g.snapshot()
	c := card.New(card.Spades, 11)
	require.True(t, g.Play(c, true))
	afterPlay := g.snapshot()

	require.True(t, g.Undo())
	assert.Equal(t, before, g.snapshot())

	require.True(t, g.Redo())
	assert.Equal(t, afterPlay, g.snapshot())

	require.True(t, g.Undo())
	assert.False(t, g.Undo())
}

func TestUndoOnEmptyStackFails(t *testing.T) {
	hands := fullDeal(t)
	contract, _ := deal.ParseContract("3NT")
	g := New(hands, deal.North, contract)
	assert.False(t, g.Undo())
	assert.False(t, g.Redo())
}

func TestCloneIsIndependent(t *testing.T) {
	hands := fullDeal(t)
	contract, _ := deal.ParseContract("3NT")
	g := New(hands, deal.North, contract)

	clone := g.Clone()
	require.True(t, clone.Play(card.New(card.Spades, 11), true))

	assert.NotEqual(t, g.Leader(), clone.Leader())
	assert.True(t, g.Hand(deal.East).Has(card.New(card.Spades, 11)))
}

func TestIsOverFalseBeforeAnyTrick(t *testing.T) {
	hands := fullDeal(t)
	contract, _ := deal.ParseContract("3NT")
	g := New(hands, deal.North, contract)
	assert.False(t, g.IsOver())
}
