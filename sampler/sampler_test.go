package sampler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridgecard/card"
	"bridgecard/deal"
	"bridgecard/state"
)

func testRNG() *rand.Rand { return rand.New(rand.NewSource(1)) }

func unknownGame(t *testing.T) *state.Game {
	t.Helper()
	var hands deal.Hands
	hands.Hidden = card.Full52
	contract, err := deal.ParseContract("3NT")
	require.NoError(t, err)
	return state.New(hands, deal.North, contract)
}

func TestGenerateProducesFullHands(t *testing.T) {
	g := unknownGame(t)
	s := New(g)
	w, ok := s.Generate(testRNG())
	require.True(t, ok)
	for seat := deal.North; seat <= deal.West; seat++ {
		assert.Equal(t, 13, w.Hand(seat).Popcount())
	}
}

func TestGenerateRespectsKnownVoid(t *testing.T) {
	g := unknownGame(t)
	g.ApplyVoid(card.Spades) // mark leader (East) void in spades, arbitrary
	s := New(g)
	rng := testRNG()
	for i := 0; i < 50; i++ {
		w, ok := s.Generate(rng)
		require.True(t, ok)
		assert.Equal(t, 0, w.Hand(deal.East).SuitCount(card.Spades))
	}
}

func TestFilterEnforcesConstraints(t *testing.T) {
	g := unknownGame(t)
	g.SetConstraints(deal.North, state.Constraint{
		SuitMin: [4]int{0, 0, 0, 5},
		SuitMax: [4]int{13, 13, 13, 13},
		HCPMin:  20,
		HCPMax:  37,
	})
	s := New(g)

	rng := testRNG()
	accepted := 0
	for i := 0; i < 2000; i++ {
		w, ok := s.Generate(rng)
		require.True(t, ok)
		if !s.Filter(w) {
			continue
		}
		accepted++
		hand := w.Hand(deal.North)
		assert.GreaterOrEqual(t, hand.HCP(), 20)
		assert.GreaterOrEqual(t, hand.SuitCount(card.Spades), 5)
	}
	assert.Greater(t, accepted, 0)
}

func TestSynchronizeReplaysPartialTrick(t *testing.T) {
	var hands deal.Hands
	hands.Hidden = card.Full52
	contract, _ := deal.ParseContract("3NT")
	g := state.New(hands, deal.North, contract)

	lead := card.New(card.Spades, card.RankAce)
	require.True(t, g.Play(lead, true)) // East, the opening leader, plays AS

	s := New(g)
	w, ok := s.Generate(testRNG())
	require.True(t, ok)
	s.Synchronize(w)

	assert.Equal(t, g.Leader(), w.Leader())
	assert.Equal(t, g.Trick().Count, w.Trick().Count)
}
