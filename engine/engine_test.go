package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridgecard/backup"
	"bridgecard/card"
	"bridgecard/deal"
	"bridgecard/oracle"
	"bridgecard/state"
)

// fakeOracle is a fast, deterministic stand-in for TableOracle: every
// handle reports a fixed number of tricks regardless of what gets played,
// so engine tests aren't bottlenecked by exhaustive solving over a full
// 13-card deal.
type fakeOracle struct {
	tricks int
}

func (f *fakeOracle) New(hands deal.Hands, strain deal.Strain, leader deal.Seat) (oracle.Handle, error) {
	return &fakeHandle{tricks: f.tricks}, nil
}

type fakeHandle struct{ tricks int }

func (h *fakeHandle) Exec(string) error            { return nil }
func (h *fakeHandle) GetTricksToTake() (int, error) { return h.tricks, nil }
func (h *fakeHandle) Delete()                       {}

func fullGame(t *testing.T) *state.Game {
	t.Helper()
	hands, err := deal.ParsePBN(
		"N: AT2.AK2.AK2.AK32 J9873.QJ3.QJ3.QJ Q4.T954.T954.T54 K65.876.876.9876")
	require.NoError(t, err)
	contract, err := deal.ParseContract("3NT")
	require.NoError(t, err)
	return state.New(hands, deal.North, contract)
}

// fullyHiddenGame has no known cards at all, so every Generate call draws
// a different determinization unless the sampler's shuffle is seeded from
// the engine's reproducible worker stream.
func fullyHiddenGame(t *testing.T) *state.Game {
	t.Helper()
	var hands deal.Hands
	hands.Hidden = card.Full52
	contract, err := deal.ParseContract("3NT")
	require.NoError(t, err)
	return state.New(hands, deal.North, contract)
}

func TestSearchIsDeterministicForSingleThread(t *testing.T) {
	run := func() (int64, map[card.Card]float64) {
		e := New(1, &fakeOracle{tricks: 6})
		e.Attach(fullyHiddenGame(t))
		e.SetIterationCap(200)
		e.Search(minDuration, minInterval, 3)
		return e.Iterations(), e.Evaluate(backup.Adversarial{}, backup.Optimistic{})
	}

	iterations1, scores1 := run()
	iterations2, scores2 := run()

	assert.Equal(t, iterations1, iterations2)
	assert.Equal(t, scores1, scores2)
}

func TestEngineSearchAccumulatesIterations(t *testing.T) {
	e := New(1, &fakeOracle{tricks: 6})
	e.Attach(fullGame(t))
	e.Search(minDuration, minInterval, 1)

	assert.False(t, e.IsSearching())
	assert.Greater(t, e.Iterations(), int64(0))
}

func TestEngineContinueResumesAndGrows(t *testing.T) {
	e := New(1, &fakeOracle{tricks: 6})
	e.Attach(fullGame(t))
	e.Search(minDuration, minInterval, 1)
	first := e.Iterations()

	e.Continue(minDuration, minInterval)
	assert.Greater(t, e.Iterations(), first)
}

func TestEngineCancelStopsQuickly(t *testing.T) {
	e := New(1, &fakeOracle{tricks: 6})
	e.Attach(fullGame(t))
	e.Setup(1, true)

	done := make(chan struct{})
	go func() {
		e.Execute(10_000, 100)
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	e.Cancel()

	select {
	case <-done:
	case <-time.After(250 * time.Millisecond):
		t.Fatal("Execute did not stop within 250ms of Cancel")
	}
	assert.False(t, e.IsSearching())
}

func TestEngineEvaluateBeforeSearchIsNoOp(t *testing.T) {
	e := New(1, &fakeOracle{tricks: 6})
	scores := e.Evaluate(backup.Adversarial{}, backup.Optimistic{})
	assert.Empty(t, scores)
}

func TestEngineEvaluateAfterSearchYieldsRootScores(t *testing.T) {
	e := New(2, &fakeOracle{tricks: 9})
	e.Attach(fullGame(t))
	e.Search(minDuration, minInterval, 1)

	scores := e.Evaluate(backup.Adversarial{}, backup.Optimistic{})
	assert.NotEmpty(t, scores)
}
