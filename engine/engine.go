// Package engine implements the parallel search scheduler: a pool of
// simulation-loop workers sharing one Tree, driven by a Sampler and scored
// against a double-dummy Oracle, with periodic progress events and
// cooperative cancellation.
package engine

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"bridgecard/backup"
	"bridgecard/card"
	"bridgecard/deal"
	"bridgecard/oracle"
	"bridgecard/playout"
	"bridgecard/sampler"
	"bridgecard/state"
	"bridgecard/tree"
)

// globalSeedConstant seeds the shared PRNG every Engine is constructed
// with; per-worker streams are drawn from it and drive both world
// sampling (Sampler.Generate) and move selection (query), giving
// threads=1 runs reproducible iteration counts, tree contents, and
// per-card scores.
const globalSeedConstant = 0x4272696467

// Progress is emitted periodically during a search.
type Progress struct {
	Iterations int64
	Rejections int64
	Elapsed    time.Duration
}

// Completion is emitted once, after a search (or a Cancel) tears down.
type Completion struct {
	Iterations int64
	Rejections int64
	Elapsed    time.Duration
}

// Engine drives the parallel simulation loop over a single attached game.
type Engine struct {
	cfg  Config
	o    oracle.Oracle
	game *state.Game

	tr  *tree.Tree
	smp *sampler.Sampler

	rootSide   deal.Side
	rootLeader deal.Seat

	iterations atomic.Int64
	rejections atomic.Int64
	searching  atomic.Bool
	elapsedNs  atomic.Int64

	seedMu     sync.Mutex
	globalSeed *rand.Rand

	cancelMu sync.Mutex
	cancelFn context.CancelFunc

	onProgress func(Progress)
	onComplete func(Completion)
}

// New constructs an Engine with the given worker count (clamped to >= 1)
// and oracle adapter.
func New(threads int, o oracle.Oracle) *Engine {
	if threads < 1 {
		threads = 1
	}
	return &Engine{
		cfg:        Config{Threads: threads, Depth: minDepth},
		o:          o,
		globalSeed: rand.New(rand.NewSource(globalSeedConstant)),
	}
}

// Attach binds the game the engine searches.
func (e *Engine) Attach(g *state.Game) {
	e.game = g
}

// SetIterationCap sets an optional cap on total simulation-loop iterations
// per search; 0 (the default) means unlimited.
func (e *Engine) SetIterationCap(n int) { e.cfg.IterationCap = n }

// OnProgress registers the ProgressChanged callback.
func (e *Engine) OnProgress(fn func(Progress)) { e.onProgress = fn }

// OnSearchCompleted registers the SearchCompleted callback.
func (e *Engine) OnSearchCompleted(fn func(Completion)) { e.onComplete = fn }

// IsSearching reports whether a search is currently running.
func (e *Engine) IsSearching() bool { return e.searching.Load() }

// Iterations returns the number of simulation-loop iterations run so far.
func (e *Engine) Iterations() int64 { return e.iterations.Load() }

// Elapsed returns the duration of the current or most recently completed
// search.
func (e *Engine) Elapsed() time.Duration { return time.Duration(e.elapsedNs.Load()) }

// Setup (re)initializes search state. On a hard reset it allocates a fresh
// Sampler from the attached game and a fresh, empty Tree, and captures the
// root seat/side for role assignment and win-evaluation for the rest of the
// search. On a soft reset (Continue) the sampler and tree are reused; only
// elapsed time and the cancellation token are fresh.
func (e *Engine) Setup(depth int, hardReset bool) {
	e.cfg.Depth = clampDepth(depth)
	if !hardReset {
		return
	}
	if e.game == nil {
		log.Warn().Msg("engine: Setup called with no game attached")
		return
	}
	e.smp = sampler.New(e.game)
	e.tr = tree.New()
	e.iterations.Store(0)
	e.rejections.Store(0)
	e.rootLeader = e.game.Leader()
	e.rootSide = deal.SideOf(e.rootLeader)
}

// Search performs a hard reset at the given depth, then executes.
func (e *Engine) Search(durationMS, intervalMS, depth int) {
	e.Setup(depth, true)
	e.Execute(durationMS, intervalMS)
}

// Continue performs a soft reset, reusing the existing tree and sampler,
// then executes. A no-op (logged) if no prior Search has run.
func (e *Engine) Continue(durationMS, intervalMS int) {
	if e.tr == nil || e.smp == nil {
		log.Warn().Msg("engine: Continue called with no prior search")
		return
	}
	e.Setup(e.cfg.Depth, false)
	e.Execute(durationMS, intervalMS)
}

// Execute spawns Threads simulation-loop workers plus one progress emitter,
// all sharing the Tree, for up to durationMS milliseconds (or until Cancel
// is called), then emits SearchCompleted.
func (e *Engine) Execute(durationMS, intervalMS int) {
	if e.game == nil || e.tr == nil || e.smp == nil {
		log.Warn().Msg("engine: Execute called before a successful Setup")
		return
	}
	durationMS = clampDuration(durationMS)
	intervalMS = clampInterval(intervalMS, durationMS)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(durationMS)*time.Millisecond)
	e.cancelMu.Lock()
	e.cancelFn = cancel
	e.cancelMu.Unlock()
	e.searching.Store(true)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < e.cfg.Threads; i++ {
		worker := i
		g.Go(func() error {
			e.simulate(gctx, worker)
			return nil
		})
	}
	g.Go(func() error {
		e.runProgress(gctx, intervalMS, start)
		return nil
	})

	_ = g.Wait()
	cancel()
	e.elapsedNs.Store(int64(time.Since(start)))
	e.searching.Store(false)

	log.Info().
		Int64("iterations", e.iterations.Load()).
		Dur("elapsed", e.Elapsed()).
		Msg("engine: search completed")

	if e.onComplete != nil {
		e.onComplete(Completion{
			Iterations: e.iterations.Load(),
			Rejections: e.rejections.Load(),
			Elapsed:    e.Elapsed(),
		})
	}
}

// Cancel signals the running search's cancellation token. Workers observe
// it at the next loop head; it is a no-op if no search is running.
func (e *Engine) Cancel() {
	e.cancelMu.Lock()
	fn := e.cancelFn
	e.cancelMu.Unlock()
	if fn != nil {
		fn()
	}
}

// workerRNG draws a fresh per-worker PRNG stream from the shared, seeded
// global source. Every worker's stream is deterministic given the seed and
// the order workers are spawned in, so a threads=1 search draws exactly
// one stream and reruns identically; it feeds both Sampler.Generate (which
// world is sampled) and query (which legal card is picked at each ply).
func (e *Engine) workerRNG() *rand.Rand {
	e.seedMu.Lock()
	seed := e.globalSeed.Int63()
	e.seedMu.Unlock()
	return rand.New(rand.NewSource(seed))
}

func (e *Engine) simulate(ctx context.Context, worker int) {
	rng := e.workerRNG()
	log.Debug().Int("worker", worker).Msg("engine: worker starting")
	defer log.Debug().Int("worker", worker).Msg("engine: worker stopping")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n := e.iterations.Add(1)
		if e.cfg.IterationCap > 0 && n >= int64(e.cfg.IterationCap) {
			e.Cancel()
		}

		world, ok := e.smp.Generate(rng)
		if !ok {
			e.rejections.Add(1)
			continue
		}
		if !e.smp.Filter(world) {
			e.rejections.Add(1)
			continue
		}
		e.smp.Synchronize(world)
		e.query(e.tr.Root(), world, e.cfg.Depth, rng)
	}
}

func (e *Engine) runProgress(ctx context.Context, intervalMS int, start time.Time) {
	ticker := time.NewTicker(time.Duration(intervalMS) * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.elapsedNs.Store(int64(time.Since(start)))
			if e.onProgress != nil {
				e.onProgress(Progress{
					Iterations: e.iterations.Load(),
					Rejections: e.rejections.Load(),
					Elapsed:    e.Elapsed(),
				})
			}
		}
	}
}

// query descends the tree one simulated line of play at a time, from node,
// picking a uniformly random legal card at each step, until depth is
// exhausted or the world has run to completion, at which point it
// evaluates and records a leaf statistic.
func (e *Engine) query(node *tree.Node, world *playout.World, depth int, rng *rand.Rand) {
	if depth == 0 || world.IsOver() {
		win, tricks := e.evaluate(world)
		node.Insert(win, tricks)
		return
	}
	moves := world.GetMoves()
	c := moves[rng.Intn(len(moves))]
	key := world.Play(c)
	role := e.roleFor(world)
	child := e.tr.GetOrCreate(key, role)
	edge := node.AddEdge(c)
	edge.Update(child)
	e.query(child, world, depth-1, rng)
}

func (e *Engine) roleFor(world *playout.World) tree.Role {
	wl := world.Leader()
	if wl == e.rootLeader {
		return tree.Self
	}
	if deal.SideOf(wl) == e.rootSide {
		return tree.Partner
	}
	return tree.Opponent
}

func otherSide(s deal.Side) deal.Side {
	if s == deal.NS {
		return deal.EW
	}
	return deal.NS
}

// evaluate consults the oracle (via World.Tricks) for the side currently on
// lead, derives whether the root side made or broke the contract, and
// returns (win, tricks taken by the root side).
func (e *Engine) evaluate(world *playout.World) (bool, int) {
	ws := deal.SideOf(world.Leader())
	var tricks [2]int
	tricks[ws] = world.Tricks(e.o)
	tricks[otherSide(ws)] = 13 - tricks[ws]

	ds := deal.SideOf(e.game.Declarer())
	req := e.game.Contract().RequiredTricks()
	canMake := tricks[ds] >= req

	win := canMake == (e.rootSide == ds)
	return win, tricks[e.rootSide]
}

// Evaluate walks the tree with the given (opponent, partner) model pair,
// returning a score for every legal card at the root. A no-op (empty map,
// logged) if the search has never run.
func (e *Engine) Evaluate(opponent, partner backup.Model) map[card.Card]float64 {
	if e.tr == nil {
		log.Warn().Msg("engine: Evaluate called before any iterations")
		return map[card.Card]float64{}
	}
	return backup.EvaluateRoot(e.tr, opponent, partner)
}
